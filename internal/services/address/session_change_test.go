package address

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/address-dashboard/internal/apiclient"
	"github.com/magabrotheeeer/address-dashboard/internal/cache"
	"github.com/magabrotheeeer/address-dashboard/internal/config"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/services/credential"
	"github.com/magabrotheeeer/address-dashboard/internal/services/profile"
	"github.com/magabrotheeeer/address-dashboard/internal/services/session"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func tokenFor(sub string, exp time.Time) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"sub":%q,"exp":%d}`, sub, exp.Unix())))
	return header + "." + body + ".signature"
}

// remoteStub отвечает профилем по bearer-токену и страницей на любой GET адресов.
type remoteStub struct {
	mu       sync.Mutex
	profiles map[string]models.Profile
	failMe   bool
	requests []string
}

func (r *remoteStub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	token := strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer ")

	r.mu.Lock()
	r.requests = append(r.requests, req.Method+" "+req.URL.RequestURI())
	failMe := r.failMe
	p, known := r.profiles[token]
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case req.URL.Path == "/user/me" && (failMe || !known):
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"user service down"}`)
	case req.URL.Path == "/user/me":
		_ = json.NewEncoder(w).Encode(p)
	default:
		_ = json.NewEncoder(w).Encode(pageOf(models.Address{ID: "a1", Street: "Rua A"}))
	}
}

func (r *remoteStub) setFailMe(v bool) {
	r.mu.Lock()
	r.failMe = v
	r.mu.Unlock()
}

func (r *remoteStub) requestLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.requests...)
}

type wired struct {
	session  *session.Manager
	profiles *profile.Cache
	sync     *Synchronizer
	redis    *miniredis.Miniredis
}

func wire(t *testing.T, remote http.Handler, clk *testClock) wired {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store, err := cache.InitServer(context.Background(), config.RedisConnection{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	creds := credential.New(store, "test:", time.Hour, credential.WithClock(clk.Now))
	sess := session.New(context.Background(), creds, logger.Discard(), session.WithClock(clk.Now))
	client, err := apiclient.New(srv.URL, creds)
	require.NoError(t, err)

	profiles := profile.New(client, store, sess, "test:", time.Hour, logger.Discard())
	return wired{
		session:  sess,
		profiles: profiles,
		sync:     New(client, profiles, sess, logger.Discard()),
		redis:    mr,
	}
}

func TestSignInOverOpenSession_DropsPreviousUserState(t *testing.T) {
	clk := &testClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	adminToken := tokenFor("admin-1", clk.Now().Add(time.Hour))
	userToken := tokenFor("user-2", clk.Now().Add(time.Hour))
	remote := &remoteStub{profiles: map[string]models.Profile{
		adminToken: {ID: "admin-1", Name: "Admin", Role: models.RoleAdmin},
		userToken:  {ID: "user-2", Name: "User", Role: models.RoleUser},
	}}
	w := wire(t, remote, clk)
	ctx := context.Background()

	require.NoError(t, w.session.Login(ctx, adminToken))
	_, err := w.profiles.Refresh(ctx)
	require.NoError(t, err)
	_, err = w.sync.List(ctx, ListOptions{})
	require.NoError(t, err)

	remote.setFailMe(true)
	require.NoError(t, w.session.Login(ctx, userToken))
	_, err = w.profiles.Refresh(ctx)
	require.Error(t, err)

	_, ok := w.profiles.ReadCached()
	assert.False(t, ok, "previous user's profile must not survive a new sign in")
	assert.False(t, w.redis.Exists("test:user"))
	snapshot, _ := w.sync.Snapshot()
	assert.Nil(t, snapshot)

	_, err = w.sync.List(ctx, ListOptions{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, []string{
		"GET /user/me",
		"GET /address/all",
		"GET /user/me",
	}, remote.requestLog(), "no admin listing is sent with the new user's token")
}

func TestSignInOverOpenSession_NewProfileIsServed(t *testing.T) {
	clk := &testClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	adminToken := tokenFor("admin-1", clk.Now().Add(time.Hour))
	userToken := tokenFor("user-2", clk.Now().Add(time.Hour))
	remote := &remoteStub{profiles: map[string]models.Profile{
		adminToken: {ID: "admin-1", Role: models.RoleAdmin},
		userToken:  {ID: "user-2", Role: models.RoleUser},
	}}
	w := wire(t, remote, clk)
	ctx := context.Background()

	require.NoError(t, w.session.Login(ctx, adminToken))
	_, err := w.profiles.Refresh(ctx)
	require.NoError(t, err)

	require.NoError(t, w.session.Login(ctx, userToken))
	_, err = w.profiles.Refresh(ctx)
	require.NoError(t, err)

	cached, ok := w.profiles.ReadCached()
	require.True(t, ok)
	assert.Equal(t, "user-2", cached.ID)

	_, err = w.sync.List(ctx, ListOptions{})
	require.NoError(t, err)
	log := remote.requestLog()
	assert.Equal(t, "GET /address/all/user-2", log[len(log)-1])
}

func TestExpiredToken_EndsSessionAtReadTime(t *testing.T) {
	clk := &testClock{now: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	token := tokenFor("user-2", clk.Now().Add(time.Second))
	remote := &remoteStub{profiles: map[string]models.Profile{
		token: {ID: "user-2", Role: models.RoleUser},
	}}
	w := wire(t, remote, clk)
	ctx := context.Background()

	require.NoError(t, w.session.Login(ctx, token))
	_, err := w.profiles.Refresh(ctx)
	require.NoError(t, err)
	_, err = w.sync.List(ctx, ListOptions{})
	require.NoError(t, err)

	clk.Advance(time.Minute)

	_, ok := w.profiles.ReadCached()
	assert.False(t, ok)
	assert.False(t, w.session.IsAuthenticated())
	assert.False(t, w.redis.Exists("test:auth_token"), "expired credential is destroyed when found")
	assert.False(t, w.redis.Exists("test:user"))
	snapshot, _ := w.sync.Snapshot()
	assert.Nil(t, snapshot)

	_, err = w.sync.List(ctx, ListOptions{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
