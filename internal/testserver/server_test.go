package testserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/address-dashboard/internal/apiclient"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) { return string(s), s != "" }

func client(t *testing.T, url, token string) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(url, staticToken(token))
	require.NoError(t, err)
	return c
}

func TestServer_SignInIssuesBearerToken(t *testing.T) {
	srv := Start(t)
	srv.AddUser(models.Profile{ID: "42", Email: "ana@example.com", Role: models.RoleUser}, "secret1")
	ctx := context.Background()

	var resp models.SignInResponse
	err := client(t, srv.URL, "").Call(ctx, http.MethodPost, "/auth/signin",
		models.SignInRequest{Email: "ana@example.com", Password: "secret1"}, &resp)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	var me models.Profile
	require.NoError(t, client(t, srv.URL, resp.Token).Call(ctx, http.MethodGet, "/user/me", nil, &me))
	assert.Equal(t, "42", me.ID)

	err = client(t, srv.URL, "").Call(ctx, http.MethodPost, "/auth/signin",
		models.SignInRequest{Email: "ana@example.com", Password: "wrong"}, &resp)
	assert.True(t, apperr.IsStatus(err, http.StatusUnauthorized))
}

func TestServer_RejectsMissingAndExpiredTokens(t *testing.T) {
	srv := Start(t, WithTokenTTL(-time.Minute))
	srv.AddUser(models.Profile{ID: "42"}, "secret1")

	err := client(t, srv.URL, "").Call(context.Background(), http.MethodGet, "/user/me", nil, &models.Profile{})
	assert.True(t, apperr.IsStatus(err, http.StatusUnauthorized))

	err = client(t, srv.URL, srv.Token("42", models.RoleUser)).
		Call(context.Background(), http.MethodGet, "/user/me", nil, &models.Profile{})
	assert.True(t, apperr.IsStatus(err, http.StatusUnauthorized))
}

func TestServer_ListScopeAndPaging(t *testing.T) {
	srv := Start(t)
	srv.AddUser(models.Profile{ID: "42"}, "secret1")
	srv.AddUser(models.Profile{ID: "7"}, "secret1")
	for i := 0; i < 3; i++ {
		srv.AddAddress("42", models.Address{Street: "Rua A"})
	}
	srv.AddAddress("7", models.Address{Street: "Rua B"})
	ctx := context.Background()

	user := client(t, srv.URL, srv.Token("42", models.RoleUser))
	var page models.AddressPage
	require.NoError(t, user.Call(ctx, http.MethodGet, "/address/all/42?page=1&size=2", nil, &page))
	require.NoError(t, page.Validate())
	assert.Equal(t, 1, page.NumberOfElements)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.Last)

	err := user.Call(ctx, http.MethodGet, "/address/all", nil, &page)
	assert.True(t, apperr.IsStatus(err, http.StatusForbidden))
	err = user.Call(ctx, http.MethodGet, "/address/all/7", nil, &page)
	assert.True(t, apperr.IsStatus(err, http.StatusForbidden))

	admin := client(t, srv.URL, srv.Token("1", models.RoleAdmin))
	require.NoError(t, admin.Call(ctx, http.MethodGet, "/address/all", nil, &page))
	assert.Equal(t, 4, page.NumberOfElements)
}

func TestServer_AddressMutations(t *testing.T) {
	srv := Start(t)
	srv.AddUser(models.Profile{ID: "42"}, "secret1")
	user := client(t, srv.URL, srv.Token("42", models.RoleUser))
	ctx := context.Background()

	require.NoError(t, user.Call(ctx, http.MethodPost, "/address/create",
		models.AddressDraft{ZipCode: "01001000", Street: "Rua A", UserID: "42"}, nil))
	stored := srv.Addresses()
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0].ID)
	assert.Equal(t, "42", stored[0].User.ID)

	require.NoError(t, user.Call(ctx, http.MethodPut, "/address/update",
		models.AddressPatch{ID: stored[0].ID, ZipCode: "01001000", Street: "Rua B"}, nil))
	assert.Equal(t, "Rua B", srv.Addresses()[0].Street)

	err := user.Call(ctx, http.MethodPut, "/address/update", models.AddressPatch{ID: "missing"}, nil)
	assert.True(t, apperr.IsStatus(err, http.StatusNotFound))

	require.NoError(t, user.Call(ctx, http.MethodDelete, "/address/"+stored[0].ID, nil, nil))
	assert.Empty(t, srv.Addresses())
}
