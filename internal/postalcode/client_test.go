package postalcode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/address-dashboard/internal/cache"
	"github.com/magabrotheeeer/address-dashboard/internal/config"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

const seBody = `{
  "cep": "01001-000",
  "logradouro": "Praça da Sé",
  "complemento": "lado ímpar",
  "unidade": "",
  "bairro": "Sé",
  "localidade": "São Paulo",
  "uf": "SP",
  "estado": "São Paulo",
  "regiao": "Sudeste",
  "ibge": "3550308",
  "gia": "1004",
  "ddd": "11",
  "siafi": "7107"
}`

func newViaCEP(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ws/01001000/json/":
			_, _ = w.Write([]byte(seBody))
		case "/ws/99999999/json/":
			_, _ = w.Write([]byte(`{"erro": true}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "01001-000", want: "01001000"},
		{in: " 01001000 ", want: "01001000"},
		{in: "01.001-000", want: "01001000"},
		{in: "0100100", wantErr: true},
		{in: "010010001", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Lookup(t *testing.T) {
	var hits int32
	srv := newViaCEP(t, &hits)
	c := NewClient(srv.URL, time.Second, logger.Discard())

	res, err := c.Lookup(context.Background(), "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", res.Street)
	assert.Equal(t, "SP", res.StateAbbr)
	assert.Equal(t, "3550308", res.IBGECode)

	_, err = c.Lookup(context.Background(), "99999-999")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Lookup(context.Background(), "123")
	assert.ErrorIs(t, err, ErrInvalidCode)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits), "invalid code never leaves the process")
}

func TestClient_LookupCached(t *testing.T) {
	mr := miniredis.RunT(t)
	store, err := cache.InitServer(context.Background(), config.RedisConnection{RedisAddress: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var hits int32
	srv := newViaCEP(t, &hits)
	c := NewClient(srv.URL, time.Second, logger.Discard(), WithCache(store, time.Hour))

	first, err := c.Lookup(context.Background(), "01001000")
	require.NoError(t, err)
	second, err := c.Lookup(context.Background(), "01001-000")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, mr.Exists("cep:01001000"))
}

func TestResult_Apply(t *testing.T) {
	complement := "Apto 3"
	draft := models.AddressDraft{ZipCode: "01001000", Complement: &complement}
	Result{
		Street: "Praça da Sé", District: "Sé", City: "São Paulo",
		StateAbbr: "SP", Region: "Sudeste", IBGECode: "3550308", AreaCode: "11",
	}.Apply(&draft)

	assert.Equal(t, "Praça da Sé", draft.Street)
	assert.Equal(t, "Sudeste", draft.Region)
	assert.Equal(t, "01001000", draft.ZipCode)
	assert.Equal(t, &complement, draft.Complement)
	require.NotNil(t, draft.IBGECode)
	assert.Equal(t, "3550308", *draft.IBGECode)
	assert.Nil(t, draft.Unit)
	assert.Nil(t, draft.GIACode)
}
