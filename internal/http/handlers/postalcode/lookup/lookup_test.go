package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/postalcode"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Lookup(ctx context.Context, code string) (postalcode.Result, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(postalcode.Result), args.Error(1)
}

func TestLookupHandler(t *testing.T) {
	tests := []struct {
		name       string
		zip        string
		result     postalcode.Result
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			zip:        "01001-000",
			result:     postalcode.Result{CEP: "01001-000", Street: "Praça da Sé", City: "São Paulo", IBGECode: "3550308"},
			wantStatus: http.StatusOK,
			wantBody:   `"ibgeCode":"3550308"`,
		},
		{
			name:       "invalid",
			zip:        "123",
			err:        fmt.Errorf("postalcode.Lookup: %w", postalcode.ErrInvalidCode),
			wantStatus: http.StatusBadRequest,
			wantBody:   "postal code must have 8 digits",
		},
		{
			name:       "not found",
			zip:        "99999999",
			err:        fmt.Errorf("postalcode.Lookup: %w", postalcode.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   "postal code not found",
		},
		{
			name:       "upstream down",
			zip:        "01001000",
			err:        errors.New("dial tcp: refused"),
			wantStatus: http.StatusBadGateway,
			wantBody:   "postal code service unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			svc.On("Lookup", mock.Anything, tt.zip).Return(tt.result, tt.err).Once()

			req := httptest.NewRequest(http.MethodGet, "/postal-code/"+tt.zip, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("zip", tt.zip)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			rec := httptest.NewRecorder()
			New(logger.Discard(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}
