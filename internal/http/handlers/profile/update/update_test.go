package update

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, upd models.ProfileUpdate) (models.Profile, error) {
	args := m.Called(ctx, upd)
	return args.Get(0).(models.Profile), args.Error(1)
}

func TestProfileUpdateHandler(t *testing.T) {
	t.Run("returns server profile", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Update", mock.Anything, models.ProfileUpdate{Name: "Ana Maria"}).
			Return(models.Profile{ID: "42", Name: "Ana Maria", Email: "ana@example.com"}, nil).Once()

		rec := httptest.NewRecorder()
		New(logger.Discard(), svc).ServeHTTP(rec,
			httptest.NewRequest(http.MethodPut, "/profile", bytes.NewBufferString(`{"name":"Ana Maria"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"ana@example.com"`)
		svc.AssertExpectations(t)
	})

	t.Run("password confirmation mismatch", func(t *testing.T) {
		svc := new(MockService)
		rec := httptest.NewRecorder()
		New(logger.Discard(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/profile",
			bytes.NewBufferString(`{"password":"secret1","passwordConfirmation":"secret2"}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
