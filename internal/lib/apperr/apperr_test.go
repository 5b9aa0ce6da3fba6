package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoteError_Error(t *testing.T) {
	withMsg := &RemoteError{Status: http.StatusBadRequest, Message: "cep inválido"}
	assert.Equal(t, "remote rejected request: 400 cep inválido", withMsg.Error())

	noMsg := &RemoteError{Status: http.StatusForbidden}
	assert.Equal(t, "remote rejected request: 403 Forbidden", noMsg.Error())
}

func TestIsStatus(t *testing.T) {
	err := fmt.Errorf("address.Delete: %w", &RemoteError{Status: http.StatusNotFound})

	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.False(t, IsStatus(err, http.StatusForbidden))
	assert.False(t, IsStatus(ErrUnauthorized, http.StatusNotFound))
}
