// Package apperr описывает ошибки ядра сессии и синхронизации адресов.
//
// Ядро самостоятельно восстанавливается только в двух случаях: нечитаемый токен
// трактуется как анонимная сессия, а ответ, пришедший после выхода, отбрасывается.
// Всё остальное возвращается вызывающему коду без изменений.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized операция требует закешированный профиль, а его нет.
	// Возвращается до любого сетевого вызова.
	ErrUnauthorized = errors.New("no authenticated profile")
	// ErrInvalidCredential токен не декодируется или уже истёк.
	ErrInvalidCredential = errors.New("invalid or expired credential")
	// ErrStaleSession ответ пришёл после смены сессии и был отброшен.
	ErrStaleSession = errors.New("session changed while request was in flight")
	// ErrPasswordMismatch пароль и подтверждение не совпадают.
	ErrPasswordMismatch = errors.New("password confirmation does not match")
)

// RemoteError ответ удалённого API с не-2xx статусом.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote rejected request: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("remote rejected request: %d %s", e.Status, e.Message)
}

// IsStatus сообщает, содержит ли цепочка err RemoteError с указанным статусом.
func IsStatus(err error, status int) bool {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Status == status
	}
	return false
}
