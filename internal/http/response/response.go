// Package response содержит единый JSON-конверт ответов дашборда и
// сопоставление ошибок ядра с HTTP-статусами.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
)

// Response стандартная структура JSON-ответа.
// Status - "OK" или "Error", Error - текст ошибки, Data - полезная нагрузка.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// OK успешный ответ без данных.
func OK() Response {
	return Response{Status: StatusOK}
}

// OKWithData успешный ответ с данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error ответ с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError собирает нарушения валидации в одно сообщение через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var msgs []string
	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "min", "max", "len":
			msgs = append(msgs, fmt.Sprintf("field %s has invalid length", err.Field()))
		case "eqfield":
			msgs = append(msgs, fmt.Sprintf("field %s must match %s", err.Field(), err.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(strings.Join(msgs, ", "))
}

// StatusFor сопоставляет ошибку ядра с HTTP-статусом ответа дашборда.
// Отказ удалённого API с кодом 4xx пробрасывается как есть, 5xx и сетевые
// ошибки превращаются в 502.
func StatusFor(err error) int {
	var remote *apperr.RemoteError
	switch {
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrStaleSession):
		return http.StatusConflict
	case errors.As(err, &remote):
		if remote.Status >= 400 && remote.Status < 500 {
			return remote.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// MessageFor текст ошибки для клиента дашборда. Детали сети наружу не отдаются.
func MessageFor(err error) string {
	var remote *apperr.RemoteError
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		return "not authenticated"
	case errors.Is(err, apperr.ErrInvalidCredential):
		return "invalid credentials"
	case errors.Is(err, apperr.ErrPasswordMismatch):
		return "password confirmation does not match"
	case errors.Is(err, apperr.ErrStaleSession):
		return "session changed, retry"
	case errors.As(err, &remote) && remote.Message != "":
		return remote.Message
	default:
		return "remote service unavailable"
	}
}
