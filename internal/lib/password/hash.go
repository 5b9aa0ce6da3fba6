// Package password хеширует и сверяет пароли.
//
// Hash и Verify работают с bcrypt и нужны заглушке удалённого API в тестах.
// Confirm проверяет совпадение пароля с подтверждением до отправки запроса.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
)

// Hash возвращает bcrypt-хеш пароля.
func Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify возвращает nil, если пароль соответствует хешу.
func Verify(hash, password string) error {
	const op = "password.Verify"
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Confirm возвращает apperr.ErrPasswordMismatch, если подтверждение не совпадает с паролем.
// Два пустых значения считаются совпадающими: пароль не меняется.
func Confirm(password, confirmation string) error {
	if password != confirmation {
		return apperr.ErrPasswordMismatch
	}
	return nil
}
