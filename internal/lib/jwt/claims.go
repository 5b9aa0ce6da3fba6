package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry в полезной нагрузке токена нет поля exp.
var ErrNoExpiry = errors.New("token has no exp claim")

// CustomClaims описывает данные, которые удалённый API кладёт в токен.
type CustomClaims struct {
	Role                 string `json:"role,omitempty"` // Роль пользователя, USER или ADMIN
	jwt.RegisteredClaims        // sub - id пользователя, exp - срок действия
}

// GenerateToken создает JWT токен с заданными userID и role, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL.
func (j *MakerImpl) GenerateToken(userID, role string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает CustomClaims с данными, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}

// Expiry декодирует среднюю часть токена без проверки подписи и возвращает exp.
//
// Неизвестный или отсутствующий alg в заголовке не мешает: нужен только exp.
// Любая другая ошибка разбора возвращается как есть.
func Expiry(tokenStr string) (time.Time, error) {
	const op = "jwt.Expiry"
	claims := &CustomClaims{}
	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	token, _, err := parser.ParseUnverified(tokenStr, claims)
	if err != nil && (token == nil || !errors.Is(err, jwt.ErrTokenUnverifiable)) {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, ErrNoExpiry)
	}
	return claims.ExpiresAt.Time, nil
}
