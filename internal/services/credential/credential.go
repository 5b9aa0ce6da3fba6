// Package credential хранит bearer-токен пользователя.
//
// Токен лежит в хранилище под собственным ключом с фиксированным временем жизни.
// Истечение на стороне хранилища - лишь грубая страховка: срок действия
// определяется полем exp внутри самого токена (см. IsValid).
package credential

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/jwt"
)

// TokenKey суффикс ключа, под которым хранится токен.
const TokenKey = "auth_token"

// DefaultTTL время жизни записи с токеном, если не задано иное.
const DefaultTTL = 24 * time.Hour

// Storage описывает хранилище ключ-значение с временем жизни.
type Storage interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Store хранилище токена. Писать в него должен только менеджер сессии.
type Store struct {
	storage Storage
	key     string
	ttl     time.Duration
	now     func() time.Time
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт Store с ключом prefix+TokenKey и временем жизни ttl.
func New(storage Storage, prefix string, ttl time.Duration, opts ...Option) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{
		storage: storage,
		key:     prefix + TokenKey,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set сохраняет токен, перезаписывая прежний.
func (s *Store) Set(ctx context.Context, token string) error {
	const op = "credential.Set"
	if err := s.storage.Set(ctx, s.key, token, s.ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Get возвращает токен как есть, срок действия не проверяет.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	const op = "credential.Get"
	var token string
	found, err := s.storage.Get(ctx, s.key, &token)
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !found || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Token отдаёт текущий токен для заголовка Authorization.
// Любая ошибка хранилища означает "токена нет".
func (s *Store) Token(ctx context.Context) (string, bool) {
	token, ok, err := s.Get(ctx)
	if err != nil {
		return "", false
	}
	return token, ok
}

// Remove удаляет токен. Отсутствие записи ошибкой не считается.
func (s *Store) Remove(ctx context.Context) error {
	const op = "credential.Remove"
	if err := s.storage.Invalidate(ctx, s.key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// IsValid сообщает, что сохранённый токен декодируется и ещё не истёк.
// Никогда не возвращает ошибку: всё непонятное - false.
func (s *Store) IsValid(ctx context.Context) bool {
	token, ok := s.Token(ctx)
	if !ok {
		return false
	}
	return Valid(token, s.now())
}

// Valid проверяет токен: exp*1000 > now в миллисекундах.
func Valid(token string, now time.Time) bool {
	exp, err := jwt.Expiry(token)
	if err != nil {
		return false
	}
	return exp.UnixMilli() > now.UnixMilli()
}
