// Package postalcode ищет адрес по бразильскому почтовому индексу (CEP) через ViaCEP.
//
// Клиент ходит в сторонний сервис отдельным http.Client: токен сессии дашборда
// туда не отправляется.
package postalcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
)

var (
	// ErrInvalidCode после удаления нецифровых символов осталось не 8 цифр.
	ErrInvalidCode = errors.New("postal code must have 8 digits")
	// ErrNotFound ViaCEP ответил {"erro": true}.
	ErrNotFound = errors.New("postal code not found")
)

const cacheKeyPrefix = "cep:"

// Storage кеш найденных адресов.
type Storage interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Client клиент ViaCEP
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	storage    Storage
	ttl        time.Duration
}

// Option настраивает Client.
type Option func(*Client)

// WithCache включает кеширование найденных адресов на ttl.
func WithCache(storage Storage, ttl time.Duration) Option {
	return func(c *Client) {
		c.storage = storage
		c.ttl = ttl
	}
}

// WithHTTPClient подменяет http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient создаёт новый клиент ViaCEP
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Normalize оставляет в коде только цифры и проверяет длину.
func Normalize(code string) (string, error) {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() != 8 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return b.String(), nil
}

// Lookup возвращает адрес по CEP.
func (c *Client) Lookup(ctx context.Context, code string) (Result, error) {
	const op = "postalcode.Lookup"
	cep, err := Normalize(code)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	log := c.log.With(sl.Op(op), slog.String("cep", cep))

	var res Result
	if c.storage != nil {
		found, err := c.storage.Get(ctx, cacheKeyPrefix+cep, &res)
		if err != nil {
			log.Warn("postal code cache read failed", sl.Err(err))
		} else if found {
			log.Debug("postal code cache hit")
			return res, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ws/"+cep+"/json/", nil)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	if res.NotFound {
		return Result{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	if c.storage != nil {
		if err := c.storage.Set(ctx, cacheKeyPrefix+cep, res, c.ttl); err != nil {
			log.Warn("postal code cache write failed", sl.Err(err))
		}
	}
	log.Debug("postal code resolved", slog.String("city", res.City))
	return res, nil
}
