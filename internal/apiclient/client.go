// Package apiclient HTTP-клиент удалённого API адресов и пользователей.
//
// Перед каждым запросом транспорт читает текущий токен и, если он есть,
// добавляет заголовок Authorization: Bearer <token>. Без токена запрос уходит
// неаутентифицированным, отклонять его - дело сервера. Ответы клиент не
// интерпретирует и не повторяет: статус разбирает вызывающий код (DecodeJSON),
// сетевые ошибки возвращаются как есть.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource источник текущего bearer-токена.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

// Client клиент, привязанный к одному базовому URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type options struct {
	timeout   time.Duration
	transport http.RoundTripper
	metrics   *Metrics
}

// Option настраивает Client.
type Option func(*options)

// WithTimeout задаёт общий таймаут запроса.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTransport подменяет нижележащий транспорт (по умолчанию http.DefaultTransport).
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithMetrics включает учёт исходящих запросов в prometheus.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New создаёт клиент для baseURL. Токены берутся из tokens перед каждым запросом.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	const op = "apiclient.New"
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%s: unsupported base url %q", op, baseURL)
	}

	o := options{timeout: 10 * time.Second, transport: http.DefaultTransport}
	for _, opt := range opts {
		opt(&o)
	}

	var rt http.RoundTripper = &bearerTransport{base: o.transport, tokens: tokens}
	if o.metrics != nil {
		rt = o.metrics.instrument(rt)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: o.timeout, Transport: rt},
	}, nil
}

// NewRequest собирает запрос к path относительно базового URL. body кодируется в JSON.
func (c *Client) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	const op = "apiclient.NewRequest"
	var reader io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reader = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Do отправляет запрос. Ответ возвращается без интерпретации статуса.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

// Call отправляет запрос и декодирует успешный ответ в out (может быть nil).
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if err := DecodeJSON(resp, out); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return nil
}

// IsTransport сообщает, что ошибка пришла из сети, а не от сервера.
func IsTransport(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
