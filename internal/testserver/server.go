// Package testserver поднимает в памяти заглушку удалённого API адресов и
// пользователей. Маршруты, коды ответов и формат страницы повторяют настоящий
// сервис настолько, насколько это нужно тестам дашборда.
package testserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/jwt"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

const defaultPageSize = 10

type ctxKey string

const (
	userIDKey ctxKey = "user_id"
	roleKey   ctxKey = "role"
)

type user struct {
	profile models.Profile
	hash    string
}

// Server заглушка удалённого API.
type Server struct {
	log   *slog.Logger
	maker jwt.Maker
	now   func() time.Time

	mu        sync.Mutex
	users     map[string]*user
	order     []string
	addresses []models.Address
	requests  []string

	URL string
}

// Option настраивает Server.
type Option func(*Server)

// WithTokenTTL задаёт время жизни выдаваемых токенов. Отрицательное значение
// выдаёт уже истёкшие токены.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.maker = jwt.NewJWTMaker("testserver-secret", ttl) }
}

// New создаёт заглушку без сетевого слушателя.
func New(opts ...Option) *Server {
	s := &Server{
		log:   logger.Discard(),
		maker: jwt.NewJWTMaker("testserver-secret", time.Hour),
		now:   time.Now,
		users: make(map[string]*user),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start поднимает заглушку на httptest.Server и закрывает её по окончании теста.
func Start(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := New(opts...)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// Handler возвращает роутер заглушки.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.record)

	r.Post("/auth/signin", s.signIn)
	r.Post("/auth/signup", s.signUp)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/user/me", s.me)
		r.Get("/user/{id}", s.getUser)
		r.Put("/user/{id}", s.updateUser)

		r.Get("/address/all", s.listAll)
		r.Get("/address/all/{userId}", s.listOwned)
		r.Post("/address/create", s.createAddress)
		r.Put("/address/update", s.updateAddress)
		r.Delete("/address/{id}", s.deleteAddress)
	})
	return r
}

// AddUser заводит пользователя. Пустой ID заменяется на uuid.
func (s *Server) AddUser(p models.Profile, rawPassword string) models.Profile {
	hash, err := password.Hash(rawPassword)
	if err != nil {
		panic(err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Role == "" {
		p.Role = models.RoleUser
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.users[p.ID] = &user{profile: p, hash: hash}
	return p
}

// AddAddress кладёт адрес напрямую в хранилище. Пустой ID заменяется на uuid.
func (s *Server) AddAddress(ownerID string, a models.Address) models.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if u, ok := s.users[ownerID]; ok {
		a.User = summary(u.profile)
	} else {
		a.User = models.UserSummary{ID: ownerID}
	}
	s.addresses = append(s.addresses, a)
	return a
}

// Token выдаёт токен для пользователя так же, как /auth/signin.
func (s *Server) Token(userID string, role models.Role) string {
	token, err := s.maker.GenerateToken(userID, string(role))
	if err != nil {
		panic(err)
	}
	return token
}

// Requests список "METHOD /path?query" всех принятых запросов.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Addresses копия всех хранимых адресов.
func (s *Server) Addresses() []models.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Address(nil), s.addresses...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.RequestURI())
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// authenticate проверяет Bearer-токен и кладёт id и роль в контекст.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "testserver.authenticate"
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(w, r, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}
		claims, err := s.maker.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			s.log.Debug("token rejected", slog.String("op", op), slog.String("error", err.Error()))
			fail(w, r, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		ctx = context.WithValue(ctx, roleKey, models.Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func caller(r *http.Request) (string, models.Role) {
	id, _ := r.Context().Value(userIDKey).(string)
	role, _ := r.Context().Value(roleKey).(models.Role)
	return id, role
}

func fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"message": msg})
}

func summary(p models.Profile) models.UserSummary {
	return models.UserSummary{ID: p.ID, Name: p.Name, Email: p.Email, CPF: p.CPF, Role: p.Role}
}
