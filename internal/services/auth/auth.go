// Package auth реализует вход, регистрацию и выход пользователя дашборда.
//
// Сам сервис не хранит ни токен, ни профиль: токен передаётся менеджеру
// сессии, профиль после входа загружается кешем профиля.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

// API клиент удалённого API.
type API interface {
	Call(ctx context.Context, method, path string, body, out any) error
}

// Session переходы состояния сессии.
type Session interface {
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
}

// Profiles кеш профиля текущего пользователя.
type Profiles interface {
	Refresh(ctx context.Context) (models.Profile, error)
}

// Service отвечает за вход, регистрацию и выход.
type Service struct {
	api      API
	session  Session
	profiles Profiles
	log      *slog.Logger
}

// New создает новый экземпляр Service.
func New(api API, session Session, profiles Profiles, log *slog.Logger) *Service {
	return &Service{
		api:      api,
		session:  session,
		profiles: profiles,
		log:      log,
	}
}

// SignIn обменивает email и пароль на токен, открывает сессию и загружает профиль.
// Если профиль загрузить не удалось, сессия остаётся открытой, а ошибка возвращается.
func (s *Service) SignIn(ctx context.Context, email, secret string) (models.Profile, error) {
	const op = "auth.SignIn"
	var resp models.SignInResponse
	req := models.SignInRequest{Email: strings.TrimSpace(email), Password: secret}
	if err := s.api.Call(ctx, http.MethodPost, "/auth/signin", req, &resp); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if resp.Token == "" {
		return models.Profile{}, fmt.Errorf("%s: empty token: %w", op, apperr.ErrInvalidCredential)
	}
	if err := s.session.Login(ctx, resp.Token); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("signed in", sl.Op(op))

	profile, err := s.profiles.Refresh(ctx)
	if err != nil {
		s.log.Error("failed to load profile after sign in", sl.Op(op), sl.Err(err))
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// SignUp регистрирует пользователя. Сессию не открывает.
func (s *Service) SignUp(ctx context.Context, req models.SignUpRequest) (models.Profile, error) {
	const op = "auth.SignUp"
	if err := password.Confirm(req.Password, req.PasswordConfirmation); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	var created models.Profile
	if err := s.api.Call(ctx, http.MethodPost, "/auth/signup", req, &created); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", sl.Op(op), slog.String("user_id", created.ID))
	return created, nil
}

// SignOut закрывает сессию. Кеш профиля и снимок адресов сбрасываются хуками сессии.
func (s *Service) SignOut(ctx context.Context) error {
	const op = "auth.SignOut"
	if err := s.session.Logout(ctx); err != nil {
		s.log.Error("logout finished with persistence error", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("signed out", sl.Op(op))
	return nil
}
