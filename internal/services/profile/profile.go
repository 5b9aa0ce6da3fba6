// Package profile кеширует профиль аутентифицированного пользователя.
//
// Кеш не источник истины: истина - GET /user/me. Профиль живёт только пока
// жива сессия: кеш регистрирует себя хуком выхода менеджера сессии и
// очищается при каждом её завершении. Профиль помечен номером сессии, в
// которой получен, и ReadCached не отдаёт его после смены сессии, даже если
// хук ещё не отработал. Ответы, пришедшие после смены сессии, в кеш не
// попадают.
//
// Session.Current может сам завершить сессию с истёкшим токеном и вызвать
// хуки, поэтому под c.mu он не вызывается.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/password"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

// UserKey суффикс ключа, под которым хранится снимок профиля.
const UserKey = "user"

// API клиент удалённого API.
type API interface {
	Call(ctx context.Context, method, path string, body, out any) error
}

// Storage хранилище снимка профиля.
type Storage interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Session состояние сессии, по которому отбрасываются запоздавшие ответы.
type Session interface {
	Current() (epoch uint64, authenticated bool)
	OnLogout(hook func())
}

// Cache кеш профиля.
type Cache struct {
	api     API
	storage Storage
	session Session
	key     string
	ttl     time.Duration
	log     *slog.Logger

	mu      sync.RWMutex
	profile *models.Profile
	epoch   uint64
	// gen растёт при каждом Invalidate
	gen uint64
}

// New создаёт кеш и подписывает Invalidate на выход из сессии.
func New(api API, storage Storage, session Session, prefix string, ttl time.Duration, log *slog.Logger) *Cache {
	c := &Cache{
		api:     api,
		storage: storage,
		session: session,
		key:     prefix + UserKey,
		ttl:     ttl,
		log:     log,
	}
	session.OnLogout(c.Invalidate)
	return c
}

// Load читает сохранённый снимок один раз при старте процесса.
// Без аутентифицированной сессии снимок считается мусором и удаляется.
func (c *Cache) Load(ctx context.Context) error {
	const op = "profile.Load"
	log := c.log.With(sl.Op(op))

	epoch, ok := c.session.Current()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.profile = nil
		if err := c.storage.Invalidate(ctx, c.key); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	var p models.Profile
	found, err := c.storage.Get(ctx, c.key, &p)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !found {
		log.Debug("no persisted profile")
		return nil
	}
	c.profile = &p
	c.epoch = epoch
	log.Debug("persisted profile loaded", slog.String("user_id", p.ID))
	return nil
}

// Refresh запрашивает GET /user/me и сохраняет результат.
// При ошибке кеш не меняется.
func (c *Cache) Refresh(ctx context.Context) (models.Profile, error) {
	const op = "profile.Refresh"
	epoch, gen := c.begin()

	var p models.Profile
	if err := c.api.Call(ctx, http.MethodGet, "/user/me", nil, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.store(ctx, epoch, gen, p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// ReadCached возвращает последний сохранённый профиль без сетевых вызовов.
// Профиль другой или завершённой сессии считается отсутствующим.
func (c *Cache) ReadCached() (models.Profile, bool) {
	epoch, ok := c.session.Current()
	if !ok {
		return models.Profile{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.profile == nil || c.epoch != epoch {
		return models.Profile{}, false
	}
	return *c.profile, true
}

// Update отправляет PUT /user/{id} и перезаписывает кеш профилем из ответа
// сервера, а не отправленными полями. Пустой ID берётся из кеша.
func (c *Cache) Update(ctx context.Context, upd models.ProfileUpdate) (models.Profile, error) {
	const op = "profile.Update"
	if err := password.Confirm(upd.Password, upd.PasswordConfirmation); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if upd.ID == "" {
		cached, ok := c.ReadCached()
		if !ok {
			return models.Profile{}, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
		}
		upd.ID = cached.ID
	}

	epoch, gen := c.begin()

	var p models.Profile
	if err := c.api.Call(ctx, http.MethodPut, "/user/"+url.PathEscape(upd.ID), upd, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.store(ctx, epoch, gen, p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	c.log.Info("profile updated", sl.Op(op), slog.String("user_id", p.ID))
	return p, nil
}

// GetByID читает чужой или свой профиль по id, в кеш не кладёт.
func (c *Cache) GetByID(ctx context.Context, id string) (models.Profile, error) {
	const op = "profile.GetByID"
	var p models.Profile
	if err := c.api.Call(ctx, http.MethodGet, "/user/"+url.PathEscape(id), nil, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Invalidate очищает профиль в памяти и в хранилище.
func (c *Cache) Invalidate() {
	const op = "profile.Invalidate"
	c.mu.Lock()
	defer c.mu.Unlock()

	c.profile = nil
	c.gen++

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.storage.Invalidate(ctx, c.key); err != nil {
		c.log.Error("failed to remove persisted profile", sl.Op(op), sl.Err(err))
	}
}

// begin фиксирует номер сессии и поколение кеша перед запросом.
func (c *Cache) begin() (epoch, gen uint64) {
	epoch, _ = c.session.Current()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return epoch, c.gen
}

// store сохраняет профиль, если сессия не сменилась с момента отправки запроса.
// Смена сессии всегда сопровождается Invalidate, поэтому под блокировкой
// достаточно сверить поколение.
func (c *Cache) store(ctx context.Context, epoch, gen uint64, p models.Profile) error {
	current, ok := c.session.Current()
	if !ok || current != epoch {
		c.log.Warn("discarding profile received after session change",
			slog.Uint64("request_epoch", epoch), slog.Uint64("current_epoch", current))
		return apperr.ErrStaleSession
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		c.log.Warn("discarding profile received after invalidation",
			slog.Uint64("request_epoch", epoch))
		return apperr.ErrStaleSession
	}

	if err := c.storage.Set(ctx, c.key, p, c.ttl); err != nil {
		return err
	}
	c.profile = &p
	c.epoch = epoch
	return nil
}
