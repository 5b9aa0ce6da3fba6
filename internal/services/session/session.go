// Package session реализует состояние аутентификации дашборда.
//
// Менеджер хранит одно из двух состояний - анонимное или аутентифицированное.
// Начальное состояние вычисляется один раз при старте по сохранённому токену.
// Сетевых вызовов менеджер не делает: вход выполняется после того, как
// удалённый API уже вернул токен.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/services/credential"
)

// State состояние сессии.
type State int

const (
	// Anonymous токена нет или он недействителен.
	Anonymous State = iota
	// Authenticated есть действительный токен.
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// CredentialStore хранилище токена, которым владеет менеджер.
type CredentialStore interface {
	Set(ctx context.Context, token string) error
	Get(ctx context.Context) (string, bool, error)
	Remove(ctx context.Context) error
	IsValid(ctx context.Context) bool
}

// Manager менеджер сессии. Единственный, кто пишет токен.
type Manager struct {
	store CredentialStore
	log   *slog.Logger
	now   func() time.Time

	mu          sync.RWMutex
	state       State
	token       string
	epoch       uint64
	logoutHooks []func()
	observers   map[int]func(bool)
	nextID      int
}

// Option настраивает Manager.
type Option func(*Manager)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New читает сохранённый токен и вычисляет начальное состояние.
// Присутствующий, но истёкший или нечитаемый токен даёт Anonymous и удаляется.
func New(ctx context.Context, store CredentialStore, log *slog.Logger, opts ...Option) *Manager {
	const op = "session.New"
	log = log.With(sl.Op(op))

	m := &Manager{
		store:     store,
		log:       log,
		now:       time.Now,
		state:     Anonymous,
		observers: make(map[int]func(bool)),
	}
	for _, opt := range opts {
		opt(m)
	}

	token, found, err := store.Get(ctx)
	if err != nil {
		log.Warn("failed to read persisted credential, starting anonymous", sl.Err(err))
		return m
	}
	if !found {
		log.Debug("no persisted credential")
		return m
	}
	if !store.IsValid(ctx) {
		log.Info("persisted credential is expired or undecodable, starting anonymous")
		if err := store.Remove(ctx); err != nil {
			log.Warn("failed to remove stale credential", sl.Err(err))
		}
		return m
	}

	m.state = Authenticated
	m.token = token
	m.epoch = 1
	log.Info("restored authenticated session")
	return m
}

// Login сохраняет токен и переводит сессию в Authenticated.
// Нечитаемый или истёкший токен не сохраняется.
// Вход поверх открытой сессии сначала сбрасывает состояние прежнего
// пользователя теми же хуками, что и Logout.
func (m *Manager) Login(ctx context.Context, token string) error {
	const op = "session.Login"
	if !credential.Valid(token, m.now()) {
		return fmt.Errorf("%s: %w", op, apperr.ErrInvalidCredential)
	}
	if err := m.store.Set(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	replaced := m.state == Authenticated
	m.state = Authenticated
	m.token = token
	m.epoch++
	hooks := append([]func(){}, m.logoutHooks...)
	m.mu.Unlock()

	if replaced {
		m.log.Info("session replaced by a new sign in")
		for _, hook := range hooks {
			hook()
		}
	}

	m.log.Info("session authenticated")
	m.notify(true)
	return nil
}

// Logout удаляет токен, переводит сессию в Anonymous и вызывает хуки выхода
// (сброс кеша профиля и снимка адресов). Ошибка хранилища возвращается,
// но переход и хуки выполняются в любом случае.
func (m *Manager) Logout(ctx context.Context) error {
	const op = "session.Logout"
	removeErr := m.store.Remove(ctx)

	m.mu.Lock()
	hooks := m.endLocked()
	m.mu.Unlock()

	m.finish(hooks)
	m.log.Info("session ended")

	if removeErr != nil {
		m.log.Error("failed to remove credential on logout", sl.Err(removeErr))
		return fmt.Errorf("%s: %w", op, removeErr)
	}
	return nil
}

// endLocked переводит сессию в Anonymous и возвращает хуки выхода.
// Вызывается под m.mu.
func (m *Manager) endLocked() []func() {
	m.state = Anonymous
	m.token = ""
	m.epoch++
	return append([]func(){}, m.logoutHooks...)
}

func (m *Manager) finish(hooks []func()) {
	for _, hook := range hooks {
		hook()
	}
	m.notify(false)
}

// expire завершает сессию, если срок токена истёк. Истёкший токен
// удаляется из хранилища так же, как при Logout.
func (m *Manager) expire() {
	const op = "session.expire"

	m.mu.RLock()
	expired := m.state == Authenticated && !credential.Valid(m.token, m.now())
	m.mu.RUnlock()
	if !expired {
		return
	}

	m.mu.Lock()
	if m.state != Authenticated || credential.Valid(m.token, m.now()) {
		m.mu.Unlock()
		return
	}
	hooks := m.endLocked()
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Remove(ctx); err != nil {
		m.log.Error("failed to remove expired credential", sl.Op(op), sl.Err(err))
	}

	m.finish(hooks)
	m.log.Info("session expired", sl.Op(op))
}

// State возвращает текущее состояние. Истёкший токен завершает сессию
// в момент чтения. Nil-менеджер всегда Anonymous.
func (m *Manager) State() State {
	if m == nil {
		return Anonymous
	}
	m.expire()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// IsAuthenticated сообщает, что сессия аутентифицирована.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == Authenticated
}

// Epoch номер сессии, растёт при каждом входе и выходе.
// По нему отбрасываются ответы, пришедшие после смены сессии.
func (m *Manager) Epoch() uint64 {
	epoch, _ := m.Current()
	return epoch
}

// Current возвращает номер сессии и признак аутентификации одним снимком.
func (m *Manager) Current() (uint64, bool) {
	if m == nil {
		return 0, false
	}
	m.expire()
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.epoch, m.state == Authenticated
}

// OnLogout регистрирует хук, вызываемый синхронно при каждом завершении
// сессии: Logout, истечение токена, вход поверх открытой сессии.
func (m *Manager) OnLogout(hook func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutHooks = append(m.logoutHooks, hook)
}

// Subscribe подписывает fn на изменения isAuthenticated и возвращает отписку.
func (m *Manager) Subscribe(fn func(authenticated bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.observers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

func (m *Manager) notify(authenticated bool) {
	m.mu.RLock()
	observers := make([]func(bool), 0, len(m.observers))
	for _, fn := range m.observers {
		observers = append(observers, fn)
	}
	m.mu.RUnlock()

	for _, fn := range observers {
		fn(authenticated)
	}
}
