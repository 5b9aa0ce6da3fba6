// Package address синхронизирует список адресов с удалённым API.
//
// Список на клиенте - снимок последнего успешного чтения. После любой
// успешной мутации снимок помечается устаревшим, и вызывающий код обязан
// перечитать его через List: локальных оптимистичных правок нет, поэтому
// снимок всегда либо согласован с сервером, либо равен предыдущему
// согласованному снимку. Конкурирующие мутации разрешаются по принципу
// "последняя запись побеждает".
//
// Session.Current может сам завершить сессию с истёкшим токеном и вызвать
// хуки, поэтому под s.mu он не вызывается.
package address

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/magabrotheeeer/address-dashboard/internal/lib/apperr"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

// API клиент удалённого API.
type API interface {
	Call(ctx context.Context, method, path string, body, out any) error
}

// Profiles источник закешированного профиля.
type Profiles interface {
	ReadCached() (models.Profile, bool)
}

// Session состояние сессии, по которому отбрасываются запоздавшие ответы.
type Session interface {
	Current() (epoch uint64, authenticated bool)
	OnLogout(hook func())
}

// ListOptions параметры страницы. Нулевые значения не отправляются.
type ListOptions struct {
	Page int
	Size int
}

func (o ListOptions) query() string {
	q := url.Values{}
	if o.Page > 0 {
		q.Set("page", strconv.Itoa(o.Page))
	}
	if o.Size > 0 {
		q.Set("size", strconv.Itoa(o.Size))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// Synchronizer CRUD-клиент коллекции адресов.
type Synchronizer struct {
	api      API
	profiles Profiles
	session  Session
	log      *slog.Logger

	mu       sync.RWMutex
	snapshot *models.AddressPage
	stale    bool
	epoch    uint64
	// gen растёт при каждом сбросе снимка
	gen uint64
}

// New создаёт синхронизатор. Снимок сбрасывается при выходе из сессии.
func New(api API, profiles Profiles, session Session, log *slog.Logger) *Synchronizer {
	s := &Synchronizer{
		api:      api,
		profiles: profiles,
		session:  session,
		log:      log,
	}
	session.OnLogout(s.reset)
	return s
}

// List читает страницу адресов в области, определённой ролью закешированного профиля.
// Без профиля возвращает apperr.ErrUnauthorized, не обращаясь к сети.
// Успешный ответ целиком заменяет снимок.
func (s *Synchronizer) List(ctx context.Context, opts ListOptions) (*models.AddressPage, error) {
	const op = "address.List"
	profile, ok := s.profiles.ReadCached()
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
	}
	scope := ScopeFor(profile)
	epoch, gen := s.begin()

	var page models.AddressPage
	if err := s.api.Call(ctx, http.MethodGet, scope.Path()+opts.query(), nil, &page); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := page.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	current, ok := s.session.Current()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok || current != epoch || s.gen != gen {
		s.log.Warn("discarding address page received after session change", sl.Op(op))
		return nil, fmt.Errorf("%s: %w", op, apperr.ErrStaleSession)
	}
	s.snapshot = &page
	s.stale = false
	s.epoch = epoch

	s.log.Debug("address page loaded", sl.Op(op),
		slog.String("scope", scope.String()), slog.Int("count", page.NumberOfElements))
	return page.Clone(), nil
}

// Create отправляет POST /address/create. Пустой UserID заполняется из профиля.
// ID новой записи назначает сервер; в снимок она попадёт после List.
func (s *Synchronizer) Create(ctx context.Context, draft models.AddressDraft) error {
	const op = "address.Create"
	if draft.UserID == "" {
		profile, ok := s.profiles.ReadCached()
		if !ok {
			return fmt.Errorf("%s: %w", op, apperr.ErrUnauthorized)
		}
		draft.UserID = profile.ID
	}
	return s.mutate(ctx, op, http.MethodPost, "/address/create", draft)
}

// Update отправляет PUT /address/update: полная замена изменяемых полей по ID.
func (s *Synchronizer) Update(ctx context.Context, patch models.AddressPatch) error {
	const op = "address.Update"
	if patch.ID == "" {
		return fmt.Errorf("%s: address id is required", op)
	}
	return s.mutate(ctx, op, http.MethodPut, "/address/update", patch)
}

// Delete отправляет DELETE /address/{id}.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	const op = "address.Delete"
	if id == "" {
		return fmt.Errorf("%s: address id is required", op)
	}
	return s.mutate(ctx, op, http.MethodDelete, "/address/"+url.PathEscape(id), nil)
}

// Snapshot последний согласованный с сервером снимок и признак того,
// что после него была успешная мутация. Снимок другой или завершённой
// сессии не отдаётся.
func (s *Synchronizer) Snapshot() (*models.AddressPage, bool) {
	epoch, ok := s.session.Current()
	if !ok {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil || s.epoch != epoch {
		return nil, false
	}
	return s.snapshot.Clone(), s.stale
}

func (s *Synchronizer) begin() (epoch, gen uint64) {
	epoch, _ = s.session.Current()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return epoch, s.gen
}

// mutate выполняет мутацию; при ошибке состояние не меняется.
func (s *Synchronizer) mutate(ctx context.Context, op, method, path string, body any) error {
	epoch, gen := s.begin()
	if err := s.api.Call(ctx, method, path, body, nil); err != nil {
		s.log.Error("address mutation failed", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	current, ok := s.session.Current()

	s.mu.Lock()
	defer s.mu.Unlock()
	if ok && current == epoch && s.gen == gen {
		s.stale = true
	}
	s.log.Info("address mutation applied, list is stale", sl.Op(op))
	return nil
}

func (s *Synchronizer) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.stale = false
	s.gen++
}
