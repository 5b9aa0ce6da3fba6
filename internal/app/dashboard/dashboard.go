// Package dashboard собирает дашборд адресов: хранилище сессии в redis,
// клиент удалённого API, сервисы и HTTP-сервер.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/address-dashboard/internal/apiclient"
	"github.com/magabrotheeeer/address-dashboard/internal/cache"
	"github.com/magabrotheeeer/address-dashboard/internal/config"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/postalcode"
	"github.com/magabrotheeeer/address-dashboard/internal/services/address"
	"github.com/magabrotheeeer/address-dashboard/internal/services/auth"
	"github.com/magabrotheeeer/address-dashboard/internal/services/credential"
	"github.com/magabrotheeeer/address-dashboard/internal/services/profile"
	"github.com/magabrotheeeer/address-dashboard/internal/services/session"
)

const postalCodeCacheTTL = 24 * time.Hour

// Deps сервисы, на которых держатся маршруты.
type Deps struct {
	Session     *session.Manager
	Auth        *auth.Service
	Profiles    *profile.Cache
	Addresses   *address.Synchronizer
	PostalCodes *postalcode.Client
	Registry    *prometheus.Registry
	RateLimit   config.RateLimit
}

// Build создаёт сервисы поверх готового redis-хранилища.
// Состояние сессии и профиль читаются из хранилища один раз.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger, store *cache.Cache) (*Deps, error) {
	const op = "dashboard.Build"

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	credentials := credential.New(store, cfg.KeyPrefix, cfg.TokenTTL)
	sess := session.New(ctx, credentials, log)

	api, err := apiclient.New(cfg.BaseURL, credentials,
		apiclient.WithTimeout(cfg.APITimeout),
		apiclient.WithMetrics(apiclient.NewMetrics(reg)),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profiles := profile.New(api, store, sess, cfg.KeyPrefix, cfg.TokenTTL, log)
	if err := profiles.Load(ctx); err != nil {
		log.Warn("failed to load persisted profile", sl.Op(op), sl.Err(err))
	}

	// ViaCEP получает собственный http.Client без bearer-транспорта
	postalCodes := postalcode.NewClient(cfg.PostalCodeURL, cfg.PostalCodeTimeout, log,
		postalcode.WithCache(store, postalCodeCacheTTL))

	return &Deps{
		Session:     sess,
		Auth:        auth.New(api, sess, profiles, log),
		Profiles:    profiles,
		Addresses:   address.New(api, profiles, sess, log),
		PostalCodes: postalCodes,
		Registry:    reg,
		RateLimit:   cfg.RateLimit,
	}, nil
}

// App HTTP-сервер дашборда.
type App struct {
	server *http.Server
	logger *slog.Logger
	cache  *cache.Cache
}

// New подключается к redis и собирает приложение.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "dashboard.New"

	store, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	deps, err := Build(ctx, cfg, logger, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, deps)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		cache:  store,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем мягко останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		_ = a.cache.Close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if cerr := a.cache.Close(); cerr != nil {
			a.logger.Error("failed to close redis", sl.Err(cerr))
		}
		return err
	}
}
