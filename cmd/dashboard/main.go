// Package main дашборд адресов: вход в удалённый API, профиль и список адресов.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/address-dashboard/internal/app/dashboard"
	"github.com/magabrotheeeer/address-dashboard/internal/config"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/logger"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	log := logger.Setup(cfg.Env)

	log.Info("starting address-dashboard", slog.String("env", cfg.Env), slog.String("api", cfg.BaseURL))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := dashboard.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize app", sl.Err(err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("app stopped with error", sl.Err(err))
		os.Exit(1)
	}

	log.Info("address-dashboard stopped gracefully")
}
