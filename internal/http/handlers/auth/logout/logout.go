// Package logout реализует HTTP-обработчик выхода.
//
// Выход всегда завершается: ошибка хранилища токена только логируется,
// сессия к этому моменту уже закрыта.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/middlewarectx"
	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
)

type Service interface {
	SignOut(ctx context.Context) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.SignOut(r.Context()); err != nil {
		log.Error("sign out finished with error", sl.Err(err))
	} else {
		log.Info("signed out")
	}
	render.JSON(w, r, response.OKWithData(map[string]string{"redirect": middlewarectx.SignInPath}))
}
