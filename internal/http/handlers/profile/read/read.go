// Package read отдаёт профиль текущего пользователя.
//
// Профиль читается из кеша без сети; если его нет, он загружается с сервера.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
)

// Service кеш профиля.
type Service interface {
	ReadCached() (models.Profile, bool)
	Refresh(ctx context.Context) (models.Profile, error)
}

// View профиль с подписью роли.
type View struct {
	models.Profile
	RoleLabel string `json:"roleLabel"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	profile, ok := h.service.ReadCached()
	if !ok {
		var err error
		profile, err = h.service.Refresh(r.Context())
		if err != nil {
			log.Error("failed to load profile", sl.Err(err))
			render.Status(r, response.StatusFor(err))
			render.JSON(w, r, response.Error(response.MessageFor(err)))
			return
		}
		log.Debug("profile loaded from remote")
	}

	render.JSON(w, r, response.OKWithData(View{Profile: profile, RoleLabel: models.RoleLabel(profile.Role)}))
}
