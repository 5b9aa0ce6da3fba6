package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/list"
	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/services/address"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts address.ListOptions) (*models.AddressPage, error)
	Snapshot() (*models.AddressPage, bool)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("empty address id")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete address", sl.Err(err), slog.String("address_id", id))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error(response.MessageFor(err)))
		return
	}
	log.Info("address deleted", slog.String("address_id", id))

	page, err := h.service.List(r.Context(), address.ListOptions{})
	if err != nil {
		log.Error("address deleted but list reload failed", sl.Err(err))
		list.ReloadFailed(w, r, h.service, "address deleted", err)
		return
	}
	render.JSON(w, r, response.OKWithData(list.NewView(page)))
}
