// Package update реализует HTTP-обработчик замены полей адреса.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/list"
	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/services/address"
)

// Service обновляет адрес и перечитывает список.
type Service interface {
	Update(ctx context.Context, patch models.AddressPatch) error
	List(ctx context.Context, opts address.ListOptions) (*models.AddressPage, error)
	Snapshot() (*models.AddressPage, bool)
}

// Handler обрабатывает PUT /addresses/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.update"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var patch models.AddressPatch
	if err := render.DecodeJSON(r.Body, &patch); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	// id из пути главнее id из тела
	patch.ID = chi.URLParam(r, "id")

	if err := h.validate.Struct(patch); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if err := h.service.Update(r.Context(), patch); err != nil {
		log.Error("failed to update address", sl.Err(err), slog.String("address_id", patch.ID))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error(response.MessageFor(err)))
		return
	}
	log.Info("address updated", slog.String("address_id", patch.ID))

	page, err := h.service.List(r.Context(), address.ListOptions{})
	if err != nil {
		log.Error("address updated but list reload failed", sl.Err(err))
		list.ReloadFailed(w, r, h.service, "address updated", err)
		return
	}
	render.JSON(w, r, response.OKWithData(list.NewView(page)))
}
