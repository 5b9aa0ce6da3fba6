// Package create реализует HTTP-обработчик создания адреса.
//
// После успешного создания список перечитывается с сервера, и клиент получает
// свежую страницу: ID новой записи назначает сервер.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/address-dashboard/internal/http/handlers/address/list"
	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/services/address"
)

// Service создаёт адрес и перечитывает список.
type Service interface {
	Create(ctx context.Context, draft models.AddressDraft) error
	List(ctx context.Context, opts address.ListOptions) (*models.AddressPage, error)
	Snapshot() (*models.AddressPage, bool)
}

// Handler обрабатывает POST /addresses.
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
	const op = "handlers.address.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var draft models.AddressDraft
	if err := render.DecodeJSON(r.Body, &draft); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(draft); err != nil {
		log.Error("validation failed", sl.Err(err))
		var verrs validator.ValidationErrors
		errors.As(err, &verrs)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	if err := h.service.Create(r.Context(), draft); err != nil {
		log.Error("failed to create address", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error(response.MessageFor(err)))
		return
	}
	log.Info("address created")

	page, err := h.service.List(r.Context(), address.ListOptions{})
	if err != nil {
		log.Error("address created but list reload failed", sl.Err(err))
		list.ReloadFailed(w, r, h.service, "address created", err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.OKWithData(list.NewView(page)))
}
