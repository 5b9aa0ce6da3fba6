// Package lookup отдаёт адрес по CEP для автозаполнения формы адреса.
package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/postalcode"
)

type Service interface {
	Lookup(ctx context.Context, code string) (postalcode.Result, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.postalcode.lookup"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	zip := chi.URLParam(r, "zip")
	res, err := h.service.Lookup(r.Context(), zip)
	switch {
	case errors.Is(err, postalcode.ErrInvalidCode):
		log.Error("invalid postal code", slog.String("zip", zip))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("postal code must have 8 digits"))
		return
	case errors.Is(err, postalcode.ErrNotFound):
		log.Info("postal code not found", slog.String("zip", zip))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("postal code not found"))
		return
	case err != nil:
		log.Error("postal code lookup failed", sl.Err(err))
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, response.Error("postal code service unavailable"))
		return
	}

	draft := models.AddressDraft{ZipCode: res.CEP}
	res.Apply(&draft)
	render.JSON(w, r, response.OKWithData(draft))
}
