// Package list реализует HTTP-обработчик чтения страницы адресов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
	"github.com/magabrotheeeer/address-dashboard/internal/lib/sl"
	"github.com/magabrotheeeer/address-dashboard/internal/models"
	"github.com/magabrotheeeer/address-dashboard/internal/services/address"
)

// Columns колонки таблицы адресов в порядке отображения.
var Columns = []string{"select", "street", "city", "region", "userName", "userCPF", "actions"}

// Column колонка таблицы с подписью.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// View ответ со страницей адресов и подписями колонок.
// Stale - после страницы была мутация, которую она ещё не отражает.
type View struct {
	Page    *models.AddressPage `json:"page"`
	Columns []Column            `json:"columns"`
	Stale   bool                `json:"stale"`
}

// NewView собирает View для страницы.
func NewView(page *models.AddressPage) View {
	cols := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		cols = append(cols, Column{Key: c, Label: models.ColumnLabel(c)})
	}
	return View{Page: page, Columns: cols}
}

// Snapshotter источник последнего согласованного с сервером снимка.
type Snapshotter interface {
	Snapshot() (*models.AddressPage, bool)
}

// ReloadFailed отвечает на мутацию, после которой список перечитать не удалось:
// статус ошибки перечитывания и последний снимок, помеченный устаревшим.
func ReloadFailed(w http.ResponseWriter, r *http.Request, s Snapshotter, action string, err error) {
	resp := response.Error(action + ", reload failed: " + response.MessageFor(err))
	if page, stale := s.Snapshot(); page != nil {
		view := NewView(page)
		view.Stale = stale
		resp.Data = view
	}
	render.Status(r, response.StatusFor(err))
	render.JSON(w, r, resp)
}

// Service читает страницу адресов.
type Service interface {
	List(ctx context.Context, opts address.ListOptions) (*models.AddressPage, error)
}

// Handler обрабатывает GET /addresses.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ParseOptions читает page и size из query. Пустые значения означают "по умолчанию".
func ParseOptions(r *http.Request) (address.ListOptions, bool) {
	var opts address.ListOptions
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return opts, false
		}
		opts.Page = page
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size <= 0 {
			return opts, false
		}
		opts.Size = size
	}
	return opts, true
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.address.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	opts, ok := ParseOptions(r)
	if !ok {
		log.Error("invalid paging parameters", slog.String("query", r.URL.RawQuery))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid page or size"))
		return
	}

	page, err := h.service.List(r.Context(), opts)
	if err != nil {
		log.Error("failed to list addresses", sl.Err(err))
		render.Status(r, response.StatusFor(err))
		render.JSON(w, r, response.Error(response.MessageFor(err)))
		return
	}

	log.Info("addresses listed", slog.Int("count", page.NumberOfElements))
	render.JSON(w, r, response.OKWithData(NewView(page)))
}
