// Package surface отдаёт состояние страницы входа.
package surface

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/address-dashboard/internal/http/response"
)

// Session источник признака аутентификации.
type Session interface {
	IsAuthenticated() bool
}

// State состояние страницы входа.
type State struct {
	Authenticated bool   `json:"authenticated"`
	SignIn        string `json:"signIn"`
	SignUp        string `json:"signUp"`
}

type Handler struct {
	log     *slog.Logger
	session Session
}

func New(log *slog.Logger, session Session) *Handler {
	return &Handler{log: log, session: session}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.surface"
	authenticated := h.session != nil && h.session.IsAuthenticated()
	h.log.Debug("sign in surface requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("authenticated", authenticated),
	)
	render.JSON(w, r, response.OKWithData(State{
		Authenticated: authenticated,
		SignIn:        "/auth/signin",
		SignUp:        "/auth/signup",
	}))
}
