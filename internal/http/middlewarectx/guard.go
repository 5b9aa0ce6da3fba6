// Package middlewarectx содержит HTTP middleware дашборда.
//
// RouteGuard пускает на защищённые маршруты только при открытой сессии,
// иначе перенаправляет на страницу входа. RateLimit ограничивает частоту
// запросов к тем же маршрутам.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
)

// SignInPath маршрут страницы входа.
const SignInPath = "/auth"

// Session источник признака аутентификации.
type Session interface {
	IsAuthenticated() bool
}

// Decision итог проверки маршрута.
// Replace означает, что заблокированный адрес не должен оставаться в истории навигации.
type Decision struct {
	Allow    bool
	Location string
	Replace  bool
}

// Decide пропускает аутентифицированного пользователя к destination без изменений,
// остальных отправляет на страницу входа с заменой.
func Decide(authenticated bool, destination string) Decision {
	if authenticated {
		return Decision{Allow: true, Location: destination}
	}
	return Decision{Location: SignInPath, Replace: true}
}

// RouteGuard возвращает middleware защищённых маршрутов.
// Без сессии (nil, в том числе nil *session.Manager) запрос считается
// неаутентифицированным.
// Перенаправление с заменой отдаётся как 303 See Other.
func RouteGuard(log *slog.Logger, session Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RouteGuard"

			authenticated := session != nil && session.IsAuthenticated()
			d := Decide(authenticated, r.URL.RequestURI())
			if d.Allow {
				next.ServeHTTP(w, r)
				return
			}

			log.Info("redirecting unauthenticated request",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("destination", r.URL.RequestURI()),
			)
			status := http.StatusFound
			if d.Replace {
				status = http.StatusSeeOther
			}
			http.Redirect(w, r, d.Location, status)
		})
	}
}
