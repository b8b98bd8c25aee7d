package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// RouterConfig collects the handlers mounted on the API router.
type RouterConfig struct {
	Auth         *AuthHandler
	Reservations *ReservationHandler
	Rooms        *RoomHandler
	// Events, when set, is mounted at /api/ws for the change feed. It sits
	// inside the session guard like every other API endpoint.
	Events   http.Handler
	Sessions SessionValidator
	Logger   *slog.Logger
}

// NewRouter assembles the API. Everything under /api except the login
// endpoint requires a valid session.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth != nil {
			r.Post("/auth/login", cfg.Auth.Login)
		}

		r.Group(func(r chi.Router) {
			if cfg.Sessions != nil {
				r.Use(RequireSession(cfg.Sessions, cfg.Logger))
			}

			if cfg.Auth != nil {
				r.Post("/auth/logout", cfg.Auth.Logout)
			}
			if cfg.Reservations != nil {
				r.Get("/reservas", cfg.Reservations.List)
				r.Post("/reservas", cfg.Reservations.Create)
				r.Get("/reservas/historial", cfg.Reservations.Search)
				r.Put("/reservas/{id}", cfg.Reservations.Update)
				r.Delete("/reservas/{id}", cfg.Reservations.Delete)
			}
			if cfg.Rooms != nil {
				r.Get("/salas", cfg.Rooms.List)
				r.Get("/salas/{sala}/semana", cfg.Rooms.Week)
			}
			if cfg.Events != nil {
				r.Handle("/ws", cfg.Events)
			}
		})
	})

	return r
}
