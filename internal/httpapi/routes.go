package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/DoyleJ11/stacktactoe-backend/internal/hub"
	"github.com/DoyleJ11/stacktactoe-backend/internal/ws"
)

type Options struct {
	WS     ws.Options
	Logger *zap.Logger
	// History is nil when no archive is configured.
	History History
}

func SetupRoutes(h *hub.Hub, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.WS.Logger == nil {
		opts.WS.Logger = opts.Logger
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	// Long-lived, so no request timeout.
	r.Get("/ws", ws.Handler(h, opts.WS))

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))

		r.Get("/healthz", Healthz)
		r.Get("/rooms", CountRooms(h))
		r.Get("/rooms/{id}", GetRoom(h))
		if opts.History != nil {
			r.Get("/rooms/{id}/history", RoomHistory(opts.History, opts.Logger))
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	})
	return r
}
