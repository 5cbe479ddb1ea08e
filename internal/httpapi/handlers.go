package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/stacktactoe-backend/internal/archive"
	"github.com/DoyleJ11/stacktactoe-backend/internal/hub"
)

const lookupTimeout = 2 * time.Second

// History is implemented by *archive.Store.
type History interface {
	Recent(ctx context.Context, roomID string, limit int) ([]archive.MatchRecord, error)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func CountRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
		defer cancel()
		n, err := h.Count(ctx)
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Count int `json:"count"`
		}{Count: n})
	}
}

// GetRoom returns the room's current snapshot.
func GetRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), lookupTimeout)
		defer cancel()

		rm, err := h.Get(ctx, chi.URLParam(r, "id"))
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "unavailable"})
			return
		}
		if rm == nil {
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
			return
		}
		v, err := rm.State(ctx)
		if err != nil {
			// Deleted between lookup and read.
			writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
			return
		}
		writeJSON(w, http.StatusOK, v.Snapshot)
	}
}

// RoomHistory lists the most recent finished matches of a room.
func RoomHistory(store History, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 100 {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_limit"})
				return
			}
			limit = n
		}

		records, err := store.Recent(r.Context(), chi.URLParam(r, "id"), limit)
		if err != nil {
			log.Error("history lookup failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
			return
		}
		if records == nil {
			records = []archive.MatchRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}
