package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/grid"
	"github.com/example/room-reservations/internal/timeutil"
)

type roomService interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
}

type weekGridService interface {
	WeekGrid(ctx context.Context, room string, reference time.Time) (grid.Week, error)
}

// RoomHandler serves the room catalog and per-room week grids.
type RoomHandler struct {
	rooms     roomService
	grids     weekGridService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewRoomHandler(rooms roomService, grids weekGridService, now func() time.Time, logger *slog.Logger) *RoomHandler {
	if now == nil {
		now = time.Now
	}
	base := defaultLogger(logger)
	return &RoomHandler{rooms: rooms, grids: grids, now: now, responder: newResponder(base), logger: base}
}

func (h *RoomHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RoomHandler", operation, attrs...)
}

// List returns the configured rooms.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.rooms == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "failed to list rooms", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]roomPayload, len(rooms))
	for i, room := range rooms {
		payload[i] = roomPayload{ID: room.ID, Label: room.Label}
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// Week returns the weekly grid for one room. The fecha query parameter
// selects the week; it defaults to the current day.
func (h *RoomHandler) Week(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.grids == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	room := chi.URLParam(r, "sala")
	reference := h.now()
	if raw := r.URL.Query().Get("fecha"); raw != "" {
		parsed, err := timeutil.ParseISODate(raw)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidWeekReference)
			return
		}
		reference = parsed
	}

	week, err := h.grids.WeekGrid(r.Context(), room, reference)
	if err != nil {
		h.log(r.Context(), "Week", "room", room).ErrorContext(r.Context(), "failed to build week grid", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, newWeekPayload(week))
}
