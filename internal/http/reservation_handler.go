package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/booking"
)

type reservationService interface {
	ListReservations(ctx context.Context) []booking.Reservation
	SearchReservations(ctx context.Context, params application.SearchReservationsParams) application.SearchResult
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (booking.Reservation, error)
	UpdateReservation(ctx context.Context, params application.UpdateReservationParams) (booking.Reservation, error)
	DeleteReservation(ctx context.Context, params application.DeleteReservationParams) error
}

// ReservationHandler serves the reservation collection.
type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

// List returns every reservation, sorted by date and start time.
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	reservations := h.service.ListReservations(r.Context())
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationPayloads(reservations))
}

// Search filters the history by free text and room, paginated.
func (h *ReservationHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	params := application.SearchReservationsParams{
		Term: query.Get("q"),
		Room: query.Get("sala"),
	}
	if page := query.Get("pagina"); page != "" {
		params.Page, _ = strconv.Atoi(page)
	}
	if size := query.Get("por_pagina"); size != "" {
		params.PageSize, _ = strconv.Atoi(size)
	}

	result := h.service.SearchReservations(r.Context(), params)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, searchResultPayload{
		Reservations: reservationPayloads(result.Reservations),
		Total:        result.Total,
		Page:         result.Page,
		TotalPages:   result.TotalPages,
	})
}

// Create books a new reservation.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Create", "room", req.Room, "date", req.Date)

	created, err := h.service.CreateReservation(r.Context(), application.CreateReservationParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to create reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", created.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, newReservationPayload(created))
}

// Update edits an existing reservation.
func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Update", "reservation_id", id)

	updated, err := h.service.UpdateReservation(r.Context(), application.UpdateReservationParams{
		Principal:     principal,
		ReservationID: id,
		Input:         req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to update reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, newReservationPayload(updated))
}

// Delete removes a reservation. The confirmar flag mirrors the front
// end's confirmation prompt and must be present.
func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := h.reservationID(w, r)
	if !ok {
		return
	}

	confirm := r.URL.Query().Get("confirmar") == "true"
	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "reservation_id", id)

	err := h.service.DeleteReservation(r.Context(), application.DeleteReservationParams{
		Principal:     principal,
		ReservationID: id,
		Confirm:       confirm,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to delete reservation", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) reservationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return 0, false
	}
	return id, true
}
