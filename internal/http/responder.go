package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/logging"
)

var (
	errBadRequestBody       = errors.New("El formato de la solicitud no es válido.")
	errInvalidReservationID = errors.New("El identificador de la reserva no es válido.")
	errMissingSessionToken  = errors.New("Debe indicar el token de autenticación.")
	errInvalidWeekReference = errors.New("La fecha de referencia no es válida. Use el formato aaaa-mm-dd.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "No tiene permisos para realizar esta operación.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "No se encontró el recurso solicitado."})
	case errors.Is(err, application.ErrDeleteNotConfirmed):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: "Debe confirmar la eliminación de la reserva."})
	case errors.Is(err, application.ErrOperationInFlight):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "La reserva tiene una operación pendiente. Intente nuevamente."})
	case errors.Is(err, application.ErrCancelled):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "La operación fue cancelada."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Los datos ingresados contienen errores.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}
		var cErr *application.ConflictError
		if errors.As(err, &cErr) {
			c := cErr.Conflicting
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "RESERVATION_CONFLICT",
				Message:   "La sala ya está reservada en ese horario (" + c.Start + " a " + c.End + ").",
				Conflict:  newReservationPayload(c),
			})
			return
		}
		var pErr *application.PersistenceError
		if errors.As(err, &pErr) {
			r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{Message: "No se pudo guardar el cambio. Intente nuevamente."})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocurrió un error interno en el servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "La solicitud no es correcta."
	case http.StatusUnauthorized:
		return "Debe iniciar sesión."
	case http.StatusForbidden:
		return "No tiene permisos para realizar esta operación."
	case http.StatusNotFound:
		return "No se encontró el recurso solicitado."
	case http.StatusConflict:
		return "La solicitud entra en conflicto con el estado actual."
	case http.StatusUnprocessableEntity:
		return "Los datos ingresados contienen errores."
	default:
		return "Ocurrió un error interno en el servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "room is required":
		return "Debe indicar la sala."
	case "room does not exist":
		return "La sala indicada no existe."
	case "room id is required":
		return "Debe indicar el identificador de la sala."
	case "requester is required":
		return "Debe indicar quién solicita la reserva."
	case "sector is required":
		return "Debe indicar el área solicitante."
	case "date is required":
		return "Debe indicar la fecha."
	case "date must be yyyy-mm-dd":
		return "La fecha debe tener el formato aaaa-mm-dd."
	case "date must not be in the past":
		return "La fecha no puede ser anterior a hoy."
	case "start is required":
		return "Debe indicar la hora de inicio."
	case "start must be HH:MM":
		return "La hora de inicio debe tener el formato HH:MM."
	case "start is before the bookable window opens":
		return "La hora de inicio es anterior al horario de apertura."
	case "start is after the bookable window closes":
		return "La hora de inicio es posterior al horario de cierre."
	case "start is not aligned to the slot grid":
		return "La hora de inicio debe coincidir con un intervalo del calendario."
	case "end is required":
		return "Debe indicar la hora de fin."
	case "end must be HH:MM":
		return "La hora de fin debe tener el formato HH:MM."
	case "end is after the bookable window closes":
		return "La hora de fin es posterior al horario de cierre."
	case "end is not aligned to the slot grid":
		return "La hora de fin debe coincidir con un intervalo del calendario."
	case "end must be after start":
		return "La hora de fin debe ser posterior a la de inicio."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string              `json:"error_code,omitempty"`
	Message   string              `json:"message"`
	Errors    map[string]string   `json:"errors,omitempty"`
	Conflict  *reservationPayload `json:"conflicto,omitempty"`
}
