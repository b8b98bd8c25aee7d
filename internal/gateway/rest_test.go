package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/room-reservations/internal/booking"
)

func newTestServer(t *testing.T) (*httptest.Server, *RESTGateway) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["usuario"] != "admin" || req["contrasena"] != "secreto" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "El usuario o la contraseña no son correctos."})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/reservas", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Debe iniciar sesión."})
			return
		}
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode([]map[string]any{{
				"id": 1, "sala": "A", "date": "2026-09-07", "start": "09:00", "end": "10:00",
				"persona": "Lucía Pérez", "area": "Sistemas", "motivo": "Reserva de sala",
			}})
		case http.MethodPost:
			var dto map[string]any
			_ = json.NewDecoder(r.Body).Decode(&dto)
			dto["id"] = 42
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(dto)
		}
	})
	mux.HandleFunc("/api/reservas/42", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			var dto map[string]any
			_ = json.NewDecoder(r.Body).Decode(&dto)
			_ = json.NewEncoder(w).Encode(dto)
		case http.MethodDelete:
			if r.URL.Query().Get("confirmar") != "true" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Debe confirmar la eliminación de la reserva."})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/api/reservas/9", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "La sala ya está reservada en ese horario (09:00 a 10:00).",
			"errors":  map[string]string{"time": "solapamiento"},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, NewRESTGateway(server.URL, server.Client(), nil)
}

func TestAuthenticate(t *testing.T) {
	_, gw := newTestServer(t)

	if err := gw.Authenticate(context.Background(), "admin", "mal"); err == nil {
		t.Fatal("Authenticate(bad password) error = nil, want failure")
	}
	if err := gw.Authenticate(context.Background(), "admin", "secreto"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
}

func TestFetchReservations(t *testing.T) {
	_, gw := newTestServer(t)

	if _, err := gw.FetchReservations(context.Background()); err == nil {
		t.Fatal("FetchReservations() before login error = nil, want unauthorized")
	}

	if err := gw.Authenticate(context.Background(), "admin", "secreto"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	reservations, err := gw.FetchReservations(context.Background())
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(reservations) != 1 || reservations[0].Requester != "Lucía Pérez" {
		t.Errorf("reservations = %+v", reservations)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	_, gw := newTestServer(t)
	if err := gw.Authenticate(context.Background(), "admin", "secreto"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	created, err := gw.CreateReservation(context.Background(), booking.Reservation{
		Room: "A", Date: "2026-09-07", Start: "11:00", End: "12:00",
		Requester: "Marcos Díaz", Sector: "Ventas", Reason: "Reserva de sala",
	})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	if created.ID != 42 {
		t.Errorf("created.ID = %d, want the server-assigned 42", created.ID)
	}

	created.Start = "14:00"
	updated, err := gw.UpdateReservation(context.Background(), created)
	if err != nil {
		t.Fatalf("UpdateReservation() error = %v", err)
	}
	if updated.Start != "14:00" {
		t.Errorf("updated.Start = %s, want 14:00", updated.Start)
	}

	if err := gw.DeleteReservation(context.Background(), 42); err != nil {
		t.Fatalf("DeleteReservation() error = %v", err)
	}
}

func TestServerErrorsCarryTheLocalizedMessage(t *testing.T) {
	_, gw := newTestServer(t)
	if err := gw.Authenticate(context.Background(), "admin", "secreto"); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	_, err := gw.UpdateReservation(context.Background(), booking.Reservation{ID: 9})
	if err == nil {
		t.Fatal("UpdateReservation(conflict) error = nil")
	}
	if !strings.Contains(err.Error(), "La sala ya está reservada") {
		t.Errorf("error = %v, want the server's message", err)
	}
	if !strings.Contains(err.Error(), "solapamiento") {
		t.Errorf("error = %v, want field details attached", err)
	}
}
