// Package gateway implements the persistence boundary over the
// reservation server's REST API. The command line client plugs it into
// the same lifecycle controller the server runs against its database.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/booking"
)

// RESTGateway talks to a reservation server. Authenticate must succeed
// before any reservation call; the bearer token is sent on every request.
type RESTGateway struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
	token   string
}

// NewRESTGateway points the gateway at a server, e.g. "http://localhost:3001".
func NewRESTGateway(baseURL string, client *http.Client, logger *slog.Logger) *RESTGateway {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RESTGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

type reservationDTO struct {
	ID        int64  `json:"id"`
	Room      string `json:"sala"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Requester string `json:"persona"`
	Sector    string `json:"area"`
	Reason    string `json:"motivo"`
}

func (d reservationDTO) toReservation() booking.Reservation {
	return booking.Reservation(d)
}

func fromReservation(r booking.Reservation) reservationDTO {
	return reservationDTO(r)
}

type loginRequest struct {
	Username string `json:"usuario"`
	Password string `json:"contrasena"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type serverError struct {
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors"`
}

// Authenticate logs in and stores the bearer token for later calls.
func (g *RESTGateway) Authenticate(ctx context.Context, username, password string) error {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeServerError(resp)
	}

	var login loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	if login.Token == "" {
		return fmt.Errorf("login response carried no token")
	}
	g.token = login.Token
	return nil
}

// FetchReservations downloads the full reservation set.
func (g *RESTGateway) FetchReservations(ctx context.Context) ([]booking.Reservation, error) {
	resp, err := g.do(ctx, http.MethodGet, "/api/reservas", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeServerError(resp)
	}

	var dtos []reservationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("decode reservations: %w", err)
	}
	out := make([]booking.Reservation, len(dtos))
	for i, dto := range dtos {
		out[i] = dto.toReservation()
	}
	return out, nil
}

// CreateReservation posts a new reservation and returns the record with
// the server-assigned id.
func (g *RESTGateway) CreateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	resp, err := g.do(ctx, http.MethodPost, "/api/reservas", fromReservation(r))
	if err != nil {
		return booking.Reservation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return booking.Reservation{}, decodeServerError(resp)
	}

	var dto reservationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return booking.Reservation{}, fmt.Errorf("decode created reservation: %w", err)
	}
	return dto.toReservation(), nil
}

// UpdateReservation replaces the record with the given id.
func (g *RESTGateway) UpdateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	resp, err := g.do(ctx, http.MethodPut, fmt.Sprintf("/api/reservas/%d", r.ID), fromReservation(r))
	if err != nil {
		return booking.Reservation{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return booking.Reservation{}, decodeServerError(resp)
	}

	var dto reservationDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return booking.Reservation{}, fmt.Errorf("decode updated reservation: %w", err)
	}
	return dto.toReservation(), nil
}

// DeleteReservation removes the record with the given id. Confirmation
// already happened on the client; the flag is always sent.
func (g *RESTGateway) DeleteReservation(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/reservas/%d?%s", id, url.Values{"confirmar": {"true"}}.Encode())
	resp, err := g.do(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return decodeServerError(resp)
	}
	return nil
}

func (g *RESTGateway) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func decodeServerError(resp *http.Response) error {
	var serr serverError
	if err := json.NewDecoder(resp.Body).Decode(&serr); err != nil || serr.Message == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if len(serr.Errors) > 0 {
		details := make([]string, 0, len(serr.Errors))
		for field, msg := range serr.Errors {
			details = append(details, field+": "+msg)
		}
		return fmt.Errorf("%s (%s)", serr.Message, strings.Join(details, "; "))
	}
	return fmt.Errorf("%s", serr.Message)
}
