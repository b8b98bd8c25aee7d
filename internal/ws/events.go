package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/example/room-reservations/internal/booking"
)

// Event is the wire form of one store change.
type Event struct {
	Type        string            `json:"tipo"`
	Reservation *reservationEvent `json:"reserva,omitempty"`
	ID          int64             `json:"id,omitempty"`
}

type reservationEvent struct {
	ID        int64  `json:"id"`
	Room      string `json:"sala"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Requester string `json:"persona"`
	Sector    string `json:"area"`
	Reason    string `json:"motivo"`
}

const (
	eventReservationCreated = "reserva_creada"
	eventReservationUpdated = "reserva_actualizada"
	eventReservationDeleted = "reserva_eliminada"
)

// Broadcaster publishes committed reservation changes to the hub. It only
// ever sees committed state; optimistic entries stay private to the
// originating session.
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

// NewBroadcaster wires a broadcaster to a hub.
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{hub: hub, logger: logger}
}

func (b *Broadcaster) ReservationCreated(r booking.Reservation) {
	b.publish(Event{Type: eventReservationCreated, Reservation: toEvent(r)})
}

func (b *Broadcaster) ReservationUpdated(r booking.Reservation) {
	b.publish(Event{Type: eventReservationUpdated, Reservation: toEvent(r)})
}

func (b *Broadcaster) ReservationDeleted(id int64) {
	b.publish(Event{Type: eventReservationDeleted, ID: id})
}

func (b *Broadcaster) publish(event Event) {
	if b == nil || b.hub == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to encode ws event", "error", err)
		return
	}
	b.hub.Broadcast(payload)
}

func toEvent(r booking.Reservation) *reservationEvent {
	return &reservationEvent{
		ID:        r.ID,
		Room:      r.Room,
		Date:      r.Date,
		Start:     r.Start,
		End:       r.End,
		Requester: r.Requester,
		Sector:    r.Sector,
		Reason:    r.Reason,
	}
}
