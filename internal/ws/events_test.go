package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/example/room-reservations/internal/booking"
)

func dialTestHub(t *testing.T) (*Hub, *Broadcaster, *websocket.Conn) {
	t.Helper()

	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(Handler(hub, nil))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Wait for the hub to register the connection before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.ClientCount() == 0 {
		t.Fatal("client never registered")
	}

	return hub, NewBroadcaster(hub, nil), conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("invalid event payload %s: %v", payload, err)
	}
	return event
}

func TestBroadcasterDeliversEvents(t *testing.T) {
	_, broadcaster, conn := dialTestHub(t)

	reservation := booking.Reservation{
		ID: 7, Room: "A", Date: "2026-09-07", Start: "09:00", End: "10:00",
		Requester: "Lucía Pérez", Sector: "Sistemas", Reason: "Reserva de sala",
	}

	broadcaster.ReservationCreated(reservation)
	event := readEvent(t, conn)
	if event.Type != "reserva_creada" {
		t.Errorf("event.Type = %q, want reserva_creada", event.Type)
	}
	if event.Reservation == nil || event.Reservation.Room != "A" || event.Reservation.Requester != "Lucía Pérez" {
		t.Errorf("event.Reservation = %+v", event.Reservation)
	}

	broadcaster.ReservationUpdated(reservation)
	if event := readEvent(t, conn); event.Type != "reserva_actualizada" {
		t.Errorf("event.Type = %q, want reserva_actualizada", event.Type)
	}

	broadcaster.ReservationDeleted(7)
	event = readEvent(t, conn)
	if event.Type != "reserva_eliminada" || event.ID != 7 {
		t.Errorf("event = %+v, want deletion of id 7", event)
	}
}

func TestHubShutdownReleasesClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	cancel()

	select {
	case <-hub.done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub never shut down")
	}

	finished := make(chan struct{})
	var client *Client
	go func() {
		client = newClient()
		hub.add(client)
		hub.remove(client)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("add/remove blocked after shutdown")
	}

	if _, ok := <-client.send; ok {
		t.Error("send channel still open after shutdown, want closed so the pumps exit")
	}
}

func TestBroadcasterWithoutHubIsInert(t *testing.T) {
	var b *Broadcaster
	b.ReservationDeleted(1)

	b = NewBroadcaster(nil, nil)
	b.ReservationCreated(booking.Reservation{ID: 1})
}
