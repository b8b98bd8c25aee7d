// Package testfixtures provides deterministic stand-ins for the clock,
// token generation, and the persistence gateway used across service and
// handler tests.
package testfixtures

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/booking"
)

// Clock is a controllable time source for tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at the given instant.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fixed instant.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to the given instant.
func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// TokenGenerator yields a predictable sequence of tokens.
type TokenGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewTokenGenerator returns a generator producing prefix-1, prefix-2, ...
func NewTokenGenerator(prefix string) *TokenGenerator {
	return &TokenGenerator{prefix: prefix}
}

// Generate returns the next token in the sequence.
func (g *TokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

// ReservationBuilder constructs reservations with sensible defaults so
// tests only spell out the fields they care about.
type ReservationBuilder struct {
	reservation booking.Reservation
}

// NewReservation starts a builder with defaults in room A on 2026-09-07.
func NewReservation(id int64) *ReservationBuilder {
	return &ReservationBuilder{reservation: booking.Reservation{
		ID:        id,
		Room:      "A",
		Date:      "2026-09-07",
		Start:     "09:00",
		End:       "10:00",
		Requester: "Lucía Pérez",
		Sector:    "Sistemas",
		Reason:    "Reserva de sala",
	}}
}

func (b *ReservationBuilder) Room(room string) *ReservationBuilder {
	b.reservation.Room = room
	return b
}

func (b *ReservationBuilder) Date(date string) *ReservationBuilder {
	b.reservation.Date = date
	return b
}

func (b *ReservationBuilder) Times(start, end string) *ReservationBuilder {
	b.reservation.Start = start
	b.reservation.End = end
	return b
}

func (b *ReservationBuilder) Requester(name string) *ReservationBuilder {
	b.reservation.Requester = name
	return b
}

func (b *ReservationBuilder) Sector(sector string) *ReservationBuilder {
	b.reservation.Sector = sector
	return b
}

func (b *ReservationBuilder) Reason(reason string) *ReservationBuilder {
	b.reservation.Reason = reason
	return b
}

// Build returns the assembled reservation.
func (b *ReservationBuilder) Build() booking.Reservation {
	return b.reservation
}

// Gateway is an in-memory persistence gateway with scriptable failures.
// Set FailNext* before a call to make that call return the given error
// once; Block can hold a call open until released to exercise in-flight
// behavior.
type Gateway struct {
	mu      sync.Mutex
	nextID  int64
	entries map[int64]booking.Reservation

	FailNextFetch  error
	FailNextCreate error
	FailNextUpdate error
	FailNextDelete error

	// CreateBarrier, when non-nil, is closed-waited inside
	// CreateReservation after the lock is dropped, letting a test keep
	// the call in flight.
	CreateBarrier chan struct{}

	CreateCalls int
	UpdateCalls int
	DeleteCalls int
}

// NewGateway returns an empty gateway seeded with the given reservations.
func NewGateway(seed ...booking.Reservation) *Gateway {
	g := &Gateway{entries: make(map[int64]booking.Reservation)}
	for _, r := range seed {
		g.entries[r.ID] = r
		if r.ID > g.nextID {
			g.nextID = r.ID
		}
	}
	return g
}

func (g *Gateway) FetchReservations(ctx context.Context) ([]booking.Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.FailNextFetch; err != nil {
		g.FailNextFetch = nil
		return nil, err
	}
	out := make([]booking.Reservation, 0, len(g.entries))
	for _, r := range g.entries {
		out = append(out, r)
	}
	return out, nil
}

func (g *Gateway) CreateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	g.mu.Lock()
	g.CreateCalls++
	barrier := g.CreateBarrier
	g.mu.Unlock()

	if barrier != nil {
		select {
		case <-barrier:
		case <-ctx.Done():
			return booking.Reservation{}, ctx.Err()
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.FailNextCreate; err != nil {
		g.FailNextCreate = nil
		return booking.Reservation{}, err
	}
	g.nextID++
	r.ID = g.nextID
	g.entries[r.ID] = r
	return r, nil
}

func (g *Gateway) UpdateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.UpdateCalls++
	if err := g.FailNextUpdate; err != nil {
		g.FailNextUpdate = nil
		return booking.Reservation{}, err
	}
	if _, ok := g.entries[r.ID]; !ok {
		return booking.Reservation{}, fmt.Errorf("reservation %d not found", r.ID)
	}
	g.entries[r.ID] = r
	return r, nil
}

func (g *Gateway) DeleteReservation(ctx context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.DeleteCalls++
	if err := g.FailNextDelete; err != nil {
		g.FailNextDelete = nil
		return err
	}
	if _, ok := g.entries[id]; !ok {
		return fmt.Errorf("reservation %d not found", id)
	}
	delete(g.entries, id)
	return nil
}

// Stored returns a copy of the persisted entry, if present.
func (g *Gateway) Stored(id int64) (booking.Reservation, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.entries[id]
	return r, ok
}

// Count returns how many reservations the gateway holds.
func (g *Gateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// StaticRooms is a RoomCatalog accepting a fixed id set.
type StaticRooms []string

func (s StaticRooms) RoomExists(ctx context.Context, id string) (bool, error) {
	for _, room := range s {
		if room == id {
			return true, nil
		}
	}
	return false, nil
}
