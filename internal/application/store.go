package application

import (
	"sort"

	"github.com/example/room-reservations/internal/booking"
)

// reservationStore is the in-memory reservation set owned exclusively by
// the ReservationService. It is not safe for concurrent use on its own;
// the service serializes access. Readers only ever receive copies.
type reservationStore struct {
	entries map[int64]booking.Reservation
}

func newReservationStore() *reservationStore {
	return &reservationStore{entries: make(map[int64]booking.Reservation)}
}

func (s *reservationStore) replaceAll(reservations []booking.Reservation) {
	s.entries = make(map[int64]booking.Reservation, len(reservations))
	for _, r := range reservations {
		s.entries[r.ID] = r
	}
}

func (s *reservationStore) get(id int64) (booking.Reservation, bool) {
	r, ok := s.entries[id]
	return r, ok
}

func (s *reservationStore) put(r booking.Reservation) {
	s.entries[r.ID] = r
}

func (s *reservationStore) remove(id int64) {
	delete(s.entries, id)
}

// snapshot returns a defensive copy sorted by date, start time, then id so
// readers see a stable order regardless of gateway ordering.
func (s *reservationStore) snapshot() []booking.Reservation {
	out := make([]booking.Reservation, 0, len(s.entries))
	for _, r := range s.entries {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}
