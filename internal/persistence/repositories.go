package persistence

import (
	"context"
	"time"
)

// ReservationRepository stores room reservations. CreateReservation assigns
// and returns the canonical record id.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id int64) (Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// RoomRepository stores the open room catalog.
type RoomRepository interface {
	UpsertRoom(ctx context.Context, room Room) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// UserRepository stores operator accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, id string) (User, error)
}

// SessionRepository stores issued authentication tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) error
	DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error)
}
