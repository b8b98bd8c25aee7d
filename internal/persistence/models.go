package persistence

import "time"

// Reservation is a stored room booking. The integer ID is assigned by the
// store on insert and is the canonical identifier handed back to clients.
type Reservation struct {
	ID        int64
	Room      string
	Date      string
	Start     string
	End       string
	Requester string
	Sector    string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room is a bookable room catalog entry. IDs are opaque short identifiers
// ("A", "B", ...) with a human display label.
type Room struct {
	ID        string
	Label     string
	CreatedAt time.Time
}

// User is an operator account allowed to manage reservations.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
}

// Session is an issued authentication token.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}
