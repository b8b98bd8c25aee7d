package application

import "time"

// Principal represents the authenticated operator invoking a service method.
type Principal struct {
	UserID   string
	Username string
	IsAdmin  bool
}

// ReservationInput captures caller provided reservation fields.
type ReservationInput struct {
	Room      string
	Date      string
	Start     string
	End       string
	Requester string
	Sector    string
	Reason    string
}

// CreateReservationParams wraps the data required to create a reservation.
type CreateReservationParams struct {
	Principal Principal
	Input     ReservationInput
}

// UpdateReservationParams wraps the data required to edit a reservation.
type UpdateReservationParams struct {
	Principal     Principal
	ReservationID int64
	Input         ReservationInput
}

// DeleteReservationParams wraps the data required to remove a reservation.
// Confirm must be set explicitly; the service refuses unconfirmed deletes.
type DeleteReservationParams struct {
	Principal     Principal
	ReservationID int64
	Confirm       bool
}

// SearchReservationsParams filters and paginates the reservation history.
type SearchReservationsParams struct {
	// Term matches requester, sector, or date substrings, case insensitive.
	Term string
	// Room restricts results to one room when non-empty.
	Room string
	// Page is 1-based; out-of-range pages are clamped.
	Page     int
	PageSize int
}

// Room is a bookable room with its display label.
type Room struct {
	ID    string
	Label string
}

// User represents an operator account.
type User struct {
	ID       string
	Username string
	IsAdmin  bool
}

// UserCredentials models the authentication attributes stored for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// Session represents an authenticated session issued to an operator.
type Session struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// AuthenticateParams captures a login attempt.
type AuthenticateParams struct {
	Username string
	Password string
}

// AuthenticateResult captures the outcome of a successful login.
type AuthenticateResult struct {
	User    User
	Session Session
}
