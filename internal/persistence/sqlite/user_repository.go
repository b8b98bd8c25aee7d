package sqlite

import (
	"context"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// CreateUser stores a new operator account.
func (s *Storage) CreateUser(ctx context.Context, user persistence.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash, boolToInt(user.IsAdmin),
		user.CreatedAt.Format(time.RFC3339),
	)
	return mapError(err)
}

// GetUserByUsername fetches an account by its login name.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users WHERE username = ?`, username)

	var user persistence.User
	var isAdmin int
	var createdAt string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &isAdmin, &createdAt); err != nil {
		return persistence.User{}, mapError(err)
	}
	user.IsAdmin = isAdmin != 0
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return user, nil
}

// GetUserByID fetches an account by its identifier.
func (s *Storage) GetUserByID(ctx context.Context, id string) (persistence.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, is_admin, created_at
		FROM users WHERE id = ?`, id)

	var user persistence.User
	var isAdmin int
	var createdAt string
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &isAdmin, &createdAt); err != nil {
		return persistence.User{}, mapError(err)
	}
	user.IsAdmin = isAdmin != 0
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
