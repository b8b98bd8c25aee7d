package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// CreateSession stores an issued token.
func (s *Storage) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at, created_at, revoked_at)
		VALUES (?, ?, ?, ?, NULL)`,
		session.Token, session.UserID,
		session.ExpiresAt.UTC().Format(time.RFC3339), session.CreatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetSession fetches a session by token.
func (s *Storage) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT token, user_id, expires_at, created_at, revoked_at
		FROM sessions WHERE token = ?`, token)

	var session persistence.Session
	var expiresAt, createdAt string
	var revokedAt sql.NullString
	if err := row.Scan(&session.Token, &session.UserID, &expiresAt, &createdAt, &revokedAt); err != nil {
		return persistence.Session{}, mapError(err)
	}
	session.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)
	session.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if revokedAt.Valid {
		t, err := time.Parse(time.RFC3339, revokedAt.String)
		if err == nil {
			session.RevokedAt = &t
		}
	}
	return session, nil
}

// RevokeSession marks a token as revoked.
func (s *Storage) RevokeSession(ctx context.Context, token string, revokedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET revoked_at = ? WHERE token = ? AND revoked_at IS NULL",
		revokedAt.UTC().Format(time.RFC3339), token,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// DeleteExpiredSessions drops tokens that expired before the reference
// time and reports how many were removed.
func (s *Storage) DeleteExpiredSessions(ctx context.Context, reference time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE expires_at < ?",
		reference.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, mapError(err)
	}
	return res.RowsAffected()
}
