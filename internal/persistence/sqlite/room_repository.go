package sqlite

import (
	"context"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// UpsertRoom inserts a room or refreshes its label. Used to seed the
// configured catalog on startup.
func (s *Storage) UpsertRoom(ctx context.Context, room persistence.Room) error {
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, label, created_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET label = excluded.label`,
		room.ID, room.Label, room.CreatedAt.Format(time.RFC3339),
	)
	return mapError(err)
}

// ListRooms returns the catalog ordered by id.
func (s *Storage) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, created_at FROM rooms ORDER BY id")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []persistence.Room
	for rows.Next() {
		var room persistence.Room
		var createdAt string
		if err := rows.Scan(&room.ID, &room.Label, &createdAt); err != nil {
			return nil, mapError(err)
		}
		room.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, room)
	}
	return out, rows.Err()
}
