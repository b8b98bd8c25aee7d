package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// CreateReservation inserts a reservation and returns it with the assigned
// row id.
func (s *Storage) CreateReservation(ctx context.Context, r persistence.Reservation) (persistence.Reservation, error) {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (room_id, date, start_time, end_time, requester, sector, reason, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Room, r.Date, r.Start, r.End, r.Requester, r.Sector, r.Reason,
			r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return mapError(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.ID = id
		return nil
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return r, nil
}

// UpdateReservation replaces the stored fields of an existing reservation.
func (s *Storage) UpdateReservation(ctx context.Context, r persistence.Reservation) (persistence.Reservation, error) {
	r.UpdatedAt = time.Now().UTC()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE reservations
			SET room_id = ?, date = ?, start_time = ?, end_time = ?, requester = ?, sector = ?, reason = ?, updated_at = ?
			WHERE id = ?`,
			r.Room, r.Date, r.Start, r.End, r.Requester, r.Sector, r.Reason,
			r.UpdatedAt.Format(time.RFC3339), r.ID,
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
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return s.GetReservation(ctx, r.ID)
}

// GetReservation fetches one reservation by id.
func (s *Storage) GetReservation(ctx context.Context, id int64) (persistence.Reservation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, date, start_time, end_time, requester, sector, reason, created_at, updated_at
		FROM reservations WHERE id = ?`, id)
	return scanReservation(row)
}

// ListReservations returns all reservations ordered by date, start, id.
func (s *Storage) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, date, start_time, end_time, requester, sector, reason, created_at, updated_at
		FROM reservations ORDER BY date, start_time, id`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var out []persistence.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteReservation removes a reservation by id.
func (s *Storage) DeleteReservation(ctx context.Context, id int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ?", id)
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
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var r persistence.Reservation
	var createdAt, updatedAt string
	err := row.Scan(&r.ID, &r.Room, &r.Date, &r.Start, &r.End, &r.Requester, &r.Sector, &r.Reason, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}
