package application

import (
	"context"
	"fmt"
	"log/slog"
)

// RoomRepository abstracts room persistence for the service layer.
type RoomRepository interface {
	UpsertRoom(ctx context.Context, room Room) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// RoomService answers room catalog queries and seeds the configured room
// set at startup. It satisfies RoomCatalog for the reservation service.
type RoomService struct {
	rooms  RoomRepository
	logger *slog.Logger
}

// NewRoomService wires the service dependencies.
func NewRoomService(rooms RoomRepository, logger *slog.Logger) *RoomService {
	return &RoomService{
		rooms:  rooms,
		logger: defaultLogger(logger),
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// Seed upserts the configured rooms so the catalog matches deployment
// configuration on every start. Labels of existing rooms are refreshed.
func (s *RoomService) Seed(ctx context.Context, rooms []Room) error {
	if s == nil || s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	for _, room := range rooms {
		if room.ID == "" {
			vErr := &ValidationError{}
			vErr.add("room", "room id is required")
			return vErr
		}
		if room.Label == "" {
			room.Label = room.ID
		}
		if err := s.rooms.UpsertRoom(ctx, room); err != nil {
			s.loggerWith(ctx, "Seed", "room", room.ID).ErrorContext(ctx, "failed to seed room", "error", err)
			return &PersistenceError{Op: "seed room", Err: err}
		}
	}
	s.loggerWith(ctx, "Seed").InfoContext(ctx, "room catalog seeded", "count", len(rooms))
	return nil
}

// ListRooms returns the catalog ordered by room id.
func (s *RoomService) ListRooms(ctx context.Context) ([]Room, error) {
	if s == nil || s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}

	rooms, err := s.rooms.ListRooms(ctx)
	if err != nil {
		s.loggerWith(ctx, "ListRooms").ErrorContext(ctx, "failed to list rooms", "error", err)
		return nil, &PersistenceError{Op: "list rooms", Err: err}
	}
	return rooms, nil
}

// RoomExists reports whether the catalog contains the given room id.
func (s *RoomService) RoomExists(ctx context.Context, id string) (bool, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return false, err
	}
	for _, room := range rooms {
		if room.ID == id {
			return true, nil
		}
	}
	return false, nil
}
