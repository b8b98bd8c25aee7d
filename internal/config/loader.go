package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RoomEntry is one configured room with its display label.
type RoomEntry struct {
	ID    string
	Label string
}

// Config captures environment driven configuration for the reservation server.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionTTL    time.Duration
	AdminUser     string
	AdminPassword string
	Rooms         []RoomEntry
	Opening       string
	Closing       string
	SlotMinutes   int
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to the deployed defaults; required values and
// malformed entries are reported together so operators fix the environment
// in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:   3001,
		SQLiteDSN:  "file:reservas.db?_foreign_keys=on",
		SessionTTL: 12 * time.Hour,
		AdminUser:  "admin",
		Rooms: []RoomEntry{
			{ID: "A", Label: "Sala Grande"},
			{ID: "B", Label: "Sala Chica"},
		},
		Opening:     "08:00",
		Closing:     "20:00",
		SlotMinutes: 30,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("RESERVAS_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "RESERVAS_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("RESERVAS_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("RESERVAS_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "RESERVAS_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if user := strings.TrimSpace(os.Getenv("RESERVAS_ADMIN_USER")); user != "" {
		cfg.AdminUser = user
	}

	if password := strings.TrimSpace(os.Getenv("RESERVAS_ADMIN_PASSWORD")); password == "" {
		missing = append(missing, "RESERVAS_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if roomsValue := strings.TrimSpace(os.Getenv("RESERVAS_ROOMS")); roomsValue != "" {
		rooms, err := parseRooms(roomsValue)
		if err != nil {
			invalid = append(invalid, "RESERVAS_ROOMS")
		} else {
			cfg.Rooms = rooms
		}
	}

	if opening := strings.TrimSpace(os.Getenv("RESERVAS_OPENING")); opening != "" {
		cfg.Opening = opening
	}
	if closing := strings.TrimSpace(os.Getenv("RESERVAS_CLOSING")); closing != "" {
		cfg.Closing = closing
	}

	if slotValue := strings.TrimSpace(os.Getenv("RESERVAS_SLOT_MINUTES")); slotValue != "" {
		slot, err := strconv.Atoi(slotValue)
		if err != nil || slot <= 0 {
			invalid = append(invalid, "RESERVAS_SLOT_MINUTES")
		} else {
			cfg.SlotMinutes = slot
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("faltan variables de entorno obligatorias: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("variables de entorno con valores inválidos: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// parseRooms reads the "id=label,id=label" room list. The label may be
// omitted, in which case the id doubles as label.
func parseRooms(value string) ([]RoomEntry, error) {
	parts := strings.Split(value, ",")
	rooms := make([]RoomEntry, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, label, found := strings.Cut(part, "=")
		id = strings.TrimSpace(id)
		label = strings.TrimSpace(label)
		if id == "" {
			return nil, fmt.Errorf("room entry %q has no id", part)
		}
		if seen[id] {
			return nil, fmt.Errorf("room id %q is duplicated", id)
		}
		seen[id] = true
		if !found || label == "" {
			label = id
		}
		rooms = append(rooms, RoomEntry{ID: id, Label: label})
	}

	if len(rooms) == 0 {
		return nil, fmt.Errorf("room list is empty")
	}
	return rooms, nil
}
