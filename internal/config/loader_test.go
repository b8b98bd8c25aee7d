package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"RESERVAS_HTTP_PORT",
			"RESERVAS_SQLITE_DSN",
			"RESERVAS_SESSION_TTL",
			"RESERVAS_ADMIN_USER",
			"RESERVAS_ROOMS",
			"RESERVAS_OPENING",
			"RESERVAS_CLOSING",
			"RESERVAS_SLOT_MINUTES",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		t.Setenv("RESERVAS_ADMIN_PASSWORD", "secreto")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 3001 {
			t.Fatalf("expected default HTTP port 3001, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:reservas.db?_foreign_keys=on" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.AdminUser != "admin" || cfg.AdminPassword != "secreto" {
			t.Fatalf("unexpected admin credentials: %q / %q", cfg.AdminUser, cfg.AdminPassword)
		}
		if len(cfg.Rooms) != 2 || cfg.Rooms[0].Label != "Sala Grande" || cfg.Rooms[1].ID != "B" {
			t.Fatalf("unexpected default rooms: %+v", cfg.Rooms)
		}
		if cfg.Opening != "08:00" || cfg.Closing != "20:00" || cfg.SlotMinutes != 30 {
			t.Fatalf("unexpected default window: %s-%s / %d", cfg.Opening, cfg.Closing, cfg.SlotMinutes)
		}
	})

	t.Run("errors when the admin password is missing", func(t *testing.T) {
		if err := os.Unsetenv("RESERVAS_ADMIN_PASSWORD"); err != nil {
			t.Fatalf("failed to unset RESERVAS_ADMIN_PASSWORD: %v", err)
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		if !strings.Contains(err.Error(), "RESERVAS_ADMIN_PASSWORD") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration, numeric, and room fields", func(t *testing.T) {
		t.Setenv("RESERVAS_ADMIN_PASSWORD", "secreto")
		t.Setenv("RESERVAS_HTTP_PORT", "9090")
		t.Setenv("RESERVAS_SQLITE_DSN", "file:/tmp/reservas.db")
		t.Setenv("RESERVAS_SESSION_TTL", "24h")
		t.Setenv("RESERVAS_ROOMS", "A=Sala Grande,B=Sala Chica,C")
		t.Setenv("RESERVAS_OPENING", "07:00")
		t.Setenv("RESERVAS_CLOSING", "22:00")
		t.Setenv("RESERVAS_SLOT_MINUTES", "15")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if len(cfg.Rooms) != 3 {
			t.Fatalf("expected 3 rooms, got %+v", cfg.Rooms)
		}
		if cfg.Rooms[2].ID != "C" || cfg.Rooms[2].Label != "C" {
			t.Fatalf("expected bare room id to double as label, got %+v", cfg.Rooms[2])
		}
		if cfg.Opening != "07:00" || cfg.Closing != "22:00" || cfg.SlotMinutes != 15 {
			t.Fatalf("unexpected window: %s-%s / %d", cfg.Opening, cfg.Closing, cfg.SlotMinutes)
		}
	})

	t.Run("rejects malformed room lists", func(t *testing.T) {
		t.Setenv("RESERVAS_ADMIN_PASSWORD", "secreto")
		t.Setenv("RESERVAS_ROOMS", "A=Sala Grande,A=Duplicada")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "RESERVAS_ROOMS") {
			t.Fatalf("expected invalid RESERVAS_ROOMS error, got %v", err)
		}
	})
}
