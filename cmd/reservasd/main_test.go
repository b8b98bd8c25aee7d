package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/persistence/sqlite"
)

func openTestStorage(t *testing.T) *sqlite.Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reservas_test.db")
	storage, err := sqlite.Open("file:" + dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return storage
}

func TestStorageGatewayAdapter_RoundTrip(t *testing.T) {
	storage := openTestStorage(t)
	gw := newStorageGatewayAdapter(storage)
	ctx := context.Background()

	rooms := newRoomRepositoryAdapter(storage)
	if err := rooms.UpsertRoom(ctx, application.Room{ID: "A", Label: "Sala Grande"}); err != nil {
		t.Fatalf("UpsertRoom() error = %v", err)
	}

	created, err := gw.CreateReservation(ctx, booking.Reservation{
		ID: -3, Room: "A", Date: "2026-09-07", Start: "09:00", End: "10:00",
		Requester: "Lucía Pérez", Sector: "Sistemas", Reason: "Reserva de sala",
	})
	if err != nil {
		t.Fatalf("CreateReservation() error = %v", err)
	}
	if created.ID <= 0 {
		t.Fatalf("created.ID = %d, want a store-assigned positive id", created.ID)
	}

	created.Start, created.End = "14:00", "15:00"
	updated, err := gw.UpdateReservation(ctx, created)
	if err != nil {
		t.Fatalf("UpdateReservation() error = %v", err)
	}
	if updated.Start != "14:00" {
		t.Errorf("updated.Start = %s, want 14:00", updated.Start)
	}

	all, err := gw.FetchReservations(ctx)
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(all) != 1 || all[0].ID != created.ID {
		t.Errorf("FetchReservations() = %+v", all)
	}

	if err := gw.DeleteReservation(ctx, created.ID); err != nil {
		t.Fatalf("DeleteReservation() error = %v", err)
	}
	all, err = gw.FetchReservations(ctx)
	if err != nil {
		t.Fatalf("FetchReservations() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("FetchReservations() after delete = %+v, want empty", all)
	}
}

func TestCredentialStoreAdapter_TranslatesNotFound(t *testing.T) {
	storage := openTestStorage(t)
	store := newCredentialStoreAdapter(storage)
	ctx := context.Background()

	if _, err := store.GetUserByUsername(ctx, "nadie"); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("GetUserByUsername(unknown) error = %v, want application.ErrNotFound", err)
	}

	creds := application.UserCredentials{
		User:         application.User{ID: "u-1", Username: "admin", IsAdmin: true},
		PasswordHash: "hash",
	}
	if err := store.CreateUser(ctx, creds); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	got, err := store.GetUserByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.User.Username != "admin" || got.PasswordHash != "hash" || !got.User.IsAdmin {
		t.Errorf("GetUserByID() = %+v", got)
	}
}

func TestSessionRepositoryAdapter(t *testing.T) {
	storage := openTestStorage(t)
	users := newCredentialStoreAdapter(storage)
	sessions := newSessionRepositoryAdapter(storage)
	ctx := context.Background()

	if err := users.CreateUser(ctx, application.UserCredentials{
		User:         application.User{ID: "u-1", Username: "admin"},
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	session := application.Session{
		Token:     "tok-1",
		UserID:    "u-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	if err := sessions.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := sessions.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.UserID != "u-1" || got.RevokedAt != nil {
		t.Errorf("GetSession() = %+v", got)
	}

	if err := sessions.RevokeSession(ctx, "tok-1"); err != nil {
		t.Fatalf("RevokeSession() error = %v", err)
	}
	got, err = sessions.GetSession(ctx, "tok-1")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.RevokedAt == nil {
		t.Error("RevokedAt = nil after revocation")
	}
	if err := sessions.RevokeSession(ctx, "tok-1"); !errors.Is(err, application.ErrNotFound) {
		t.Errorf("second RevokeSession() error = %v, want application.ErrNotFound", err)
	}

	expired := application.Session{
		Token:     "tok-2",
		UserID:    "u-1",
		ExpiresAt: now.Add(-time.Hour),
		CreatedAt: now.Add(-2 * time.Hour),
	}
	if err := sessions.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	deleted, err := sessions.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteExpiredSessions() = %d, want 1", deleted)
	}
}
