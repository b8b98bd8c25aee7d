package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/testfixtures"
)

type memoryCredentialStore struct {
	byUsername map[string]UserCredentials
}

func newMemoryCredentialStore() *memoryCredentialStore {
	return &memoryCredentialStore{byUsername: make(map[string]UserCredentials)}
}

func (m *memoryCredentialStore) CreateUser(ctx context.Context, creds UserCredentials) error {
	m.byUsername[creds.User.Username] = creds
	return nil
}

func (m *memoryCredentialStore) GetUserByUsername(ctx context.Context, username string) (UserCredentials, error) {
	creds, ok := m.byUsername[username]
	if !ok {
		return UserCredentials{}, ErrNotFound
	}
	return creds, nil
}

func (m *memoryCredentialStore) GetUserByID(ctx context.Context, id string) (UserCredentials, error) {
	for _, creds := range m.byUsername {
		if creds.User.ID == id {
			return creds, nil
		}
	}
	return UserCredentials{}, ErrNotFound
}

type memorySessionRepository struct {
	byToken map[string]Session
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{byToken: make(map[string]Session)}
}

func (m *memorySessionRepository) CreateSession(ctx context.Context, session Session) error {
	m.byToken[session.Token] = session
	return nil
}

func (m *memorySessionRepository) GetSession(ctx context.Context, token string) (Session, error) {
	session, ok := m.byToken[token]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (m *memorySessionRepository) RevokeSession(ctx context.Context, token string) error {
	session, ok := m.byToken[token]
	if !ok || session.RevokedAt != nil {
		return ErrNotFound
	}
	now := time.Now()
	session.RevokedAt = &now
	m.byToken[token] = session
	return nil
}

func (m *memorySessionRepository) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for token, session := range m.byToken {
		if session.ExpiresAt.Before(cutoff) {
			delete(m.byToken, token)
			deleted++
		}
	}
	return deleted, nil
}

func newTestAuthService(t *testing.T, clock *testfixtures.Clock) (*AuthService, *memoryCredentialStore, *memorySessionRepository) {
	t.Helper()
	users := newMemoryCredentialStore()
	sessions := newMemorySessionRepository()
	tokens := testfixtures.NewTokenGenerator("token")
	svc := NewAuthService(users, sessions, tokens.Generate, clock.Now, time.Hour, nil)
	if err := svc.EnsureUser(context.Background(), "u-1", "admin", "secreto", true); err != nil {
		t.Fatalf("EnsureUser() error = %v", err)
	}
	return svc, users, sessions
}

func TestAuthenticate(t *testing.T) {
	clock := testfixtures.NewClock(fixedNow())

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t, clock)

		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if result.User.Username != "admin" || !result.User.IsAdmin {
			t.Errorf("result.User = %+v, want the admin account", result.User)
		}
		if result.Session.Token == "" {
			t.Error("result.Session.Token is empty")
		}
		if got, want := result.Session.ExpiresAt, fixedNow().Add(time.Hour); !got.Equal(want) {
			t.Errorf("ExpiresAt = %v, want %v", got, want)
		}
	})

	t.Run("rejects a wrong password and an unknown user identically", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t, clock)

		_, wrongPass := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "nope"})
		_, unknownUser := svc.Authenticate(context.Background(), AuthenticateParams{Username: "ghost", Password: "secreto"})
		if !errors.Is(wrongPass, ErrInvalidCredentials) || !errors.Is(unknownUser, ErrInvalidCredentials) {
			t.Errorf("errors = (%v, %v), want ErrInvalidCredentials for both", wrongPass, unknownUser)
		}
	})

	t.Run("rejects empty credentials", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t, clock)

		if _, err := svc.Authenticate(context.Background(), AuthenticateParams{}); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate(empty) error = %v, want ErrInvalidCredentials", err)
		}
	})
}

func TestValidateSession(t *testing.T) {
	t.Run("resolves the acting principal", func(t *testing.T) {
		clock := testfixtures.NewClock(fixedNow())
		svc, _, _ := newTestAuthService(t, clock)
		result, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"})
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}

		principal, err := svc.ValidateSession(context.Background(), result.Session.Token)
		if err != nil {
			t.Fatalf("ValidateSession() error = %v", err)
		}
		if principal.Username != "admin" || principal.UserID != "u-1" || !principal.IsAdmin {
			t.Errorf("principal = %+v, want the admin principal", principal)
		}
	})

	t.Run("rejects unknown and empty tokens", func(t *testing.T) {
		clock := testfixtures.NewClock(fixedNow())
		svc, _, _ := newTestAuthService(t, clock)

		if _, err := svc.ValidateSession(context.Background(), "made-up"); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("ValidateSession(unknown) error = %v, want ErrUnauthorized", err)
		}
		if _, err := svc.ValidateSession(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("ValidateSession(empty) error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejects an expired session", func(t *testing.T) {
		clock := testfixtures.NewClock(fixedNow())
		svc, _, _ := newTestAuthService(t, clock)
		result, _ := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"})

		clock.Advance(time.Hour)
		if _, err := svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionExpired) {
			t.Errorf("ValidateSession(expired) error = %v, want ErrSessionExpired", err)
		}
	})

	t.Run("rejects a revoked session", func(t *testing.T) {
		clock := testfixtures.NewClock(fixedNow())
		svc, _, _ := newTestAuthService(t, clock)
		result, _ := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"})

		if err := svc.RevokeSession(context.Background(), result.Session.Token); err != nil {
			t.Fatalf("RevokeSession() error = %v", err)
		}
		if _, err := svc.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("ValidateSession(revoked) error = %v, want ErrSessionRevoked", err)
		}
	})
}

func TestRevokeSession(t *testing.T) {
	clock := testfixtures.NewClock(fixedNow())
	svc, _, _ := newTestAuthService(t, clock)

	if err := svc.RevokeSession(context.Background(), "made-up"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RevokeSession(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	clock := testfixtures.NewClock(fixedNow())
	svc, _, sessions := newTestAuthService(t, clock)

	if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	clock.Advance(30 * time.Minute)
	if _, err := svc.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "secreto"}); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	clock.Advance(45 * time.Minute)
	deleted, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", deleted)
	}
	if len(sessions.byToken) != 1 {
		t.Errorf("%d sessions remain, want 1", len(sessions.byToken))
	}
}

func TestEnsureUser(t *testing.T) {
	clock := testfixtures.NewClock(fixedNow())
	svc, users, _ := newTestAuthService(t, clock)

	// A second call with a different password must not overwrite the account.
	if err := svc.EnsureUser(context.Background(), "u-9", "admin", "otra", false); err != nil {
		t.Fatalf("EnsureUser(existing) error = %v", err)
	}
	creds, err := users.GetUserByUsername(context.Background(), "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if creds.User.ID != "u-1" || !creds.User.IsAdmin {
		t.Errorf("account was replaced: %+v", creds.User)
	}
}
