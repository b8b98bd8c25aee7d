package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// CredentialStore abstracts user credential lookup and creation.
type CredentialStore interface {
	CreateUser(ctx context.Context, creds UserCredentials) error
	GetUserByUsername(ctx context.Context, username string) (UserCredentials, error)
	GetUserByID(ctx context.Context, id string) (UserCredentials, error)
}

// SessionRepository abstracts session token persistence.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuthService authenticates operators and validates bearer tokens.
type AuthService struct {
	users          CredentialStore
	sessions       SessionRepository
	verifyPassword func(hashedPassword, password string) error
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger
}

// NewAuthService wires the service dependencies. tokenGenerator must
// produce unguessable values; sessionTTL bounds how long a login lasts.
func NewAuthService(users CredentialStore, sessions SessionRepository, tokenGenerator func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		verifyPassword: VerifyPassword,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// EnsureUser creates the account if no user with that username exists.
// Used to seed the administrator account at startup.
func (s *AuthService) EnsureUser(ctx context.Context, id, username, password string, isAdmin bool) error {
	if s == nil || s.users == nil {
		return fmt.Errorf("credential store not configured")
	}

	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return &PersistenceError{Op: "lookup user", Err: err}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	creds := UserCredentials{
		User:         User{ID: id, Username: username, IsAdmin: isAdmin},
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, creds); err != nil {
		return &PersistenceError{Op: "create user", Err: err}
	}
	s.loggerWith(ctx, "EnsureUser", "username", username).InfoContext(ctx, "user account created")
	return nil
}

// Authenticate verifies the supplied credentials and issues a session
// token. Unknown users and wrong passwords are indistinguishable to the
// caller.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil || s.users == nil || s.sessions == nil {
		return AuthenticateResult{}, fmt.Errorf("auth service not configured")
	}

	logger := s.loggerWith(ctx, "Authenticate", "username", params.Username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authentication succeeded")
	}()

	if params.Username == "" || params.Password == "" {
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	creds, lookupErr := s.users.GetUserByUsername(ctx, params.Username)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			return AuthenticateResult{}, ErrInvalidCredentials
		}
		return AuthenticateResult{}, &PersistenceError{Op: "lookup user", Err: lookupErr}
	}
	if err = s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	now := s.now()
	session := Session{
		Token:     s.tokenGenerator(),
		UserID:    creds.User.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if createErr := s.sessions.CreateSession(ctx, session); createErr != nil {
		return AuthenticateResult{}, &PersistenceError{Op: "create session", Err: createErr}
	}

	return AuthenticateResult{User: creds.User, Session: session}, nil
}

// ValidateSession resolves a bearer token to the acting principal,
// rejecting expired and revoked sessions.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	if s == nil || s.sessions == nil || s.users == nil {
		return Principal{}, fmt.Errorf("auth service not configured")
	}
	if token == "" {
		return Principal{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, &PersistenceError{Op: "lookup session", Err: err}
	}
	if session.RevokedAt != nil {
		return Principal{}, ErrSessionRevoked
	}
	if !s.now().Before(session.ExpiresAt) {
		return Principal{}, ErrSessionExpired
	}

	creds, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, &PersistenceError{Op: "lookup user", Err: err}
	}
	return Principal{
		UserID:   creds.User.ID,
		Username: creds.User.Username,
		IsAdmin:  creds.User.IsAdmin,
	}, nil
}

// RevokeSession logs a token out. Revoking an unknown or already revoked
// token reports ErrNotFound.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil || s.sessions == nil {
		return fmt.Errorf("auth service not configured")
	}
	if err := s.sessions.RevokeSession(ctx, token); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return &PersistenceError{Op: "revoke session", Err: err}
	}
	s.loggerWith(ctx, "RevokeSession").InfoContext(ctx, "session revoked")
	return nil
}

// PurgeExpired deletes sessions past their expiry. Run periodically.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.sessions == nil {
		return 0, fmt.Errorf("auth service not configured")
	}
	deleted, err := s.sessions.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, &PersistenceError{Op: "purge sessions", Err: err}
	}
	if deleted > 0 {
		s.loggerWith(ctx, "PurgeExpired").InfoContext(ctx, "expired sessions purged", "count", deleted)
	}
	return deleted, nil
}
