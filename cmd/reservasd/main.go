package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/config"
	"github.com/example/room-reservations/internal/grid"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/ws"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	gridCfg := grid.DefaultConfig()
	gridCfg.Opening = cfg.Opening
	gridCfg.Closing = cfg.Closing
	gridCfg.SlotMinutes = cfg.SlotMinutes
	if err := gridCfg.Validate(); err != nil {
		logger.Error("invalid calendar configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	tokenGenerator := uuid.NewString
	now := time.Now

	reservationGateway := newStorageGatewayAdapter(storage)
	roomRepo := newRoomRepositoryAdapter(storage)
	credentialStore := newCredentialStoreAdapter(storage)
	sessionRepo := newSessionRepositoryAdapter(storage)

	roomService := application.NewRoomService(roomRepo, logger)
	authService := application.NewAuthService(credentialStore, sessionRepo, tokenGenerator, now, cfg.SessionTTL, logger)
	reservationService := application.NewReservationService(reservationGateway, roomService, gridCfg, now, logger)

	if err := seed(ctx, cfg, roomService, authService); err != nil {
		logger.Error("failed to seed initial data", "error", err)
		os.Exit(1)
	}
	if err := reservationService.Hydrate(ctx); err != nil {
		logger.Error("failed to hydrate reservation store", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub(logger)
	go hub.Run(ctx)
	reservationService.SetNotifier(ws.NewBroadcaster(hub, logger))

	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		if _, err := authService.PurgeExpired(context.Background()); err != nil {
			logger.Error("failed to purge expired sessions", "error", err)
		}
	}); err != nil {
		logger.Error("failed to schedule session purge", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:         httptransport.NewAuthHandler(authService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Rooms:        httptransport.NewRoomHandler(roomService, reservationService, now, logger),
		Events:       ws.Handler(hub, logger),
		Sessions:     authService,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservation API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// seed upserts the configured rooms and guarantees the administrator
// account exists before the server accepts requests.
func seed(ctx context.Context, cfg config.Config, rooms *application.RoomService, auth *application.AuthService) error {
	catalog := make([]application.Room, 0, len(cfg.Rooms))
	for _, entry := range cfg.Rooms {
		catalog = append(catalog, application.Room{ID: entry.ID, Label: entry.Label})
	}
	if err := rooms.Seed(ctx, catalog); err != nil {
		return err
	}
	return auth.EnsureUser(ctx, uuid.NewString(), cfg.AdminUser, cfg.AdminPassword, true)
}

// storageGatewayAdapter exposes the sqlite reservation repository through
// the persistence gateway contract of the lifecycle controller.
type storageGatewayAdapter struct {
	repo persistence.ReservationRepository
}

func newStorageGatewayAdapter(repo persistence.ReservationRepository) *storageGatewayAdapter {
	return &storageGatewayAdapter{repo: repo}
}

func (a *storageGatewayAdapter) FetchReservations(ctx context.Context) ([]booking.Reservation, error) {
	models, err := a.repo.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]booking.Reservation, 0, len(models))
	for _, model := range models {
		out = append(out, toBookingReservation(model))
	}
	return out, nil
}

func (a *storageGatewayAdapter) CreateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	model := toPersistenceReservation(r)
	model.ID = 0
	stored, err := a.repo.CreateReservation(ctx, model)
	if err != nil {
		return booking.Reservation{}, err
	}
	return toBookingReservation(stored), nil
}

func (a *storageGatewayAdapter) UpdateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	stored, err := a.repo.UpdateReservation(ctx, toPersistenceReservation(r))
	if err != nil {
		return booking.Reservation{}, err
	}
	return toBookingReservation(stored), nil
}

func (a *storageGatewayAdapter) DeleteReservation(ctx context.Context, id int64) error {
	return a.repo.DeleteReservation(ctx, id)
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) UpsertRoom(ctx context.Context, room application.Room) error {
	return a.repo.UpsertRoom(ctx, persistence.Room{ID: room.ID, Label: room.Label})
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, application.Room{ID: model.ID, Label: model.Label})
	}
	return rooms, nil
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) CreateUser(ctx context.Context, creds application.UserCredentials) error {
	return a.repo.CreateUser(ctx, persistence.User{
		ID:           creds.User.ID,
		Username:     creds.User.Username,
		PasswordHash: creds.PasswordHash,
		IsAdmin:      creds.User.IsAdmin,
	})
}

func (a *credentialStoreAdapter) GetUserByUsername(ctx context.Context, username string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return application.UserCredentials{}, translateNotFound(err)
	}
	return toUserCredentials(stored), nil
}

func (a *credentialStoreAdapter) GetUserByID(ctx context.Context, id string) (application.UserCredentials, error) {
	stored, err := a.repo.GetUserByID(ctx, id)
	if err != nil {
		return application.UserCredentials{}, translateNotFound(err)
	}
	return toUserCredentials(stored), nil
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) error {
	return a.repo.CreateSession(ctx, persistence.Session{
		Token:     session.Token,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, token string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, token)
	if err != nil {
		return application.Session{}, translateNotFound(err)
	}
	return application.Session{
		Token:     stored.Token,
		UserID:    stored.UserID,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
		RevokedAt: stored.RevokedAt,
	}, nil
}

func (a *sessionRepositoryAdapter) RevokeSession(ctx context.Context, token string) error {
	if err := a.repo.RevokeSession(ctx, token, time.Now().UTC()); err != nil {
		return translateNotFound(err)
	}
	return nil
}

func (a *sessionRepositoryAdapter) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	return a.repo.DeleteExpiredSessions(ctx, cutoff)
}

func translateNotFound(err error) error {
	if errors.Is(err, persistence.ErrNotFound) {
		return application.ErrNotFound
	}
	return err
}

func toUserCredentials(model persistence.User) application.UserCredentials {
	return application.UserCredentials{
		User: application.User{
			ID:       model.ID,
			Username: model.Username,
			IsAdmin:  model.IsAdmin,
		},
		PasswordHash: model.PasswordHash,
	}
}

func toBookingReservation(model persistence.Reservation) booking.Reservation {
	return booking.Reservation{
		ID:        model.ID,
		Room:      model.Room,
		Date:      model.Date,
		Start:     model.Start,
		End:       model.End,
		Requester: model.Requester,
		Sector:    model.Sector,
		Reason:    model.Reason,
	}
}

func toPersistenceReservation(r booking.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        r.ID,
		Room:      r.Room,
		Date:      r.Date,
		Start:     r.Start,
		End:       r.End,
		Requester: r.Requester,
		Sector:    r.Sector,
		Reason:    r.Reason,
	}
}
