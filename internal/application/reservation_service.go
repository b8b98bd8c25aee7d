package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/grid"
	"github.com/example/room-reservations/internal/timeutil"
)

// DefaultReason fills the free-text reason when the caller leaves it blank.
const DefaultReason = "Reserva de sala"

// Gateway is the persistence boundary for reservations. Implementations
// may talk to a local database or a remote API; the service never assumes
// a call will succeed and reconciles its in-memory state with the result.
type Gateway interface {
	FetchReservations(ctx context.Context) ([]booking.Reservation, error)
	// CreateReservation persists a new record and returns it with the
	// gateway-assigned id.
	CreateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error)
	UpdateReservation(ctx context.Context, r booking.Reservation) (booking.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

// RoomCatalog exposes room lookup operations needed during validation.
type RoomCatalog interface {
	RoomExists(ctx context.Context, id string) (bool, error)
}

// Notifier receives committed store changes, e.g. for a websocket feed.
type Notifier interface {
	ReservationCreated(r booking.Reservation)
	ReservationUpdated(r booking.Reservation)
	ReservationDeleted(id int64)
}

// SearchResult is one page of the reservation history.
type SearchResult struct {
	Reservations []booking.Reservation
	Total        int
	Page         int
	TotalPages   int
}

// ReservationService is the reservation lifecycle controller. It owns the
// in-memory reservation store, validates and conflict-checks every
// candidate before mutating it, applies mutations optimistically, and
// reconciles them with the persistence gateway: gateway success commits
// the entry, gateway failure rolls the store back to its prior state.
type ReservationService struct {
	gateway  Gateway
	rooms    RoomCatalog
	gridCfg  grid.Config
	now      func() time.Time
	logger   *slog.Logger
	notifier Notifier

	// mu serializes store access. It is deliberately released across the
	// gateway round trip; the provisional entry left in the store keeps
	// conflict checks honest while persistence is in flight.
	mu              sync.Mutex
	store           *reservationStore
	weeks           *weekCache
	nextProvisional int64
	opSeq           uint64
	inflight        map[int64]uint64
}

// NewReservationService wires the controller's dependencies.
func NewReservationService(gateway Gateway, rooms RoomCatalog, gridCfg grid.Config, now func() time.Time, logger *slog.Logger) *ReservationService {
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		gateway:  gateway,
		rooms:    rooms,
		gridCfg:  gridCfg,
		now:      now,
		logger:   defaultLogger(logger),
		store:    newReservationStore(),
		weeks:    newWeekCache(0, 0, now),
		inflight: make(map[int64]uint64),
	}
}

// SetNotifier attaches a change listener. Must be called before the
// service handles requests.
func (s *ReservationService) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Hydrate loads the full reservation set from the gateway, replacing the
// in-memory store. Called once at startup; the store stays authoritative
// for the session afterwards.
func (s *ReservationService) Hydrate(ctx context.Context) error {
	if s == nil || s.gateway == nil {
		return fmt.Errorf("reservation gateway not configured")
	}

	reservations, err := s.gateway.FetchReservations(ctx)
	if err != nil {
		return &PersistenceError{Op: "hydrate", Err: err}
	}

	s.mu.Lock()
	s.store.replaceAll(reservations)
	s.weeks.Invalidate()
	s.mu.Unlock()

	s.loggerWith(ctx, "Hydrate").InfoContext(ctx, "store hydrated", "count", len(reservations))
	return nil
}

// ListReservations returns a sorted snapshot of the store.
func (s *ReservationService) ListReservations(ctx context.Context) []booking.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.snapshot()
}

// SearchReservations filters the history by term and room and returns the
// requested page.
func (s *ReservationService) SearchReservations(ctx context.Context, params SearchReservationsParams) SearchResult {
	s.mu.Lock()
	all := s.store.snapshot()
	s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(params.Term))
	filtered := all[:0:0]
	for _, r := range all {
		if params.Room != "" && r.Room != params.Room {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Requester), term) &&
			!strings.Contains(strings.ToLower(r.Sector), term) &&
			!strings.Contains(r.Date, term) {
			continue
		}
		filtered = append(filtered, r)
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	pageItems := make([]booking.Reservation, end-start)
	copy(pageItems, filtered[start:end])

	return SearchResult{
		Reservations: pageItems,
		Total:        total,
		Page:         page,
		TotalPages:   totalPages,
	}
}

// WeekGrid projects the reservations of one room onto the weekly grid
// containing the reference date.
func (s *ReservationService) WeekGrid(ctx context.Context, room string, reference time.Time) (grid.Week, error) {
	if err := s.ensureRoomExists(ctx, room); err != nil {
		return grid.Week{}, err
	}

	weekStart := timeutil.StartOfWeek(reference)
	key := room + "|" + timeutil.FormatISODate(weekStart)

	// Lookup, build, and cache write all happen under the store lock so a
	// mutation committing mid-build can never leave a stale grid cached
	// past its own invalidation.
	s.mu.Lock()
	defer s.mu.Unlock()

	if week, ok := s.weeks.Get(key); ok {
		return week, nil
	}

	all := s.store.snapshot()
	forRoom := all[:0:0]
	for _, r := range all {
		if r.Room == room {
			forRoom = append(forRoom, r)
		}
	}

	week, err := grid.BuildWeekGrid(s.gridCfg, weekStart, forRoom)
	if err != nil {
		return grid.Week{}, err
	}
	s.weeks.Store(key, week)
	return week, nil
}

// CreateReservation validates and conflict-checks the candidate, inserts
// it optimistically under a provisional id, and persists it through the
// gateway. The provisional id is replaced by the gateway-assigned one on
// success; the entry is withdrawn on failure.
func (s *ReservationService) CreateReservation(ctx context.Context, params CreateReservationParams) (res booking.Reservation, err error) {
	if s == nil || s.gateway == nil {
		return booking.Reservation{}, fmt.Errorf("reservation gateway not configured")
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"principal", params.Principal.Username,
		"room", params.Input.Room,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_id", res.ID).InfoContext(ctx, "reservation created")
	}()

	input := normalizeInput(params.Input)
	if err = s.validate(ctx, input); err != nil {
		return booking.Reservation{}, err
	}

	s.mu.Lock()
	if offender, found := booking.FindConflict(s.store.snapshot(), candidateOf(input), booking.NoExclusion); found {
		s.mu.Unlock()
		return booking.Reservation{}, &ConflictError{Conflicting: *offender}
	}

	s.nextProvisional--
	provisional := candidateOf(input)
	provisional.ID = s.nextProvisional
	s.store.put(provisional)
	s.weeks.Invalidate()
	op := s.beginOpLocked(provisional.ID)
	s.mu.Unlock()

	persisted, gatewayErr := s.gateway.CreateReservation(ctx, provisional)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opActiveLocked(provisional.ID, op) {
		// The provisional entry was withdrawn while the call was in
		// flight; the late result is ignored.
		return booking.Reservation{}, ErrCancelled
	}
	s.endOpLocked(provisional.ID)

	if gatewayErr != nil {
		s.store.remove(provisional.ID)
		s.weeks.Invalidate()
		return booking.Reservation{}, &PersistenceError{Op: "create", Err: gatewayErr}
	}

	s.store.remove(provisional.ID)
	s.store.put(persisted)
	s.weeks.Invalidate()
	if s.notifier != nil {
		s.notifier.ReservationCreated(persisted)
	}
	return persisted, nil
}

// UpdateReservation re-validates the edited record against every other
// reservation, applies the change optimistically, and restores the prior
// snapshot if the gateway rejects it.
func (s *ReservationService) UpdateReservation(ctx context.Context, params UpdateReservationParams) (res booking.Reservation, err error) {
	if s == nil || s.gateway == nil {
		return booking.Reservation{}, fmt.Errorf("reservation gateway not configured")
	}

	logger := s.loggerWith(ctx, "UpdateReservation",
		"principal", params.Principal.Username,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation updated")
	}()

	input := normalizeInput(params.Input)
	if err = s.validate(ctx, input); err != nil {
		return booking.Reservation{}, err
	}

	s.mu.Lock()
	if _, busy := s.inflight[params.ReservationID]; busy {
		s.mu.Unlock()
		return booking.Reservation{}, ErrOperationInFlight
	}
	prior, ok := s.store.get(params.ReservationID)
	if !ok || params.ReservationID <= 0 {
		s.mu.Unlock()
		return booking.Reservation{}, ErrNotFound
	}

	updated := candidateOf(input)
	updated.ID = params.ReservationID
	if offender, found := booking.FindConflict(s.store.snapshot(), updated, updated.ID); found {
		s.mu.Unlock()
		return booking.Reservation{}, &ConflictError{Conflicting: *offender}
	}

	s.store.put(updated)
	s.weeks.Invalidate()
	op := s.beginOpLocked(updated.ID)
	s.mu.Unlock()

	persisted, gatewayErr := s.gateway.UpdateReservation(ctx, updated)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opActiveLocked(updated.ID, op) {
		return booking.Reservation{}, ErrCancelled
	}
	s.endOpLocked(updated.ID)

	if gatewayErr != nil {
		s.store.put(prior)
		s.weeks.Invalidate()
		return booking.Reservation{}, &PersistenceError{Op: "update", Err: gatewayErr}
	}

	s.store.put(persisted)
	s.weeks.Invalidate()
	if s.notifier != nil {
		s.notifier.ReservationUpdated(persisted)
	}
	return persisted, nil
}

// DeleteReservation removes a reservation after explicit confirmation,
// reinstating it if the gateway fails. Deletes perform only an existence
// check; there is no overlap concern.
func (s *ReservationService) DeleteReservation(ctx context.Context, params DeleteReservationParams) (err error) {
	if s == nil || s.gateway == nil {
		return fmt.Errorf("reservation gateway not configured")
	}

	logger := s.loggerWith(ctx, "DeleteReservation",
		"principal", params.Principal.Username,
		"reservation_id", params.ReservationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation deleted")
	}()

	if !params.Confirm {
		return ErrDeleteNotConfirmed
	}

	s.mu.Lock()
	if _, busy := s.inflight[params.ReservationID]; busy {
		s.mu.Unlock()
		return ErrOperationInFlight
	}
	prior, ok := s.store.get(params.ReservationID)
	if !ok || params.ReservationID <= 0 {
		s.mu.Unlock()
		return ErrNotFound
	}

	s.store.remove(params.ReservationID)
	s.weeks.Invalidate()
	op := s.beginOpLocked(params.ReservationID)
	s.mu.Unlock()

	gatewayErr := s.gateway.DeleteReservation(ctx, params.ReservationID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opActiveLocked(params.ReservationID, op) {
		return ErrCancelled
	}
	s.endOpLocked(params.ReservationID)

	if gatewayErr != nil {
		s.store.put(prior)
		s.weeks.Invalidate()
		return &PersistenceError{Op: "delete", Err: gatewayErr}
	}

	if s.notifier != nil {
		s.notifier.ReservationDeleted(params.ReservationID)
	}
	return nil
}

// CancelPending withdraws a provisional entry whose persistence is still
// in flight, e.g. when the operator abandons the creation dialog. The
// gateway's late answer is then ignored. Reports whether an entry was
// withdrawn.
func (s *ReservationService) CancelPending(provisionalID int64) bool {
	if provisionalID >= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.inflight[provisionalID]; !ok {
		return false
	}
	delete(s.inflight, provisionalID)
	s.store.remove(provisionalID)
	s.weeks.Invalidate()
	return true
}

func (s *ReservationService) beginOpLocked(id int64) uint64 {
	s.opSeq++
	s.inflight[id] = s.opSeq
	return s.opSeq
}

func (s *ReservationService) opActiveLocked(id int64, op uint64) bool {
	current, ok := s.inflight[id]
	return ok && current == op
}

func (s *ReservationService) endOpLocked(id int64) {
	delete(s.inflight, id)
}

func normalizeInput(input ReservationInput) ReservationInput {
	input.Room = strings.TrimSpace(input.Room)
	input.Date = strings.TrimSpace(input.Date)
	input.Start = strings.TrimSpace(input.Start)
	input.End = strings.TrimSpace(input.End)
	input.Requester = strings.TrimSpace(input.Requester)
	input.Sector = strings.TrimSpace(input.Sector)
	input.Reason = strings.TrimSpace(input.Reason)
	if input.Reason == "" {
		input.Reason = DefaultReason
	}
	return input
}

func candidateOf(input ReservationInput) booking.Reservation {
	return booking.Reservation{
		Room:      input.Room,
		Date:      input.Date,
		Start:     input.Start,
		End:       input.End,
		Requester: input.Requester,
		Sector:    input.Sector,
		Reason:    input.Reason,
	}
}

// validate runs field validation, then the room existence check. All
// problems are reported per field so a form can highlight each input.
func (s *ReservationService) validate(ctx context.Context, input ReservationInput) error {
	vErr := &ValidationError{}

	if input.Room == "" {
		vErr.add("room", "room is required")
	}
	if input.Requester == "" {
		vErr.add("requester", "requester is required")
	}
	if input.Sector == "" {
		vErr.add("sector", "sector is required")
	}

	if input.Date == "" {
		vErr.add("date", "date is required")
	} else if _, err := timeutil.ParseISODate(input.Date); err != nil {
		vErr.add("date", "date must be yyyy-mm-dd")
	} else if input.Date < timeutil.FormatISODate(s.now()) {
		vErr.add("date", "date must not be in the past")
	}

	openMin, openErr := timeutil.ToMinutes(s.gridCfg.Opening)
	closeMin, closeErr := timeutil.ToMinutes(s.gridCfg.Closing)

	startMin, err := timeutil.ToMinutes(input.Start)
	switch {
	case input.Start == "":
		vErr.add("start", "start is required")
	case err != nil:
		vErr.add("start", "start must be HH:MM")
	case openErr == nil && startMin < openMin:
		vErr.add("start", "start is before the bookable window opens")
	case closeErr == nil && startMin >= closeMin:
		vErr.add("start", "start is after the bookable window closes")
	case s.gridCfg.SlotMinutes > 0 && startMin%s.gridCfg.SlotMinutes != 0:
		vErr.add("start", "start is not aligned to the slot grid")
	}

	endMin, err := timeutil.ToMinutes(input.End)
	switch {
	case input.End == "":
		vErr.add("end", "end is required")
	case err != nil:
		vErr.add("end", "end must be HH:MM")
	case closeErr == nil && endMin > closeMin:
		vErr.add("end", "end is after the bookable window closes")
	case s.gridCfg.SlotMinutes > 0 && endMin%s.gridCfg.SlotMinutes != 0:
		vErr.add("end", "end is not aligned to the slot grid")
	}

	if _, hasStart := vErr.FieldErrors["start"]; !hasStart {
		if _, hasEnd := vErr.FieldErrors["end"]; !hasEnd && endMin <= startMin {
			vErr.add("time", "end must be after start")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}

	return s.ensureRoomExists(ctx, input.Room)
}

func (s *ReservationService) ensureRoomExists(ctx context.Context, room string) error {
	if s.rooms == nil {
		return nil
	}
	exists, err := s.rooms.RoomExists(ctx, room)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room", "room does not exist")
	return vErr
}
