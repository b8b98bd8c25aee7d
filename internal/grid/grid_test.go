package grid

import (
	"math"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/booking"
)

func wednesday() time.Time {
	return time.Date(2024, 6, 12, 10, 0, 0, 0, time.Local)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSlotsEnumeratesWindow(t *testing.T) {
	t.Parallel()

	slots := DefaultConfig().Slots()
	if len(slots) != 25 {
		t.Fatalf("len(slots) = %d, want 25 (08:00..20:00 every 30 min)", len(slots))
	}
	if slots[0] != "08:00" || slots[1] != "08:30" || slots[len(slots)-1] != "20:00" {
		t.Errorf("unexpected slot boundaries: first=%s second=%s last=%s", slots[0], slots[1], slots[len(slots)-1])
	}
}

func TestBuildWeekGridEmptySet(t *testing.T) {
	t.Parallel()

	week, err := BuildWeekGrid(DefaultConfig(), wednesday(), nil)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}

	if week.WeekStart != "2024-06-10" {
		t.Errorf("WeekStart = %s, want 2024-06-10", week.WeekStart)
	}
	if len(week.Slots) != 25 {
		t.Errorf("len(Slots) = %d, want 25", len(week.Slots))
	}
	wantDates := []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"}
	wantLabels := []string{"lun", "mar", "mié", "jue", "vie", "sáb", "dom"}
	for i, day := range week.Days {
		if day.Date != wantDates[i] {
			t.Errorf("day %d date = %s, want %s", i, day.Date, wantDates[i])
		}
		if day.Label != wantLabels[i] {
			t.Errorf("day %d label = %s, want %s", i, day.Label, wantLabels[i])
		}
		if len(day.Blocks) != 0 {
			t.Errorf("day %d has %d blocks, want 0", i, len(day.Blocks))
		}
	}
}

func TestBuildWeekGridBlockGeometry(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	reservations := []booking.Reservation{
		{ID: 1, Room: "A", Date: "2024-06-10", Start: "09:00", End: "10:30"},
	}

	week, err := BuildWeekGrid(cfg, wednesday(), reservations)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}

	blocks := week.Days[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("monday has %d blocks, want 1", len(blocks))
	}

	// 56 px per 30 min row: 09:00 is 60 min after opening.
	scale := cfg.PixelsPerMinute()
	if !almostEqual(blocks[0].TopPx, 60*scale) {
		t.Errorf("TopPx = %v, want %v", blocks[0].TopPx, 60*scale)
	}
	if !almostEqual(blocks[0].HeightPx, 90*scale) {
		t.Errorf("HeightPx = %v, want %v", blocks[0].HeightPx, 90*scale)
	}
}

func TestBuildWeekGridAppliesMinimumHeight(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	reservations := []booking.Reservation{
		{ID: 1, Room: "A", Date: "2024-06-10", Start: "08:00", End: "08:05"},
	}

	week, err := BuildWeekGrid(cfg, wednesday(), reservations)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}

	blocks := week.Days[0].Blocks
	if len(blocks) != 1 {
		t.Fatalf("monday has %d blocks, want 1", len(blocks))
	}
	if !almostEqual(blocks[0].HeightPx, float64(cfg.MinBlockHeightPx)) {
		t.Errorf("HeightPx = %v, want minimum %d", blocks[0].HeightPx, cfg.MinBlockHeightPx)
	}
}

func TestBuildWeekGridClampsOutOfWindowReservations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	reservations := []booking.Reservation{
		{ID: 1, Room: "A", Date: "2024-06-10", Start: "07:00", End: "09:00"},
		{ID: 2, Room: "A", Date: "2024-06-11", Start: "19:30", End: "21:00"},
		{ID: 3, Room: "A", Date: "2024-06-12", Start: "21:00", End: "22:00"},
	}

	week, err := BuildWeekGrid(cfg, wednesday(), reservations)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}

	scale := cfg.PixelsPerMinute()

	early := week.Days[0].Blocks
	if len(early) != 1 {
		t.Fatalf("monday has %d blocks, want 1", len(early))
	}
	if !almostEqual(early[0].TopPx, 0) || !almostEqual(early[0].HeightPx, 60*scale) {
		t.Errorf("early block clamped to top=%v height=%v, want 0 and %v", early[0].TopPx, early[0].HeightPx, 60*scale)
	}

	late := week.Days[1].Blocks
	if len(late) != 1 {
		t.Fatalf("tuesday has %d blocks, want 1", len(late))
	}
	if !almostEqual(late[0].HeightPx, 30*scale) {
		t.Errorf("late block height = %v, want %v", late[0].HeightPx, 30*scale)
	}

	if len(week.Days[2].Blocks) != 0 {
		t.Error("reservation entirely outside the window must be dropped")
	}
}

func TestBuildWeekGridDropsOtherWeeks(t *testing.T) {
	t.Parallel()

	reservations := []booking.Reservation{
		{ID: 1, Room: "A", Date: "2024-06-03", Start: "09:00", End: "10:00"},
		{ID: 2, Room: "A", Date: "2024-06-17", Start: "09:00", End: "10:00"},
	}

	week, err := BuildWeekGrid(DefaultConfig(), wednesday(), reservations)
	if err != nil {
		t.Fatalf("BuildWeekGrid: %v", err)
	}
	for i, day := range week.Days {
		if len(day.Blocks) != 0 {
			t.Errorf("day %d has %d blocks, want 0", i, len(day.Blocks))
		}
	}
}

func TestBuildWeekGridRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Closing = "07:00"
	if _, err := BuildWeekGrid(cfg, wednesday(), nil); err == nil {
		t.Error("expected error for closing before opening")
	}

	cfg = DefaultConfig()
	cfg.SlotMinutes = 0
	if _, err := BuildWeekGrid(cfg, wednesday(), nil); err == nil {
		t.Error("expected error for zero slot granularity")
	}
}
