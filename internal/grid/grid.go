// Package grid projects a set of reservations onto a renderable weekly
// time grid: seven day columns, an enumerated sequence of bookable time
// slots, and pixel geometry for each reservation block.
//
// The projection is a pure function of its inputs. It never mutates the
// reservations it receives and can be recomputed at any time from the
// current store snapshot.
package grid

import (
	"fmt"
	"time"

	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/timeutil"
)

// Config fixes the daily window, slot granularity, and block geometry.
// These are deployment constants; code must consult them instead of
// hardcoding times or pixel sizes.
type Config struct {
	// Opening and Closing bound the bookable window ("HH:MM").
	Opening string
	Closing string
	// SlotMinutes is the granularity of the bookable start times.
	SlotMinutes int
	// RowHeightPx is the rendered height of one slot row.
	RowHeightPx int
	// MinBlockHeightPx keeps very short reservations visible and clickable.
	MinBlockHeightPx int
	// DayLabels names the seven week days, Monday first.
	DayLabels [7]string
}

// DefaultConfig mirrors the deployed calendar: 08:00-20:00 in 30 minute
// steps, 56 px rows, 20 px minimum block height, Spanish day labels.
func DefaultConfig() Config {
	return Config{
		Opening:          "08:00",
		Closing:          "20:00",
		SlotMinutes:      30,
		RowHeightPx:      56,
		MinBlockHeightPx: 20,
		DayLabels:        [7]string{"lun", "mar", "mié", "jue", "vie", "sáb", "dom"},
	}
}

// Validate reports configuration values the grid cannot work with.
func (c Config) Validate() error {
	open, err := timeutil.ToMinutes(c.Opening)
	if err != nil {
		return fmt.Errorf("grid opening: %w", err)
	}
	closing, err := timeutil.ToMinutes(c.Closing)
	if err != nil {
		return fmt.Errorf("grid closing: %w", err)
	}
	if closing <= open {
		return fmt.Errorf("grid closing %s must be after opening %s", c.Closing, c.Opening)
	}
	if c.SlotMinutes <= 0 {
		return fmt.Errorf("grid slot granularity must be positive, got %d", c.SlotMinutes)
	}
	if c.RowHeightPx <= 0 {
		return fmt.Errorf("grid row height must be positive, got %d", c.RowHeightPx)
	}
	return nil
}

// Slots enumerates the bookable start times from opening to closing
// inclusive at the configured granularity.
func (c Config) Slots() []string {
	open, err := timeutil.ToMinutes(c.Opening)
	if err != nil {
		return nil
	}
	closing, err := timeutil.ToMinutes(c.Closing)
	if err != nil || c.SlotMinutes <= 0 {
		return nil
	}

	slots := make([]string, 0, (closing-open)/c.SlotMinutes+1)
	for minute := open; minute <= closing; minute += c.SlotMinutes {
		slots = append(slots, timeutil.FormatMinutes(minute))
	}
	return slots
}

// PixelsPerMinute derives the vertical scale from one row's height and the
// slot granularity.
func (c Config) PixelsPerMinute() float64 {
	if c.SlotMinutes <= 0 {
		return 0
	}
	return float64(c.RowHeightPx) / float64(c.SlotMinutes)
}

// Block is one reservation placed inside a day column.
type Block struct {
	Reservation booking.Reservation
	// TopPx is the offset from the top of the day window.
	TopPx float64
	// HeightPx is the rendered height, floored at MinBlockHeightPx and
	// clamped to the day window.
	HeightPx float64
}

// Day is one column of the weekly grid.
type Day struct {
	// Date is the ISO date of the column.
	Date string
	// Label is the localized weekday name.
	Label string
	// DayOfMonth is the calendar day number shown in the header.
	DayOfMonth int
	Blocks     []Block
}

// Week is the full renderable grid model.
type Week struct {
	// WeekStart is the ISO date of the Monday column.
	WeekStart string
	Slots     []string
	Days      [7]Day
}

// BuildWeekGrid lays the given reservations out on the 7-day grid starting
// at the Monday on or before weekStart. Reservations outside the week are
// dropped; reservations poking outside the daily window are clamped so
// legacy rows still render.
func BuildWeekGrid(cfg Config, weekStart time.Time, reservations []booking.Reservation) (Week, error) {
	if err := cfg.Validate(); err != nil {
		return Week{}, err
	}

	openMin, _ := timeutil.ToMinutes(cfg.Opening)
	closeMin, _ := timeutil.ToMinutes(cfg.Closing)
	scale := cfg.PixelsPerMinute()

	monday := timeutil.StartOfWeek(weekStart)
	week := Week{
		WeekStart: timeutil.FormatISODate(monday),
		Slots:     cfg.Slots(),
	}

	byDate := make(map[string][]booking.Reservation, len(reservations))
	for _, r := range reservations {
		byDate[r.Date] = append(byDate[r.Date], r)
	}

	for i := 0; i < 7; i++ {
		date := timeutil.AddDays(monday, i)
		day := Day{
			Date:       timeutil.FormatISODate(date),
			Label:      cfg.DayLabels[i],
			DayOfMonth: date.Day(),
		}

		for _, r := range byDate[day.Date] {
			block, ok := layoutBlock(r, openMin, closeMin, scale, cfg.MinBlockHeightPx)
			if ok {
				day.Blocks = append(day.Blocks, block)
			}
		}

		week.Days[i] = day
	}

	return week, nil
}

func layoutBlock(r booking.Reservation, openMin, closeMin int, scale float64, minHeightPx int) (Block, bool) {
	start, err := timeutil.ToMinutes(r.Start)
	if err != nil {
		return Block{}, false
	}
	end, err := timeutil.ToMinutes(r.End)
	if err != nil || end <= start {
		return Block{}, false
	}

	// Entirely outside the visible window.
	if end <= openMin || start >= closeMin {
		return Block{}, false
	}

	start = max(start, openMin)
	end = min(end, closeMin)

	top := float64(start-openMin) * scale
	height := float64(end-start) * scale
	if height < float64(minHeightPx) {
		height = float64(minHeightPx)
	}
	windowHeight := float64(closeMin-openMin) * scale
	if top+height > windowHeight {
		height = windowHeight - top
	}

	return Block{Reservation: r, TopPx: top, HeightPx: height}, true
}
