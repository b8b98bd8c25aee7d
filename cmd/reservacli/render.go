package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/room-reservations/internal/grid"
)

const columnWidth = 16

// renderWeek draws the weekly grid as a text table: one row per time slot,
// one column per day, with each reservation shown in its slot rows.
func renderWeek(w io.Writer, room string, week grid.Week) {
	fmt.Fprintf(w, "sala %s - semana del %s\n\n", room, week.WeekStart)

	header := make([]string, 0, len(week.Days)+1)
	header = append(header, pad("hora", 6))
	for _, day := range week.Days {
		header = append(header, pad(fmt.Sprintf("%s %d", day.Label, day.DayOfMonth), columnWidth))
	}
	fmt.Fprintln(w, strings.Join(header, "|"))
	fmt.Fprintln(w, strings.Repeat("-", 6+(columnWidth+1)*len(week.Days)))

	// The last slot marks the closing time and has no row of its own.
	for i := 0; i < len(week.Slots)-1; i++ {
		slot := week.Slots[i]
		row := make([]string, 0, len(week.Days)+1)
		row = append(row, pad(slot, 6))
		for _, day := range week.Days {
			row = append(row, pad(cellFor(day, slot, week.Slots[i+1]), columnWidth))
		}
		fmt.Fprintln(w, strings.Join(row, "|"))
	}
}

// cellFor names the reservation covering the slot, if any. A block covers
// the slot when its interval overlaps [slot, nextSlot).
func cellFor(day grid.Day, slot, nextSlot string) string {
	for _, block := range day.Blocks {
		r := block.Reservation
		if r.Start < nextSlot && r.End > slot {
			if r.Start == slot {
				return r.Requester
			}
			return "·"
		}
	}
	return ""
}

func pad(value string, width int) string {
	runes := []rune(value)
	if len(runes) > width {
		return string(runes[:width])
	}
	return value + strings.Repeat(" ", width-len(runes))
}
