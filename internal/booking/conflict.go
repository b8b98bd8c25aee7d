// Package booking holds the pure reservation model and the overlap
// detector. Nothing here performs I/O or keeps state; callers pass a
// snapshot of existing reservations and receive a verdict.
package booking

import "github.com/example/room-reservations/internal/timeutil"

// Reservation is a booked interval for one room on one calendar date.
// Date is "yyyy-mm-dd" and Start/End are "HH:MM"; End is exclusive.
type Reservation struct {
	ID        int64
	Room      string
	Date      string
	Start     string
	End       string
	Requester string
	Sector    string
	Reason    string
}

// NoExclusion is passed as excludeID when no reservation should be skipped.
const NoExclusion int64 = 0

// FindConflict reports whether the candidate overlaps an existing
// reservation for the same room and date, returning the first offender so
// callers can tell the user which booking is in the way.
//
// Intervals are half-open: a reservation ending exactly when another starts
// does not conflict. excludeID skips the reservation being edited so a
// record is never compared against its own prior version. The candidate's
// times are assumed well formed and ordered; validation happens upstream.
func FindConflict(existing []Reservation, candidate Reservation, excludeID int64) (*Reservation, bool) {
	candidateStart, err := timeutil.ToMinutes(candidate.Start)
	if err != nil {
		return nil, false
	}
	candidateEnd, err := timeutil.ToMinutes(candidate.End)
	if err != nil {
		return nil, false
	}

	for i := range existing {
		other := &existing[i]
		if excludeID != NoExclusion && other.ID == excludeID {
			continue
		}
		if other.Room != candidate.Room || other.Date != candidate.Date {
			continue
		}

		otherStart, err := timeutil.ToMinutes(other.Start)
		if err != nil {
			continue
		}
		otherEnd, err := timeutil.ToMinutes(other.End)
		if err != nil {
			continue
		}

		if candidateStart < otherEnd && candidateEnd > otherStart {
			found := *other
			return &found, true
		}
	}

	return nil, false
}
