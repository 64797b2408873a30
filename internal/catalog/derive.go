package catalog

import "math"

// Derive computes the required purchase quantity for one catalog entry given
// the event's guest count and bar-service duration in hours. Pure function:
// deterministic, no side effects, never negative, never fractional.
//
// A zero guest count always yields zero, no matter the ratio or duration.
func Derive(entry Entry, guestCount, durationHours int) int {
	if guestCount <= 0 {
		return 0
	}
	if durationHours < 1 {
		durationHours = 1
	}

	raw := entry.RatioPerGuest * float64(guestCount)
	if entry.ScalesWithDuration {
		raw *= float64(durationHours)
	}
	if raw <= 0 {
		return 0
	}
	return int(math.Ceil(raw))
}
