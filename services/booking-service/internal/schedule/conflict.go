package schedule

import "log/slog"

// ConflictWindowMinutes is the half-width of the exclusion interval around a
// requested time. The interval is open: an existing appointment exactly 60
// minutes away does not block the booking.
const ConflictWindowMinutes = 60

// Slot is an existing non-cancelled appointment on the same doctor and date,
// reduced to what the conflict scan needs.
type Slot struct {
	Time      string // stored 12-hour display form
	UserEmail string
}

// Conflict identifies the first colliding appointment so the caller can
// build a user-facing message.
type Conflict struct {
	Time      string
	UserEmail string
}

// FindConflict reports whether any existing slot falls strictly within the
// open interval (requested-60, requested+60). First match wins. Slots whose
// stored time no longer parses are skipped with a warning; bad historical
// rows must not block new bookings.
func FindConflict(requestedMinutes int, existing []Slot, logger *slog.Logger) (Conflict, bool) {
	for _, slot := range existing {
		mins, err := ParseClock(slot.Time)
		if err != nil {
			if logger != nil {
				logger.Warn("skipping appointment with unparseable time", "time", slot.Time)
			}
			continue
		}
		diff := mins - requestedMinutes
		if diff < 0 {
			diff = -diff
		}
		if diff < ConflictWindowMinutes {
			return Conflict{Time: slot.Time, UserEmail: slot.UserEmail}, true
		}
	}
	return Conflict{}, false
}
