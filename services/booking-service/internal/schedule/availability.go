package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DoctorSchedule is a doctor's configured working pattern. An empty Days
// list means the doctor never set one up and is treated as always available.
type DoctorSchedule struct {
	Days      []string // weekday names, e.g. "Monday"
	StartTime string   // optional 12-hour bound, inclusive
	EndTime   string   // optional 12-hour bound, exclusive
}

// UnavailableDayError rejects a booking on a day the doctor does not work.
type UnavailableDayError struct {
	Weekday string
	Allowed []string
}

func (e *UnavailableDayError) Error() string {
	return fmt.Sprintf("doctor is not available on %s (available: %s)", e.Weekday, strings.Join(e.Allowed, ", "))
}

// OutsideHoursError rejects a booking outside the doctor's daily window.
type OutsideHoursError struct {
	Start string
	End   string
}

func (e *OutsideHoursError) Error() string {
	return fmt.Sprintf("requested time is outside working hours (%s - %s)", e.Start, e.End)
}

// The frontend has produced a few date formats over time; all are accepted
// at the boundary. Conflict scans never parse dates, only availability does.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "1/2/2006"}

// ParseWeekdayName resolves a weekday name ("Monday", case-insensitive).
// Used when validating a doctor's configured days at registration.
func ParseWeekdayName(name string) (time.Weekday, error) {
	trimmed := strings.TrimSpace(name)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(trimmed, d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// ParseWeekday resolves an appointment date string to its weekday.
func ParseWeekday(date string) (time.Weekday, error) {
	trimmed := strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Weekday(), nil
		}
	}
	return 0, &FormatError{Input: date}
}

// ValidateAvailability checks a requested slot against the doctor's
// schedule. Validation runs before any payment is attempted, so every error
// here is user-correctable.
func ValidateAvailability(sched DoctorSchedule, date string, requestedMinutes int) error {
	if len(sched.Days) == 0 {
		// Doctors without a configured schedule accept any slot.
		return nil
	}

	weekday, err := ParseWeekday(date)
	if err != nil {
		return err
	}

	allowed := false
	for _, day := range sched.Days {
		if strings.EqualFold(strings.TrimSpace(day), weekday.String()) {
			allowed = true
			break
		}
	}
	if !allowed {
		return &UnavailableDayError{Weekday: weekday.String(), Allowed: sched.Days}
	}

	if sched.StartTime == "" || sched.EndTime == "" {
		return nil
	}
	start, err := ParseClock(sched.StartTime)
	if err != nil {
		// A misconfigured window must not lock the doctor's calendar.
		return nil
	}
	end, err := ParseClock(sched.EndTime)
	if err != nil {
		return nil
	}
	if requestedMinutes < start || requestedMinutes >= end {
		return &OutsideHoursError{Start: sched.StartTime, End: sched.EndTime}
	}
	return nil
}
