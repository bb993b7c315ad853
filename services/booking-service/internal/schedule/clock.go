// Package schedule holds the pure booking-time checks: 12-hour clock
// parsing, double-booking conflict detection, and doctor availability
// validation. Everything here is stateless; persistence stays in storage.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Appointment times arrive from the frontend as 12-hour strings ("9:30 AM").
// They are parsed once at the boundary into minutes since midnight; the
// original string is kept only for display.
var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*([AaPp][Mm])$`)

// FormatError reports a time or date string that does not match the
// expected format. Never retried automatically.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed time value %q", e.Input)
}

// ParseClock converts a 12-hour clock string to minutes since midnight.
// 12:00 AM maps to 0 and 12:00 PM to 720; the result is in [0, 1439].
func ParseClock(text string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, &FormatError{Input: text}
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil || hour < 1 || hour > 12 {
		return 0, &FormatError{Input: text}
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, &FormatError{Input: text}
	}

	if hour == 12 {
		hour = 0
	}
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return hour*60 + minute, nil
}
