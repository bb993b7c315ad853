package schedule

import (
	"errors"
	"testing"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"12:00 AM", 0},
		{"12:00 PM", 720},
		{"12:59 AM", 59},
		{"1:30 PM", 810},
		{"9:05 AM", 545},
		{"11:59 PM", 1439},
		{"2:00pm", 840},
		{"  7:15 AM  ", 435},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if err != nil {
			t.Fatalf("ParseClock(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseClockRejectsMalformed(t *testing.T) {
	for _, in := range []string{
		"13:00 PM",
		"0:30 AM",
		"9:60 AM",
		"9:5 AM",
		"14:00",
		"half past nine",
		"",
	} {
		_, err := ParseClock(in)
		if err == nil {
			t.Fatalf("ParseClock(%q) should fail", in)
		}
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("ParseClock(%q) returned %T, want *FormatError", in, err)
		}
	}
}
