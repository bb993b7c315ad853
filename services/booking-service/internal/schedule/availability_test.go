package schedule

import (
	"errors"
	"testing"
)

func TestValidateAvailability_NoScheduleAlwaysAvailable(t *testing.T) {
	sched := DoctorSchedule{}
	for _, date := range []string{"2026-09-01", "not even a date"} {
		if err := ValidateAvailability(sched, date, mustParse(t, "3:00 AM")); err != nil {
			t.Fatalf("doctor without schedule must accept any slot, got %v", err)
		}
	}
}

func TestValidateAvailability_DayCheck(t *testing.T) {
	sched := DoctorSchedule{Days: []string{"Monday", "Wednesday"}}

	// 2026-08-31 is a Monday, 2026-09-01 a Tuesday.
	if err := ValidateAvailability(sched, "2026-08-31", mustParse(t, "10:00 AM")); err != nil {
		t.Fatalf("Monday should be allowed: %v", err)
	}

	err := ValidateAvailability(sched, "2026-09-01", mustParse(t, "10:00 AM"))
	var dayErr *UnavailableDayError
	if !errors.As(err, &dayErr) {
		t.Fatalf("expected *UnavailableDayError, got %v", err)
	}
	if dayErr.Weekday != "Tuesday" {
		t.Fatalf("unexpected weekday %q", dayErr.Weekday)
	}
	if len(dayErr.Allowed) != 2 || dayErr.Allowed[0] != "Monday" {
		t.Fatalf("error must list allowed days, got %v", dayErr.Allowed)
	}
}

func TestValidateAvailability_HoursWindow(t *testing.T) {
	sched := DoctorSchedule{
		Days:      []string{"Monday"},
		StartTime: "10:00 AM",
		EndTime:   "4:00 PM",
	}
	monday := "2026-08-31"

	if err := ValidateAvailability(sched, monday, mustParse(t, "10:00 AM")); err != nil {
		t.Fatalf("window start is inclusive: %v", err)
	}
	if err := ValidateAvailability(sched, monday, mustParse(t, "3:59 PM")); err != nil {
		t.Fatalf("last minute before end should pass: %v", err)
	}

	var hoursErr *OutsideHoursError
	if err := ValidateAvailability(sched, monday, mustParse(t, "4:00 PM")); !errors.As(err, &hoursErr) {
		t.Fatalf("window end is exclusive, got %v", err)
	}
	if err := ValidateAvailability(sched, monday, mustParse(t, "9:59 AM")); !errors.As(err, &hoursErr) {
		t.Fatalf("before window start must fail, got %v", err)
	}
}

func TestValidateAvailability_MisconfiguredWindowIgnored(t *testing.T) {
	sched := DoctorSchedule{
		Days:      []string{"Monday"},
		StartTime: "ten-ish",
		EndTime:   "4:00 PM",
	}
	if err := ValidateAvailability(sched, "2026-08-31", mustParse(t, "11:00 PM")); err != nil {
		t.Fatalf("unparseable window must not lock the calendar: %v", err)
	}
}

func TestParseWeekday_AcceptedLayouts(t *testing.T) {
	for _, date := range []string{"2026-08-31", "8/31/2026", "2026-08-31T09:00:00Z"} {
		wd, err := ParseWeekday(date)
		if err != nil {
			t.Fatalf("ParseWeekday(%q) failed: %v", date, err)
		}
		if wd.String() != "Monday" {
			t.Fatalf("ParseWeekday(%q) = %s, want Monday", date, wd)
		}
	}
	if _, err := ParseWeekday("31st of August"); err == nil {
		t.Fatal("unknown layout must fail")
	}
}
