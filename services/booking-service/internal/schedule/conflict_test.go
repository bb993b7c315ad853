package schedule

import "testing"

func mustParse(t *testing.T, clock string) int {
	t.Helper()
	mins, err := ParseClock(clock)
	if err != nil {
		t.Fatalf("ParseClock(%q) failed: %v", clock, err)
	}
	return mins
}

func TestFindConflict_OpenWindow(t *testing.T) {
	existing := []Slot{{Time: "2:00 PM", UserEmail: "early.bird@example.com"}}

	cases := []struct {
		requested string
		conflicts bool
	}{
		{"2:59 PM", true},
		{"2:00 PM", true},
		{"1:01 PM", true},
		{"3:00 PM", false}, // exactly 60 minutes away: boundary is open
		{"1:00 PM", false},
		{"3:01 PM", false},
	}
	for _, c := range cases {
		got, found := FindConflict(mustParse(t, c.requested), existing, nil)
		if found != c.conflicts {
			t.Fatalf("request %s: conflict = %v, want %v", c.requested, found, c.conflicts)
		}
		if found && got.UserEmail != "early.bird@example.com" {
			t.Fatalf("request %s: wrong conflicting record %+v", c.requested, got)
		}
	}
}

func TestFindConflict_FirstMatchWins(t *testing.T) {
	existing := []Slot{
		{Time: "2:30 PM", UserEmail: "first@example.com"},
		{Time: "2:45 PM", UserEmail: "second@example.com"},
	}
	got, found := FindConflict(mustParse(t, "2:40 PM"), existing, nil)
	if !found {
		t.Fatal("expected a conflict")
	}
	if got.UserEmail != "first@example.com" {
		t.Fatalf("expected first matching record, got %+v", got)
	}
}

func TestFindConflict_SkipsMalformedStoredTimes(t *testing.T) {
	existing := []Slot{
		{Time: "whenever", UserEmail: "legacy@example.com"},
		{Time: "2:30 PM", UserEmail: "valid@example.com"},
	}
	got, found := FindConflict(mustParse(t, "2:30 PM"), existing, nil)
	if !found {
		t.Fatal("malformed rows must be skipped, not abort the scan")
	}
	if got.UserEmail != "valid@example.com" {
		t.Fatalf("unexpected conflicting record %+v", got)
	}

	// Only malformed rows: no conflict, no error.
	if _, found := FindConflict(mustParse(t, "2:30 PM"), existing[:1], nil); found {
		t.Fatal("a row that cannot be parsed must never conflict")
	}
}

func TestFindConflict_NoExisting(t *testing.T) {
	if _, found := FindConflict(mustParse(t, "9:00 AM"), nil, nil); found {
		t.Fatal("empty schedule must never conflict")
	}
}
