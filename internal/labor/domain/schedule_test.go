package domain

import (
	"testing"
	"time"
)

func mustWindow(t *testing.T, date, start, end string) TimeWindow {
	t.Helper()
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	w, err := ResolveWindow(day, start, end, "", "")
	if err != nil {
		t.Fatalf("resolve window %s %s-%s: %v", date, start, end, err)
	}
	return w
}

func TestOverlapsHalfOpenIntervals(t *testing.T) {
	existing := mustWindow(t, "2024-06-01", "08:00", "12:00")

	cases := []struct {
		name  string
		start string
		end   string
		want  bool
	}{
		{"contained", "09:00", "10:00", true},
		{"straddles start", "07:00", "09:00", true},
		{"straddles end", "11:00", "13:00", true},
		{"covers", "07:00", "13:00", true},
		{"identical", "08:00", "12:00", true},
		{"touching after", "12:00", "14:00", false},
		{"touching before", "06:00", "08:00", false},
		{"disjoint after", "13:00", "15:00", false},
		{"disjoint before", "05:00", "07:00", false},
	}

	for _, tc := range cases {
		candidate := mustWindow(t, "2024-06-01", tc.start, tc.end)
		if got := candidate.Overlaps(existing); got != tc.want {
			t.Errorf("%s: Overlaps(%s-%s) = %v, want %v", tc.name, tc.start, tc.end, got, tc.want)
		}
		// Overlap is symmetric.
		if got := existing.Overlaps(candidate); got != tc.want {
			t.Errorf("%s: symmetric Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveWindowFallsBackToDefaults(t *testing.T) {
	day, _ := time.Parse(DateFormat, "2024-06-01")

	w, err := ResolveWindow(day, "", "", "08:00", "16:00")
	if err != nil {
		t.Fatalf("resolve with defaults: %v", err)
	}
	if w.Start.Hour() != 8 || w.End.Hour() != 16 {
		t.Fatalf("expected 08:00-16:00, got %s-%s", w.Start, w.End)
	}

	w, err = ResolveWindow(day, "09:30", "", "08:00", "16:00")
	if err != nil {
		t.Fatalf("resolve with partial override: %v", err)
	}
	if w.Start.Hour() != 9 || w.Start.Minute() != 30 {
		t.Fatalf("expected explicit 09:30 start, got %s", w.Start)
	}
}

func TestResolveWindowRejectsInvertedWindow(t *testing.T) {
	day, _ := time.Parse(DateFormat, "2024-06-01")
	if _, err := ResolveWindow(day, "14:00", "12:00", "", ""); err == nil {
		t.Fatal("expected error for end before start")
	}
	if _, err := ResolveWindow(day, "12:00", "12:00", "", ""); err == nil {
		t.Fatal("expected error for zero-length window")
	}
	if _, err := ResolveWindow(day, "25:00", "26:00", "", ""); err == nil {
		t.Fatal("expected error for unparseable time of day")
	}
}

func TestWithinDateRange(t *testing.T) {
	from, _ := time.Parse(DateFormat, "2024-06-01")
	to, _ := time.Parse(DateFormat, "2024-06-07")

	cases := []struct {
		date string
		want bool
	}{
		{"2024-06-01", true},
		{"2024-06-07", true},
		{"2024-06-04", true},
		{"2024-05-31", false},
		{"2024-06-08", false},
	}
	for _, tc := range cases {
		day, _ := time.Parse(DateFormat, tc.date)
		if got := WithinDateRange(day, from, to); got != tc.want {
			t.Errorf("WithinDateRange(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	from, _ := time.Parse(DateFormat, "2024-06-01")
	to, _ := time.Parse(DateFormat, "2024-06-03")

	days := DaysBetween(from, to)
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Day() != 1 || days[2].Day() != 3 {
		t.Fatalf("unexpected day bounds: %v", days)
	}

	single := DaysBetween(from, from)
	if len(single) != 1 {
		t.Fatalf("expected 1 day for from==to, got %d", len(single))
	}
}

func TestDeriveWorkUnits(t *testing.T) {
	cases := []struct {
		hours float64
		want  float64
	}{
		{7, 1.0},
		{6, 1.0},
		{5.99, 0.5},
		{4, 0.5},
		{0.5, 0.5},
	}
	for _, tc := range cases {
		if got := DeriveWorkUnits(tc.hours); got != tc.want {
			t.Errorf("DeriveWorkUnits(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestWindowHours(t *testing.T) {
	w := mustWindow(t, "2024-06-01", "08:00", "15:30")
	if got := w.Hours(); got != 7.5 {
		t.Fatalf("Hours() = %v, want 7.5", got)
	}
}
