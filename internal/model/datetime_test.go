package model

import (
	"testing"
	"time"
)

func TestParseDateTime(t *testing.T) {
	cases := []struct {
		in       string
		iso      string
		dateOnly bool
	}{
		{"2026-10-18", "2026-10-18", true},
		{"2026-10-18T09:05", "2026-10-18T09:05", false},
		{"2026-10-18 9:05", "2026-10-18T09:05", false},
		{"2026-10-18T09:05:30", "2026-10-18T09:05", false},
		{"2026-10-18T09:05:00+02:00", "2026-10-18T09:05", false},
	}
	for _, tc := range cases {
		dt, err := ParseDateTime(tc.in)
		if err != nil {
			t.Fatalf("ParseDateTime(%q) error: %v", tc.in, err)
		}
		if dt.ISO() != tc.iso {
			t.Fatalf("ParseDateTime(%q) = %q; want %q", tc.in, dt.ISO(), tc.iso)
		}
		if dt.IsDateOnly() != tc.dateOnly {
			t.Fatalf("ParseDateTime(%q) dateOnly=%v; want %v", tc.in, dt.IsDateOnly(), tc.dateOnly)
		}
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-01", "2026-10-18T25:00"} {
		if _, err := ParseDateTime(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestDateTimeIn(t *testing.T) {
	dt := DateOnly("2026-10-18").WithClock(7, 30)
	got, err := dt.In(time.UTC)
	if err != nil {
		t.Fatalf("In error: %v", err)
	}
	want := time.Date(2026, 10, 18, 7, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("In = %v; want %v", got, want)
	}

	day, err := DateOnly("2026-10-18").In(time.UTC)
	if err != nil {
		t.Fatalf("In error: %v", err)
	}
	if day.Hour() != 0 || day.Minute() != 0 {
		t.Fatalf("expected midnight for date-only; got %v", day)
	}
}

func TestLengthFromMinutes(t *testing.T) {
	if got := LengthFromMinutes(95); got != (Length{Hour: 1, Minute: 35}) {
		t.Fatalf("LengthFromMinutes(95) = %+v", got)
	}
	if got := (Length{Hour: 2, Minute: 5}).Minutes(); got != 125 {
		t.Fatalf("Minutes() = %d", got)
	}
}
