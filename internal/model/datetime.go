package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var (
	reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateTime = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{1,2}):(\d{2})(?::\d{2}(?:\.\d+)?)?$`)
)

// DateTime represents an optional time attached to a date.
// If Time is nil, the value is date-only (all-day).
type DateTime struct {
	Date string  `json:"date"`           // YYYY-MM-DD
	Time *string `json:"time,omitempty"` // HH:MM
}

func DateOnly(date string) *DateTime {
	return &DateTime{Date: date}
}

func DateAt(date, hm string) *DateTime {
	return &DateTime{Date: date, Time: &hm}
}

// FromTime converts t to a DateTime in t's location.
func FromTime(t time.Time, dateOnly bool) *DateTime {
	if dateOnly {
		return DateOnly(t.Format(dateLayout))
	}
	return DateAt(t.Format(dateLayout), t.Format(clockLayout))
}

func (d DateTime) IsDateOnly() bool {
	return d.Time == nil || strings.TrimSpace(*d.Time) == ""
}

// ISO renders "YYYY-MM-DD" or "YYYY-MM-DDTHH:MM".
func (d DateTime) ISO() string {
	if d.IsDateOnly() {
		return d.Date
	}
	return d.Date + "T" + strings.TrimSpace(*d.Time)
}

func (d DateTime) String() string { return d.ISO() }

// In resolves the value to an instant in loc. Date-only values resolve to midnight.
func (d DateTime) In(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(d.Date), loc)
	if err != nil {
		return time.Time{}, err
	}
	if d.IsDateOnly() {
		return day, nil
	}
	h, m, ok := ParseClock(*d.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid time %q", *d.Time)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc), nil
}

// WithClock returns a date-time value on the same date at hour:minute.
func (d DateTime) WithClock(hour, minute int) *DateTime {
	return DateAt(d.Date, fmt.Sprintf("%02d:%02d", hour, minute))
}

// DatePart drops the time of day.
func (d DateTime) DatePart() *DateTime {
	return DateOnly(d.Date)
}

func (d *DateTime) Equal(o *DateTime) bool {
	if d == nil || o == nil {
		return d == nil && o == nil
	}
	return d.ISO() == o.ISO()
}

// ParseDateTime parses:
// - YYYY-MM-DD (date-only)
// - YYYY-MM-DDTHH:MM or YYYY-MM-DD HH:MM (seconds tolerated, dropped)
// - RFC3339 (kept in its own offset's wall clock)
func ParseDateTime(s string) (*DateTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty datetime")
	}
	if reDateOnly.MatchString(s) {
		if _, err := time.Parse(dateLayout, s); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return DateOnly(s), nil
	}
	if m := reDateTime.FindStringSubmatch(s); m != nil {
		h, min, ok := ParseClock(m[2] + ":" + m[3])
		if !ok {
			return nil, fmt.Errorf("invalid time in %q", s)
		}
		if _, err := time.Parse(dateLayout, m[1]); err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return DateOnly(m[1]).WithClock(h, min), nil
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return FromTime(ts, false), nil
	}
	return nil, fmt.Errorf("invalid datetime %q (expected YYYY-MM-DD, YYYY-MM-DDTHH:MM, or RFC3339)", s)
}

// ParseClock parses "H:MM" / "HH:MM" into hour and minute.
func ParseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	var err error
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, false
	}
	if minute, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
