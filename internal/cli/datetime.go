package cli

import (
	"fmt"
	"strings"
	"time"

	"timeruler/internal/model"
)

// parseWhen parses a drop time. A bare clock ("HH:MM") lands on now's
// calendar date; anything else goes through model.ParseDateTime.
func parseWhen(s string, now time.Time, loc *time.Location) (*model.DateTime, error) {
	s = strings.TrimSpace(s)
	if h, m, ok := model.ParseClock(s); ok && !strings.Contains(s, "-") {
		return model.FromTime(now.In(loc), true).WithClock(h, m), nil
	}
	dt, err := model.ParseDateTime(s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q (expected HH:MM, YYYY-MM-DD or YYYY-MM-DDTHH:MM)", s)
	}
	return dt, nil
}

// parseDay parses --date, defaulting to now's calendar date.
func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.In(loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}
