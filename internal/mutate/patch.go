package mutate

import (
	"strings"

	"timeruler/internal/model"
)

type PatchResult struct {
	Task         model.Task
	Changed      bool
	EventPayload map[string]any
}

// ApplyPatch returns t with the non-nil fields of p applied. The payload
// records each changed field as {from, to} for the journal.
func ApplyPatch(t model.Task, p model.Patch) PatchResult {
	payload := map[string]any{}
	record := func(field string, from, to any) {
		payload[field] = map[string]any{"from": from, "to": to}
	}

	switch {
	case p.ClearScheduled && t.Scheduled != nil:
		record("scheduled", t.Scheduled.ISO(), nil)
		t.Scheduled = nil
	case p.Scheduled != nil && !t.Scheduled.Equal(p.Scheduled):
		record("scheduled", isoOrNil(t.Scheduled), p.Scheduled.ISO())
		v := *p.Scheduled
		t.Scheduled = &v
	}
	if p.Due != nil && !t.Due.Equal(p.Due.DatePart()) {
		record("due", isoOrNil(t.Due), p.Due.Date)
		t.Due = p.Due.DatePart()
	}
	if p.Length != nil {
		next := model.LengthFromMinutes(p.Length.Minutes())
		prev := 0
		if t.Length != nil {
			prev = t.Length.Minutes()
		}
		if prev != next.Minutes() {
			record("length", prev, next.Minutes())
			if next.Minutes() == 0 {
				t.Length = nil
			} else {
				t.Length = &next
			}
		}
	}
	if p.Priority != nil && p.Priority.Valid() && *p.Priority != t.Priority {
		record("priority", t.Priority.Key(), p.Priority.Key())
		t.Priority = *p.Priority
	}
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" && title != t.Title {
			record("title", t.Title, title)
			t.Title = title
		}
	}
	return PatchResult{Task: t, Changed: len(payload) > 0, EventPayload: payload}
}

func isoOrNil(d *model.DateTime) any {
	if d == nil {
		return nil
	}
	return d.ISO()
}
