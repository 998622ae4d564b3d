package codec

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"timeruler/internal/model"
)

// Serialize renders t as a single list line in dialect d. Notes, parent and
// position are not part of the line.
func Serialize(t model.Task, d Dialect) string {
	check := " "
	if t.Done() {
		check = "x"
	}
	parts := []string{"- [" + check + "]"}
	if title := CleanTitle(t.Title); title != "" {
		parts = append(parts, title)
	}
	for _, tag := range t.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if !strings.HasPrefix(tag, "#") {
			tag = "#" + tag
		}
		parts = append(parts, tag)
	}

	keys := make([]string, 0, len(t.ExtraFields))
	for k := range t.ExtraFields {
		if !reservedFields[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, field(k, t.ExtraFields[k]))
	}

	switch d {
	case DialectFullCalendar:
		parts = append(parts, fullCalendarParts(t)...)
	case DialectTasks:
		parts = append(parts, tasksParts(t)...)
	default:
		parts = append(parts, dataviewParts(t)...)
	}
	return strings.Join(parts, " ")
}

func field(key, value string) string {
	return "[" + key + ":: " + value + "]"
}

func dataviewParts(t model.Task) []string {
	var out []string
	if t.Scheduled != nil {
		out = append(out, field(fieldScheduled, t.Scheduled.ISO()))
	}
	if t.Length != nil && t.Length.Minutes() > 0 {
		out = append(out, field(fieldLength, FormatLength(*t.Length)))
	}
	return append(out, commonDateParts(t)...)
}

// fullCalendarParts writes the start as date plus startTime and the length as
// endTime. endTime is a bare clock, so a task ending on a later day, or one
// without a start time, also carries its length.
func fullCalendarParts(t model.Task) []string {
	var out []string
	hasLength := t.Length != nil && t.Length.Minutes() > 0
	needLength := hasLength
	if t.Scheduled != nil {
		out = append(out, field(fieldDate, t.Scheduled.Date))
		if !t.Scheduled.IsDateOnly() {
			out = append(out, field(fieldStartTime, strings.TrimSpace(*t.Scheduled.Time)))
			if start, err := t.Scheduled.In(time.UTC); err == nil && hasLength {
				end := start.Add(time.Duration(t.Length.Minutes()) * time.Minute)
				out = append(out, field(fieldEndTime, fmt.Sprintf("%02d:%02d", end.Hour(), end.Minute())))
				needLength = !sameDay(start, end)
			}
		}
	}
	if needLength {
		out = append(out, field(fieldLength, FormatLength(*t.Length)))
	}
	return append(out, commonDateParts(t)...)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func commonDateParts(t model.Task) []string {
	var out []string
	if t.Due != nil {
		out = append(out, field(fieldDue, t.Due.Date))
	}
	if t.Start != nil {
		out = append(out, field(fieldStart, t.Start.Date))
	}
	if t.Created != nil {
		out = append(out, field(fieldCreated, t.Created.Date))
	}
	if t.Priority.Valid() && t.Priority != model.PriorityDefault {
		out = append(out, field(fieldPriority, t.Priority.Key()))
	}
	if t.Completion != nil {
		out = append(out, field(fieldCompletion, t.Completion.Date))
	}
	return out
}

func tasksParts(t model.Task) []string {
	var out []string
	if t.Length != nil && t.Length.Minutes() > 0 {
		out = append(out, field(fieldLength, FormatLength(*t.Length)))
	}
	if t.Scheduled != nil {
		if !t.Scheduled.IsDateOnly() {
			out = append(out, field(fieldStartTime, strings.TrimSpace(*t.Scheduled.Time)))
		}
		out = append(out, emojiScheduled+" "+t.Scheduled.Date)
	}
	if t.Due != nil {
		out = append(out, emojiDue+" "+t.Due.Date)
	}
	if t.Start != nil {
		out = append(out, emojiStart+" "+t.Start.Date)
	}
	if t.Created != nil {
		out = append(out, emojiCreated+" "+t.Created.Date)
	}
	if t.Priority.Valid() && t.Priority != model.PriorityDefault {
		out = append(out, emojiForPriority(t.Priority))
	}
	if t.Completion != nil {
		out = append(out, emojiCompletion+" "+t.Completion.Date)
	}
	return out
}
