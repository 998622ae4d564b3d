package codec

import (
	"fmt"
	"strings"

	"timeruler/internal/model"
)

// Dialect selects how dates, durations and priority are written into a task line.
type Dialect string

const (
	// DialectDataview writes every field as a bracketed `[key:: value]` pair.
	DialectDataview Dialect = "dataview"
	// DialectFullCalendar splits scheduled into `date` + `startTime` and writes `endTime`.
	DialectFullCalendar Dialect = "full-calendar"
	// DialectTasks writes dates and priority as emoji markers.
	DialectTasks Dialect = "tasks"
)

var dialectAliases = map[string]Dialect{
	"dataview":              DialectDataview,
	"inline-field":          DialectDataview,
	"full-calendar":         DialectFullCalendar,
	"date+time-split-field": DialectFullCalendar,
	"tasks":                 DialectTasks,
	"emoji-marker":          DialectTasks,
}

func ParseDialect(s string) (Dialect, error) {
	d, ok := dialectAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown dialect %q (expected dataview|full-calendar|tasks)", s)
	}
	return d, nil
}

func Dialects() []Dialect {
	return []Dialect{DialectDataview, DialectFullCalendar, DialectTasks}
}

// Reserved field keys. Anything else lands in Task.ExtraFields.
const (
	fieldScheduled  = "scheduled"
	fieldDate       = "date"
	fieldStartTime  = "startTime"
	fieldEndTime    = "endTime"
	fieldLength     = "length"
	fieldPriority   = "priority"
	fieldDue        = "due"
	fieldStart      = "start"
	fieldCreated    = "created"
	fieldCompletion = "completion"

	// fieldQuery is not reserved: it stays in ExtraFields and marks the task as a query parent.
	fieldQuery = "query"
)

var reservedFields = map[string]bool{
	fieldScheduled:  true,
	fieldDate:       true,
	fieldStartTime:  true,
	fieldEndTime:    true,
	fieldLength:     true,
	fieldPriority:   true,
	fieldDue:        true,
	fieldStart:      true,
	fieldCreated:    true,
	fieldCompletion: true,
}

func IsReservedField(key string) bool { return reservedFields[key] }

// Emoji markers used by the tasks dialect.
const (
	emojiScheduled  = "⏳"
	emojiDue        = "📅"
	emojiStart      = "🛫"
	emojiCreated    = "➕"
	emojiCompletion = "✅"

	emojiHighest = "🔺"
	emojiHigh    = "⏫"
	emojiMedium  = "🔼"
	emojiLow     = "🔽"
	emojiLowest  = "⏬"
)

var dateEmoji = map[string]string{
	fieldScheduled:  emojiScheduled,
	fieldDue:        emojiDue,
	fieldStart:      emojiStart,
	fieldCreated:    emojiCreated,
	fieldCompletion: emojiCompletion,
}

// priorityEmoji is in scan order: highest first.
var priorityEmoji = []struct {
	emoji    string
	priority model.Priority
}{
	{emojiHighest, model.PriorityHighest},
	{emojiHigh, model.PriorityHigh},
	{emojiMedium, model.PriorityMedium},
	{emojiLow, model.PriorityLow},
	{emojiLowest, model.PriorityLowest},
}

func emojiForPriority(p model.Priority) string {
	for _, pe := range priorityEmoji {
		if pe.priority == p {
			return pe.emoji
		}
	}
	return ""
}
