package codec

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"timeruler/internal/model"
)

var (
	reDailyNote = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})$`)
	reLength    = regexp.MustCompile(`^(?:(\d+)\s*h(?:ours?|rs?)?)?\s*(?:(\d+)\s*m(?:in(?:ute)?s?)?)?$`)
	reClockLen  = regexp.MustCompile(`^(\d+):(\d{2})$`)
)

// IDFor derives a task id from its file path and line number.
func IDFor(path string, line int) string {
	return strings.TrimSuffix(path, ".md") + "::" + strconv.Itoa(line)
}

// ParseLine parses a single annotated task line with no store context.
func ParseLine(line string) model.Task {
	return Parse(model.RawItem{Text: line})
}

// Parse turns a raw store item into a Task. Malformed annotations are treated
// as absent; Parse never fails.
func Parse(raw model.RawItem) model.Task {
	line, notes := SplitNotes(raw.Text)
	line, checked, _ := StripCheckbox(line)

	// Fields come off the raw line so their values keep any links.
	line, textFields := ExtractFields(line)
	line = UnwrapLinks(line)
	line, tags := ExtractTags(line)
	line, markers := StripMarkers(line)

	fields := mergeFields(textFields, markers, raw.Fields)

	t := model.Task{
		ID:        IDFor(raw.Path, raw.Line),
		Title:     CleanTitle(line),
		Notes:     notes,
		Completed: raw.Completed || checked,
		Tags:      tags,
		Path:      raw.Path,
		Heading:   raw.Heading,
		Position:  raw.Position,
	}
	t.Scheduled = resolveScheduled(fields, raw)
	t.Length = resolveLength(fields, t.Scheduled)
	t.Priority = resolvePriority(fields, markers)
	t.Due = dateField(fields, fieldDue)
	t.Start = dateField(fields, fieldStart)
	t.Created = dateField(fields, fieldCreated)
	t.Completion = dateField(fields, fieldCompletion)

	for key, v := range fields {
		if reservedFields[key] {
			continue
		}
		if t.ExtraFields == nil {
			t.ExtraFields = map[string]string{}
		}
		t.ExtraFields[key] = v
	}
	_, t.QueryParent = fields[fieldQuery]

	for _, c := range raw.Children {
		if c.Completed {
			continue
		}
		t.Children = append(t.Children, IDFor(raw.Path, c.Line))
	}
	return t
}

// Lifecycle reads only what decides whether an item is live: its checkbox and
// its start and completion dates. Title, tags and links are left unparsed.
func Lifecycle(raw model.RawItem) (done bool, start *model.DateTime) {
	line, _ := SplitNotes(raw.Text)
	line, checked, _ := StripCheckbox(line)
	line, textFields := ExtractFields(line)
	_, markers := StripMarkers(line)
	fields := mergeFields(textFields, markers, raw.Fields)
	done = raw.Completed || checked || dateField(fields, fieldCompletion) != nil
	return done, dateField(fields, fieldStart)
}

// mergeFields resolves field precedence: store hints, then the first inline
// field of a key, then emoji dates.
func mergeFields(textFields []Field, markers Markers, hints map[string]string) map[string]string {
	fields := map[string]string{}
	for _, f := range textFields {
		if _, dup := fields[f.Key]; !dup {
			fields[f.Key] = f.Value
		}
	}
	for key, v := range markers.Dates {
		if _, ok := fields[key]; !ok {
			fields[key] = v
		}
	}
	for key, v := range hints {
		fields[key] = v
	}
	return fields
}

func resolveScheduled(fields map[string]string, raw model.RawItem) *model.DateTime {
	var sched *model.DateTime
	if v, ok := fields[fieldScheduled]; ok {
		sched, _ = model.ParseDateTime(v)
	}
	if sched == nil {
		date, declared := fields[fieldDate]
		if !declared && !raw.HasParent {
			date = dailyNoteDate(raw.Path)
		}
		if date == "" {
			return nil
		}
		dt, err := model.ParseDateTime(date)
		if err != nil {
			return nil
		}
		sched = dt.DatePart()
	}
	if st, ok := fields[fieldStartTime]; ok {
		if h, m, ok := model.ParseClock(st); ok {
			sched = sched.WithClock(h, m)
		}
	}
	return sched
}

func dailyNoteDate(path string) string {
	m := reDailyNote.FindStringSubmatch(strings.TrimSuffix(path, ".md"))
	if m == nil {
		return ""
	}
	return m[1]
}

func resolveLength(fields map[string]string, sched *model.DateTime) *model.Length {
	if v, ok := fields[fieldLength]; ok {
		if l, ok := ParseLength(v); ok {
			return nonZero(l)
		}
	}
	end, ok := fields[fieldEndTime]
	if !ok || sched == nil {
		return nil
	}
	h, m, ok := model.ParseClock(end)
	if !ok {
		return nil
	}
	start, err := sched.In(time.UTC)
	if err != nil {
		return nil
	}
	endAt := time.Date(start.Year(), start.Month(), start.Day(), h, m, 0, 0, time.UTC)
	diff := int(endAt.Sub(start) / time.Minute)
	if diff < 0 {
		return nil
	}
	return nonZero(model.LengthFromMinutes(diff))
}

func nonZero(l model.Length) *model.Length {
	if l.Minutes() <= 0 {
		return nil
	}
	return &l
}

// ParseLength accepts "1h30m", "90m", "2h", "1 hour 5 mins", "PT1H30M" and "1:30".
func ParseLength(s string) (model.Length, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "pt")
	if s == "" {
		return model.Length{}, false
	}
	if m := reClockLen.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return model.LengthFromMinutes(h*60 + min), true
	}
	m := reLength.FindStringSubmatch(s)
	if m == nil || (m[1] == "" && m[2] == "") {
		return model.Length{}, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return model.LengthFromMinutes(h*60 + min), true
}

// FormatLength renders a length as "1h30m", "2h" or "45m".
func FormatLength(l model.Length) string {
	l = model.LengthFromMinutes(l.Minutes())
	var b strings.Builder
	if l.Hour > 0 {
		b.WriteString(strconv.Itoa(l.Hour) + "h")
	}
	if l.Minute > 0 || l.Hour == 0 {
		b.WriteString(strconv.Itoa(l.Minute) + "m")
	}
	return b.String()
}

func resolvePriority(fields map[string]string, mk Markers) model.Priority {
	if v, ok := fields[fieldPriority]; ok {
		v = strings.ToLower(strings.TrimSpace(v))
		if n, err := strconv.Atoi(v); err == nil {
			if p := model.Priority(n); p.Valid() {
				return p
			}
		} else if p, ok := model.PriorityFromKey(v); ok {
			return p
		}
		return model.PriorityDefault
	}
	// Markers are collected in rank order, highest first.
	if len(mk.Priorities) > 0 {
		return mk.Priorities[0]
	}
	return model.PriorityDefault
}

func dateField(fields map[string]string, key string) *model.DateTime {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	dt, err := model.ParseDateTime(v)
	if err != nil {
		return nil
	}
	return dt.DatePart()
}
