package codec

import (
	"reflect"
	"testing"

	"timeruler/internal/model"
)

func TestParseStripsAnnotationsInOrder(t *testing.T) {
	got := ParseLine("- [ ] Call [[People/Ana|Ana]] about [the plan](https://x.test) #work #work #deep/focus [owner:: bob] 🔺 📅 2026-10-20")
	if got.Title != "Call Ana about the plan" {
		t.Fatalf("title = %q", got.Title)
	}
	if !reflect.DeepEqual(got.Tags, []string{"#work", "#deep/focus"}) {
		t.Fatalf("tags = %#v", got.Tags)
	}
	if got.ExtraFields["owner"] != "bob" {
		t.Fatalf("extra fields = %#v", got.ExtraFields)
	}
	if got.Priority != model.PriorityHighest {
		t.Fatalf("priority = %v", got.Priority)
	}
	if got.Due == nil || got.Due.ISO() != "2026-10-20" {
		t.Fatalf("due = %v", got.Due)
	}
	if got.Completed {
		t.Fatalf("expected open task")
	}
}

func TestExtractStagesAreIndependent(t *testing.T) {
	rest, fields := ExtractFields("a [k:: v] (x:: 1) b")
	if CleanTitle(rest) != "a b" || len(fields) != 2 || fields[0] != (Field{"k", "v"}) || fields[1] != (Field{"x", "1"}) {
		t.Fatalf("ExtractFields = %q %#v", rest, fields)
	}
	rest, fields = ExtractFields("Bracket [link:: [[Page]]] (note:: see (x)) [bad:: (open] tail")
	want := []Field{{"link", "[[Page]]"}, {"note", "see (x)"}}
	if !reflect.DeepEqual(fields, want) || CleanTitle(rest) != "Bracket [bad:: (open] tail" {
		t.Fatalf("ExtractFields nested = %q %#v", rest, fields)
	}
	rest, tags := ExtractTags("fix#notatag #bug")
	if CleanTitle(rest) != "fix#notatag" || !reflect.DeepEqual(tags, []string{"#bug"}) {
		t.Fatalf("ExtractTags = %q %#v", rest, tags)
	}
	if got := UnwrapLinks("see [[Note]] and [[Other|alias]]"); got != "see Note and alias" {
		t.Fatalf("UnwrapLinks = %q", got)
	}
	rest, mk := StripMarkers("x ⏬ ⏫ ⏳ 2026-10-18 ✅")
	if CleanTitle(rest) != "x" {
		t.Fatalf("StripMarkers rest = %q", rest)
	}
	if mk.Dates[fieldScheduled] != "2026-10-18" {
		t.Fatalf("dates = %#v", mk.Dates)
	}
	if _, ok := mk.Dates[fieldCompletion]; ok {
		t.Fatalf("dateless completion marker should not record a date")
	}
	if !reflect.DeepEqual(mk.Priorities, []model.Priority{model.PriorityHigh, model.PriorityLowest}) {
		t.Fatalf("priorities = %#v", mk.Priorities)
	}
}

func TestParseScheduledPrecedence(t *testing.T) {
	cases := []struct {
		name string
		raw  model.RawItem
		want string
	}{
		{"explicit", model.RawItem{Text: "a [scheduled:: 2026-10-18T09:30]", Path: "Daily/2026-01-01.md"}, "2026-10-18T09:30"},
		{"daily note", model.RawItem{Text: "a", Path: "Daily/2026-10-18.md"}, "2026-10-18"},
		{"daily note with parent", model.RawItem{Text: "a", Path: "Daily/2026-10-18.md", HasParent: true}, ""},
		{"declared date wins over daily note", model.RawItem{Text: "a [date:: 2026-10-19]", Path: "Daily/2026-10-18.md"}, "2026-10-19"},
		{"start time upgrades", model.RawItem{Text: "a [date:: 2026-10-19] [startTime:: 7:05]"}, "2026-10-19T07:05"},
		{"start time upgrades daily note", model.RawItem{Text: "a [startTime:: 13:00]", Path: "2026-10-18.md"}, "2026-10-18T13:00"},
		{"start time alone", model.RawItem{Text: "a [startTime:: 13:00]", Path: "notes.md"}, ""},
		{"malformed", model.RawItem{Text: "a [scheduled:: soon]", Path: "notes.md"}, ""},
		{"store fields win", model.RawItem{Text: "a [scheduled:: 2026-10-18]", Fields: map[string]string{"scheduled": "2026-10-21T08:00"}}, "2026-10-21T08:00"},
		{"emoji date", model.RawItem{Text: "a ⏳ 2026-10-22"}, "2026-10-22"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.raw)
			if tc.want == "" {
				if got.Scheduled != nil {
					t.Fatalf("scheduled = %v, want none", got.Scheduled)
				}
				return
			}
			if got.Scheduled == nil || got.Scheduled.ISO() != tc.want {
				t.Fatalf("scheduled = %v, want %s", got.Scheduled, tc.want)
			}
		})
	}
}

func TestParseLength(t *testing.T) {
	cases := []struct {
		text string
		want int // minutes; -1 means absent
	}{
		{"a [length:: 1h30m]", 90},
		{"a [length:: 45 minutes]", 45},
		{"a [length:: PT2H]", 120},
		{"a [length:: 1:15]", 75},
		{"a [scheduled:: 2026-10-18T09:00] [endTime:: 10:45]", 105},
		{"a [scheduled:: 2026-10-18T09:00] [endTime:: 08:00]", -1},
		{"a [endTime:: 10:00]", -1},
		{"a [length:: banana]", -1},
		{"a [scheduled:: 2026-10-18T09:00] [length:: 30m] [endTime:: 12:00]", 30},
	}
	for _, tc := range cases {
		got := ParseLine(tc.text)
		if tc.want < 0 {
			if got.Length != nil {
				t.Fatalf("%q: length = %+v, want none", tc.text, *got.Length)
			}
			continue
		}
		if got.Length == nil || got.Length.Minutes() != tc.want {
			t.Fatalf("%q: length = %+v, want %dm", tc.text, got.Length, tc.want)
		}
	}
}

func TestParsePriority(t *testing.T) {
	cases := map[string]model.Priority{
		"a":                        model.PriorityDefault,
		"a [priority:: high]":      model.PriorityHigh,
		"a [priority:: 5]":         model.PriorityLowest,
		"a [priority:: 9]":         model.PriorityDefault,
		"a [priority:: low] 🔺":     model.PriorityLow,
		"a 🔽 ⏫":                    model.PriorityHigh,
		"a [priority:: nonsense] ⏫": model.PriorityDefault,
	}
	for text, want := range cases {
		if got := ParseLine(text).Priority; got != want {
			t.Fatalf("%q: priority = %v, want %v", text, got, want)
		}
	}
}

func TestParseChildrenAndQuery(t *testing.T) {
	got := Parse(model.RawItem{
		Text:     "parent [query:: path:\"x\"]\nsome notes",
		Path:     "Projects/a.md",
		Line:     4,
		Children: []model.RawChild{{Line: 5}, {Line: 6, Completed: true}, {Line: 7}},
	})
	if got.ID != "Projects/a::4" {
		t.Fatalf("id = %q", got.ID)
	}
	if !reflect.DeepEqual(got.Children, []string{"Projects/a::5", "Projects/a::7"}) {
		t.Fatalf("children = %#v", got.Children)
	}
	if !got.QueryParent {
		t.Fatalf("expected query parent")
	}
	if got.Notes != "some notes" {
		t.Fatalf("notes = %q", got.Notes)
	}
}

func TestParseKeepsLinksInFieldValues(t *testing.T) {
	got := ParseLine("- [ ] Call [[People/Ana|Ana]] [ref:: [[People/Ana]]] [note:: see (x)]")
	if got.Title != "Call Ana" {
		t.Fatalf("title = %q", got.Title)
	}
	want := map[string]string{"ref": "[[People/Ana]]", "note": "see (x)"}
	if !reflect.DeepEqual(got.ExtraFields, want) {
		t.Fatalf("extra fields = %#v", got.ExtraFields)
	}
}

func TestFullCalendarCarriesLengthPastMidnight(t *testing.T) {
	task := model.Task{Title: "Late", Scheduled: model.DateAt("2026-10-18", "23:30"), Length: &model.Length{Hour: 1}}
	want := "- [ ] Late [date:: 2026-10-18] [startTime:: 23:30] [endTime:: 00:30] [length:: 1h]"
	if got := Serialize(task, DialectFullCalendar); got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestRoundTripEveryDialect(t *testing.T) {
	tasks := []model.Task{
		{
			Title:       "Write report",
			Scheduled:   model.DateAt("2026-10-18", "09:00"),
			Length:      &model.Length{Hour: 1, Minute: 30},
			Priority:    model.PriorityHigh,
			Tags:        []string{"#work", "#q4"},
			ExtraFields: map[string]string{"owner": "bob", "area": "ops"},
			Due:         model.DateOnly("2026-10-20"),
			Start:       model.DateOnly("2026-10-01"),
			Created:     model.DateOnly("2026-09-30"),
		},
		{
			Title:     "All day thing",
			Scheduled: model.DateOnly("2026-10-18"),
			Priority:  model.PriorityDefault,
		},
		{
			Title:      "Finished",
			Completed:  true,
			Completion: model.DateOnly("2026-10-17"),
			Scheduled:  model.DateAt("2026-10-17", "14:15"),
			Priority:   model.PriorityLowest,
		},
		{
			Title:    "Untimed",
			Priority: model.PriorityHighest,
			Length:   &model.Length{Minute: 45},
		},
		{
			Title:     "Late",
			Scheduled: model.DateAt("2026-10-18", "23:30"),
			Length:    &model.Length{Hour: 1},
			Priority:  model.PriorityDefault,
		},
		{
			Title:     "Long",
			Scheduled: model.DateAt("2026-10-18", "08:00"),
			Length:    &model.Length{Hour: 25},
			Priority:  model.PriorityDefault,
		},
		{
			Title:     "Whole day",
			Scheduled: model.DateAt("2026-10-18", "00:00"),
			Length:    &model.Length{Hour: 24},
			Priority:  model.PriorityDefault,
		},
		{
			Title:     "Midnight",
			Scheduled: model.DateAt("2026-10-18", "00:00"),
			Priority:  model.PriorityDefault,
		},
		{
			Title:     "Dated block",
			Scheduled: model.DateOnly("2026-10-18"),
			Length:    &model.Length{Hour: 2},
			Priority:  model.PriorityDefault,
		},
		{
			Title:    "Linked",
			Priority: model.PriorityDefault,
			ExtraFields: map[string]string{
				"ref":  "[[People/Ana|Ana]]",
				"note": "see (x)",
				"doc":  "[spec](https://x.test/a_(b))",
			},
		},
	}
	for p := model.PriorityHighest; p <= model.PriorityLowest; p++ {
		tasks = append(tasks, model.Task{Title: "Ranked " + p.Key(), Scheduled: model.DateAt("2026-10-18", "10:00"), Priority: p})
	}
	for _, d := range Dialects() {
		for _, want := range tasks {
			want.Path = "Projects/a.md"
			want.ID = "Projects/a::3"
			line := Serialize(want, d)
			got := Parse(model.RawItem{Text: line, Path: want.Path, Line: 3})
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("%s round trip of %q:\n got %+v\nwant %+v", d, line, got, want)
			}
		}
	}
}

func TestSerializeDialects(t *testing.T) {
	task := model.Task{
		Title:       "Review",
		Scheduled:   model.DateAt("2026-10-18", "09:00"),
		Length:      &model.Length{Hour: 2},
		Priority:    model.PriorityHigh,
		Tags:        []string{"review"},
		ExtraFields: map[string]string{"z": "1", "a": "2"},
	}
	cases := map[Dialect]string{
		DialectDataview:     "- [ ] Review #review [a:: 2] [z:: 1] [scheduled:: 2026-10-18T09:00] [length:: 2h] [priority:: high]",
		DialectFullCalendar: "- [ ] Review #review [a:: 2] [z:: 1] [date:: 2026-10-18] [startTime:: 09:00] [endTime:: 11:00] [priority:: high]",
		DialectTasks:        "- [ ] Review #review [a:: 2] [z:: 1] [length:: 2h] [startTime:: 09:00] ⏳ 2026-10-18 ⏫",
	}
	for d, want := range cases {
		if got := Serialize(task, d); got != want {
			t.Fatalf("%s:\n got %q\nwant %q", d, got, want)
		}
	}
}

func TestParseDialectAliases(t *testing.T) {
	for in, want := range map[string]Dialect{
		"inline-field":          DialectDataview,
		"Date+Time-Split-Field": DialectFullCalendar,
		"emoji-marker":          DialectTasks,
		"tasks":                 DialectTasks,
	} {
		got, err := ParseDialect(in)
		if err != nil || got != want {
			t.Fatalf("ParseDialect(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDialect("yaml"); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
}
