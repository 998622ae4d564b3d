package model

// Priority is ordered from most to least urgent. Medium is the default.
type Priority int

const (
	PriorityHighest Priority = 1
	PriorityHigh    Priority = 2
	PriorityMedium  Priority = 3
	PriorityLow     Priority = 4
	PriorityLowest  Priority = 5

	PriorityDefault = PriorityMedium
)

var priorityKeys = map[Priority]string{
	PriorityHighest: "highest",
	PriorityHigh:    "high",
	PriorityMedium:  "medium",
	PriorityLow:     "low",
	PriorityLowest:  "lowest",
}

// Key returns the keyword form ("high", "lowest", ...). Unknown values map to "".
func (p Priority) Key() string { return priorityKeys[p] }

func (p Priority) Valid() bool {
	return p >= PriorityHighest && p <= PriorityLowest
}

// PriorityFromKey maps a keyword back to a priority.
func PriorityFromKey(k string) (Priority, bool) {
	for p, key := range priorityKeys {
		if key == k {
			return p, true
		}
	}
	return 0, false
}

// Length is a non-negative duration split into hours and minutes.
type Length struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (l Length) Minutes() int { return l.Hour*60 + l.Minute }

// LengthFromMinutes normalizes a minute count into hours and minutes.
func LengthFromMinutes(total int) Length {
	return Length{Hour: total / 60, Minute: total % 60}
}

type Point struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Position is the span of a task inside its backing document.
type Position struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`

	Completed  bool      `json:"completed"`
	Scheduled  *DateTime `json:"scheduled,omitempty"`
	Due        *DateTime `json:"due,omitempty"`
	Start      *DateTime `json:"start,omitempty"`
	Created    *DateTime `json:"created,omitempty"`
	Completion *DateTime `json:"completion,omitempty"`
	Length     *Length   `json:"length,omitempty"`
	Priority   Priority  `json:"priority"`

	Tags        []string          `json:"tags,omitempty"`
	ExtraFields map[string]string `json:"extraFields,omitempty"`

	Children []string `json:"children,omitempty"`
	// Parent is derived from the other tasks' Children when a graph is built.
	Parent      string `json:"parent,omitempty"`
	QueryParent bool   `json:"queryParent,omitempty"`

	Path     string   `json:"path"`
	Heading  string   `json:"heading,omitempty"`
	Position Position `json:"position"`
}

// Done reports whether the task is checked off or carries a completion date.
func (t Task) Done() bool { return t.Completed || t.Completion != nil }

// HasTimedSchedule reports whether Scheduled carries a time of day.
func (t Task) HasTimedSchedule() bool {
	return t.Scheduled != nil && !t.Scheduled.IsDateOnly()
}

// RawChild is a declared child list entry as reported by the store.
type RawChild struct {
	Line      int  `json:"line"`
	Completed bool `json:"completed,omitempty"`
}

// RawItem is one task as read from the backing store, before codec parsing.
type RawItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed,omitempty"`

	// Fields are structured hints from the store's own indexer. They win over
	// fields scraped from Text.
	Fields map[string]string `json:"fields,omitempty"`

	Path      string     `json:"path"`
	Heading   string     `json:"heading,omitempty"`
	Line      int        `json:"line"`
	Position  Position   `json:"position"`
	HasParent bool       `json:"hasParent,omitempty"`
	Children  []RawChild `json:"children,omitempty"`
}

// Patch is a partial task used for mutation requests. Nil fields are left alone.
type Patch struct {
	Scheduled      *DateTime `json:"scheduled,omitempty"`
	ClearScheduled bool      `json:"clearScheduled,omitempty"`
	Due            *DateTime `json:"due,omitempty"`
	Length         *Length   `json:"length,omitempty"`
	Priority       *Priority `json:"priority,omitempty"`
	Title          *string   `json:"title,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Scheduled == nil && !p.ClearScheduled && p.Due == nil &&
		p.Length == nil && p.Priority == nil && p.Title == nil
}

// Query narrows what the store returns. An empty Prefix means the whole vault.
type Query struct {
	Prefix string `json:"prefix,omitempty"`
}
