package drag

import (
	"fmt"
	"sort"
	"time"

	"timeruler/internal/graph"
	"timeruler/internal/model"
)

// Context is what Resolve reads. It is passed explicitly so resolution can
// run without a live store.
type Context struct {
	Graph        *graph.Graph
	DayStartHour int
	Now          time.Time
	Loc          *time.Location
}

func (c Context) loc() *time.Location {
	if c.Loc != nil {
		return c.Loc
	}
	return time.Local
}

// Resolve maps a (payload, target) pair to an intent. target is nil when the
// drop landed outside every target. Resolve has no side effects.
func Resolve(p Payload, target *Target, c Context) Intent {
	if target != nil && p.SourceID != "" && p.SourceID == target.ID {
		return none()
	}
	if target == nil {
		if p.Kind == PayloadNewButton {
			return Intent{Kind: IntentDraft, Draft: &Draft{}}
		}
		return none()
	}

	switch target.Kind {
	case TargetHeading:
		switch p.Kind {
		case PayloadGroup:
			if p.Path == "" || target.Heading == "" {
				return none()
			}
			return Intent{Kind: IntentReorder, Reorder: &Reorder{File: p.Path, Before: target.Heading}}
		case PayloadNewButton:
			return Intent{Kind: IntentDraft, Draft: &Draft{Path: target.Heading}}
		}
		return none()
	case TargetDelete:
		return resolveDelete(p, c)
	}
	if !target.fieldBearing() {
		return none()
	}

	fields := target.Fields
	switch p.Kind {
	case PayloadNow:
		return resolveShift(fields.Scheduled, c)
	case PayloadNewButton:
		return Intent{Kind: IntentDraft, Draft: &Draft{Scheduled: fields.Scheduled, Length: fields.Length}}
	case PayloadTime, PayloadTaskLength:
		return resolveSpan(p, fields.Scheduled, c)
	case PayloadBlock, PayloadGroup:
		return patch(p.Tasks, fields)
	case PayloadTask:
		return patch([]string{p.TaskID}, fields)
	case PayloadDue:
		if fields.Scheduled == nil {
			return none()
		}
		return patch([]string{p.TaskID}, model.Patch{Due: fields.Scheduled.DatePart()})
	}
	return none()
}

func patch(ids []string, fields model.Patch) Intent {
	var clean []string
	for _, id := range ids {
		if id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 || fields.Empty() {
		return none()
	}
	return Intent{Kind: IntentPatch, Patches: []PatchOp{{IDs: clean, Patch: fields}}}
}

// resolveDelete collects the dragged tasks and all their descendants,
// de-duplicated, sorted by id, then reversed so entries lower in a file go first.
func resolveDelete(p Payload, c Context) Intent {
	var roots []string
	switch p.Kind {
	case PayloadTask:
		roots = []string{p.TaskID}
	case PayloadBlock, PayloadGroup:
		roots = p.Tasks
	default:
		return none()
	}
	seen := map[string]bool{}
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range roots {
		add(id)
		for _, d := range c.Graph.Descendants(id) {
			add(d)
		}
	}
	if len(ids) == 0 {
		return none()
	}
	graph.SortIDs(ids)
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	in := Intent{Kind: IntentDelete, Delete: ids}
	if len(ids) > 1 {
		in.Confirm = fmt.Sprintf("Delete %d tasks and children?", len(ids))
	}
	return in
}

// resolveShift moves every open, timed task scheduled today by the distance
// between the drop and the earliest such task. Tasks sharing a start move
// together, groups in ascending time order.
func resolveShift(drop *model.DateTime, c Context) Intent {
	if drop == nil {
		return none()
	}
	loc := c.loc()
	dropAt, err := drop.In(loc)
	if err != nil {
		return none()
	}
	dayStart, dayEnd := Today(c.Now, c.DayStartHour, loc)

	groups := map[int64][]string{}
	for _, t := range c.Graph.Tasks() {
		if t.Done() || !t.HasTimedSchedule() || t.QueryParent {
			continue
		}
		at, err := t.Scheduled.In(loc)
		if err != nil || at.Before(dayStart) || !at.Before(dayEnd) {
			continue
		}
		if c.Graph.AncestorIsQueryParent(t.ID) {
			continue
		}
		groups[at.Unix()] = append(groups[at.Unix()], t.ID)
	}
	if len(groups) == 0 {
		return none()
	}
	keys := make([]int64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	delta := dropAt.Sub(time.Unix(keys[0], 0))
	in := Intent{Kind: IntentShift, Delta: delta, Confirm: fmt.Sprintf("Shift tasks by %s?", FormatDelta(delta))}
	for _, k := range keys {
		ids := groups[k]
		graph.SortIDs(ids)
		moved := time.Unix(k, 0).In(loc).Add(delta)
		in.Patches = append(in.Patches, PatchOp{IDs: ids, Patch: model.Patch{Scheduled: model.FromTime(moved, false)}})
	}
	return in
}

// resolveSpan handles drags that measure a distance from p.Start to the drop.
// A resize sets the task's length; a timeline sweep opens a draft covering it.
func resolveSpan(p Payload, drop *model.DateTime, c Context) Intent {
	if drop == nil || p.Start == nil {
		return none()
	}
	loc := c.loc()
	start, err1 := p.Start.In(loc)
	end, err2 := drop.In(loc)
	if err1 != nil || err2 != nil {
		return none()
	}
	minutes := int(end.Sub(start) / time.Minute)

	if p.Kind == PayloadTaskLength {
		if p.TaskID == "" || minutes < 0 {
			return none()
		}
		l := model.LengthFromMinutes(minutes)
		return Intent{Kind: IntentPatch, Patches: []PatchOp{{IDs: []string{p.TaskID}, Patch: model.Patch{Length: &l}}}}
	}

	scheduled := p.Start
	if minutes < 0 {
		scheduled, minutes = drop, -minutes
	}
	d := &Draft{Scheduled: scheduled}
	if minutes > 0 {
		l := model.LengthFromMinutes(minutes)
		d.Length = &l
	}
	return Intent{Kind: IntentDraft, Draft: d}
}

// Today returns the day window that contains now's calendar date, starting
// at dayStartHour.
func Today(now time.Time, dayStartHour int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, dayStartHour, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// FormatDelta renders a signed duration as "1h30m" or "-0h15m".
func FormatDelta(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%s%dh%dm", sign, total/60, total%60)
}
