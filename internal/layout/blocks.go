package layout

import (
	"sort"
	"time"

	"timeruler/internal/graph"
	"timeruler/internal/model"
)

// BlocksFromGraph collects the open, timed tasks that start inside
// [windowStart, windowEnd) and groups them by exact start time. A task whose
// parent starts inside the same window rides along with the parent. A block ends
// at its start plus the longest length among its tasks.
func BlocksFromGraph(g *graph.Graph, windowStart, windowEnd time.Time) []Block {
	loc := windowStart.Location()
	byStart := map[int64]*Block{}
	var order []int64

	for _, t := range g.Tasks() {
		start, ok := timedStart(t, loc)
		if !ok || start.Before(windowStart) || !start.Before(windowEnd) {
			continue
		}
		if p, ok := g.Task(t.Parent); ok {
			if ps, parentTimed := timedStart(p, loc); parentTimed && !ps.Before(windowStart) && ps.Before(windowEnd) {
				continue
			}
		}
		key := start.Unix()
		b, ok := byStart[key]
		if !ok {
			b = &Block{ID: t.Scheduled.ISO(), Start: start, End: start}
			byStart[key] = b
			order = append(order, key)
		}
		b.Tasks = append(b.Tasks, t.ID)
		if t.Length != nil {
			if end := start.Add(time.Duration(t.Length.Minutes()) * time.Minute); end.After(b.End) {
				b.End = end
			}
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]Block, 0, len(order))
	for _, k := range order {
		out = append(out, *byStart[k])
	}
	return out
}

func timedStart(t model.Task, loc *time.Location) (time.Time, bool) {
	if t.Done() || !t.HasTimedSchedule() {
		return time.Time{}, false
	}
	start, err := t.Scheduled.In(loc)
	if err != nil {
		return time.Time{}, false
	}
	return start, true
}

// Window returns [day+startHour, day+endHour) in loc. An endHour at or below
// startHour wraps to the next day.
func Window(day time.Time, startHour, endHour int, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, startHour, 0, 0, 0, loc)
	if endHour <= startHour {
		endHour += 24
	}
	return start, time.Date(y, m, d, endHour, 0, 0, 0, loc)
}
