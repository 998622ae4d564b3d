package tui

import (
	"context"
	"time"

	"timeruler/internal/drag"
	"timeruler/internal/graph"
	"timeruler/internal/layout"
	"timeruler/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
)

type mode int

const (
	modeBrowse mode = iota
	modeConfirm
	modeDraft
)

// intentQueue collects what the drag machine dispatches. The machine must
// not block, so Update drains the queue into commands after each drop.
type intentQueue struct{ items []drag.Intent }

func (q *intentQueue) push(in drag.Intent) { q.items = append(q.items, in) }

func (q *intentQueue) drain() []drag.Intent {
	out := q.items
	q.items = nil
	return out
}

type (
	vaultChangedMsg struct{}
	reloadedMsg     struct {
		changed bool
		err     error
	}
	appliedMsg struct {
		intent drag.Intent
		err    error
	}
	createdMsg struct {
		id  string
		err error
	}
)

type appModel struct {
	ctx  context.Context
	deps Deps
	keys keyMap
	help help.Model

	width  int
	height int

	day         time.Time
	windowStart time.Time
	windowEnd   time.Time
	spans       []layout.Span
	extend      bool

	// items are the selectable task ids: timeline tasks in start order, then
	// open tasks without a time today.
	items  []string
	timed  int
	sel    int
	cursor time.Time

	machine *drag.Machine
	queue   *intentQueue

	mode       mode
	pending    drag.Intent
	confirmYes bool

	draft      drag.Draft
	draftTitle textinput.Model

	status    string
	statusErr bool
	showHelp  bool
}

func newModel(ctx context.Context, d Deps) appModel {
	q := &intentQueue{}
	dragContext := func() drag.Context {
		return drag.Context{
			Graph:        d.Graph(),
			DayStartHour: d.Settings.Snapshot().DayStartHour,
			Now:          d.now(),
			Loc:          d.loc(),
		}
	}
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 200

	cfg := d.Settings.Snapshot()
	m := appModel{
		ctx:        ctx,
		deps:       d,
		keys:       defaultKeyMap(),
		help:       help.New(),
		extend:     cfg.ExtendBlocks,
		machine:    drag.NewMachine(dragContext, nil, q.push),
		queue:      q,
		draftTitle: ti,
	}
	now := d.now().In(d.loc())
	m.setDay(now)
	m.cursor = m.snap(now)
	if m.cursor.Before(m.windowStart) || !m.cursor.Before(m.windowEnd) {
		m.cursor = m.windowStart
	}
	return m
}

func (m *appModel) graph() *graph.Graph { return m.deps.Graph() }

func (m *appModel) snapMinutes() int {
	if n := m.deps.Settings.Snapshot().SnapMinutes; n > 0 {
		return n
	}
	return 15
}

func (m *appModel) snap(t time.Time) time.Time {
	step := time.Duration(m.snapMinutes()) * time.Minute
	off := t.Sub(m.windowStart)
	return m.windowStart.Add(off - off%step)
}

// setDay moves the window to day and rebuilds the layout, keeping the cursor's
// clock time.
func (m *appModel) setDay(day time.Time) {
	cfg := m.deps.Settings.Snapshot()
	offset := m.cursor.Sub(m.windowStart)
	m.day = day
	m.windowStart, m.windowEnd = layout.Window(day, cfg.DayStartHour, cfg.DayEndHour, m.deps.loc())
	if !m.cursor.IsZero() {
		m.cursor = m.windowStart.Add(offset)
	}
	m.rebuild()
}

// rebuild re-arranges the timeline from the current graph.
func (m *appModel) rebuild() {
	g := m.graph()
	selected := m.selectedID()

	blocks := layout.BlocksFromGraph(g, m.windowStart, m.windowEnd)
	m.spans = layout.Arrange(blocks, m.windowStart, m.windowEnd, layout.Options{Extend: m.extend})

	m.items = m.items[:0]
	onTimeline := map[string]bool{}
	for _, b := range blocks {
		for _, id := range b.Tasks {
			m.items = append(m.items, id)
			onTimeline[id] = true
		}
	}
	m.timed = len(m.items)
	for _, t := range g.Roots() {
		if onTimeline[t.ID] || t.Done() {
			continue
		}
		if t.HasTimedSchedule() {
			// Timed on another day.
			continue
		}
		m.items = append(m.items, t.ID)
	}

	m.sel = 0
	for i, id := range m.items {
		if id == selected {
			m.sel = i
			break
		}
	}
}

func (m *appModel) selectedID() string {
	if m.sel < 0 || m.sel >= len(m.items) {
		return ""
	}
	return m.items[m.sel]
}

func (m *appModel) selectedTask() (model.Task, bool) {
	return m.graph().Task(m.selectedID())
}

// blockOf returns the ids sharing the selected task's timeline block.
func (m *appModel) blockOf(id string) []string {
	var find func(spans []layout.Span) []string
	find = func(spans []layout.Span) []string {
		for _, sp := range spans {
			if sp.Block != nil {
				for _, t := range sp.Block.Tasks {
					if t == id {
						return sp.Block.Tasks
					}
				}
			}
			if ids := find(sp.Nested); ids != nil {
				return ids
			}
		}
		return nil
	}
	return find(m.spans)
}
