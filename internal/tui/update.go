package tui

import (
	"errors"
	"fmt"
	"time"

	"timeruler/internal/drag"
	"timeruler/internal/model"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case vaultChangedMsg:
		return m, m.reloadCmd()

	case reloadedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if msg.changed {
			m.rebuild()
		}
		return m, nil

	case appliedMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, m.reloadCmd()
		}
		m.setStatus(describe(msg.intent))
		return m, m.reloadCmd()

	case createdMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.setStatus("Created " + msg.id)
		return m, m.reloadCmd()

	case tea.KeyMsg:
		switch m.mode {
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeDraft:
			return m.updateDraft(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m appModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := time.Duration(m.snapMinutes()) * time.Minute
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if c := m.cursor.Add(-step); !c.Before(m.windowStart) {
			m.cursor = c
		}
	case key.Matches(msg, m.keys.Down):
		if c := m.cursor.Add(step); c.Before(m.windowEnd) {
			m.cursor = c
		}
	case key.Matches(msg, m.keys.Next):
		if len(m.items) > 0 {
			m.sel = (m.sel + 1) % len(m.items)
		}
	case key.Matches(msg, m.keys.Prev):
		if len(m.items) > 0 {
			m.sel = (m.sel - 1 + len(m.items)) % len(m.items)
		}
	case key.Matches(msg, m.keys.PrevDay):
		m.setDay(m.day.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.NextDay):
		m.setDay(m.day.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Extend):
		m.extend = !m.extend
		m.rebuild()
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadCmd()

	case key.Matches(msg, m.keys.Grab):
		m.grabSelected(drag.PayloadTask)
	case key.Matches(msg, m.keys.GrabLen):
		m.grabSelected(drag.PayloadTaskLength)
	case key.Matches(msg, m.keys.GrabDue):
		m.grabSelected(drag.PayloadDue)
	case key.Matches(msg, m.keys.GrabBlk):
		m.grabSelected(drag.PayloadBlock)
	case key.Matches(msg, m.keys.GrabFile):
		m.grabSelected(drag.PayloadGroup)
	case key.Matches(msg, m.keys.GrabNow):
		m.start(drag.Payload{Kind: drag.PayloadNow, SourceID: "now"})
	case key.Matches(msg, m.keys.GrabNew):
		m.start(drag.Payload{Kind: drag.PayloadNewButton, SourceID: "new"})
	case key.Matches(msg, m.keys.Sweep):
		m.start(drag.Payload{Kind: drag.PayloadTime, SourceID: "slot:" + m.cursorTime().ISO(), Start: m.cursorTime()})

	case key.Matches(msg, m.keys.Drop):
		return m.drop(m.dropTarget())
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.machine.Active(); !ok {
			m.grabSelected(drag.PayloadTask)
		}
		return m.drop(&drag.Target{Kind: drag.TargetDelete, ID: "delete"})
	case key.Matches(msg, m.keys.Cancel):
		if _, ok := m.machine.Active(); ok {
			m.machine.Cancel()
			m.setStatus("Drag cancelled")
		}
	}
	return m, nil
}

func (m *appModel) cursorTime() *model.DateTime {
	return model.FromTime(m.cursor, false)
}

// grabSelected starts dragging the selected task as kind.
func (m *appModel) grabSelected(kind drag.PayloadKind) {
	t, ok := m.selectedTask()
	if !ok {
		m.setStatus("Nothing selected")
		return
	}
	p := drag.Payload{Kind: kind, SourceID: "task:" + t.ID, TaskID: t.ID}
	switch kind {
	case drag.PayloadTaskLength:
		if !t.HasTimedSchedule() {
			m.setStatus("Task has no start time to resize from")
			return
		}
		p.Start = t.Scheduled
	case drag.PayloadBlock:
		p.Tasks = m.blockOf(t.ID)
		if p.Tasks == nil {
			p.Tasks = []string{t.ID}
		}
		p.SourceID = "block:" + t.ID
	case drag.PayloadGroup:
		p.Path = t.Path
		p.Tasks = nil
		for _, x := range m.graph().Tasks() {
			if x.Path == t.Path {
				p.Tasks = append(p.Tasks, x.ID)
			}
		}
		p.SourceID = "group:" + t.Path
	}
	m.start(p)
}

func (m *appModel) start(p drag.Payload) {
	m.machine.Start(p)
	m.setStatus(fmt.Sprintf("Dragging %s", payloadLabel(p)))
}

// dropTarget is where enter drops: a file heading for file drags, the slot
// under the cursor otherwise.
func (m *appModel) dropTarget() *drag.Target {
	if p, ok := m.machine.Active(); ok && p.Kind == drag.PayloadGroup {
		t, ok := m.selectedTask()
		if !ok {
			return nil
		}
		return &drag.Target{Kind: drag.TargetHeading, ID: "heading:" + t.Path, Heading: t.Path}
	}
	at := m.cursorTime()
	return &drag.Target{Kind: drag.TargetSlot, ID: "slot:" + at.ISO(), Fields: model.Patch{Scheduled: at}}
}

func (m appModel) drop(target *drag.Target) (tea.Model, tea.Cmd) {
	if _, ok := m.machine.Active(); !ok {
		return m, nil
	}
	in, outcome := m.machine.Drop(target)
	switch outcome {
	case drag.OutcomeNoop:
		m.setStatus("Nothing to do")
		return m, nil
	case drag.OutcomeNeedsConfirm:
		m.mode = modeConfirm
		m.pending = in
		m.confirmYes = true
		return m, nil
	}
	return m, m.dispatchQueued()
}

// dispatchQueued turns dispatched intents into commands. Drafts open the
// new-task form instead of touching the store.
func (m *appModel) dispatchQueued() tea.Cmd {
	var cmds []tea.Cmd
	for _, in := range m.queue.drain() {
		if in.Kind == drag.IntentDraft {
			m.openDraft(*in.Draft)
			continue
		}
		cmds = append(cmds, m.applyCmd(in))
	}
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return cmds[0]
	}
	return tea.Sequence(cmds...)
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.confirmYes = true
		return m.finishConfirm()
	case "n", "esc", "ctrl+g":
		m.confirmYes = false
		return m.finishConfirm()
	case "tab", "left", "right", "h", "l":
		m.confirmYes = !m.confirmYes
	case "enter":
		return m.finishConfirm()
	}
	return m, nil
}

func (m appModel) finishConfirm() (tea.Model, tea.Cmd) {
	in := m.pending
	m.pending = drag.Intent{}
	m.mode = modeBrowse
	if !m.confirmYes {
		m.setStatus("Declined")
		return m, nil
	}
	m.machine.Commit(in)
	return m, m.dispatchQueued()
}

func (m *appModel) openDraft(d drag.Draft) {
	m.mode = modeDraft
	m.draft = d
	m.draftTitle.SetValue("")
	m.draftTitle.Focus()
}

func (m appModel) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode = modeBrowse
		m.draftTitle.Blur()
		m.setStatus("New task discarded")
		return m, nil
	case "enter":
		title := m.draftTitle.Value()
		if title == "" {
			return m, nil
		}
		m.mode = modeBrowse
		m.draftTitle.Blur()
		return m, m.createCmd(m.draft, title)
	}
	var cmd tea.Cmd
	m.draftTitle, cmd = m.draftTitle.Update(msg)
	return m, cmd
}

func (m *appModel) applyCmd(in drag.Intent) tea.Cmd {
	ctx, deps := m.ctx, m.deps
	env := drag.Env{Store: deps.Vault, FileOrder: deps.Settings}
	return func() tea.Msg {
		return appliedMsg{intent: in, err: drag.Apply(ctx, in, env)}
	}
}

func (m *appModel) reloadCmd() tea.Cmd {
	ctx, reload := m.ctx, m.deps.Reload
	return func() tea.Msg {
		_, changed, err := reload(ctx)
		return reloadedMsg{changed: changed, err: err}
	}
}

// createCmd writes the drafted task into the draft's file, or the first file
// in the saved order when the draft names none.
func (m *appModel) createCmd(d drag.Draft, title string) tea.Cmd {
	ctx, vault := m.ctx, m.deps.Vault
	path := d.Path
	if path == "" {
		if order := m.deps.Settings.Snapshot().FileOrder; len(order) > 0 {
			path = order[0]
		}
	}
	t := model.Task{Title: title, Scheduled: d.Scheduled, Length: d.Length, Priority: model.PriorityDefault}
	return func() tea.Msg {
		if path == "" {
			return createdMsg{err: errors.New("no file to create the task in")}
		}
		id, err := vault.CreateTask(ctx, path, d.Heading, t)
		return createdMsg{id: id, err: err}
	}
}

func (m *appModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *appModel) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
}

func payloadLabel(p drag.Payload) string {
	switch p.Kind {
	case drag.PayloadBlock:
		return fmt.Sprintf("block (%d tasks)", len(p.Tasks))
	case drag.PayloadGroup:
		return "file " + p.Path
	case drag.PayloadNow, drag.PayloadNewButton:
		return string(p.Kind)
	case drag.PayloadTime:
		return "time from " + p.Start.ISO()
	}
	return string(p.Kind) + " " + p.TaskID
}

func describe(in drag.Intent) string {
	switch in.Kind {
	case drag.IntentDelete:
		return fmt.Sprintf("Deleted %d tasks", len(in.Delete))
	case drag.IntentShift:
		return "Shifted tasks by " + drag.FormatDelta(in.Delta)
	case drag.IntentReorder:
		return fmt.Sprintf("Moved %s before %s", in.Reorder.File, in.Reorder.Before)
	}
	return "Saved"
}
