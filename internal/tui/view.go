package tui

import (
	"fmt"
	"strings"
	"time"

	"timeruler/internal/codec"
	"timeruler/internal/drag"
	"timeruler/internal/layout"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.viewHeader(width))
	b.WriteString("\n\n")
	switch m.mode {
	case modeConfirm:
		b.WriteString(renderConfirm(width, m.pending.Confirm, m.confirmYes))
	case modeDraft:
		b.WriteString(m.viewDraft(width))
	default:
		b.WriteString(m.viewTimeline(width))
		b.WriteString(m.viewDetail(width))
	}
	b.WriteString("\n")
	if m.status != "" {
		st := styleMuted()
		if m.statusErr {
			st = styleError()
		}
		b.WriteString(st.Render(clip(m.status, width)))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) viewHeader(width int) string {
	title := lipgloss.NewStyle().Bold(true).Render("timeruler")
	parts := []string{
		title,
		m.day.Format("Mon 2006-01-02"),
		fmt.Sprintf("%s–%s", m.windowStart.Format("15:04"), m.windowEnd.Format("15:04")),
		styleCursor().Render(" " + m.cursor.Format("15:04") + " "),
	}
	if p, ok := m.machine.Active(); ok {
		parts = append(parts, styleSelected().Render(" dragging "+payloadLabel(p)+" "))
	}
	if m.extend {
		parts = append(parts, styleMuted().Render("extend"))
	}
	return clip(strings.Join(parts, "  "), width)
}

func (m appModel) viewTimeline(width int) string {
	var b strings.Builder
	for _, sp := range m.spans {
		m.writeSpan(&b, sp, 0, width)
	}
	if len(m.items) > m.timed {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render("Unscheduled"))
		b.WriteString("\n")
		for i := m.timed; i < len(m.items); i++ {
			t, ok := m.graph().Task(m.items[i])
			if !ok {
				continue
			}
			b.WriteString(m.taskLabel(i, t.Title, width-2))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m appModel) writeSpan(b *strings.Builder, sp layout.Span, depth, width int) {
	gutter := sp.Start.Format("15:04")
	if !m.cursor.Before(sp.Start) && m.cursor.Before(sp.End) && len(sp.Nested) == 0 {
		gutter = styleCursor().Render(gutter)
	}
	indent := strings.Repeat("  ", depth)
	avail := width - 8 - 2*depth

	if sp.Kind == layout.KindFiller {
		capStart, capEnd := "╭", "╯"
		if sp.ChopStart {
			capStart = "┌"
		}
		if sp.ChopEnd {
			capEnd = "┘"
		}
		label := fmt.Sprintf("%s %s free %s", capStart, formatSpan(sp.Duration()), capEnd)
		b.WriteString(gutter + " " + indent + styleMuted().Render(clip(label, avail)) + "\n")
		return
	}

	var titles []string
	for _, id := range sp.Block.Tasks {
		t, ok := m.graph().Task(id)
		if !ok {
			continue
		}
		i := m.indexOf(id)
		titles = append(titles, m.taskLabel(i, t.Title, avail))
	}
	bar := styleBlock(depth).Render("█")
	end := sp.End.Format("15:04")
	if sp.Extended {
		end += "…"
	}
	head := fmt.Sprintf("%s %s%s %s ", gutter, indent, bar, styleMuted().Render("→"+end))
	b.WriteString(head + strings.Join(titles, styleMuted().Render(" · ")) + "\n")
	for _, n := range sp.Nested {
		m.writeSpan(b, n, depth+1, width)
	}
}

func (m appModel) taskLabel(i int, title string, width int) string {
	title = clip(title, width)
	if i == m.sel {
		return styleSelected().Render("▸ " + title)
	}
	return "  " + title
}

func (m appModel) indexOf(id string) int {
	for i, x := range m.items {
		if x == id {
			return i
		}
	}
	return -1
}

func (m appModel) viewDetail(width int) string {
	t, ok := m.selectedTask()
	if !ok {
		return ""
	}
	var lines []string
	lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render(clip(t.Title, width)))
	meta := []string{t.ID}
	if t.Scheduled != nil {
		meta = append(meta, "⏳ "+t.Scheduled.ISO())
	}
	if t.Length != nil {
		meta = append(meta, codec.FormatLength(*t.Length))
	}
	if t.Due != nil {
		meta = append(meta, "📅 "+t.Due.ISO())
	}
	meta = append(meta, t.Priority.Key())
	if len(t.Tags) > 0 {
		meta = append(meta, strings.Join(t.Tags, " "))
	}
	lines = append(lines, styleMuted().Render(clip(strings.Join(meta, "  "), width)))
	if notes := renderNotes(t.Notes, width); notes != "" {
		lines = append(lines, notes)
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m appModel) viewDraft(width int) string {
	var when string
	if m.draft.Scheduled != nil {
		when = m.draft.Scheduled.ISO()
	}
	if m.draft.Length != nil {
		when += " for " + codec.FormatLength(*m.draft.Length)
	}
	if m.draft.Path != "" {
		when += " in " + m.draft.Path
	}
	body := strings.TrimSpace(when) + "\n\n" + m.draftTitle.View()
	return renderModal(width, "New task", body, "enter: create   esc: discard")
}

func renderConfirm(width int, prompt string, yes bool) string {
	btn := lipgloss.NewStyle().Padding(0, 1).Foreground(colorModalFg)
	active := btn.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	ok, cancel := btn.Render("Yes"), btn.Render("Cancel")
	if yes {
		ok = active.Render("Yes")
	} else {
		cancel = active.Render("Cancel")
	}
	body := prompt + "\n\n" + lipgloss.JoinHorizontal(lipgloss.Top, ok, " ", cancel)
	return renderModal(width, "Confirm", body, "y/n   tab: focus   enter: select   esc: cancel")
}

func renderModal(width int, title, body, hint string) string {
	w := width - 4
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n" + body + "\n\n" + styleMuted().Render(hint)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Foreground(colorModalFg).
		Background(colorModalBg).
		Padding(1, 2).
		Width(w).
		Render(content) + "\n"
}

func formatSpan(d time.Duration) string {
	return drag.FormatDelta(d)
}

func clip(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
