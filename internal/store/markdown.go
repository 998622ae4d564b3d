package store

import (
	"regexp"
	"strings"

	"timeruler/internal/model"
)

var (
	reHeading  = regexp.MustCompile(`^#{1,6}\s+(.*?)\s*#*\s*$`)
	reTaskLine = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+\[(.)\](?:\s+(.*))?$`)
	reListLine = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+`)
	reFence    = regexp.MustCompile("^\\s*(```|~~~)")
)

// indentWidth counts leading whitespace, a tab as four columns.
func indentWidth(ws string) int {
	n := 0
	for _, r := range ws {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

type taskLine struct {
	indent    string
	marker    string
	mark      string
	text      string
	completed bool
}

func matchTaskLine(line string) (taskLine, bool) {
	m := reTaskLine.FindStringSubmatch(line)
	if m == nil {
		return taskLine{}, false
	}
	return taskLine{
		indent:    m[1],
		marker:    m[2],
		mark:      m[3],
		text:      strings.TrimSpace(m[4]),
		completed: m[3] == "x" || m[3] == "X",
	}, true
}

// parseDocument extracts list tasks from one markdown file. Line numbers are
// zero-based. Nesting comes from indentation; deeper non-list lines under a
// task become its notes.
func parseDocument(path string, lines []string) []model.RawItem {
	type open struct {
		item   int
		indent int
	}
	var (
		items   []model.RawItem
		stack   []open
		heading string
		inFence bool
	)
	for n, line := range lines {
		if reFence.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := reHeading.FindStringSubmatch(line); m != nil {
			heading = m[1]
			stack = stack[:0]
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if tl, ok := matchTaskLine(line); ok {
			indent := indentWidth(tl.indent)
			for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
				stack = stack[:len(stack)-1]
			}
			item := model.RawItem{
				Text:      tl.text,
				Completed: tl.completed,
				Path:      path,
				Heading:   heading,
				Line:      n,
				Position: model.Position{
					Start: model.Point{Line: n, Col: len(tl.indent)},
					End:   model.Point{Line: n, Col: len(line)},
				},
			}
			if len(stack) > 0 {
				parent := &items[stack[len(stack)-1].item]
				parent.Children = append(parent.Children, model.RawChild{Line: n, Completed: tl.completed})
				item.HasParent = true
			}
			items = append(items, item)
			stack = append(stack, open{item: len(items) - 1, indent: indent})
			continue
		}

		ws := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		indent := indentWidth(ws)
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 || reListLine.MatchString(line) {
			continue
		}
		// Notes only attach to the task directly above.
		top := &items[stack[len(stack)-1].item]
		if top.Position.End.Line != n-1 && !blankBetween(lines, top.Position.End.Line, n) {
			continue
		}
		top.Text += "\n" + strings.TrimSpace(line)
		top.Position.End = model.Point{Line: n, Col: len(line)}
	}
	return items
}

func blankBetween(lines []string, from, to int) bool {
	for i := from + 1; i < to; i++ {
		if strings.TrimSpace(lines[i]) != "" {
			return false
		}
	}
	return true
}

// itemAt returns the task that starts on line.
func itemAt(items []model.RawItem, line int) (model.RawItem, bool) {
	for _, it := range items {
		if it.Line == line {
			return it, true
		}
	}
	return model.RawItem{}, false
}
