package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	xansi "github.com/charmbracelet/x/ansi"
)

// Table is implemented by payloads that have a tabular text rendering.
type Table interface {
	TableHeader() []string
	TableRows() [][]string
}

// MaxCellWidth bounds a text cell; longer values are truncated with an ellipsis.
const MaxCellWidth = 48

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// WriteText renders a Table payload (bare or under the "data" key of an
// envelope) as a bordered table. Anything else falls back to indented JSON.
func WriteText(w io.Writer, v any) error {
	t, ok := findTable(v)
	if !ok {
		return WriteJSON(w, v, true)
	}
	rows := t.TableRows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "(none)")
		return err
	}
	clipped := make([][]string, len(rows))
	for i, r := range rows {
		out := make([]string, len(r))
		for j, c := range r {
			out[j] = Clip(c, MaxCellWidth)
		}
		clipped[i] = out
	}
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.TableHeader()...).
		Rows(clipped...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func findTable(v any) (Table, bool) {
	if t, ok := v.(Table); ok {
		return t, true
	}
	if m, ok := v.(map[string]any); ok {
		if t, ok := m["data"].(Table); ok {
			return t, true
		}
	}
	return nil, false
}

// Clip flattens s to one line and truncates it to width display cells.
func Clip(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || xansi.StringWidth(s) <= width {
		return s
	}
	return xansi.Truncate(s, width, "…")
}
