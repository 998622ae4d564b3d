package cli

import (
	"strings"
	"time"

	"timeruler/internal/layout"

	"github.com/spf13/cobra"
)

type layoutView struct {
	WindowStart time.Time     `json:"windowStart"`
	WindowEnd   time.Time     `json:"windowEnd"`
	Spans       []layout.Span `json:"spans"`
}

func (v layoutView) TableHeader() []string {
	return []string{"KIND", "START", "END", "TASKS"}
}

func (v layoutView) TableRows() [][]string {
	var rows [][]string
	var walk func(spans []layout.Span, depth int)
	walk = func(spans []layout.Span, depth int) {
		for _, sp := range spans {
			kind := strings.Repeat("  ", depth) + string(sp.Kind)
			if sp.Extended {
				kind += "+"
			}
			var tasks string
			if sp.Block != nil {
				tasks = strings.Join(sp.Block.Tasks, ", ")
			}
			rows = append(rows, []string{kind, sp.Start.Format("15:04"), sp.End.Format("15:04"), tasks})
			walk(sp.Nested, depth+1)
		}
	}
	walk(v.Spans, 0)
	return rows
}

func newLayoutCmd(app *App) *cobra.Command {
	var date string
	var extend bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Arrange a day's scheduled tasks into timeline spans",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmdContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			day, err := parseDay(date, app.clock(), app.location())
			if err != nil {
				return writeErr(cmd, err)
			}
			ws, we := layout.Window(day, s.cfg.DayStartHour, s.cfg.DayEndHour, app.location())
			opts := layout.Options{Extend: s.cfg.ExtendBlocks}
			if cmd.Flags().Changed("extend") {
				opts.Extend = extend
			}
			blocks := layout.BlocksFromGraph(s.graph(), ws, we)
			return writeOut(cmd, app, map[string]any{"data": layoutView{
				WindowStart: ws,
				WindowEnd:   we,
				Spans:       layout.Arrange(blocks, ws, we, opts),
			}})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to arrange (YYYY-MM-DD; default today)")
	cmd.Flags().BoolVar(&extend, "extend", false, "Stretch zero-length blocks to the next block (default from config)")
	return cmd
}
