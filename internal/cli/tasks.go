package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"timeruler/internal/codec"
	"timeruler/internal/model"

	"github.com/spf13/cobra"
)

type taskList []model.Task

func (l taskList) TableHeader() []string {
	return []string{"ID", "SCHEDULED", "LENGTH", "PRI", "TITLE"}
}

func (l taskList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		sched, length := "", ""
		if t.Scheduled != nil {
			sched = t.Scheduled.ISO()
		}
		if t.Length != nil {
			length = codec.FormatLength(*t.Length)
		}
		rows = append(rows, []string{t.ID, sched, length, t.Priority.Key(), t.Title})
	}
	return rows
}

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Read and create vault tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksFormatCmd(app))
	cmd.AddCommand(newTasksParseCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var scheduledOnly bool
	var prefix string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks (path then line order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmdContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			out := taskList{}
			for _, t := range s.graph().Tasks() {
				if scheduledOnly && t.Scheduled == nil {
					continue
				}
				if prefix != "" && !strings.HasPrefix(t.Path, prefix) {
					continue
				}
				out = append(out, t)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
	cmd.Flags().BoolVar(&scheduledOnly, "scheduled-only", false, "Only tasks with a scheduled date")
	cmd.Flags().StringVar(&prefix, "path", "", "Only tasks whose file path starts with this prefix")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmdContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, err := s.task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": t,
				"meta": map[string]any{
					"descendants":      s.graph().Descendants(t.ID),
					"underQueryParent": s.graph().AncestorIsQueryParent(t.ID),
					"line":             codec.Serialize(t, s.cfg.Dialect()),
					"dialect":          s.cfg.Dialect(),
					"children":         taskList(s.graph().Children(t.ID)),
					"hasTimedSchedule": t.HasTimedSchedule(),
				},
			})
		},
	}
}

func newTasksFormatCmd(app *App) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "format <task-id>",
		Short: "Serialize a task as a line in a field dialect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmdContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, err := s.task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			d := s.cfg.Dialect()
			if dialect != "" {
				if d, err = codec.ParseDialect(dialect); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"id":      t.ID,
				"dialect": d,
				"line":    codec.Serialize(t, d),
			}})
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", "", "Field dialect (dataview|full-calendar|tasks; default from config)")
	return cmd
}

func newTasksParseCmd(app *App) *cobra.Command {
	var dialect string

	cmd := &cobra.Command{
		Use:   "parse <line>",
		Short: "Parse an annotated task line without a vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := codec.ParseDialect(dialect)
			if err != nil {
				return writeErr(cmd, err)
			}
			t := codec.ParseLine(args[0])
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"task":    t,
				"dialect": d,
				"line":    codec.Serialize(t, d),
			}})
		},
	}
	cmd.Flags().StringVar(&dialect, "dialect", string(codec.DialectDataview), "Dialect for the re-serialized line")
	return cmd
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var path, heading, title, scheduled, length, priority string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task line in a vault file",
		Example: strings.TrimSpace(`
  timeruler tasks create --path Projects/plan.md --heading Today --title "Write report" --scheduled 14:00 --length 1h30m
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			if strings.TrimSpace(path) == "" {
				return writeErr(cmd, errors.New("missing --path"))
			}
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t := model.Task{Title: title, Priority: model.PriorityDefault}
			if scheduled != "" {
				if t.Scheduled, err = parseWhen(scheduled, app.clock(), app.location()); err != nil {
					return writeErr(cmd, err)
				}
			}
			if length != "" {
				l, ok := codec.ParseLength(length)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid --length %q", length))
				}
				t.Length = &l
			}
			if priority != "" {
				p, err := parsePriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				t.Priority = p
			}

			id, err := s.vault.CreateTask(ctx, path, heading, t)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, _, err := s.reload(ctx); err != nil {
				return writeErr(cmd, err)
			}
			created, err := s.task(id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": created})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Vault-relative markdown file")
	cmd.Flags().StringVar(&heading, "heading", "", "Insert below this heading (default: top of file)")
	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&scheduled, "scheduled", "", "Scheduled time (HH:MM, YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&length, "length", "", "Length (e.g. 45m, 1h30m)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (highest|high|medium|low|lowest or 1-5)")
	return cmd
}

func parsePriority(s string) (model.Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if p := model.Priority(n); p.Valid() {
			return p, nil
		}
	} else if p, ok := model.PriorityFromKey(s); ok {
		return p, nil
	}
	return 0, fmt.Errorf("invalid priority %q (expected highest|high|medium|low|lowest or 1-5)", s)
}
