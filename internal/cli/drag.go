package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timeruler/internal/codec"
	"timeruler/internal/drag"
	"timeruler/internal/model"

	"github.com/spf13/cobra"
)

func newDragCmd(app *App) *cobra.Command {
	var (
		payloadKind, sourceID, taskID, path, from string
		tasks                                     []string
		targetKind, targetID, heading, at, length string
		priority, targetTask                      string
	)

	cmd := &cobra.Command{
		Use:   "drag",
		Short: "Resolve and apply one drag-and-drop gesture",
		Long: strings.TrimSpace(`
Simulates a drop of a payload on a target, the same way the timeline does.
Without --target the payload is dropped outside every target.

Payload kinds: task, block, group, now, new_button, task-length, time, due
Target kinds:  slot, heading, delete, task
`),
		Example: strings.TrimSpace(`
  # Move a task to 14:00 today
  timeruler drag --payload task --task plan::3 --target slot --at 14:00

  # Delete a task and its children
  timeruler drag --payload task --task plan::3 --target delete --yes

  # Put a file before another in the file order
  timeruler drag --payload group --path inbox.md --target heading --heading plan.md
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			p := drag.Payload{
				Kind:     drag.PayloadKind(payloadKind),
				SourceID: sourceID,
				TaskID:   taskID,
				Tasks:    tasks,
				Path:     path,
			}
			if !p.Kind.Valid() {
				return writeErr(cmd, fmt.Errorf("invalid --payload %q", payloadKind))
			}
			if from != "" {
				if p.Start, err = parseWhen(from, app.clock(), app.location()); err != nil {
					return writeErr(cmd, err)
				}
			}

			var target *drag.Target
			if targetKind != "" {
				target = &drag.Target{Kind: drag.TargetKind(targetKind), ID: targetID, Heading: heading}
				if !target.Kind.Valid() {
					return writeErr(cmd, fmt.Errorf("invalid --target %q", targetKind))
				}
				if at != "" {
					if target.Fields.Scheduled, err = parseWhen(at, app.clock(), app.location()); err != nil {
						return writeErr(cmd, err)
					}
				}
				if length != "" {
					l, ok := codec.ParseLength(length)
					if !ok {
						return writeErr(cmd, fmt.Errorf("invalid --length %q", length))
					}
					target.Fields.Length = &l
				}
				if priority != "" {
					pr, err := parsePriority(priority)
					if err != nil {
						return writeErr(cmd, err)
					}
					target.Fields.Priority = &pr
				}
				if targetTask != "" {
					t, err := s.task(targetTask)
					if err != nil {
						return writeErr(cmd, err)
					}
					target.Kind = drag.TargetTask
					if target.ID == "" {
						target.ID = t.ID
					}
					if target.Fields.Scheduled == nil {
						target.Fields.Scheduled = t.Scheduled
					}
				}
			}

			res, err := s.perform(ctx, p, target)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&payloadKind, "payload", "", "Payload kind")
	cmd.Flags().StringVar(&sourceID, "source-id", "", "UI element the drag started on")
	cmd.Flags().StringVar(&taskID, "task", "", "Dragged task id (task, task-length, due)")
	cmd.Flags().StringSliceVar(&tasks, "tasks", nil, "Dragged task ids (block, group)")
	cmd.Flags().StringVar(&path, "path", "", "Dragged group's file path")
	cmd.Flags().StringVar(&from, "from", "", "Time the drag started at (time, task-length)")
	cmd.Flags().StringVar(&targetKind, "target", "", "Target kind (omit to drop outside every target)")
	cmd.Flags().StringVar(&targetID, "target-id", "", "UI element that received the drop")
	cmd.Flags().StringVar(&heading, "heading", "", "Heading target's file path")
	cmd.Flags().StringVar(&at, "at", "", "Slot time (HH:MM, YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&length, "length", "", "Slot length (e.g. 30m)")
	cmd.Flags().StringVar(&priority, "priority", "", "Slot priority")
	cmd.Flags().StringVar(&targetTask, "target-task", "", "Drop on this task and copy its schedule")
	_ = cmd.MarkFlagRequired("payload")
	return cmd
}

func newShiftNowCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "shift-now",
		Short: "Shift today's open timed tasks so the earliest starts at --to",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			at, err := parseWhen(to, app.clock(), app.location())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.perform(ctx, drag.Payload{Kind: drag.PayloadNow}, slot(model.Patch{Scheduled: at}))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "New start of the earliest task (HH:MM or YYYY-MM-DDTHH:MM)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>...",
		Short: "Delete tasks and all their children (bottom-up)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			for _, id := range args {
				if _, err := s.task(id); err != nil {
					return writeErr(cmd, err)
				}
			}
			p := drag.Payload{Kind: drag.PayloadTask, TaskID: args[0]}
			if len(args) > 1 {
				p = drag.Payload{Kind: drag.PayloadBlock, Tasks: args}
			}
			res, err := s.perform(ctx, p, &drag.Target{Kind: drag.TargetDelete})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
}

func newResizeCmd(app *App) *cobra.Command {
	var to, length string

	cmd := &cobra.Command{
		Use:   "resize <task-id>",
		Short: "Set a timed task's length by dragging its end to --to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (to == "") == (length == "") {
				return writeErr(cmd, errors.New("pass exactly one of --to or --length"))
			}
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, err := s.task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !t.HasTimedSchedule() {
				return writeErr(cmd, fmt.Errorf("task %s has no scheduled time", t.ID))
			}
			var end *model.DateTime
			if length != "" {
				l, ok := codec.ParseLength(length)
				if !ok {
					return writeErr(cmd, fmt.Errorf("invalid --length %q", length))
				}
				start, err := t.Scheduled.In(app.location())
				if err != nil {
					return writeErr(cmd, err)
				}
				end = model.FromTime(start.Add(time.Duration(l.Minutes())*time.Minute), false)
			} else if end, err = parseWhen(to, app.clock(), app.location()); err != nil {
				return writeErr(cmd, err)
			}
			p := drag.Payload{Kind: drag.PayloadTaskLength, TaskID: t.ID, Start: t.Scheduled}
			res, err := s.perform(ctx, p, slot(model.Patch{Scheduled: end}))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "End time")
	cmd.Flags().StringVar(&length, "length", "", "Length (e.g. 45m)")
	return cmd
}

func newRescheduleCmd(app *App) *cobra.Command {
	var to, due string

	cmd := &cobra.Command{
		Use:   "reschedule <task-id>",
		Short: "Drop a task on a new scheduled time (--to) or due date (--due)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (to == "") == (due == "") {
				return writeErr(cmd, errors.New("pass exactly one of --to or --due"))
			}
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			t, err := s.task(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			p := drag.Payload{Kind: drag.PayloadTask, TaskID: t.ID}
			when := to
			if due != "" {
				p.Kind = drag.PayloadDue
				when = due
			}
			at, err := parseWhen(when, app.clock(), app.location())
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.perform(ctx, p, slot(model.Patch{Scheduled: at}))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "New scheduled time (HH:MM, YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func slot(fields model.Patch) *drag.Target {
	return &drag.Target{Kind: drag.TargetSlot, Fields: fields}
}
