package cli

import (
	"strconv"

	"timeruler/internal/drag"

	"github.com/spf13/cobra"
)

type fileOrderList []string

func (l fileOrderList) TableHeader() []string { return []string{"#", "FILE"} }

func (l fileOrderList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for i, f := range l {
		rows = append(rows, []string{strconv.Itoa(i + 1), f})
	}
	return rows
}

func newFileOrderCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file-order",
		Short: "Inspect and change the order task files are grouped in",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List files in display order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmdContext(cmd), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()
			return writeOut(cmd, app, map[string]any{"data": fileOrderList(s.settings.Snapshot().FileOrder)})
		},
	}

	var before string
	moveCmd := &cobra.Command{
		Use:   "move <file>",
		Short: "Move a file directly before another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			res, err := s.perform(ctx,
				drag.Payload{Kind: drag.PayloadGroup, Path: args[0]},
				&drag.Target{Kind: drag.TargetHeading, Heading: before},
			)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": map[string]any{"fileOrder": s.settings.Snapshot().FileOrder},
			})
		},
	}
	moveCmd.Flags().StringVar(&before, "before", "", "File to move in front of")
	_ = moveCmd.MarkFlagRequired("before")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(moveCmd)
	return cmd
}
