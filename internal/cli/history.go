package cli

import (
	"strings"
	"time"

	"timeruler/internal/store"

	"github.com/spf13/cobra"
)

type historyList []store.JournalEntry

func (l historyList) TableHeader() []string { return []string{"AT", "OP", "TASKS"} }

func (l historyList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, e := range l {
		rows = append(rows, []string{e.At.Format(time.DateTime), e.Op, strings.Join(e.TaskIDs, ", ")})
	}
	return rows
}

func newHistoryCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List changes written to the vault (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmdContext(cmd)
			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			entries, err := s.journal.Recent(ctx, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": historyList(entries)})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max entries to return")
	return cmd
}
