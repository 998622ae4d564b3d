package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"timeruler/internal/format"
	"timeruler/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Vault      string
	ConfigPath string
	PrettyJSON bool
	Format     string
	Yes        bool

	// Overridable in tests.
	now     func() time.Time
	loc     *time.Location
	confirm func(prompt string) (bool, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "timeruler",
		Short:        "Timeline scheduler for markdown task vaults (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive timeline
  timeruler --vault ~/notes

  # Scriptable commands
  timeruler tasks list --scheduled-only
  timeruler layout --date 2026-10-18

  # Move everything scheduled today so the first task starts at 10:00
  timeruler shift-now --to 10:00

  # Direct task lookup (shortcut for: timeruler tasks show <task-id>)
  timeruler Projects/plan::12
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Vault, "vault", envOr("TIMERULER_VAULT", ""), "Path to the markdown vault (overrides `vault` in config.yaml)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TIMERULER_CONFIG", ""), "Path to config.yaml (default: ~/.timeruler/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TIMERULER_FORMAT", "json"), "Output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&app.Yes, "yes", "y", false, "Accept confirmation prompts (bulk shifts and deletes)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newLayoutCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newShiftNowCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newResizeCmd(app))
	cmd.AddCommand(newRescheduleCmd(app))
	cmd.AddCommand(newFileOrderCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmdContext(cmd)
	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()
	return tui.Run(ctx, tui.Deps{
		Vault:    s.vault,
		Settings: s.settings,
		Graph:    s.loader.Graph,
		Reload:   s.reload,
		Now:      app.clock,
		Loc:      app.location(),
	})
}

func (app *App) clock() time.Time {
	if app.now != nil {
		return app.now()
	}
	return time.Now()
}

func (app *App) location() *time.Location {
	if app.loc != nil {
		return app.loc
	}
	return time.Local
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
