package cli

import (
	"log"
	"os"
	"os/signal"
	"time"

	"timeruler/internal/graph"
	"timeruler/internal/store"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print one JSON line each time the vault's tasks actually change",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
			defer stop()

			s, err := openSession(ctx, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			emit := func(g *graph.Graph) {
				ev := map[string]any{"data": map[string]any{
					"at":    app.clock(),
					"tasks": g.Len(),
					"files": g.Paths(),
				}}
				if err := writeOut(cmd, app, ev); err != nil {
					log.Printf("watch: %v", err)
				}
			}
			emit(s.graph())

			err = store.Watch(ctx, s.cfg.Vault, debounce, func() {
				g, changed, err := s.reload(ctx)
				if err != nil {
					log.Printf("reload: %v", err)
					return
				}
				if changed {
					emit(g)
				}
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 250*time.Millisecond, "Quiet period before reloading")
	return cmd
}
