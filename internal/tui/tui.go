package tui

import (
	"context"
	"log"
	"time"

	"timeruler/internal/graph"
	"timeruler/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Deps is what the timeline needs from an opened vault.
type Deps struct {
	Vault    *store.Vault
	Settings *store.Settings
	// Graph returns the most recently loaded graph.
	Graph  func() *graph.Graph
	Reload func(ctx context.Context) (*graph.Graph, bool, error)
	Now    func() time.Time
	Loc    *time.Location
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) loc() *time.Location {
	if d.Loc != nil {
		return d.Loc
	}
	return time.Local
}

// Run starts the interactive timeline and blocks until it exits. Vault edits
// made elsewhere are picked up through a file watcher.
func Run(ctx context.Context, d Deps) error {
	applyThemePreference()
	applyColorProfilePreference()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))
	go func() {
		err := store.Watch(ctx, d.Vault.Root, 250*time.Millisecond, func() {
			p.Send(vaultChangedMsg{})
		})
		if err != nil {
			log.Printf("watch: %v", err)
		}
	}()
	_, err := p.Run()
	return err
}
