package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"timeruler/internal/drag"
	"timeruler/internal/graph"
	"timeruler/internal/model"
	"timeruler/internal/store"
)

// session is one opened vault: config, journal and a loaded graph.
type session struct {
	app      *App
	cfg      store.Config
	settings *store.Settings
	vault    *store.Vault
	journal  *store.Journal
	loader   *graph.Loader
}

func openSession(ctx context.Context, app *App) (*session, error) {
	path := app.ConfigPath
	if path == "" {
		p, err := store.ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	fileCfg, err := store.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	cfg := *fileCfg
	if app.Vault != "" {
		cfg.Vault = app.Vault
	}
	if cfg.Vault == "" {
		return nil, fmt.Errorf("no vault configured; pass --vault or set `vault` in %s", path)
	}
	root, err := filepath.Abs(cfg.Vault)
	if err != nil {
		return nil, err
	}
	if st, err := os.Stat(root); err != nil || !st.IsDir() {
		return nil, errors.New("vault is not a directory: " + root)
	}
	cfg.Vault = root

	j, err := store.OpenJournal(ctx, store.JournalPath(filepath.Dir(path)))
	if err != nil {
		return nil, err
	}
	v := store.NewVault(root, cfg.Dialect())
	v.Journal = j

	s := &session{
		app: app,
		cfg: cfg,
		// Settings persists what came from the file, not flag overrides.
		settings: store.NewSettings(path, fileCfg),
		vault:    v,
		journal:  j,
		loader: graph.NewLoader(v, model.Query{Prefix: cfg.Query}, graph.Filter{
			ExcludePaths: cfg.ExcludePaths,
			Now:          app.clock,
		}),
	}
	if _, _, err := s.reload(ctx); err != nil {
		_ = j.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() error { return s.journal.Close() }

// reload rebuilds the graph and, when it changed, merges newly seen files
// into the saved file order.
func (s *session) reload(ctx context.Context) (*graph.Graph, bool, error) {
	g, changed, err := s.loader.Reload(ctx)
	if err != nil {
		return g, false, err
	}
	if changed {
		if _, err := s.settings.MergeFileOrder(g.Paths()); err != nil {
			return g, changed, err
		}
	}
	return g, changed, nil
}

func (s *session) graph() *graph.Graph { return s.loader.Graph() }

func (s *session) task(id string) (model.Task, error) {
	t, ok := s.graph().Task(id)
	if !ok {
		return model.Task{}, errNotFound("task", id)
	}
	return t, nil
}

func (s *session) dragContext() drag.Context {
	return drag.Context{
		Graph:        s.graph(),
		DayStartHour: s.cfg.DayStartHour,
		Now:          s.app.clock(),
		Loc:          s.app.location(),
	}
}

func (s *session) env() drag.Env {
	return drag.Env{Store: s.vault, FileOrder: s.settings}
}
