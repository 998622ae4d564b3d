package graph

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"timeruler/internal/codec"
	"timeruler/internal/model"
)

// Source is the read side of the backing store.
type Source interface {
	FetchRawItems(ctx context.Context, q model.Query) ([]model.RawItem, error)
}

// Filter drops raw items before they are hashed or parsed.
type Filter struct {
	// ExcludePaths are path prefixes whose items are ignored.
	ExcludePaths []string
	// Now anchors the "start date in the future" check. Nil means time.Now.
	Now func() time.Time
}

func (f Filter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Loader reloads the graph from a Source and skips the rebuild when the
// filtered items are unchanged since the previous load.
type Loader struct {
	src    Source
	query  model.Query
	filter Filter

	parse func(model.RawItem) model.Task

	mu     sync.Mutex
	hash   uint64
	loaded bool
	graph  *Graph
}

func NewLoader(src Source, q model.Query, f Filter) *Loader {
	return &Loader{src: src, query: q, filter: f, parse: codec.Parse, graph: Build(nil)}
}

// Graph returns the most recently built graph.
func (l *Loader) Graph() *Graph {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.graph
}

// Reload fetches the items and rebuilds the graph. Items are filtered and
// hashed raw; they are only parsed when the hash moved. changed reports
// whether a new graph was built.
func (l *Loader) Reload(ctx context.Context) (g *Graph, changed bool, err error) {
	raw, err := l.src.FetchRawItems(ctx, l.query)
	if err != nil {
		return l.Graph(), false, fmt.Errorf("fetch tasks: %w", err)
	}
	items := l.filter.apply(raw)

	sum, err := hashstructure.Hash(items, hashstructure.FormatV2, nil)
	if err != nil {
		return l.Graph(), false, fmt.Errorf("hash tasks: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded && sum == l.hash {
		return l.graph, false, nil
	}
	tasks := make([]model.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, l.parse(item))
	}
	l.hash = sum
	l.loaded = true
	l.graph = Build(tasks)
	return l.graph, true, nil
}

// apply keeps the items that are open, outside the excluded paths and already
// started.
func (f Filter) apply(raw []model.RawItem) []model.RawItem {
	today := f.now().Format("2006-01-02")
	items := make([]model.RawItem, 0, len(raw))
	for _, item := range raw {
		if item.Completed || f.excluded(item.Path) {
			continue
		}
		done, start := codec.Lifecycle(item)
		if done || (start != nil && start.Date > today) {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (f Filter) excluded(path string) bool {
	for _, p := range f.ExcludePaths {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
