package graph

import (
	"sort"
	"strconv"
	"strings"

	"timeruler/internal/codec"
	"timeruler/internal/model"
)

// Graph is an immutable id → task index with parent links resolved from the
// declared child lists. A reload builds a new Graph; nothing mutates one in place.
type Graph struct {
	byID  map[string]*model.Task
	order []string
}

// Load parses raw store items and builds a graph from them.
func Load(raw []model.RawItem) *Graph {
	tasks := make([]model.Task, 0, len(raw))
	for _, item := range raw {
		tasks = append(tasks, codec.Parse(item))
	}
	return Build(tasks)
}

// Build indexes already-parsed tasks. Later duplicates of an id replace
// earlier ones. Child references to unknown ids are ignored. A child claimed
// by more than one list keeps the first parent seen.
func Build(tasks []model.Task) *Graph {
	g := &Graph{byID: make(map[string]*model.Task, len(tasks))}
	for i := range tasks {
		t := tasks[i]
		t.Parent = ""
		if _, dup := g.byID[t.ID]; !dup {
			g.order = append(g.order, t.ID)
		}
		g.byID[t.ID] = &t
	}
	for _, id := range g.order {
		for _, childID := range g.byID[id].Children {
			child, ok := g.byID[childID]
			if !ok || childID == id || child.Parent != "" {
				continue
			}
			child.Parent = id
		}
	}
	return g
}

func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.order)
}

func (g *Graph) Task(id string) (model.Task, bool) {
	if g == nil {
		return model.Task{}, false
	}
	t, ok := g.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return *t, true
}

// Tasks returns every task in load order.
func (g *Graph) Tasks() []model.Task {
	if g == nil {
		return nil
	}
	out := make([]model.Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, *g.byID[id])
	}
	return out
}

// Roots returns the tasks without a resolved parent, in load order.
func (g *Graph) Roots() []model.Task {
	var out []model.Task
	for _, t := range g.Tasks() {
		if t.Parent == "" {
			out = append(out, t)
		}
	}
	return out
}

// Children returns the resolved children of id in declared order.
func (g *Graph) Children(id string) []model.Task {
	t, ok := g.Task(id)
	if !ok {
		return nil
	}
	var out []model.Task
	for _, c := range t.Children {
		if child, ok := g.byID[c]; ok && child.Parent == id {
			out = append(out, *child)
		}
	}
	return out
}

// Descendants returns the transitive closure of id's resolved children, not
// including id itself. Cycles in the declared child lists terminate.
func (g *Graph) Descendants(id string) []string {
	if g == nil {
		return nil
	}
	visited := map[string]bool{id: true}
	var out []string
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := g.byID[cur]
		if !ok {
			continue
		}
		for i := len(t.Children) - 1; i >= 0; i-- {
			c := t.Children[i]
			if visited[c] {
				continue
			}
			if _, ok := g.byID[c]; !ok {
				continue
			}
			visited[c] = true
			out = append(out, c)
			stack = append(stack, c)
		}
	}
	return out
}

// AncestorIsQueryParent walks the parent chain of id and reports whether some
// ancestor is a query parent. The walk stops at the first one found.
func (g *Graph) AncestorIsQueryParent(id string) bool {
	t, ok := g.Task(id)
	if !ok {
		return false
	}
	seen := map[string]bool{id: true}
	for p := t.Parent; p != "" && !seen[p]; {
		seen[p] = true
		parent, ok := g.byID[p]
		if !ok {
			return false
		}
		if parent.QueryParent {
			return true
		}
		p = parent.Parent
	}
	return false
}

// Paths returns the distinct file paths in the graph, sorted.
func (g *Graph) Paths() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range g.Tasks() {
		if t.Path != "" && !seen[t.Path] {
			seen[t.Path] = true
			out = append(out, t.Path)
		}
	}
	sort.Strings(out)
	return out
}

// CompareIDs orders ids naturally: "<path>::<line>" ids compare by path and
// then numeric line, plain numeric ids compare numerically.
func CompareIDs(a, b string) int {
	ap, al := splitID(a)
	bp, bl := splitID(b)
	if ap != bp {
		return strings.Compare(ap, bp)
	}
	if al >= 0 && bl >= 0 {
		switch {
		case al < bl:
			return -1
		case al > bl:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func splitID(id string) (prefix string, line int) {
	prefix, num := "", id
	if i := strings.LastIndex(id, "::"); i >= 0 {
		prefix, num = id[:i], id[i+2:]
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return id, -1
	}
	return prefix, n
}

// SortIDs sorts ids ascending with CompareIDs.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
}
