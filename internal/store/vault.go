package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"timeruler/internal/codec"
	"timeruler/internal/model"
	"timeruler/internal/mutate"
)

// Recorder receives one entry per applied change.
type Recorder interface {
	Record(ctx context.Context, op string, ids []string, payload map[string]any) error
}

// Vault is a directory of markdown files holding list tasks.
type Vault struct {
	Root    string
	Dialect codec.Dialect
	// Journal, when set, records every write after it lands on disk.
	Journal Recorder

	mu sync.Mutex
}

func NewVault(root string, dialect codec.Dialect) *Vault {
	return &Vault{Root: filepath.Clean(root), Dialect: dialect}
}

// FetchRawItems walks every markdown file under the vault (hidden directories
// skipped) and returns their tasks ordered by path then line.
func (v *Vault) FetchRawItems(ctx context.Context, q model.Query) ([]model.RawItem, error) {
	paths, err := v.markdownFiles(ctx)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(q.Prefix)), "/")
	var out []model.RawItem
	for _, rel := range paths {
		if prefix != "" && !strings.HasPrefix(rel, prefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, err := v.readLines(rel)
		if err != nil {
			return nil, err
		}
		out = append(out, parseDocument(rel, lines)...)
	}
	return out, nil
}

func (v *Vault) markdownFiles(ctx context.Context) ([]string, error) {
	var out []string
	err := filepath.WalkDir(v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != v.Root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.Root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan vault %s: %w", v.Root, err)
	}
	sort.Strings(out)
	return out, nil
}

// PatchTasks rewrites each task's line with p applied, in the vault dialect.
// Every touched file is written once.
func (v *Vault) PatchTasks(ctx context.Context, ids []string, p model.Patch) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	byFile, order, err := groupByFile(ids)
	if err != nil {
		return err
	}
	for _, rel := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		lines, err := v.readLines(rel)
		if err != nil {
			return err
		}
		items := parseDocument(rel, lines)
		type change struct {
			id      string
			payload map[string]any
		}
		var changes []change
		for _, ref := range byFile[rel] {
			tl, ok := lineTask(lines, ref.line)
			raw, found := itemAt(items, ref.line)
			if !ok || !found {
				return mutate.NotFoundError{Kind: "task", ID: ref.id}
			}
			res := mutate.ApplyPatch(codec.Parse(raw), p)
			if !res.Changed {
				continue
			}
			lines[ref.line] = renderLine(tl, res.Task, v.Dialect)
			changes = append(changes, change{id: ref.id, payload: res.EventPayload})
		}
		if len(changes) == 0 {
			continue
		}
		if err := v.writeLines(rel, lines); err != nil {
			return err
		}
		for _, c := range changes {
			if err := v.record(ctx, "patch", []string{c.id}, c.payload); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteTasks removes each task line and its notes, strictly in the order
// given. Ids name lines as they were when the caller read them, so callers
// delete bottom-up within a file.
func (v *Vault) DeleteTasks(ctx context.Context, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	files := map[string][]string{}
	var touched []string
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, line, err := splitTaskID(id)
		if err != nil {
			return err
		}
		lines, ok := files[rel]
		if !ok {
			if lines, err = v.readLines(rel); err != nil {
				return err
			}
			touched = append(touched, rel)
		}
		raw, ok := itemAt(parseDocument(rel, lines), line)
		if !ok {
			return mutate.NotFoundError{Kind: "task", ID: id}
		}
		end := raw.Position.End.Line
		files[rel] = append(lines[:line:line], lines[end+1:]...)
	}
	for _, rel := range touched {
		if err := v.writeLines(rel, files[rel]); err != nil {
			return err
		}
	}
	return v.record(ctx, "delete", ids, map[string]any{"count": len(ids)})
}

// CreateTask inserts t as a new line directly below the first heading named
// heading, or at the top of the file when heading is empty or absent. It
// returns the new task's id.
func (v *Vault) CreateTask(ctx context.Context, path, heading string, t model.Task) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	rel, err := v.relPath(path)
	if err != nil {
		return "", err
	}
	lines, err := v.readLines(rel)
	if err != nil {
		return "", err
	}
	at := 0
	if h := strings.TrimSpace(heading); h != "" {
		re := regexp.MustCompile(`^#+\s+` + regexp.QuoteMeta(h) + `\s*$`)
		for i, line := range lines {
			if re.MatchString(line) {
				at = i + 1
				break
			}
		}
	}
	line := codec.Serialize(t, v.Dialect)
	lines = append(lines[:at], append([]string{line}, lines[at:]...)...)
	if err := v.writeLines(rel, lines); err != nil {
		return "", err
	}
	id := codec.IDFor(rel, at)
	if err := v.record(ctx, "create", []string{id}, map[string]any{"line": line}); err != nil {
		return "", err
	}
	return id, nil
}

func (v *Vault) record(ctx context.Context, op string, ids []string, payload map[string]any) error {
	if v.Journal == nil {
		return nil
	}
	if err := v.Journal.Record(ctx, op, ids, payload); err != nil {
		return fmt.Errorf("journal %s: %w", op, err)
	}
	return nil
}

type lineRef struct {
	id   string
	line int
}

func groupByFile(ids []string) (map[string][]lineRef, []string, error) {
	byFile := map[string][]lineRef{}
	var order []string
	for _, id := range ids {
		rel, line, err := splitTaskID(id)
		if err != nil {
			return nil, nil, err
		}
		if _, ok := byFile[rel]; !ok {
			order = append(order, rel)
		}
		byFile[rel] = append(byFile[rel], lineRef{id: id, line: line})
	}
	return byFile, order, nil
}

// splitTaskID turns "<path>::<line>" into the markdown file and line number.
func splitTaskID(id string) (string, int, error) {
	i := strings.LastIndex(id, "::")
	if i <= 0 {
		return "", 0, mutate.NotFoundError{Kind: "task", ID: id}
	}
	line, err := strconv.Atoi(id[i+2:])
	if err != nil || line < 0 {
		return "", 0, mutate.NotFoundError{Kind: "task", ID: id}
	}
	return id[:i] + ".md", line, nil
}

func lineTask(lines []string, n int) (taskLine, bool) {
	if n < 0 || n >= len(lines) {
		return taskLine{}, false
	}
	return matchTaskLine(lines[n])
}

// renderLine serializes t, keeping the original indentation and list marker.
func renderLine(orig taskLine, t model.Task, d codec.Dialect) string {
	s := codec.Serialize(t, d)
	return orig.indent + orig.marker + strings.TrimPrefix(s, "-")
}

func (v *Vault) relPath(path string) (string, error) {
	p := filepath.Clean(filepath.FromSlash(strings.TrimSpace(path)))
	if !filepath.IsAbs(p) {
		p = filepath.Join(v.Root, p)
	}
	rel, err := filepath.Rel(v.Root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %q is outside the vault", path)
	}
	return filepath.ToSlash(rel), nil
}

func (v *Vault) readLines(rel string) ([]string, error) {
	b, err := os.ReadFile(filepath.Join(v.Root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, mutate.NotFoundError{Kind: "file", ID: rel}
		}
		return nil, err
	}
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	if s == "" {
		return nil, nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n"), nil
}

func (v *Vault) writeLines(rel string, lines []string) error {
	path := filepath.Join(v.Root, filepath.FromSlash(rel))
	perm := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		perm = st.Mode().Perm()
	}
	body := strings.Join(lines, "\n")
	if len(lines) > 0 {
		body += "\n"
	}
	if err := atomicWriteFile(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp", path, []byte(body), perm); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
