package drag

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"timeruler/internal/graph"
	"timeruler/internal/model"
)

var now = time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)

func ctxFor(g *graph.Graph) Context {
	return Context{Graph: g, DayStartHour: 6, Now: now, Loc: time.UTC}
}

type patchCall struct {
	IDs   []string
	Patch model.Patch
}

type fakeStore struct {
	patches []patchCall
	deletes [][]string
	drafts  []Draft
	moves   [][2]string
	err     error
}

func (f *fakeStore) PatchTasks(ctx context.Context, ids []string, p model.Patch) error {
	f.patches = append(f.patches, patchCall{IDs: ids, Patch: p})
	return f.err
}

func (f *fakeStore) DeleteTasks(ctx context.Context, ids []string) error {
	f.deletes = append(f.deletes, ids)
	return f.err
}

func (f *fakeStore) OpenDraft(ctx context.Context, d Draft) error {
	f.drafts = append(f.drafts, d)
	return nil
}

func (f *fakeStore) MoveFileBefore(file, before string) error {
	f.moves = append(f.moves, [2]string{file, before})
	return nil
}

func (f *fakeStore) calls() int { return len(f.patches) + len(f.deletes) + len(f.drafts) + len(f.moves) }

func (f *fakeStore) env() Env { return Env{Store: f, FileOrder: f, Drafts: f} }

// machine returns a machine that applies synchronously and answers every
// prompt with answer.
func machine(g *graph.Graph, st *fakeStore, answer bool) *Machine {
	return NewMachine(
		func() Context { return ctxFor(g) },
		func(string) bool { return answer },
		func(in Intent) { _ = Apply(context.Background(), in, st.env()) },
	)
}

func slot(date, hm string) *Target {
	return &Target{Kind: TargetSlot, ID: "slot-" + date + hm, Fields: model.Patch{Scheduled: model.DateAt(date, hm)}}
}

func TestBulkShiftFromEarliestGroup(t *testing.T) {
	g := graph.Build([]model.Task{
		{ID: "a", Scheduled: model.DateAt("2026-10-18", "09:00")},
		{ID: "b", Scheduled: model.DateAt("2026-10-18", "11:00")},
		{ID: "c", Scheduled: model.DateAt("2026-10-18", "11:00")},
	})
	st := &fakeStore{}
	var prompt string
	m := NewMachine(
		func() Context { return ctxFor(g) },
		func(p string) bool { prompt = p; return true },
		func(in Intent) { _ = Apply(context.Background(), in, st.env()) },
	)
	m.Start(Payload{Kind: PayloadNow, SourceID: "now"})
	in, outcome := m.Drop(slot("2026-10-18", "10:00"))

	if outcome != OutcomeDispatched || in.Delta != time.Hour {
		t.Fatalf("outcome=%v delta=%v", outcome, in.Delta)
	}
	if prompt != "Shift tasks by 1h0m?" {
		t.Fatalf("prompt = %q", prompt)
	}
	want := []patchCall{
		{IDs: []string{"a"}, Patch: model.Patch{Scheduled: model.DateAt("2026-10-18", "10:00")}},
		{IDs: []string{"b", "c"}, Patch: model.Patch{Scheduled: model.DateAt("2026-10-18", "12:00")}},
	}
	if !reflect.DeepEqual(st.patches, want) {
		t.Fatalf("patches = %+v", st.patches)
	}
	if _, ok := m.Active(); ok {
		t.Fatalf("machine should be idle after drop")
	}
}

func TestBulkShiftSelection(t *testing.T) {
	g := graph.Build([]model.Task{
		{ID: "early", Scheduled: model.DateAt("2026-10-18", "05:00")},
		{ID: "ok", Scheduled: model.DateAt("2026-10-18", "07:00")},
		{ID: "late-night", Scheduled: model.DateAt("2026-10-19", "05:59")},
		{ID: "tomorrow", Scheduled: model.DateAt("2026-10-19", "06:00")},
		{ID: "allday", Scheduled: model.DateOnly("2026-10-18")},
		{ID: "done", Scheduled: model.DateAt("2026-10-18", "08:00"), Completed: true},
		{ID: "q", Scheduled: model.DateAt("2026-10-18", "09:00"), QueryParent: true, Children: []string{"under-q"}},
		{ID: "under-q", Scheduled: model.DateAt("2026-10-18", "09:30")},
	})
	in := Resolve(Payload{Kind: PayloadNow}, slot("2026-10-18", "06:30"), ctxFor(g))
	if in.Kind != IntentShift || in.Delta != -30*time.Minute {
		t.Fatalf("intent = %+v", in)
	}
	var ids []string
	for _, op := range in.Patches {
		ids = append(ids, op.IDs...)
	}
	if !reflect.DeepEqual(ids, []string{"ok", "late-night"}) {
		t.Fatalf("shifted ids = %v", ids)
	}
	if in.Confirm != "Shift tasks by -0h30m?" {
		t.Fatalf("confirm = %q", in.Confirm)
	}
}

func TestBulkShiftWithNothingToMove(t *testing.T) {
	g := graph.Build([]model.Task{{ID: "x", Scheduled: model.DateOnly("2026-10-18")}})
	if in := Resolve(Payload{Kind: PayloadNow}, slot("2026-10-18", "10:00"), ctxFor(g)); !in.Noop() {
		t.Fatalf("expected no-op, got %+v", in)
	}
}

func TestDeclinedShiftHasNoSideEffects(t *testing.T) {
	g := graph.Build([]model.Task{
		{ID: "a", Scheduled: model.DateAt("2026-10-18", "09:00")},
		{ID: "b", Scheduled: model.DateAt("2026-10-18", "11:00")},
	})
	st := &fakeStore{}
	m := machine(g, st, false)
	m.Start(Payload{Kind: PayloadNow})
	if _, outcome := m.Drop(slot("2026-10-18", "10:00")); outcome != OutcomeDeclined {
		t.Fatalf("outcome = %v", outcome)
	}
	if st.calls() != 0 {
		t.Fatalf("declined shift issued %d calls", st.calls())
	}
}

func TestDeleteOrdersReverseByID(t *testing.T) {
	g := graph.Build([]model.Task{
		{ID: "1", Children: []string{"3"}},
		{ID: "2"},
		{ID: "3"},
	})
	st := &fakeStore{}
	m := machine(g, st, true)
	m.Start(Payload{Kind: PayloadGroup, SourceID: "group-x", Tasks: []string{"3", "1", "2"}})
	in, outcome := m.Drop(&Target{Kind: TargetDelete, ID: "trash"})
	if outcome != OutcomeDispatched {
		t.Fatalf("outcome = %v", outcome)
	}
	if in.Confirm == "" {
		t.Fatalf("multi-task delete should ask for confirmation")
	}
	if !reflect.DeepEqual(st.deletes, [][]string{{"3", "2", "1"}}) {
		t.Fatalf("deletes = %v", st.deletes)
	}
}

func TestDeleteIncludesDescendantsBottomUp(t *testing.T) {
	g := graph.Build([]model.Task{
		{ID: "notes/a::2", Children: []string{"notes/a::3"}},
		{ID: "notes/a::3", Children: []string{"notes/a::10"}},
		{ID: "notes/a::10"},
	})
	in := Resolve(Payload{Kind: PayloadTask, TaskID: "notes/a::2"}, &Target{Kind: TargetDelete}, ctxFor(g))
	if !reflect.DeepEqual(in.Delete, []string{"notes/a::10", "notes/a::3", "notes/a::2"}) {
		t.Fatalf("delete = %v", in.Delete)
	}
}

func TestDeleteSingleTaskSkipsConfirmation(t *testing.T) {
	g := graph.Build([]model.Task{{ID: "a"}})
	st := &fakeStore{}
	m := NewMachine(func() Context { return ctxFor(g) }, nil, func(in Intent) { _ = Apply(context.Background(), in, st.env()) })
	m.Start(Payload{Kind: PayloadTask, TaskID: "a"})
	if in, outcome := m.Drop(&Target{Kind: TargetDelete}); outcome != OutcomeDispatched || in.Confirm != "" {
		t.Fatalf("outcome=%v confirm=%q", outcome, in.Confirm)
	}
	if !reflect.DeepEqual(st.deletes, [][]string{{"a"}}) {
		t.Fatalf("deletes = %v", st.deletes)
	}
}

func TestNeedsConfirmWithoutConfirmer(t *testing.T) {
	g := graph.Build([]model.Task{{ID: "a", Children: []string{"b"}}, {ID: "b"}})
	st := &fakeStore{}
	m := NewMachine(func() Context { return ctxFor(g) }, nil, func(in Intent) { _ = Apply(context.Background(), in, st.env()) })
	m.Start(Payload{Kind: PayloadTask, TaskID: "a"})
	in, outcome := m.Drop(&Target{Kind: TargetDelete})
	if outcome != OutcomeNeedsConfirm || st.calls() != 0 {
		t.Fatalf("outcome=%v calls=%d", outcome, st.calls())
	}
	m.Commit(in)
	if !reflect.DeepEqual(st.deletes, [][]string{{"b", "a"}}) {
		t.Fatalf("deletes = %v", st.deletes)
	}
}

func TestSelfDropClearsStateWithoutCalls(t *testing.T) {
	g := graph.Build([]model.Task{{ID: "a", Scheduled: model.DateAt("2026-10-18", "09:00")}})
	kinds := []Payload{
		{Kind: PayloadTask, SourceID: "el", TaskID: "a"},
		{Kind: PayloadGroup, SourceID: "el", Tasks: []string{"a"}, Path: "a.md"},
		{Kind: PayloadNow, SourceID: "el"},
		{Kind: PayloadNewButton, SourceID: "el"},
	}
	targets := []*Target{
		{Kind: TargetSlot, ID: "el", Fields: model.Patch{Scheduled: model.DateAt("2026-10-18", "10:00")}},
		{Kind: TargetDelete, ID: "el"},
		{Kind: TargetHeading, ID: "el", Heading: "b.md"},
	}
	for _, p := range kinds {
		for _, target := range targets {
			st := &fakeStore{}
			m := machine(g, st, true)
			m.Start(p)
			if _, outcome := m.Drop(target); outcome != OutcomeNoop {
				t.Fatalf("%s on %s: outcome %v", p.Kind, target.Kind, outcome)
			}
			if _, ok := m.Active(); ok || st.calls() != 0 {
				t.Fatalf("%s on %s: active=%v calls=%d", p.Kind, target.Kind, ok, st.calls())
			}
		}
	}
}

func TestCancelClearsState(t *testing.T) {
	st := &fakeStore{}
	m := machine(graph.Build(nil), st, true)
	m.Start(Payload{Kind: PayloadTask, TaskID: "a"})
	m.Cancel()
	if _, ok := m.Active(); ok {
		t.Fatalf("expected idle after cancel")
	}
	if _, outcome := m.Drop(slot("2026-10-18", "10:00")); outcome != OutcomeNoop || st.calls() != 0 {
		t.Fatalf("drop after cancel did something")
	}
}

func TestResizeSetsLength(t *testing.T) {
	p := Payload{Kind: PayloadTaskLength, TaskID: "a", Start: model.DateAt("2026-10-18", "09:00")}
	in := Resolve(p, slot("2026-10-18", "10:45"), ctxFor(graph.Build(nil)))
	if in.Kind != IntentPatch || len(in.Patches) != 1 {
		t.Fatalf("intent = %+v", in)
	}
	if l := in.Patches[0].Patch.Length; l == nil || *l != (model.Length{Hour: 1, Minute: 45}) {
		t.Fatalf("length = %+v", l)
	}
	if in := Resolve(p, slot("2026-10-18", "08:00"), ctxFor(graph.Build(nil))); !in.Noop() {
		t.Fatalf("negative resize should be a no-op, got %+v", in)
	}
}

func TestTimeSweepOpensDraft(t *testing.T) {
	p := Payload{Kind: PayloadTime, Start: model.DateAt("2026-10-18", "13:00")}
	in := Resolve(p, slot("2026-10-18", "14:30"), ctxFor(graph.Build(nil)))
	if in.Kind != IntentDraft || in.Draft.Scheduled.ISO() != "2026-10-18T13:00" || in.Draft.Length.Minutes() != 90 {
		t.Fatalf("intent = %+v", in)
	}
	up := Resolve(p, slot("2026-10-18", "12:00"), ctxFor(graph.Build(nil)))
	if up.Draft.Scheduled.ISO() != "2026-10-18T12:00" || up.Draft.Length.Minutes() != 60 {
		t.Fatalf("upward sweep draft = %+v", up.Draft)
	}
}

func TestNewButton(t *testing.T) {
	c := ctxFor(graph.Build(nil))
	if in := Resolve(Payload{Kind: PayloadNewButton}, nil, c); in.Kind != IntentDraft || in.Draft.Scheduled != nil {
		t.Fatalf("outside drop = %+v", in)
	}
	in := Resolve(Payload{Kind: PayloadNewButton}, slot("2026-10-18", "15:00"), c)
	if in.Kind != IntentDraft || in.Draft.Scheduled.ISO() != "2026-10-18T15:00" {
		t.Fatalf("slot drop = %+v", in)
	}
	if in := Resolve(Payload{Kind: PayloadTask, TaskID: "a"}, nil, c); !in.Noop() {
		t.Fatalf("task dropped outside should be a no-op")
	}
}

func TestFieldDrops(t *testing.T) {
	c := ctxFor(graph.Build(nil))
	target := slot("2026-10-19", "08:00")

	in := Resolve(Payload{Kind: PayloadBlock, Tasks: []string{"a", "b"}}, target, c)
	if in.Kind != IntentPatch || !reflect.DeepEqual(in.Patches[0].IDs, []string{"a", "b"}) {
		t.Fatalf("block drop = %+v", in)
	}
	in = Resolve(Payload{Kind: PayloadTask, TaskID: "a"}, target, c)
	if in.Kind != IntentPatch || in.Patches[0].Patch.Scheduled.ISO() != "2026-10-19T08:00" {
		t.Fatalf("task drop = %+v", in)
	}
	in = Resolve(Payload{Kind: PayloadDue, TaskID: "a"}, target, c)
	if p := in.Patches[0].Patch; p.Scheduled != nil || p.Due.ISO() != "2026-10-19" {
		t.Fatalf("due drop = %+v", p)
	}
	onTask := &Target{Kind: TargetTask, ID: "task-b", Fields: model.Patch{Scheduled: model.DateOnly("2026-10-20")}}
	if in := Resolve(Payload{Kind: PayloadTask, TaskID: "a"}, onTask, c); in.Kind != IntentPatch {
		t.Fatalf("drop on task = %+v", in)
	}
	if in := Resolve(Payload{Kind: PayloadTask, TaskID: "a"}, &Target{Kind: TargetSlot}, c); !in.Noop() {
		t.Fatalf("empty field drop should be a no-op")
	}
}

func TestHeadingDropReordersGroupsOnly(t *testing.T) {
	st := &fakeStore{}
	m := machine(graph.Build(nil), st, true)
	m.Start(Payload{Kind: PayloadGroup, Path: "b.md", Tasks: []string{"x"}})
	m.Drop(&Target{Kind: TargetHeading, Heading: "a.md"})
	if !reflect.DeepEqual(st.moves, [][2]string{{"b.md", "a.md"}}) {
		t.Fatalf("moves = %v", st.moves)
	}
	if in := Resolve(Payload{Kind: PayloadTask, TaskID: "x"}, &Target{Kind: TargetHeading, Heading: "a.md"}, Context{}); !in.Noop() {
		t.Fatalf("task on heading should be a no-op")
	}
}

func TestApplyStopsAtFirstStoreError(t *testing.T) {
	st := &fakeStore{err: errors.New("read-only vault")}
	in := Intent{Kind: IntentShift, Patches: []PatchOp{{IDs: []string{"a"}}, {IDs: []string{"b"}}}}
	if err := Apply(context.Background(), in, st.env()); err == nil {
		t.Fatalf("expected error")
	}
	if len(st.patches) != 1 {
		t.Fatalf("patches after failure = %d", len(st.patches))
	}
}
