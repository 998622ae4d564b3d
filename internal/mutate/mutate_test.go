package mutate

import (
	"errors"
	"reflect"
	"testing"

	"timeruler/internal/model"
)

func TestMoveBefore(t *testing.T) {
	order := []string{"a.md", "b.md", "c.md", "d.md"}
	got, err := MoveBefore(order, "d.md", "b.md")
	if err != nil {
		t.Fatalf("MoveBefore error: %v", err)
	}
	if want := []string{"a.md", "d.md", "b.md", "c.md"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !reflect.DeepEqual(order, []string{"a.md", "b.md", "c.md", "d.md"}) {
		t.Fatalf("input was modified: %v", order)
	}

	got, err = MoveBefore(order, "a.md", "c.md")
	if err != nil {
		t.Fatalf("MoveBefore error: %v", err)
	}
	if want := []string{"b.md", "a.md", "c.md", "d.md"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestMoveBeforeMissingKeyIsPreconditionError(t *testing.T) {
	_, err := MoveBefore([]string{"a.md"}, "a.md", "zzz.md")
	var pe PreconditionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PreconditionError; got %v", err)
	}
	if _, err := MoveBefore([]string{"a.md"}, "zzz.md", "a.md"); !errors.As(err, &pe) {
		t.Fatalf("expected PreconditionError for missing file; got %v", err)
	}
}

func TestMergeFileOrder(t *testing.T) {
	order := []string{"b.md", "d.md"}
	got, changed := MergeFileOrder(order, []string{"d.md", "c.md", "a.md", "e.md"})
	if !changed {
		t.Fatalf("expected changed=true")
	}
	if want := []string{"a.md", "b.md", "c.md", "d.md", "e.md"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if _, changed := MergeFileOrder(got, []string{"a.md", "e.md"}); changed {
		t.Fatalf("expected changed=false for known paths")
	}

	// A user-chosen order is kept; new entries go before the first larger key.
	got, _ = MergeFileOrder([]string{"z.md", "m.md"}, []string{"n.md"})
	if want := []string{"n.md", "z.md", "m.md"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestApplyPatch(t *testing.T) {
	task := model.Task{
		ID:        "a::1",
		Title:     "Old",
		Scheduled: model.DateAt("2026-10-18", "09:00"),
		Priority:  model.PriorityDefault,
	}
	high := model.PriorityHigh
	title := "New"
	res := ApplyPatch(task, model.Patch{
		Scheduled: model.DateAt("2026-10-18", "10:00"),
		Due:       model.DateAt("2026-10-20", "08:00"),
		Length:    &model.Length{Minute: 90},
		Priority:  &high,
		Title:     &title,
	})
	if !res.Changed {
		t.Fatalf("expected changed=true")
	}
	got := res.Task
	if got.Scheduled.ISO() != "2026-10-18T10:00" || got.Due.ISO() != "2026-10-20" {
		t.Fatalf("dates = %v / %v", got.Scheduled, got.Due)
	}
	if *got.Length != (model.Length{Hour: 1, Minute: 30}) {
		t.Fatalf("length = %+v", *got.Length)
	}
	if got.Priority != model.PriorityHigh || got.Title != "New" {
		t.Fatalf("priority/title = %v / %q", got.Priority, got.Title)
	}
	for _, k := range []string{"scheduled", "due", "length", "priority", "title"} {
		if _, ok := res.EventPayload[k]; !ok {
			t.Fatalf("payload missing %q: %#v", k, res.EventPayload)
		}
	}
	if task.Scheduled.ISO() != "2026-10-18T09:00" {
		t.Fatalf("input task was modified")
	}
}

func TestApplyPatchNoop(t *testing.T) {
	task := model.Task{Scheduled: model.DateOnly("2026-10-18")}
	if res := ApplyPatch(task, model.Patch{Scheduled: model.DateOnly("2026-10-18"), Length: &model.Length{}}); res.Changed {
		t.Fatalf("expected no change; payload %#v", res.EventPayload)
	}
	res := ApplyPatch(task, model.Patch{ClearScheduled: true})
	if !res.Changed || res.Task.Scheduled != nil {
		t.Fatalf("expected scheduled cleared")
	}
}
