package drag

import (
	"context"
	"fmt"

	"timeruler/internal/model"
)

// Store is the write side of the backing store.
type Store interface {
	PatchTasks(ctx context.Context, ids []string, p model.Patch) error
	// DeleteTasks must delete in the order given.
	DeleteTasks(ctx context.Context, ids []string) error
}

// FileOrder persists the grouping order.
type FileOrder interface {
	MoveFileBefore(file, before string) error
}

// Drafts opens the new-task form.
type Drafts interface {
	OpenDraft(ctx context.Context, d Draft) error
}

type Env struct {
	Store     Store
	FileOrder FileOrder
	Drafts    Drafts
}

// Apply performs an intent's side effects. It does not check Confirm; callers
// must have obtained consent first. Patches run in order and stop at the first
// failure.
func Apply(ctx context.Context, in Intent, env Env) error {
	switch in.Kind {
	case IntentDraft:
		if env.Drafts == nil || in.Draft == nil {
			return nil
		}
		return env.Drafts.OpenDraft(ctx, *in.Draft)
	case IntentReorder:
		if env.FileOrder == nil || in.Reorder == nil {
			return nil
		}
		return env.FileOrder.MoveFileBefore(in.Reorder.File, in.Reorder.Before)
	case IntentDelete:
		if len(in.Delete) == 0 {
			return nil
		}
		if err := env.Store.DeleteTasks(ctx, in.Delete); err != nil {
			return fmt.Errorf("delete %d tasks: %w", len(in.Delete), err)
		}
	case IntentPatch, IntentShift:
		for _, op := range in.Patches {
			if err := env.Store.PatchTasks(ctx, op.IDs, op.Patch); err != nil {
				return fmt.Errorf("patch %v: %w", op.IDs, err)
			}
		}
	}
	return nil
}
