package cli

import (
	"context"

	"timeruler/internal/drag"
)

type gestureResult struct {
	Intent  drag.Intent `json:"intent"`
	Outcome string      `json:"outcome"`
}

// perform runs one drag gesture from start to drop and applies the accepted
// intent. The graph is reloaded afterwards so later reads see the writes.
func (s *session) perform(ctx context.Context, p drag.Payload, target *drag.Target) (gestureResult, error) {
	var confirmErr error
	var accepted *drag.Intent
	m := drag.NewMachine(s.dragContext, s.app.confirmer(&confirmErr), func(in drag.Intent) {
		accepted = &in
	})
	m.Start(p)
	in, outcome := m.Drop(target)
	res := gestureResult{Intent: in, Outcome: outcome.String()}
	if confirmErr != nil {
		return res, confirmErr
	}
	if accepted == nil {
		return res, nil
	}
	if accepted.Kind == drag.IntentDraft {
		// Drafts only pre-fill a form; the caller reports them.
		return res, nil
	}
	if err := drag.Apply(ctx, *accepted, s.env()); err != nil {
		return res, err
	}
	res.Outcome = "applied"
	if _, _, err := s.reload(ctx); err != nil {
		return res, err
	}
	return res, nil
}
