package mutate

import "fmt"

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// PreconditionError reports inconsistent input from upstream, such as a
// reorder against a key that is not in the list.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
