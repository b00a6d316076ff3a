package document

import "fmt"

// NotFoundError indicates no document exists with the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.ID)
}

// InvalidTransitionError indicates a lifecycle transition precondition
// failed: either the requested edge is not in the state machine, or the
// document's stored state no longer matches the expected "from" state.
// Callers must re-read the current state and retry deliberately; the core
// never auto-retries.
type InvalidTransitionError struct {
	ID      string
	From    State
	To      State
	Current State // stored state at rejection time, when known
}

func (e *InvalidTransitionError) Error() string {
	if e.Current != "" && e.Current != e.From {
		return fmt.Sprintf("document %q: cannot transition %s -> %s: current state is %s",
			e.ID, e.From, e.To, e.Current)
	}
	return fmt.Sprintf("document %q: invalid transition %s -> %s", e.ID, e.From, e.To)
}
