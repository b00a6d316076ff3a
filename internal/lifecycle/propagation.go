package lifecycle

import (
	"errors"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/pubsub"
)

// PropagateStale marks every document downstream of id as stale:
// dependents, their dependents, and so on. Traversal is iterative
// depth-first with a visited set, so dependency cycles terminate and a
// document is transitioned at most once per pass. Propagation is strictly
// one-directional: a stale child never marks its parent stale.
//
// Each dependent is transitioned with a compare-and-swap from its observed
// state, so a raced transition elsewhere simply causes that branch to be
// skipped rather than corrupted. Re-running propagation from an
// already-stale document with no new dependents changes no further state.
func (m *Manager) PropagateStale(id string) ([]string, error) {
	visited := map[string]bool{id: true}
	var marked []string

	stack, err := m.repo.Dependents(id)
	if err != nil {
		return nil, err
	}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		doc, err := m.repo.FindByID(current)
		if err != nil {
			var nf *document.NotFoundError
			if errors.As(err, &nf) {
				// Dangling dependency edge; nothing to mark.
				continue
			}
			return marked, err
		}

		// A document must observe its own precondition state before it can
		// propagate further; only partial and complete documents can go
		// stale, the rest are left alone (stale ones are already done).
		from := doc.State()
		if document.IsValidTransition(from, document.StateStale) {
			if err := m.repo.CompareAndSwapState(current, from, document.StateStale); err != nil {
				var inv *document.InvalidTransitionError
				if errors.As(err, &inv) {
					log.Debug(log.CatLifecycle, "propagation skipped raced document",
						"doc_id", current, "observed", from, "current", inv.Current)
					continue
				}
				return marked, err
			}
			marked = append(marked, current)
			m.publish(pubsub.StaleEvent, current, from, document.StateStale)
		} else if from != document.StateStale {
			// Not stale-eligible (missing or generating): do not walk past it.
			continue
		}

		deps, err := m.repo.Dependents(current)
		if err != nil {
			return marked, err
		}
		stack = append(stack, deps...)
	}

	if len(marked) > 0 {
		log.Info(log.CatLifecycle, "staleness propagated", "origin", id, "marked", len(marked))
	}
	return marked, nil
}
