// Package lifecycle manages document state transitions and staleness
// propagation over the declared dependency graph.
package lifecycle

import (
	"fmt"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/log"
	"github.com/foliohq/folio/internal/pubsub"
)

// Manager applies lifecycle transitions with a compare-and-swap
// discipline: a transition is rejected unless the document's stored state
// still matches the expected precondition state, so concurrent operations
// on the same document cannot race into an invalid combined state.
type Manager struct {
	repo   document.Repository
	broker *pubsub.Broker[pubsub.DocumentEvent]
}

// NewManager creates a lifecycle manager. The broker may be nil when no
// event fan-out is needed.
func NewManager(repo document.Repository, broker *pubsub.Broker[pubsub.DocumentEvent]) *Manager {
	return &Manager{repo: repo, broker: broker}
}

// Transition moves a document from one state to another. The edge must be
// in the state machine and the stored state must equal from; otherwise an
// InvalidTransitionError is returned and nothing changes. Failed
// transitions are never retried here: the caller must re-read the current
// state and retry deliberately.
func (m *Manager) Transition(id string, from, to document.State) error {
	if !document.IsValidTransition(from, to) {
		return &document.InvalidTransitionError{ID: id, From: from, To: to}
	}

	if err := m.repo.CompareAndSwapState(id, from, to); err != nil {
		return err
	}

	log.Info(log.CatLifecycle, "document transitioned", "doc_id", id, "from", from, "to", to)
	m.publish(pubsub.TransitionedEvent, id, from, to)
	return nil
}

// MarkStale transitions a document into the stale state from its current
// state and then propagates staleness downstream. Returns the ids marked
// stale by propagation, excluding the document itself.
func (m *Manager) MarkStale(id string) ([]string, error) {
	doc, err := m.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if doc.State() != document.StateStale {
		if err := m.Transition(id, doc.State(), document.StateStale); err != nil {
			return nil, fmt.Errorf("mark stale: %w", err)
		}
	}
	return m.PropagateStale(id)
}

// publish emits a lifecycle event to subscribers.
func (m *Manager) publish(eventType pubsub.EventType, id string, from, to document.State) {
	if m.broker == nil {
		return
	}
	m.broker.Publish(eventType, pubsub.DocumentEvent{
		DocumentID:    id,
		PreviousState: from.String(),
		State:         to.String(),
	})
}
