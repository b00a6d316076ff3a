package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var allStates = []State{StateMissing, StateGenerating, StatePartial, StateComplete, StateStale}

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want bool
	}{
		{name: "missing to generating", from: StateMissing, to: StateGenerating, want: true},
		{name: "generating to partial", from: StateGenerating, to: StatePartial, want: true},
		{name: "generating to complete", from: StateGenerating, to: StateComplete, want: true},
		{name: "partial to generating", from: StatePartial, to: StateGenerating, want: true},
		{name: "partial to complete", from: StatePartial, to: StateComplete, want: true},
		{name: "partial to stale", from: StatePartial, to: StateStale, want: true},
		{name: "complete to stale", from: StateComplete, to: StateStale, want: true},
		{name: "stale re-enters generating", from: StateStale, to: StateGenerating, want: true},

		{name: "complete cannot skip stale", from: StateComplete, to: StateGenerating, want: false},
		{name: "stale cannot declare complete", from: StateStale, to: StateComplete, want: false},
		{name: "missing cannot go stale", from: StateMissing, to: StateStale, want: false},
		{name: "generating cannot go stale", from: StateGenerating, to: StateStale, want: false},
		{name: "missing to complete", from: StateMissing, to: StateComplete, want: false},
		{name: "unknown from", from: State("archived"), to: StateGenerating, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidTransition(tt.from, tt.to))
		})
	}
}

// Every state must have a way forward; nothing is terminal.
func TestNoTerminalStates(t *testing.T) {
	for _, s := range allStates {
		assert.NotEmpty(t, ValidTransitions[s], "state %s has no outgoing transitions", s)
	}
}

func TestSelfTransitionsNeverValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.SampledFrom(allStates).Draw(t, "state")
		if IsValidTransition(s, s) {
			t.Fatalf("self transition allowed for %s", s)
		}
	})
}

func TestStateValidity(t *testing.T) {
	for _, s := range allStates {
		assert.True(t, s.IsValid(), "state %s", s)
	}
	assert.False(t, State("archived").IsValid())
	assert.False(t, State("").IsValid())
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{ID: "doc-1", From: StateComplete, To: StateGenerating}
	assert.Equal(t, `document "doc-1": invalid transition complete -> generating`, err.Error())

	raced := &InvalidTransitionError{ID: "doc-1", From: StatePartial, To: StateComplete, Current: StateStale}
	assert.Equal(t, `document "doc-1": cannot transition partial -> complete: current state is stale`, raced.Error())
}
