package document

import "slices"

// State represents the lifecycle state of a document.
type State string

const (
	// StateMissing indicates the document has not been generated yet.
	StateMissing State = "missing"

	// StateGenerating indicates content generation is in progress.
	StateGenerating State = "generating"

	// StatePartial indicates some sections exist but generation is unfinished.
	StatePartial State = "partial"

	// StateComplete indicates all sections have been generated.
	StateComplete State = "complete"

	// StateStale indicates an upstream dependency changed after generation.
	StateStale State = "stale"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a recognized document state.
func (s State) IsValid() bool {
	switch s {
	case StateMissing, StateGenerating, StatePartial, StateComplete, StateStale:
		return true
	default:
		return false
	}
}

// ValidTransitions defines the allowed state machine transitions.
// Map key is the "from" state, value is a slice of valid "to" states.
// There are no terminal states: stale always allows re-entry into
// generating. A complete document cannot go straight back to generating
// (it must pass through stale) and a stale document cannot be declared
// complete without regenerating.
var ValidTransitions = map[State][]State{
	StateMissing:    {StateGenerating},
	StateGenerating: {StatePartial, StateComplete},
	StatePartial:    {StateGenerating, StateComplete, StateStale},
	StateComplete:   {StateStale},
	StateStale:      {StateGenerating},
}

// IsValidTransition checks if transitioning from one state to another is valid.
func IsValidTransition(from, to State) bool {
	validTos, ok := ValidTransitions[from]
	if !ok {
		return false
	}
	return slices.Contains(validTos, to)
}
