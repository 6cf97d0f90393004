package voice

import (
	"errors"

	"github.com/charmbracelet/log"
)

// Warning records a voice marker that failed validation and was skipped.
type Warning struct {
	Identifier string // offending identifier, if the failure named one
	Expression string // raw marker payload
	Context    string // surrounding document text
}

// State is the narration-voice state machine. It always holds exactly one
// resolved descriptor, seeded from the job default, and persists across
// chapter boundaries: the descriptor active at the end of chapter N seeds
// chapter N+1. A marker that fails validation never changes the state.
type State struct {
	registry *Registry
	current  Descriptor
	warnings []Warning
}

// NewState creates a state machine seeded with the given default descriptor.
func NewState(reg *Registry, initial Descriptor) *State {
	return &State{registry: reg, current: initial}
}

// Current returns the active descriptor.
func (s *State) Current() Descriptor { return s.current }

// Warnings returns the warnings accumulated so far, in document order.
func (s *State) Warnings() []Warning { return s.warnings }

// Apply parses a voice marker payload and transitions to the new descriptor
// if every identifier validates. On failure the prior state is kept, a
// warning is recorded and logged, and false is returned. Conversion never
// aborts on an invalid voice marker.
func (s *State) Apply(expr, context string) bool {
	desc, err := Parse(expr, s.registry)
	if err != nil {
		w := Warning{Expression: expr, Context: context}
		var invalid *InvalidIdentifierError
		if errors.As(err, &invalid) {
			w.Identifier = invalid.Identifier
		}
		s.warnings = append(s.warnings, w)
		log.Warn("invalid voice marker, keeping previous voice",
			"expression", expr,
			"error", err,
			"context", context,
			"active", s.current.String())
		return false
	}
	s.current = desc
	return true
}
