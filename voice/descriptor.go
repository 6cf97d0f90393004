package voice

import (
	"fmt"
	"strconv"
	"strings"
)

// Component is one (identifier, weight) term of a weighted voice formula.
type Component struct {
	ID     string
	Weight float64
}

// Descriptor is a resolved narration voice: either a single canonical
// identifier or a weighted mix of identifiers. Weights need not sum to 1;
// the engine normalizes.
type Descriptor struct {
	components []Component
	formula    bool
}

// Single creates a descriptor for one canonical identifier.
func Single(id string) Descriptor {
	return Descriptor{components: []Component{{ID: id, Weight: 1}}}
}

// Mix creates a formula descriptor from weighted components.
func Mix(components ...Component) Descriptor {
	return Descriptor{components: components, formula: true}
}

// IsFormula reports whether the descriptor is a weighted mix.
func (d Descriptor) IsFormula() bool { return d.formula }

// IsZero reports whether the descriptor is empty.
func (d Descriptor) IsZero() bool { return len(d.components) == 0 }

// Components returns the descriptor's (identifier, weight) terms.
func (d Descriptor) Components() []Component { return d.components }

// String returns the normalized form: the bare identifier for a single
// voice, or "id1*w1 + id2*w2" for a formula. This string keys the
// voice-handle cache.
func (d Descriptor) String() string {
	if !d.formula {
		if len(d.components) == 0 {
			return ""
		}
		return d.components[0].ID
	}
	terms := make([]string, len(d.components))
	for i, c := range d.components {
		terms[i] = c.ID + "*" + strconv.FormatFloat(c.Weight, 'g', -1, 64)
	}
	return strings.Join(terms, " + ")
}

// InvalidIdentifierError reports the first identifier of a voice expression
// that failed registry validation.
type InvalidIdentifierError struct {
	Identifier string
	Expression string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("unknown voice %q in expression %q", e.Identifier, e.Expression)
}

// Parse parses a voice expression as either a single identifier or a
// "+"-joined sum of identifier*weight terms, validating every identifier
// against the registry. All identifiers are normalized to their canonical
// registry form. An expression with any unregistered identifier returns an
// InvalidIdentifierError and a zero descriptor.
func Parse(expr string, reg *Registry) (Descriptor, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Descriptor{}, fmt.Errorf("empty voice expression")
	}

	if !strings.ContainsAny(trimmed, "+*") {
		canonical, ok := reg.Resolve(trimmed)
		if !ok {
			return Descriptor{}, &InvalidIdentifierError{Identifier: trimmed, Expression: expr}
		}
		return Single(canonical), nil
	}

	var (
		components []Component
		total      float64
	)
	for _, term := range strings.Split(trimmed, "+") {
		term = strings.TrimSpace(term)
		if term == "" {
			return Descriptor{}, fmt.Errorf("empty term in voice expression %q", expr)
		}
		id, weight, err := parseTerm(term)
		if err != nil {
			return Descriptor{}, fmt.Errorf("voice expression %q: %w", expr, err)
		}
		canonical, ok := reg.Resolve(id)
		if !ok {
			return Descriptor{}, &InvalidIdentifierError{Identifier: id, Expression: expr}
		}
		components = append(components, Component{ID: canonical, Weight: weight})
		total += weight
	}
	if total <= 0 {
		return Descriptor{}, fmt.Errorf("voice expression %q has non-positive total weight", expr)
	}
	return Mix(components...), nil
}

func parseTerm(term string) (string, float64, error) {
	id, weightStr, found := strings.Cut(term, "*")
	id = strings.TrimSpace(id)
	if !found {
		// A bare identifier inside a formula carries weight 1.
		return id, 1, nil
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(weightStr), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid weight in term %q", term)
	}
	if weight < 0 {
		return "", 0, fmt.Errorf("negative weight in term %q", term)
	}
	return id, weight, nil
}
