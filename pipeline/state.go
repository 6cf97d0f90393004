package pipeline

import (
	"context"
	"time"

	"github.com/olandir/abogen/engine"
	"github.com/olandir/abogen/subtitle"
	"github.com/olandir/abogen/voice"
)

// conversionState is the per-job mutable state: the persistent voice state
// machine, the voice-handle cache, the running audio-timeline cursor, and
// the accumulated subtitle entries. It is owned exclusively by the job's
// worker and released at job end.
type conversionState struct {
	voices  *voice.State
	handles map[string]engine.Handle
	cursor  time.Duration
	entries []subtitle.Entry
}

func newConversionState(voices *voice.State) *conversionState {
	return &conversionState{
		voices:  voices,
		handles: make(map[string]engine.Handle),
	}
}

// handleFor resolves a descriptor to a loaded voice handle. Formula
// descriptors are mixed on first use and cached under their exact
// normalized formula string; single identifiers pass through without a
// load step.
func (s *conversionState) handleFor(ctx context.Context, eng engine.Engine, d voice.Descriptor) (engine.Handle, error) {
	if !d.IsFormula() {
		return eng.Voice(d.String()), nil
	}
	key := d.String()
	if h, ok := s.handles[key]; ok {
		return h, nil
	}
	h, err := eng.Mix(ctx, d.Components())
	if err != nil {
		return nil, err
	}
	s.handles[key] = h
	return h, nil
}

func (s *conversionState) advance(d time.Duration) {
	s.cursor += d
}

func (s *conversionState) addEntries(entries []subtitle.Entry) {
	s.entries = append(s.entries, entries...)
}

// release drops all cached handles at job end.
func (s *conversionState) release() {
	s.handles = make(map[string]engine.Handle)
}
