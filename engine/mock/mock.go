// Package mock provides a deterministic in-memory TTS engine for testing.
package mock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/olandir/abogen/engine"
	"github.com/olandir/abogen/voice"
)

const sampleRate = 24000

// Engine implements engine.Engine with silence buffers whose durations are
// derived from text length, so timing-dependent behavior stays testable.
type Engine struct {
	// Control for testing
	failText     string // Synthesize fails when text contains this
	failMix      bool
	tokenTimings bool

	// Counters
	synthCalls int
	mixCalls   int

	shutdown bool
}

// New creates a mock engine that reports token timings.
func New() *Engine {
	return &Engine{tokenTimings: true}
}

type handle struct {
	key string
}

func (h handle) Descriptor() string { return h.key }

// Voice returns a pass-through handle for a single identifier.
func (e *Engine) Voice(id string) engine.Handle {
	return handle{key: id}
}

// Mix combines weighted voices into one handle.
func (e *Engine) Mix(_ context.Context, components []voice.Component) (engine.Handle, error) {
	e.mixCalls++
	if e.failMix {
		return nil, fmt.Errorf("mock: mix failed")
	}
	return handle{key: voice.Mix(components...).String()}, nil
}

// Synthesize produces a silence buffer at ~60ms per character, scaled by
// rate, with evenly spaced word timings.
func (e *Engine) Synthesize(ctx context.Context, text string, v engine.Handle, rate float64) (*engine.Audio, error) {
	e.synthCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e.shutdown {
		return nil, fmt.Errorf("mock: engine is shut down")
	}
	if e.failText != "" && strings.Contains(text, e.failText) {
		return nil, fmt.Errorf("mock: synthesis failed for %q", text)
	}
	if v == nil {
		return nil, fmt.Errorf("mock: nil voice handle")
	}
	if rate <= 0 {
		rate = 1.0
	}

	chars := len([]rune(text))
	if chars == 0 {
		chars = 1
	}
	duration := time.Duration(float64(chars) * 60 * float64(time.Millisecond) / rate)
	samples := int(duration.Seconds() * sampleRate)
	audio := engine.NewPCM16(make([]byte, samples*2), sampleRate)

	if e.tokenTimings {
		audio.Tokens = wordTimings(text, audio.Duration)
	}
	return audio, nil
}

// Capabilities reports the mock's fixed capabilities.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{TokenTimings: e.tokenTimings, SampleRate: sampleRate}
}

// Shutdown marks the engine unusable.
func (e *Engine) Shutdown() error {
	e.shutdown = true
	return nil
}

// Test control methods

// FailOn makes Synthesize fail for any text containing the substring.
func (e *Engine) FailOn(substring string) { e.failText = substring }

// FailMix makes Mix return an error.
func (e *Engine) FailMix() { e.failMix = true }

// DisableTokenTimings makes the engine behave like one without timing
// support, forcing the proportional subtitle fallback.
func (e *Engine) DisableTokenTimings() { e.tokenTimings = false }

// SynthesizeCalls returns the number of Synthesize invocations.
func (e *Engine) SynthesizeCalls() int { return e.synthCalls }

// MixCalls returns the number of Mix invocations.
func (e *Engine) MixCalls() int { return e.mixCalls }

// wordTimings distributes the buffer duration over words proportionally to
// their character counts.
func wordTimings(text string, total time.Duration) []engine.Token {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	chars := 0
	for _, w := range words {
		chars += len([]rune(w))
	}
	tokens := make([]engine.Token, 0, len(words))
	elapsed := time.Duration(0)
	counted := 0
	for _, w := range words {
		counted += len([]rune(w))
		end := time.Duration(float64(total) * float64(counted) / float64(chars))
		tokens = append(tokens, engine.Token{Text: w, Start: elapsed, End: end})
		elapsed = end
	}
	return tokens
}
