// Package engine defines the boundary to the external text-to-speech
// engine: text plus a loaded voice in, audio samples plus optional token
// timing out. Synthesis itself happens behind the Engine interface.
package engine

import (
	"context"
	"time"

	"github.com/olandir/abogen/voice"
)

// Format represents the sample format of audio data.
type Format int

const (
	// FormatPCM16 is 16-bit little-endian PCM.
	FormatPCM16 Format = iota
	// FormatFloat32 is 32-bit float PCM.
	FormatFloat32
)

// Audio is one synthesized buffer.
type Audio struct {
	Data       []byte
	Format     Format
	SampleRate int
	Channels   int
	Duration   time.Duration
	Tokens     []Token // per-token timing, when the engine supports it
}

// Token is one timed token of synthesized speech. Offsets are relative to
// the start of the buffer.
type Token struct {
	Text  string
	Start time.Duration
	End   time.Duration
}

// Handle is an opaque loaded-voice handle. Handles are owned by the
// conversion job that obtained them and are released at job end.
type Handle interface {
	// Descriptor returns the normalized descriptor string the handle was
	// loaded for.
	Descriptor() string
}

// Capabilities describes what an engine can do.
type Capabilities struct {
	TokenTimings bool // engine reports per-token timing
	SampleRate   int  // native output sample rate in Hz
}

// Engine is the external text-to-speech engine boundary.
type Engine interface {
	// Voice returns a pass-through handle for a single canonical
	// identifier. No load step is involved.
	Voice(id string) Handle

	// Mix loads and combines weighted voices into one handle. Called once
	// per distinct formula; the caller caches the result.
	Mix(ctx context.Context, components []voice.Component) (Handle, error)

	// Synthesize converts text to audio with the given voice and speech
	// rate. Errors are fatal to the chapter being produced.
	Synthesize(ctx context.Context, text string, v Handle, rate float64) (*Audio, error)

	// Capabilities returns the engine's capabilities.
	Capabilities() Capabilities

	// Shutdown releases engine resources.
	Shutdown() error
}

// BytesPerSample returns the sample width of a format in bytes.
func (f Format) BytesPerSample() int {
	if f == FormatFloat32 {
		return 4
	}
	return 2
}

// NewPCM16 builds a mono PCM16 buffer and derives its duration from the
// data length.
func NewPCM16(data []byte, sampleRate int) *Audio {
	a := &Audio{
		Data:       data,
		Format:     FormatPCM16,
		SampleRate: sampleRate,
		Channels:   1,
	}
	a.Duration = PCMDuration(len(data), FormatPCM16, sampleRate, 1)
	return a
}

// Silence returns a mono PCM16 buffer of the given duration.
func Silence(d time.Duration, sampleRate int) *Audio {
	if d < 0 {
		d = 0
	}
	samples := int(d.Seconds() * float64(sampleRate))
	return NewPCM16(make([]byte, samples*2), sampleRate)
}

// PCMDuration derives the play time of raw PCM data.
func PCMDuration(dataLen int, format Format, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := dataLen / format.BytesPerSample() / channels
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}
