// Package assemble stitches per-segment audio into chapter buffers and
// job outputs, inserting inter-chapter silence and passing metadata through
// to the external encoder.
package assemble

import (
	"context"
	"fmt"
	"time"

	"github.com/olandir/abogen/engine"
)

// Metadata carries the tag dictionary and optional cover image through to
// the encoder unchanged.
type Metadata struct {
	Tags      map[string]string
	CoverPath string
}

// ChapterMark is a chapter boundary inside a merged output, for container
// formats that support chapter metadata.
type ChapterMark struct {
	Title string
	Start time.Duration
}

// ChapterAudio is one assembled chapter: its title and the zero-gap
// concatenation of its segment buffers.
type ChapterAudio struct {
	Title string
	Audio *engine.Audio
}

// Output is one file-sized unit handed to the encoder.
type Output struct {
	Name     string
	Audio    *engine.Audio
	Chapters []ChapterMark // set on merged outputs
}

// Encoder is the external container/codec boundary. Failure is fatal to
// that output target only.
type Encoder interface {
	Encode(ctx context.Context, out Output, meta Metadata) error
}

// Stretcher time-stretches a buffer to a target duration. How the stretch
// preserves pitch or sample rate is the implementation's concern.
type Stretcher interface {
	Stretch(a *engine.Audio, target time.Duration) (*engine.Audio, error)
}

// Config controls assembly outputs.
type Config struct {
	ChapterSilence time.Duration // silence inserted between chapters
	PerChapter     bool          // one output per chapter
	Merged         bool          // one merged output spanning all chapters
	MergedName     string
}

// Assembler builds outputs from assembled chapters.
type Assembler struct {
	cfg Config
}

// New creates an assembler. When neither output form is selected, merged
// output is produced.
func New(cfg Config) *Assembler {
	if !cfg.PerChapter && !cfg.Merged {
		cfg.Merged = true
	}
	if cfg.MergedName == "" {
		cfg.MergedName = "audiobook"
	}
	return &Assembler{cfg: cfg}
}

// Concat joins segment buffers with zero gap, so voice changes stay
// audio-contiguous. All buffers must share format and sample rate.
func Concat(buffers []*engine.Audio) (*engine.Audio, error) {
	if len(buffers) == 0 {
		return nil, fmt.Errorf("no audio to concatenate")
	}
	first := buffers[0]
	size := 0
	for _, b := range buffers {
		if b.SampleRate != first.SampleRate || b.Format != first.Format || b.Channels != first.Channels {
			return nil, fmt.Errorf("mismatched audio parameters: %dHz/%d vs %dHz/%d",
				b.SampleRate, b.Format, first.SampleRate, first.Format)
		}
		size += len(b.Data)
	}
	data := make([]byte, 0, size)
	for _, b := range buffers {
		data = append(data, b.Data...)
	}
	out := &engine.Audio{
		Data:       data,
		Format:     first.Format,
		SampleRate: first.SampleRate,
		Channels:   first.Channels,
	}
	out.Duration = engine.PCMDuration(len(data), out.Format, out.SampleRate, out.Channels)
	return out, nil
}

// Outputs builds the configured outputs from assembled chapters. The merged
// output carries chapter marks placed after each inter-chapter silence.
func (a *Assembler) Outputs(chapters []ChapterAudio) ([]Output, error) {
	if len(chapters) == 0 {
		return nil, fmt.Errorf("no chapters to assemble")
	}
	var outputs []Output

	if a.cfg.PerChapter {
		for i, c := range chapters {
			name := SanitizeName(c.Title)
			if name == "" {
				name = fmt.Sprintf("chapter_%02d", i+1)
			}
			outputs = append(outputs, Output{Name: name, Audio: c.Audio})
		}
	}

	if a.cfg.Merged {
		merged, err := a.merge(chapters)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, merged)
	}
	return outputs, nil
}

func (a *Assembler) merge(chapters []ChapterAudio) (Output, error) {
	sampleRate := chapters[0].Audio.SampleRate
	var (
		buffers []*engine.Audio
		marks   []ChapterMark
		cursor  time.Duration
	)
	for i, c := range chapters {
		if i > 0 && a.cfg.ChapterSilence > 0 {
			gap := engine.Silence(a.cfg.ChapterSilence, sampleRate)
			buffers = append(buffers, gap)
			cursor += gap.Duration
		}
		marks = append(marks, ChapterMark{Title: c.Title, Start: cursor})
		buffers = append(buffers, c.Audio)
		cursor += c.Audio.Duration
	}
	audio, err := Concat(buffers)
	if err != nil {
		return Output{}, err
	}
	return Output{Name: SanitizeName(a.cfg.MergedName), Audio: audio, Chapters: marks}, nil
}
