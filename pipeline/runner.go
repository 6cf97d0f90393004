package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/olandir/abogen/assemble"
	"github.com/olandir/abogen/engine"
	"github.com/olandir/abogen/marker"
	"github.com/olandir/abogen/planner"
	"github.com/olandir/abogen/subtitle"
	"github.com/olandir/abogen/textproc"
	"github.com/olandir/abogen/voice"
)

// Outcome distinguishes how a conversion job ended.
type Outcome int

const (
	// OutcomeCompleted means all outputs were produced.
	OutcomeCompleted Outcome = iota
	// OutcomeCancelled means the job stopped cooperatively; in-progress
	// chapter buffers were discarded.
	OutcomeCancelled
)

// String returns the outcome name.
func (o Outcome) String() string {
	if o == OutcomeCancelled {
		return "cancelled"
	}
	return "completed"
}

// Job is one conversion request: plain text with markers already injected
// by the document reader, plus its configuration.
type Job struct {
	ID        uuid.UUID
	Text      string
	Config    Config
	CoverPath string
}

// NewJob creates a job with a fresh ID.
func NewJob(text string, cfg Config) Job {
	return Job{ID: uuid.New(), Text: text, Config: cfg}
}

// Result is the outcome of a conversion job.
type Result struct {
	JobID         uuid.UUID
	Outcome       Outcome
	TimestampMode bool
	Outputs       []assemble.Output
	Subtitles     []subtitle.Entry
	Metadata      assemble.Metadata
	Warnings      []voice.Warning
	Elapsed       time.Duration
}

// Runner executes conversion jobs. Jobs are serialized: the external
// engine typically holds exclusive accelerator resources, so a job must
// fully complete or fail before the next begins.
type Runner struct {
	eng       engine.Engine
	registry  *voice.Registry
	stretcher assemble.Stretcher
	segmenter subtitle.Segmenter

	mu sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry replaces the default voice registry.
func WithRegistry(reg *voice.Registry) Option {
	return func(r *Runner) { r.registry = reg }
}

// WithSegmenter sets the external linguistic sentence segmenter.
func WithSegmenter(s subtitle.Segmenter) Option {
	return func(r *Runner) { r.segmenter = s }
}

// WithStretcher replaces the built-in time-stretch capability.
func WithStretcher(s assemble.Stretcher) Option {
	return func(r *Runner) { r.stretcher = s }
}

// NewRunner creates a runner for the given engine.
func NewRunner(eng engine.Engine, opts ...Option) *Runner {
	r := &Runner{
		eng:       eng,
		registry:  voice.DefaultRegistry(),
		stretcher: assemble.ResampleStretcher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one job to completion. The pipeline is single-threaded and
// strictly ordered; cancellation is checked between segments, never
// mid-synthesis. On cancellation the result carries OutcomeCancelled and
// the error is ErrCancelled.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if err := job.Config.Validate(r.registry); err != nil {
		return nil, err
	}

	// Timestamp markers are line-anchored; Windows and classic Mac line
	// endings must not hide them.
	text := normalizeNewlines(job.Text)
	text = textproc.New(job.Config.PreprocessorOptions()).Apply(text)
	doc := marker.Lex(text)

	defaultVoice, err := voice.Parse(job.Config.Voice, r.registry)
	if err != nil {
		return nil, err
	}
	voices := voice.NewState(r.registry, defaultVoice)

	plan := planner.Build(doc, voices)
	if plan.SegmentCount() == 0 {
		return nil, ErrNoContent
	}

	state := newConversionState(voices)
	defer state.release()

	granularity, _ := subtitle.ParseGranularity(job.Config.SubtitleGranularity)
	gap, _ := subtitle.ParseGapPolicy(job.Config.GapPolicy)
	aligner := subtitle.NewAligner(subtitle.AlignerConfig{
		Granularity:   granularity,
		WordsPerEntry: job.Config.WordsPerEntry,
		GapPolicy:     gap,
		Segmenter:     r.segmenter,
	})
	drv := &driver{eng: r.eng, state: state, rate: job.Config.Rate}

	log.Info("starting conversion",
		"job", job.ID,
		"segments", plan.SegmentCount(),
		"timestamp_mode", plan.TimestampMode)

	var chapters []assemble.ChapterAudio
	if plan.TimestampMode {
		chapters, err = r.runTimed(ctx, job, plan, state, drv, defaultVoice, gap)
	} else {
		chapters, err = r.runChapters(ctx, job, plan, state, drv, aligner)
	}
	if err == nil && gap == subtitle.GapFitToInterval {
		// The aligner makes entries abut within one segment; close the
		// remaining seams at segment and chapter boundaries so every entry
		// ends exactly where the next one starts.
		for i := 0; i < len(state.entries)-1; i++ {
			state.entries[i].End = state.entries[i+1].Start
		}
	}
	if err != nil {
		if err == ErrCancelled {
			log.Info("conversion cancelled", "job", job.ID)
			return &Result{
				JobID:         job.ID,
				Outcome:       OutcomeCancelled,
				TimestampMode: plan.TimestampMode,
				Warnings:      voices.Warnings(),
				Elapsed:       time.Since(start),
			}, ErrCancelled
		}
		return nil, err
	}

	assembler := assemble.New(assemble.Config{
		ChapterSilence: job.Config.ChapterSilence,
		PerChapter:     job.Config.PerChapter,
		Merged:         job.Config.Merged,
		MergedName:     job.Config.MergedName,
	})
	outputs, err := assembler.Outputs(chapters)
	if err != nil {
		return nil, &ConversionError{Component: "assemble", Segment: -1, Err: err}
	}

	return &Result{
		JobID:         job.ID,
		Outcome:       OutcomeCompleted,
		TimestampMode: plan.TimestampMode,
		Outputs:       outputs,
		Subtitles:     state.entries,
		Metadata:      assemble.Metadata{Tags: plan.Metadata, CoverPath: job.CoverPath},
		Warnings:      voices.Warnings(),
		Elapsed:       time.Since(start),
	}, nil
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// runChapters synthesizes chapter mode: chapters in document order,
// segments within a chapter in document order. Voice resolution and
// timeline placement are sequentially dependent, so nothing runs out of
// order.
func (r *Runner) runChapters(ctx context.Context, job Job, plan *planner.Plan, state *conversionState, drv *driver, aligner *subtitle.Aligner) ([]assemble.ChapterAudio, error) {
	var chapters []assemble.ChapterAudio
	for ci, chapter := range plan.Chapters {
		var buffers []*engine.Audio
		for si, seg := range chapter.Segments {
			if ctx.Err() != nil {
				return nil, ErrCancelled
			}

			// Non-English text is divided into sentences before synthesis
			// when the external segmenter is available; for English the
			// aligner refines timing after synthesis instead.
			pieces := []string{seg.Text}
			if !job.Config.English() && r.segmenter != nil {
				pieces = aligner.Sentences(seg.Text)
			}

			for _, piece := range pieces {
				audio, err := drv.synthesize(ctx, chapter.Title, si, seg.Voice, piece)
				if err != nil {
					return nil, err
				}
				state.addEntries(aligner.Align(state.cursor, piece, audio))
				state.advance(audio.Duration)
				buffers = append(buffers, audio)
			}
		}
		if len(buffers) == 0 {
			log.Debug("skipping chapter with no audio", "title", chapter.Title)
			continue
		}
		audio, err := assemble.Concat(buffers)
		if err != nil {
			return nil, &ConversionError{Component: "assemble", Chapter: chapter.Title, Segment: -1, Err: err}
		}
		chapters = append(chapters, assemble.ChapterAudio{Title: chapter.Title, Audio: audio})
		if ci < len(plan.Chapters)-1 {
			state.advance(job.Config.ChapterSilence)
		}
	}
	return chapters, nil
}

// runTimed synthesizes timestamp mode: one flat list keyed by literal
// offsets, no chapter or voice splitting, configured granularity ignored.
// Silence pads the timeline up to each offset; under fit-to-interval the
// audio is stretched to span exactly to the next offset.
func (r *Runner) runTimed(ctx context.Context, job Job, plan *planner.Plan, state *conversionState, drv *driver, defaultVoice voice.Descriptor, gap subtitle.GapPolicy) ([]assemble.ChapterAudio, error) {
	sampleRate := r.eng.Capabilities().SampleRate
	var buffers []*engine.Audio

	for i, ts := range plan.Timed {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		if ts.Offset > state.cursor {
			pad := engine.Silence(ts.Offset-state.cursor, sampleRate)
			buffers = append(buffers, pad)
			state.advance(pad.Duration)
		}

		audio, err := drv.synthesize(ctx, "", i, defaultVoice, ts.Text)
		if err != nil {
			return nil, err
		}

		if gap == subtitle.GapFitToInterval && i < len(plan.Timed)-1 {
			interval := plan.Timed[i+1].Offset - state.cursor
			if interval > 0 {
				stretched, err := r.stretcher.Stretch(audio, interval)
				if err != nil {
					return nil, segmentErr("stretch", "", i, err)
				}
				audio = stretched
			}
		} else if i < len(plan.Timed)-1 && state.cursor+audio.Duration > plan.Timed[i+1].Offset {
			log.Warn("synthesized audio overruns timestamp interval",
				"segment", i,
				"offset", ts.Offset,
				"overrun", state.cursor+audio.Duration-plan.Timed[i+1].Offset)
		}

		state.addEntries([]subtitle.Entry{{
			Start: state.cursor,
			End:   state.cursor + audio.Duration,
			Text:  ts.Text,
		}})
		state.advance(audio.Duration)
		buffers = append(buffers, audio)
	}

	audio, err := assemble.Concat(buffers)
	if err != nil {
		return nil, &ConversionError{Component: "assemble", Segment: -1, Err: err}
	}
	return []assemble.ChapterAudio{{Audio: audio}}, nil
}
