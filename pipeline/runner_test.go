package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/olandir/abogen/engine/mock"
	"github.com/olandir/abogen/subtitle"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ChapterSilence = time.Second
	return cfg
}

func TestRunCompleted(t *testing.T) {
	eng := mock.New()
	runner := NewRunner(eng)

	text := "Intro text here.\n<<CHAPTER_MARKER:One>>\nChapter one body.\n<<CHAPTER_MARKER:Two>>\nChapter two body."
	result, err := runner.Run(context.Background(), NewJob(text, testConfig()))
	if err != nil {
		t.Fatal(err)
	}

	if result.Outcome != OutcomeCompleted {
		t.Errorf("expected completed, got %v", result.Outcome)
	}
	if result.TimestampMode {
		t.Error("unexpected timestamp mode")
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("expected 1 merged output, got %d", len(result.Outputs))
	}

	out := result.Outputs[0]
	if len(out.Chapters) != 3 {
		t.Errorf("expected 3 chapter marks, got %+v", out.Chapters)
	}
	if out.Audio.Duration <= 2*time.Second {
		t.Errorf("merged audio suspiciously short: %v", out.Audio.Duration)
	}
	if len(result.Subtitles) == 0 {
		t.Error("no subtitle entries produced")
	}
	for i := 1; i < len(result.Subtitles); i++ {
		if result.Subtitles[i].Start < result.Subtitles[i-1].End {
			t.Errorf("subtitle %d overlaps previous", i)
		}
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", result.Warnings)
	}
}

func TestRunPerChapterOutputs(t *testing.T) {
	cfg := testConfig()
	cfg.PerChapter = true
	cfg.Merged = false

	runner := NewRunner(mock.New())
	result, err := runner.Run(context.Background(),
		NewJob("<<CHAPTER_MARKER:Alpha>>\nFirst.\n<<CHAPTER_MARKER:Beta>>\nSecond.", cfg))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(result.Outputs))
	}
	if result.Outputs[0].Name != "Alpha" || result.Outputs[1].Name != "Beta" {
		t.Errorf("unexpected output names: %q, %q", result.Outputs[0].Name, result.Outputs[1].Name)
	}
}

func TestRunInvalidVoiceWarning(t *testing.T) {
	runner := NewRunner(mock.New())
	result, err := runner.Run(context.Background(),
		NewJob("Before.\n<<VOICE:ghost>>\nAfter.", testConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %+v", result.Warnings)
	}
	if result.Warnings[0].Identifier != "ghost" {
		t.Errorf("unexpected warning: %+v", result.Warnings[0])
	}
	if result.Outcome != OutcomeCompleted {
		t.Error("invalid voice marker must not abort the job")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(mock.New())
	result, err := runner.Run(ctx, NewJob("Some text to narrate.", testConfig()))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if result == nil || result.Outcome != OutcomeCancelled {
		t.Errorf("expected cancelled outcome, got %+v", result)
	}
	if len(result.Outputs) != 0 {
		t.Error("cancelled job must not keep outputs")
	}
}

func TestRunEngineFailureFatal(t *testing.T) {
	eng := mock.New()
	eng.FailOn("cursed")

	runner := NewRunner(eng)
	_, err := runner.Run(context.Background(),
		NewJob("<<CHAPTER_MARKER:Bad>>\nA cursed passage.", testConfig()))
	if err == nil {
		t.Fatal("expected error")
	}

	var convErr *ConversionError
	if !errors.As(err, &convErr) {
		t.Fatalf("expected ConversionError, got %T: %v", err, err)
	}
	if convErr.Component != "tts" || convErr.Chapter != "Bad" {
		t.Errorf("missing failure context: %+v", convErr)
	}
}

func TestRunFormulaMixedOnce(t *testing.T) {
	eng := mock.New()
	runner := NewRunner(eng)

	// The same formula appears twice; the handle must be mixed once and
	// reused from the cache.
	text := "<<VOICE:af_heart*0.5 + am_echo*0.5>>\nFirst part.\n" +
		"<<VOICE:bf_alice>>\nMiddle.\n" +
		"<<VOICE:af_heart*0.5 + am_echo*0.5>>\nLast part."
	if _, err := runner.Run(context.Background(), NewJob(text, testConfig())); err != nil {
		t.Fatal(err)
	}
	if eng.MixCalls() != 1 {
		t.Errorf("expected 1 mix call, got %d", eng.MixCalls())
	}
}

func TestRunNoContent(t *testing.T) {
	runner := NewRunner(mock.New())
	_, err := runner.Run(context.Background(), NewJob("  \n\n <<VOICE:bf_alice>> \n", testConfig()))
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = 9

	runner := NewRunner(mock.New())
	if _, err := runner.Run(context.Background(), NewJob("Text.", cfg)); err == nil {
		t.Error("expected validation error")
	}
}

func TestRunTimestampMode(t *testing.T) {
	runner := NewRunner(mock.New())
	cfg := testConfig()
	cfg.SubtitleGranularity = "words" // must be ignored in timestamp mode

	text := "00:00:02\nFirst cue text.\n00:00:30\nSecond cue text."
	result, err := runner.Run(context.Background(), NewJob(text, cfg))
	if err != nil {
		t.Fatal(err)
	}

	if !result.TimestampMode {
		t.Fatal("expected timestamp mode")
	}
	if len(result.Outputs) != 1 {
		t.Fatalf("expected 1 output, got %d", len(result.Outputs))
	}
	// Leading silence places the first cue at its literal offset.
	if result.Outputs[0].Audio.Duration < 30*time.Second {
		t.Errorf("timeline shorter than last offset: %v", result.Outputs[0].Audio.Duration)
	}
	if len(result.Subtitles) != 2 {
		t.Fatalf("expected one entry per cue, got %+v", result.Subtitles)
	}
	if result.Subtitles[0].Start != 2*time.Second {
		t.Errorf("first entry at %v, expected literal offset 2s", result.Subtitles[0].Start)
	}
	if result.Subtitles[1].Start != 30*time.Second {
		t.Errorf("second entry at %v, expected literal offset 30s", result.Subtitles[1].Start)
	}
}

func TestRunTimestampFitToInterval(t *testing.T) {
	runner := NewRunner(mock.New())
	cfg := testConfig()
	cfg.GapPolicy = "fit-to-interval"

	text := "00:00:01\nShort.\n00:00:10\nSecond cue."
	result, err := runner.Run(context.Background(), NewJob(text, cfg))
	if err != nil {
		t.Fatal(err)
	}
	// The first cue is stretched to span exactly to the second offset.
	if result.Subtitles[0].End.Round(10*time.Millisecond) != 10*time.Second {
		t.Errorf("first entry ends at %v, expected 10s", result.Subtitles[0].End)
	}
	if result.Subtitles[1].Start != 10*time.Second {
		t.Errorf("second entry starts at %v", result.Subtitles[1].Start)
	}
}

func TestRunFitToIntervalContiguousAcrossChapters(t *testing.T) {
	cfg := testConfig()
	cfg.GapPolicy = "fit-to-interval"

	// Entries must abut through segment and chapter boundaries, including
	// across the inter-chapter silence.
	text := "Opening line here.\n<<CHAPTER_MARKER:One>>\nFirst chapter text. More of it.\n<<CHAPTER_MARKER:Two>>\nSecond chapter text."
	result, err := NewRunner(mock.New()).Run(context.Background(), NewJob(text, cfg))
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Subtitles) < 3 {
		t.Fatalf("expected entries spanning chapters, got %+v", result.Subtitles)
	}
	for i := 0; i < len(result.Subtitles)-1; i++ {
		if result.Subtitles[i].End != result.Subtitles[i+1].Start {
			t.Errorf("entry %d ends at %v but entry %d starts at %v",
				i, result.Subtitles[i].End, i+1, result.Subtitles[i+1].Start)
		}
	}
}

func TestRunTimestampModeCRLF(t *testing.T) {
	runner := NewRunner(mock.New())

	text := "00:00:02\r\nFirst cue.\r\n00:00:05\r\nSecond cue.\r\n"
	result, err := runner.Run(context.Background(), NewJob(text, testConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if !result.TimestampMode {
		t.Fatal("CRLF input failed to enter timestamp mode")
	}
	if len(result.Subtitles) != 2 || result.Subtitles[0].Start != 2*time.Second {
		t.Errorf("unexpected entries: %+v", result.Subtitles)
	}
}

func TestRunNonEnglishSegmenter(t *testing.T) {
	eng := mock.New()
	seg := listSegmenter{out: []string{"Erste Satz.", "Zweiter Satz."}}
	runner := NewRunner(eng, WithSegmenter(seg))

	cfg := testConfig()
	cfg.Language = "de"
	result, err := runner.Run(context.Background(), NewJob("Erste Satz. Zweiter Satz.", cfg))
	if err != nil {
		t.Fatal(err)
	}
	// Each pre-split sentence is synthesized separately.
	if eng.SynthesizeCalls() != 2 {
		t.Errorf("expected 2 synthesize calls, got %d", eng.SynthesizeCalls())
	}
	if result.Outcome != OutcomeCompleted {
		t.Errorf("unexpected outcome %v", result.Outcome)
	}
}

type listSegmenter struct{ out []string }

func (s listSegmenter) Segment(string) ([]string, error) { return s.out, nil }

var _ subtitle.Segmenter = listSegmenter{}
