package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/olandir/abogen/marker"
	"github.com/olandir/abogen/voice"
)

func buildPlan(t *testing.T, text, defaultVoice string) (*Plan, *voice.State) {
	t.Helper()
	reg := voice.DefaultRegistry()
	d, err := voice.Parse(defaultVoice, reg)
	if err != nil {
		t.Fatalf("default voice: %v", err)
	}
	state := voice.NewState(reg, d)
	return Build(marker.Lex(text), state), state
}

func TestBuildChapterAndVoiceSplit(t *testing.T) {
	text := "Intro.\n\n<<VOICE:bf_alice>>\nPart A.\n\n<<CHAPTER_MARKER:Two>>\nPart B.\n\n<<VOICE:invalid>>\nPart C."
	plan, state := buildPlan(t, text, "af_heart")

	if plan.TimestampMode {
		t.Fatal("unexpected timestamp mode")
	}
	if len(plan.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(plan.Chapters))
	}

	implicit := plan.Chapters[0]
	if implicit.Title != "" {
		t.Errorf("implicit chapter has title %q", implicit.Title)
	}
	assertSegments(t, implicit.Segments, []Segment{
		{Voice: voice.Single("af_heart"), Text: "Intro."},
		{Voice: voice.Single("bf_alice"), Text: "Part A."},
	})

	two := plan.Chapters[1]
	if two.Title != "Two" {
		t.Errorf("expected chapter title Two, got %q", two.Title)
	}
	// The invalid marker still splits; both segments keep bf_alice.
	assertSegments(t, two.Segments, []Segment{
		{Voice: voice.Single("bf_alice"), Text: "Part B."},
		{Voice: voice.Single("bf_alice"), Text: "Part C."},
	})

	warnings := state.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Expression != "invalid" {
		t.Errorf("unexpected warning expression %q", warnings[0].Expression)
	}
}

func assertSegments(t *testing.T, got, expected []Segment) {
	t.Helper()
	if len(got) != len(expected) {
		t.Fatalf("expected %d segments, got %+v", len(expected), got)
	}
	for i := range expected {
		if got[i].Text != expected[i].Text {
			t.Errorf("segment %d: expected text %q, got %q", i, expected[i].Text, got[i].Text)
		}
		if got[i].Voice.String() != expected[i].Voice.String() {
			t.Errorf("segment %d: expected voice %q, got %q", i, expected[i].Voice.String(), got[i].Voice.String())
		}
	}
}

func TestVoicePersistsAcrossChapters(t *testing.T) {
	text := "<<VOICE:am_echo>>\nOne.\n<<CHAPTER_MARKER:A>>\nTwo.\n<<CHAPTER_MARKER:B>>\nThree."
	plan, _ := buildPlan(t, text, "af_heart")

	for _, c := range plan.Chapters {
		for _, s := range c.Segments {
			if s.Voice.String() != "am_echo" {
				t.Errorf("chapter %q segment %q: expected am_echo, got %q", c.Title, s.Text, s.Voice.String())
			}
		}
	}
}

func TestEmptySpansDropped(t *testing.T) {
	// Adjacent markers with only whitespace between them produce no
	// segments but the transitions still happen.
	text := "<<VOICE:bf_alice>>\n\n<<VOICE:am_echo>>\nSpoken."
	plan, _ := buildPlan(t, text, "af_heart")

	if len(plan.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(plan.Chapters))
	}
	assertSegments(t, plan.Chapters[0].Segments, []Segment{
		{Voice: voice.Single("am_echo"), Text: "Spoken."},
	})
}

func TestEmptyTitledChapterKept(t *testing.T) {
	text := "<<CHAPTER_MARKER:Silent>>\n<<CHAPTER_MARKER:Loud>>\nText."
	plan, _ := buildPlan(t, text, "af_heart")

	if len(plan.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(plan.Chapters))
	}
	if plan.Chapters[0].Title != "Silent" || len(plan.Chapters[0].Segments) != 0 {
		t.Errorf("unexpected first chapter: %+v", plan.Chapters[0])
	}
}

func TestFormulaVoiceOnSegments(t *testing.T) {
	text := "<<VOICE:af_heart*0.5 + am_echo*0.5>>\nBlended."
	plan, _ := buildPlan(t, text, "af_heart")

	seg := plan.Chapters[0].Segments[0]
	if !seg.Voice.IsFormula() {
		t.Error("expected formula descriptor")
	}
	if seg.Voice.String() != "af_heart*0.5 + am_echo*0.5" {
		t.Errorf("unexpected formula %q", seg.Voice.String())
	}
}

func TestTimestampMode(t *testing.T) {
	text := "Lead-in.\n00:00:05\nFirst cue.\n00:00:10.500\nSecond cue.\n<<CHAPTER_MARKER:Ignored>>\nStill second block."
	plan, _ := buildPlan(t, text, "af_heart")

	if !plan.TimestampMode {
		t.Fatal("expected timestamp mode")
	}
	if plan.Chapters != nil {
		t.Error("chapters built in timestamp mode")
	}
	if len(plan.Timed) != 3 {
		t.Fatalf("expected 3 timed segments, got %+v", plan.Timed)
	}

	if plan.Timed[0].Offset != 0 || plan.Timed[0].Text != "Lead-in." {
		t.Errorf("pre-timestamp content should sit at offset zero: %+v", plan.Timed[0])
	}
	if plan.Timed[1].Offset != 5*time.Second || plan.Timed[1].Text != "First cue." {
		t.Errorf("unexpected second segment: %+v", plan.Timed[1])
	}
	if plan.Timed[2].Offset != 10*time.Second+500*time.Millisecond {
		t.Errorf("unexpected third offset: %v", plan.Timed[2].Offset)
	}
	// The chapter marker is excised but does not split timed segments.
	if !strings.Contains(plan.Timed[2].Text, "Still second block.") {
		t.Errorf("unexpected third text: %q", plan.Timed[2].Text)
	}
}

func TestMetadataCollected(t *testing.T) {
	text := "<<METADATA_TITLE:My Book>>\n<<METADATA_YEAR:2001>>\nText."
	plan, _ := buildPlan(t, text, "af_heart")

	if plan.Metadata["title"] != "My Book" || plan.Metadata["year"] != "2001" {
		t.Errorf("unexpected metadata: %+v", plan.Metadata)
	}
}

func TestRoundTripReconstruction(t *testing.T) {
	// Concatenating chapter segment texts in order reproduces the document
	// content up to whitespace.
	text := "Alpha beta.\n<<VOICE:bf_alice>>\nGamma delta.\n<<CHAPTER_MARKER:C>>\nEpsilon."
	plan, _ := buildPlan(t, text, "af_heart")

	var parts []string
	for _, c := range plan.Chapters {
		for _, s := range c.Segments {
			parts = append(parts, s.Text)
		}
	}
	got := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	expected := "Alpha beta. Gamma delta. Epsilon."
	if got != expected {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestSegmentCount(t *testing.T) {
	plan, _ := buildPlan(t, "One.\n<<VOICE:bf_alice>>\nTwo.", "af_heart")
	if plan.SegmentCount() != 2 {
		t.Errorf("expected 2, got %d", plan.SegmentCount())
	}

	empty, _ := buildPlan(t, "   \n\n  ", "af_heart")
	if empty.SegmentCount() != 0 {
		t.Errorf("expected 0, got %d", empty.SegmentCount())
	}
}
