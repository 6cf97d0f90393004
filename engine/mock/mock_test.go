package mock

import (
	"context"
	"testing"

	"github.com/olandir/abogen/voice"
)

func TestSynthesizeDuration(t *testing.T) {
	e := New()
	h := e.Voice("af_heart")

	short, err := e.Synthesize(context.Background(), "hi", h, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	long, err := e.Synthesize(context.Background(), "a considerably longer sentence", h, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if long.Duration <= short.Duration {
		t.Errorf("longer text should take longer: %v vs %v", long.Duration, short.Duration)
	}

	fast, err := e.Synthesize(context.Background(), "hi", h, 2.0)
	if err != nil {
		t.Fatal(err)
	}
	if fast.Duration >= short.Duration {
		t.Errorf("higher rate should shorten audio: %v vs %v", fast.Duration, short.Duration)
	}
}

func TestSynthesizeTokens(t *testing.T) {
	e := New()
	audio, err := e.Synthesize(context.Background(), "one two three", e.Voice("af_heart"), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(audio.Tokens) != 3 {
		t.Fatalf("expected 3 tokens, got %+v", audio.Tokens)
	}
	if audio.Tokens[0].Start != 0 {
		t.Errorf("first token starts at %v", audio.Tokens[0].Start)
	}
	if audio.Tokens[2].End != audio.Duration {
		t.Errorf("last token ends at %v, buffer is %v", audio.Tokens[2].End, audio.Duration)
	}
	for i := 1; i < len(audio.Tokens); i++ {
		if audio.Tokens[i].Start != audio.Tokens[i-1].End {
			t.Errorf("token %d not contiguous", i)
		}
	}

	e.DisableTokenTimings()
	audio, err = e.Synthesize(context.Background(), "one two", e.Voice("af_heart"), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if audio.Tokens != nil {
		t.Error("tokens reported with timings disabled")
	}
}

func TestFailControls(t *testing.T) {
	e := New()
	e.FailOn("boom")

	if _, err := e.Synthesize(context.Background(), "all fine", e.Voice("af_heart"), 1.0); err != nil {
		t.Errorf("unexpected failure: %v", err)
	}
	if _, err := e.Synthesize(context.Background(), "then boom happens", e.Voice("af_heart"), 1.0); err == nil {
		t.Error("expected failure on matching text")
	}

	e.FailMix()
	if _, err := e.Mix(context.Background(), []voice.Component{{ID: "af_heart", Weight: 1}}); err == nil {
		t.Error("expected mix failure")
	}
}

func TestMixHandleDescriptor(t *testing.T) {
	e := New()
	h, err := e.Mix(context.Background(), []voice.Component{
		{ID: "af_heart", Weight: 0.5},
		{ID: "am_echo", Weight: 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	if h.Descriptor() != "af_heart*0.5 + am_echo*0.5" {
		t.Errorf("unexpected descriptor %q", h.Descriptor())
	}
	if e.MixCalls() != 1 {
		t.Errorf("expected 1 mix call, got %d", e.MixCalls())
	}
}

func TestShutdown(t *testing.T) {
	e := New()
	if err := e.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Synthesize(context.Background(), "text", e.Voice("af_heart"), 1.0); err == nil {
		t.Error("expected error after shutdown")
	}
}

func TestSynthesizeCancelled(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Synthesize(ctx, "text", e.Voice("af_heart"), 1.0); err == nil {
		t.Error("expected context error")
	}
}
