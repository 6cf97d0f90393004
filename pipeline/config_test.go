package pipeline

import (
	"testing"
	"time"

	"github.com/olandir/abogen/voice"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(voice.DefaultRegistry()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	reg := voice.DefaultRegistry()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown voice", func(c *Config) { c.Voice = "nobody" }},
		{"invalid formula", func(c *Config) { c.Voice = "af_heart*x" }},
		{"rate too low", func(c *Config) { c.Rate = 0.4 }},
		{"rate too high", func(c *Config) { c.Rate = 2.5 }},
		{"bad granularity", func(c *Config) { c.SubtitleGranularity = "paragraph" }},
		{"bad gap policy", func(c *Config) { c.GapPolicy = "overlap" }},
		{"zero words per entry", func(c *Config) { c.WordsPerEntry = 0 }},
		{"negative chapter silence", func(c *Config) { c.ChapterSilence = -time.Second }},
		{"no output form", func(c *Config) { c.PerChapter = false; c.Merged = false }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(reg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsFormulaVoice(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Voice = "af_heart*0.7 + am_echo*0.3"
	if err := cfg.Validate(voice.DefaultRegistry()); err != nil {
		t.Errorf("formula default voice rejected: %v", err)
	}
}

func TestEnglish(t *testing.T) {
	tests := []struct {
		lang     string
		expected bool
	}{
		{"en", true},
		{"en-GB", true},
		{"EN", true},
		{"fr", false},
		{"ja", false},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Language = tt.lang
		if cfg.English() != tt.expected {
			t.Errorf("English(%q) = %v", tt.lang, cfg.English())
		}
	}
}

func TestPreprocessorOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Substitutions = "dr.|doctor\nmr.|mister"
	cfg.LowercaseAllCaps = true

	opts := cfg.PreprocessorOptions()
	if !opts.FixPunctuation || !opts.WholeWord || !opts.LowercaseAllCaps {
		t.Errorf("flags not carried over: %+v", opts)
	}
	if len(opts.Rules) != 2 || opts.Rules[0].Pattern != "dr." {
		t.Errorf("rules not parsed: %+v", opts.Rules)
	}
}
