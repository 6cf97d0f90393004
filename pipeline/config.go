// Package pipeline runs conversion jobs: preprocess, lex, plan, synthesize,
// align subtitles, and assemble audio, one job at a time against the
// external TTS engine.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/olandir/abogen/subtitle"
	"github.com/olandir/abogen/textproc"
	"github.com/olandir/abogen/voice"
)

// Config contains all conversion options for one job.
type Config struct {
	// Narration settings
	Voice    string  `yaml:"voice" env:"ABOGEN_VOICE" envDefault:"af_heart"`
	Rate     float64 `yaml:"rate" env:"ABOGEN_RATE" envDefault:"1.0"`
	Language string  `yaml:"language" env:"ABOGEN_LANGUAGE" envDefault:"en"`

	// Subtitle settings
	SubtitleGranularity string `yaml:"subtitle_granularity" env:"ABOGEN_SUBTITLE_GRANULARITY" envDefault:"sentence"`
	WordsPerEntry       int    `yaml:"words_per_entry" env:"ABOGEN_WORDS_PER_ENTRY" envDefault:"5"`
	GapPolicy           string `yaml:"gap_policy" env:"ABOGEN_GAP_POLICY" envDefault:"silent-gap"`

	// Output settings
	ChapterSilence time.Duration `yaml:"chapter_silence" env:"ABOGEN_CHAPTER_SILENCE" envDefault:"2s"`
	PerChapter     bool          `yaml:"per_chapter" env:"ABOGEN_PER_CHAPTER" envDefault:"false"`
	Merged         bool          `yaml:"merged" env:"ABOGEN_MERGED" envDefault:"true"`
	MergedName     string        `yaml:"merged_name" env:"ABOGEN_MERGED_NAME" envDefault:"audiobook"`

	// Preprocessing settings
	FixPunctuation   bool   `yaml:"fix_punctuation" env:"ABOGEN_FIX_PUNCTUATION" envDefault:"true"`
	Substitutions    string `yaml:"substitutions" env:"ABOGEN_SUBSTITUTIONS"`
	CaseSensitive    bool   `yaml:"case_sensitive" env:"ABOGEN_CASE_SENSITIVE" envDefault:"false"`
	WholeWord        bool   `yaml:"whole_word" env:"ABOGEN_WHOLE_WORD" envDefault:"true"`
	LowercaseAllCaps bool   `yaml:"lowercase_all_caps" env:"ABOGEN_LOWERCASE_ALL_CAPS" envDefault:"false"`
	ExpandNumerals   bool   `yaml:"expand_numerals" env:"ABOGEN_EXPAND_NUMERALS" envDefault:"false"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Voice:               "af_heart",
		Rate:                1.0,
		Language:            "en",
		SubtitleGranularity: "sentence",
		WordsPerEntry:       5,
		GapPolicy:           "silent-gap",
		ChapterSilence:      2 * time.Second,
		Merged:              true,
		MergedName:          "audiobook",
		FixPunctuation:      true,
		WholeWord:           true,
	}
}

// Validate checks the configuration against a voice registry. Malformed
// required configuration is fatal to the job.
func (c *Config) Validate(reg *voice.Registry) error {
	if _, err := voice.Parse(c.Voice, reg); err != nil {
		return fmt.Errorf("default voice: %w", err)
	}
	if c.Rate < 0.5 || c.Rate > 2.0 {
		return fmt.Errorf("rate must be between 0.5 and 2.0, got %g", c.Rate)
	}
	if _, err := subtitle.ParseGranularity(c.SubtitleGranularity); err != nil {
		return err
	}
	if _, err := subtitle.ParseGapPolicy(c.GapPolicy); err != nil {
		return err
	}
	if c.WordsPerEntry < 1 {
		return fmt.Errorf("words_per_entry must be at least 1, got %d", c.WordsPerEntry)
	}
	if c.ChapterSilence < 0 {
		return fmt.Errorf("chapter_silence cannot be negative, got %v", c.ChapterSilence)
	}
	if !c.PerChapter && !c.Merged {
		return fmt.Errorf("at least one of per_chapter and merged must be enabled")
	}
	return nil
}

// English reports whether the job narrates English text, which controls
// whether the external segmenter runs before or after synthesis.
func (c *Config) English() bool {
	return strings.HasPrefix(strings.ToLower(c.Language), "en")
}

// PreprocessorOptions maps the config onto the text preprocessing passes.
func (c *Config) PreprocessorOptions() textproc.Options {
	return textproc.Options{
		FixPunctuation:   c.FixPunctuation,
		Rules:            textproc.ParseRules(c.Substitutions),
		CaseSensitive:    c.CaseSensitive,
		WholeWord:        c.WholeWord,
		LowercaseAllCaps: c.LowercaseAllCaps,
		ExpandNumerals:   c.ExpandNumerals,
	}
}
