package pipeline

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/olandir/abogen/voice"
)

// LoadConfig builds a Config from defaults, then the viper-backed config
// file, then ABOGEN_* environment variables, and validates the result
// against the registry.
func LoadConfig(reg *voice.Registry) (Config, error) {
	cfg := DefaultConfig()
	applyViper(&cfg)
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("environment configuration: %w", err)
	}
	if err := cfg.Validate(reg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyViper(cfg *Config) {
	if viper.IsSet("voice") {
		cfg.Voice = viper.GetString("voice")
	}
	if viper.IsSet("rate") {
		cfg.Rate = viper.GetFloat64("rate")
	}
	if viper.IsSet("language") {
		cfg.Language = viper.GetString("language")
	}
	if viper.IsSet("subtitle_granularity") {
		cfg.SubtitleGranularity = viper.GetString("subtitle_granularity")
	}
	if viper.IsSet("words_per_entry") {
		cfg.WordsPerEntry = viper.GetInt("words_per_entry")
	}
	if viper.IsSet("gap_policy") {
		cfg.GapPolicy = viper.GetString("gap_policy")
	}
	if viper.IsSet("chapter_silence") {
		cfg.ChapterSilence = viper.GetDuration("chapter_silence")
	}
	if viper.IsSet("per_chapter") {
		cfg.PerChapter = viper.GetBool("per_chapter")
	}
	if viper.IsSet("merged") {
		cfg.Merged = viper.GetBool("merged")
	}
	if viper.IsSet("merged_name") {
		cfg.MergedName = viper.GetString("merged_name")
	}
	if viper.IsSet("fix_punctuation") {
		cfg.FixPunctuation = viper.GetBool("fix_punctuation")
	}
	if viper.IsSet("substitutions") {
		cfg.Substitutions = viper.GetString("substitutions")
	}
	if viper.IsSet("case_sensitive") {
		cfg.CaseSensitive = viper.GetBool("case_sensitive")
	}
	if viper.IsSet("whole_word") {
		cfg.WholeWord = viper.GetBool("whole_word")
	}
	if viper.IsSet("lowercase_all_caps") {
		cfg.LowercaseAllCaps = viper.GetBool("lowercase_all_caps")
	}
	if viper.IsSet("expand_numerals") {
		cfg.ExpandNumerals = viper.GetBool("expand_numerals")
	}
}
