package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# default narration voice: identifier or "id1*w1 + id2*w2" formula
voice: "af_heart"
# speech rate (0.5 to 2.0)
rate: 1.0
# narration language code
language: "en"

# subtitle granularity: line, sentence, sentence-comma, words
subtitle_granularity: "sentence"
# words per entry for the words granularity
words_per_entry: 5
# gap policy: silent-gap or fit-to-interval
gap_policy: "silent-gap"

# silence between chapters in merged output
chapter_silence: "2s"
# write one audio file per chapter
per_chapter: false
# write one merged audio file
merged: true
merged_name: "audiobook"

# text preprocessing
fix_punctuation: true
case_sensitive: false
whole_word: true
lowercase_all_caps: false
expand_numerals: false
# newline-separated pattern|replacement rules
substitutions: ""
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the abogen config file",
	Long:    "\nEdit the abogen config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "abogen config\nabogen config --config path/to/config.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("abogen", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}
	if configFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("could not find configuration directory: %w", err)
		}
		configFile = filepath.Join(dir, "abogen", "abogen.yml")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
