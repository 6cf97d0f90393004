// Package main provides the abogen CLI: text with narration markers in,
// narrated audio plus synchronized subtitles out.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/olandir/abogen/assemble"
	"github.com/olandir/abogen/engine"
	"github.com/olandir/abogen/engine/mock"
	"github.com/olandir/abogen/pipeline"
	"github.com/olandir/abogen/subtitle"
	"github.com/olandir/abogen/voice"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile        string
	engineName        string
	outputDir         string
	subtitleFormat    string
	substitutionsFile string
	debug             bool

	rootCmd = &cobra.Command{
		Use:   "abogen [FILE]",
		Short: "Convert marked-up text into narrated audio with subtitles",
		Long: "\nConvert long-form text into narrated audio with synchronized subtitles.\n" +
			"Chapter, voice and metadata markers in the text drive segmentation;\n" +
			"SubRip, WebVTT and SubStation Alpha inputs are narrated at their literal timestamps.",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE:         execute,
	}
)

func execute(cmd *cobra.Command, args []string) error {
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("unable to read config file: %w", err)
		}
	}

	text, name, err := readInput(args)
	if err != nil {
		return err
	}

	registry := voice.DefaultRegistry()
	cfg, err := pipeline.LoadConfig(registry)
	if err != nil {
		return err
	}
	if substitutionsFile != "" {
		rules, err := os.ReadFile(substitutionsFile)
		if err != nil {
			return fmt.Errorf("unable to read substitutions file: %w", err)
		}
		cfg.Substitutions = string(rules)
	}
	if cfg.MergedName == "audiobook" && name != "" {
		cfg.MergedName = name
	}

	eng, err := newEngine(engineName)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Shutdown() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner(eng, pipeline.WithRegistry(registry))
	result, err := runner.Run(ctx, pipeline.NewJob(text, cfg))
	if err == pipeline.ErrCancelled {
		log.Warn("cancelled, partial audio discarded", "job", result.JobID)
		return err
	}
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		log.Warn("voice marker ignored", "expression", w.Expression, "near", w.Context)
	}
	return writeOutputs(ctx, result)
}

// readInput returns the marker text and a base name for merged output.
// Subtitle-file inputs (SubRip, WebVTT, SubStation Alpha) are converted to
// timestamp-marker text so the pipeline narrates them at their literal
// offsets.
func readInput(args []string) (string, string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("unable to read stdin: %w", err)
		}
		return string(b), "", nil
	}

	path := args[0]
	b, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("unable to read input: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".srt":
		return timestampText(subtitle.ParseSRT(string(b))), name, nil
	case ".vtt":
		return timestampText(subtitle.ParseVTT(string(b))), name, nil
	case ".ass", ".ssa":
		return timestampText(subtitle.ParseASS(string(b))), name, nil
	}
	return string(b), name, nil
}

// timestampText renders parsed cues as timestamp-marker lines.
func timestampText(entries []subtitle.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		d := e.Start
		fmt.Fprintf(&sb, "%02d:%02d:%02d.%03d\n%s\n\n",
			d/time.Hour, (d%time.Hour)/time.Minute, (d%time.Minute)/time.Second,
			(d%time.Second)/time.Millisecond, e.Text)
	}
	return sb.String()
}

func newEngine(name string) (engine.Engine, error) {
	switch name {
	case "mock":
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q (external engines attach through the engine.Engine interface)", name)
	}
}

func writeOutputs(ctx context.Context, result *pipeline.Result) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	enc := assemble.WAVEncoder{Dir: outputDir}
	for _, out := range result.Outputs {
		if err := enc.Encode(ctx, out, result.Metadata); err != nil {
			return err
		}
		log.Info("wrote audio",
			"file", filepath.Join(outputDir, out.Name+".wav"),
			"size", humanize.Bytes(uint64(len(out.Audio.Data))),
			"duration", out.Audio.Duration.Round(time.Millisecond))
	}

	if subtitleFormat != "none" && len(result.Subtitles) > 0 {
		name := result.Outputs[len(result.Outputs)-1].Name
		path := filepath.Join(outputDir, name+"."+subtitleFormat)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("unable to create subtitle file: %w", err)
		}
		defer f.Close()
		switch subtitleFormat {
		case "srt":
			err = subtitle.WriteSRT(f, result.Subtitles)
		case "vtt":
			err = subtitle.WriteVTT(f, result.Subtitles)
		default:
			err = fmt.Errorf("unknown subtitle format %q", subtitleFormat)
		}
		if err != nil {
			return err
		}
		log.Info("wrote subtitles", "file", path, "entries", len(result.Subtitles))
	}

	log.Info("conversion finished",
		"job", result.JobID,
		"outputs", len(result.Outputs),
		"elapsed", humanize.RelTime(time.Now().Add(-result.Elapsed), time.Now(), "", ""))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVar(&engineName, "engine", "mock", "TTS engine")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	rootCmd.Flags().StringVar(&subtitleFormat, "subtitle-format", "srt", "subtitle file format (srt/vtt/none)")
	rootCmd.Flags().StringVar(&substitutionsFile, "substitutions-file", "", "file of pattern|replacement lines")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "verbose logging")

	rootCmd.Flags().StringP("voice", "v", "", "default voice identifier or formula")
	rootCmd.Flags().Float64P("rate", "r", 0, "speech rate (0.5 to 2.0)")
	rootCmd.Flags().StringP("language", "l", "", "narration language code")
	rootCmd.Flags().String("granularity", "", "subtitle granularity (line/sentence/sentence-comma/words)")
	rootCmd.Flags().Int("words-per-entry", 0, "words per subtitle entry for words granularity")
	rootCmd.Flags().String("gap-policy", "", "subtitle gap policy (silent-gap/fit-to-interval)")
	rootCmd.Flags().Duration("chapter-silence", 0, "silence inserted between chapters")
	rootCmd.Flags().Bool("per-chapter", false, "write one audio file per chapter")
	rootCmd.Flags().Bool("merged", false, "write one merged audio file")
	rootCmd.Flags().String("merged-name", "", "merged output name")

	_ = viper.BindPFlag("voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("subtitle_granularity", rootCmd.Flags().Lookup("granularity"))
	_ = viper.BindPFlag("words_per_entry", rootCmd.Flags().Lookup("words-per-entry"))
	_ = viper.BindPFlag("gap_policy", rootCmd.Flags().Lookup("gap-policy"))
	_ = viper.BindPFlag("chapter_silence", rootCmd.Flags().Lookup("chapter-silence"))
	_ = viper.BindPFlag("per_chapter", rootCmd.Flags().Lookup("per-chapter"))
	_ = viper.BindPFlag("merged", rootCmd.Flags().Lookup("merged"))
	_ = viper.BindPFlag("merged_name", rootCmd.Flags().Lookup("merged-name"))

	rootCmd.AddCommand(configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		viper.AddConfigPath(filepath.Join(c, "abogen"))
	}
	if c := os.Getenv("ABOGEN_CONFIG_HOME"); c != "" {
		viper.AddConfigPath(c)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		viper.AddConfigPath(filepath.Join(dir, "abogen"))
	}

	viper.SetConfigName("abogen")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("abogen")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}
	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
	}
}
