// Package subtitle converts synthesized audio durations and optional token
// timing into subtitle entries, and reads/writes SRT and WebVTT files.
package subtitle

import (
	"fmt"
	"strings"
	"time"
)

// Entry is one subtitle: a text span with absolute start and end offsets
// into the output timeline. Within one output, entries are non-overlapping
// and non-decreasing in start time, and End >= Start.
type Entry struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Granularity selects how segment text is divided into entries.
type Granularity int

const (
	// GranularityLine emits one entry per segment.
	GranularityLine Granularity = iota
	// GranularitySentence emits one entry per sentence.
	GranularitySentence
	// GranularitySentenceComma splits sentences further at commas.
	GranularitySentenceComma
	// GranularityWords emits fixed word-count windows.
	GranularityWords
)

// String returns the granularity name.
func (g Granularity) String() string {
	switch g {
	case GranularityLine:
		return "line"
	case GranularitySentence:
		return "sentence"
	case GranularitySentenceComma:
		return "sentence-comma"
	case GranularityWords:
		return "words"
	default:
		return "unknown"
	}
}

// ParseGranularity parses a granularity name as used in configuration.
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "":
		return GranularityLine, nil
	case "sentence":
		return GranularitySentence, nil
	case "sentence-comma", "sentence+comma":
		return GranularitySentenceComma, nil
	case "words", "word":
		return GranularityWords, nil
	default:
		return 0, fmt.Errorf("unknown subtitle granularity %q", s)
	}
}

// GapPolicy controls entry end times relative to the next entry's start.
type GapPolicy int

const (
	// GapSilent ends each entry at its own content end, leaving any
	// remainder as trailing silence.
	GapSilent GapPolicy = iota
	// GapFitToInterval stretches each entry to span exactly to the next
	// entry's start.
	GapFitToInterval
)

// String returns the gap policy name.
func (p GapPolicy) String() string {
	if p == GapFitToInterval {
		return "fit-to-interval"
	}
	return "silent-gap"
}

// ParseGapPolicy parses a gap policy name as used in configuration.
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent-gap", "silent", "":
		return GapSilent, nil
	case "fit-to-interval", "fit":
		return GapFitToInterval, nil
	default:
		return 0, fmt.Errorf("unknown gap policy %q", s)
	}
}

// Segmenter is the external linguistic sentence segmenter boundary. It may
// be absent, in which case punctuation heuristics apply.
type Segmenter interface {
	// Segment returns the ordered sentences of text.
	Segment(text string) ([]string, error)
}
