package subtitle

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/olandir/abogen/engine"
)

// AlignerConfig configures entry granularity, the gap policy, and the
// optional external segmenter.
type AlignerConfig struct {
	Granularity   Granularity
	WordsPerEntry int // GranularityWords window size
	GapPolicy     GapPolicy

	// Segmenter, when set, replaces the punctuation heuristics. For
	// non-English jobs the caller runs it before synthesis instead.
	Segmenter Segmenter

	// Abbreviations extends the heuristic exception list.
	Abbreviations []string
}

// Aligner lays out subtitle entries against synthesized audio.
type Aligner struct {
	cfg      AlignerConfig
	splitter *splitter
}

// NewAligner creates an aligner for one conversion job.
func NewAligner(cfg AlignerConfig) *Aligner {
	if cfg.WordsPerEntry < 1 {
		cfg.WordsPerEntry = 5
	}
	return &Aligner{cfg: cfg, splitter: newSplitter(cfg.Abbreviations)}
}

// Align produces the entries for one segment whose audio starts at base on
// the output timeline. Token timing is used when the audio carries it;
// otherwise boundaries are placed proportionally to each piece's share of
// the segment's character count.
func (a *Aligner) Align(base time.Duration, text string, audio *engine.Audio) []Entry {
	pieces := a.split(text)
	if len(pieces) == 0 {
		return nil
	}

	entries := a.alignTokens(base, pieces, audio)
	if entries == nil {
		entries = a.alignProportional(base, pieces, audio.Duration)
	}
	if len(entries) == 0 {
		return nil
	}

	if a.cfg.GapPolicy == GapFitToInterval {
		// Each entry spans exactly to the next entry's start.
		for i := range entries[:len(entries)-1] {
			entries[i].End = entries[i+1].Start
		}
		entries[len(entries)-1].End = base + audio.Duration
	}
	return entries
}

// Sentences exposes sentence division for segment-level granularity, where
// non-English text is split before synthesis. Falls back to heuristics when
// the external segmenter fails.
func (a *Aligner) Sentences(text string) []string {
	if a.cfg.Segmenter != nil {
		sentences, err := a.cfg.Segmenter.Segment(text)
		if err == nil {
			return sentences
		}
		log.Warn("external segmenter failed, using punctuation heuristics", "error", err)
	}
	return a.splitter.Split(text)
}

func (a *Aligner) split(text string) []string {
	switch a.cfg.Granularity {
	case GranularitySentence:
		return a.Sentences(text)
	case GranularitySentenceComma:
		var pieces []string
		for _, sentence := range a.Sentences(text) {
			pieces = append(pieces, splitCommas(sentence)...)
		}
		return pieces
	case GranularityWords:
		return wordWindows(text, a.cfg.WordsPerEntry)
	default:
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}
}

// alignTokens maps pieces onto the engine's token timing. Returns nil when
// the audio has no tokens or they cannot be matched against the text.
func (a *Aligner) alignTokens(base time.Duration, pieces []string, audio *engine.Audio) []Entry {
	if len(audio.Tokens) == 0 {
		return nil
	}
	total := 0
	for _, p := range pieces {
		total += len(strings.Fields(p))
	}
	if total != len(audio.Tokens) {
		return nil
	}

	entries := make([]Entry, 0, len(pieces))
	idx := 0
	for _, piece := range pieces {
		n := len(strings.Fields(piece))
		if n == 0 {
			continue
		}
		first, last := audio.Tokens[idx], audio.Tokens[idx+n-1]
		entries = append(entries, Entry{
			Start: base + first.Start,
			End:   base + last.End,
			Text:  piece,
		})
		idx += n
	}
	return entries
}

// alignProportional places boundaries at offsets proportional to each
// piece's share of the segment's character count.
func (a *Aligner) alignProportional(base time.Duration, pieces []string, total time.Duration) []Entry {
	chars := 0
	for _, p := range pieces {
		chars += len([]rune(p))
	}
	if chars == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(pieces))
	elapsed := time.Duration(0)
	counted := 0
	for _, piece := range pieces {
		counted += len([]rune(piece))
		end := time.Duration(float64(total) * float64(counted) / float64(chars))
		entries = append(entries, Entry{Start: base + elapsed, End: base + end, Text: piece})
		elapsed = end
	}
	return entries
}
