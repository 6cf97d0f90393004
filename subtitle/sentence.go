package subtitle

import (
	"strings"
	"unicode"
)

// defaultAbbreviations are trailing words whose period does not end a
// sentence.
var defaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr",
	"i.e", "e.g", "etc", "vs", "cf", "al",
	"inc", "ltd", "co", "corp",
	"st", "rd", "ave", "blvd",
	"jan", "feb", "mar", "apr", "jun", "jul", "aug", "sep", "sept", "oct", "nov", "dec",
	"u.s", "u.k", "u.n", "e.u",
	"ft", "lbs", "oz", "kg", "km", "cm", "mm", "mi",
	"hr", "hrs", "min", "mins", "sec", "secs",
}

// splitter finds sentence boundaries with punctuation heuristics.
type splitter struct {
	abbreviations map[string]bool
}

func newSplitter(extra []string) *splitter {
	s := &splitter{abbreviations: make(map[string]bool)}
	for _, a := range defaultAbbreviations {
		s.abbreviations[a] = true
	}
	for _, a := range extra {
		s.abbreviations[strings.ToLower(strings.TrimSuffix(a, "."))] = true
	}
	return s
}

// Split divides text into sentences after '.', '!' or '?' not preceded by
// an abbreviation exception. Trailing quotes and brackets stay attached to
// the sentence they close.
func (s *splitter) Split(text string) []string {
	runes := []rune(text)
	var sentences []string
	last := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		for end < len(runes) && (runes[end] == '.' || runes[end] == '!' || runes[end] == '?') {
			end++
		}
		for end < len(runes) && isClosing(runes[end]) {
			end++
		}
		if !s.isBoundary(runes, i, end) {
			i = end - 1
			continue
		}
		if piece := strings.TrimSpace(string(runes[last:end])); piece != "" {
			sentences = append(sentences, piece)
		}
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		last = end
		i = end - 1
	}

	if piece := strings.TrimSpace(string(runes[last:])); piece != "" {
		sentences = append(sentences, piece)
	}
	return sentences
}

func (s *splitter) isBoundary(runes []rune, punct, end int) bool {
	if runes[punct] == '.' {
		word := trailingWord(runes, punct)
		if s.abbreviations[strings.ToLower(strings.TrimSuffix(word, "."))] {
			return false
		}
		// Decimal number, "3.14".
		if punct > 0 && punct+1 < len(runes) &&
			unicode.IsDigit(runes[punct-1]) && unicode.IsDigit(runes[punct+1]) {
			return false
		}
	}
	// Needs whitespace or end-of-text after the punctuation run.
	return end >= len(runes) || unicode.IsSpace(runes[end])
}

func trailingWord(runes []rune, punct int) string {
	start := punct - 1
	for start >= 0 && !unicode.IsSpace(runes[start]) {
		start--
	}
	return string(runes[start+1 : punct])
}

func isClosing(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']'
}

// splitCommas divides a sentence at commas, keeping each comma with the
// piece it ends.
func splitCommas(sentence string) []string {
	var pieces []string
	last := 0
	for i := 0; i < len(sentence); i++ {
		if sentence[i] != ',' {
			continue
		}
		if piece := strings.TrimSpace(sentence[last : i+1]); piece != "" {
			pieces = append(pieces, piece)
		}
		last = i + 1
	}
	if piece := strings.TrimSpace(sentence[last:]); piece != "" {
		pieces = append(pieces, piece)
	}
	return pieces
}

// wordWindows groups words into windows of n words each.
func wordWindows(text string, n int) []string {
	if n < 1 {
		n = 1
	}
	words := strings.Fields(text)
	var windows []string
	for i := 0; i < len(words); i += n {
		end := i + n
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[i:end], " "))
	}
	return windows
}
