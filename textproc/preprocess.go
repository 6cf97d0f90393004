// Package textproc applies ordered, marker-preserving text transforms
// before synthesis: punctuation normalization, literal word substitution,
// ALL-CAPS lowering, and numeral expansion.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/olandir/abogen/marker"
)

// Rule is one literal substitution: pattern replaced by replacement.
// An empty replacement deletes the match.
type Rule struct {
	Pattern     string
	Replacement string
}

// Options selects and configures the preprocessing passes.
type Options struct {
	FixPunctuation   bool
	Rules            []Rule
	CaseSensitive    bool
	WholeWord        bool
	LowercaseAllCaps bool
	ExpandNumerals   bool
}

// Preprocessor runs the configured passes over content, leaving every
// marker span byte-identical.
type Preprocessor struct {
	opts  Options
	rules []compiledRule
}

// New compiles the substitution rules and returns a preprocessor.
func New(opts Options) *Preprocessor {
	p := &Preprocessor{opts: opts}
	for _, r := range opts.Rules {
		if r.Pattern == "" {
			continue
		}
		expr := regexp.QuoteMeta(r.Pattern)
		if !opts.CaseSensitive {
			expr = "(?i)" + expr
		}
		p.rules = append(p.rules, compiledRule{
			re:          regexp.MustCompile(expr),
			replacement: r.Replacement,
		})
	}
	return p
}

// Apply runs all enabled passes, each exactly once and strictly in order:
// punctuation, substitutions, ALL-CAPS, numerals. Marker spans are located
// first and excluded from every pass.
func (p *Preprocessor) Apply(text string) string {
	spans := marker.Split(text)
	var out strings.Builder
	out.Grow(len(text))
	for _, span := range spans {
		if span.Marker {
			out.WriteString(span.Text)
			continue
		}
		out.WriteString(p.applyContent(span.Text))
	}
	return out.String()
}

func (p *Preprocessor) applyContent(text string) string {
	if p.opts.FixPunctuation {
		text = fixPunctuation(text)
	}
	if len(p.rules) > 0 {
		text = p.substitute(text)
	}
	if p.opts.LowercaseAllCaps {
		text = lowercaseAllCaps(text)
	}
	if p.opts.ExpandNumerals {
		text = expandNumerals(text)
	}
	return text
}

// ParseRules parses newline-separated "pattern|replacement" lines, the
// substitution list format users supply. Lines without a separator or with
// an empty pattern are skipped.
func ParseRules(s string) []Rule {
	var rules []Rule
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		pattern, replacement, found := strings.Cut(line, "|")
		if !found {
			continue
		}
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		rules = append(rules, Rule{Pattern: pattern, Replacement: strings.TrimSpace(replacement)})
	}
	return rules
}

type compiledRule struct {
	re          *regexp.Regexp
	replacement string
}

// substitute applies all rules in a single left-to-right pass. At each
// position the earliest match wins; on equal positions the first-listed
// rule wins. Replacement text is never rescanned.
func (p *Preprocessor) substitute(text string) string {
	var out strings.Builder
	out.Grow(len(text))
	pos := 0
	for pos < len(text) {
		bestStart, bestEnd, bestRule := -1, -1, -1
		for i, rule := range p.rules {
			start, end, ok := p.findMatch(rule, text, pos)
			if !ok {
				continue
			}
			if bestStart == -1 || start < bestStart {
				bestStart, bestEnd, bestRule = start, end, i
			}
		}
		if bestRule == -1 {
			out.WriteString(text[pos:])
			return out.String()
		}
		out.WriteString(text[pos:bestStart])
		out.WriteString(p.rules[bestRule].replacement)
		pos = bestEnd
	}
	return out.String()
}

func (p *Preprocessor) findMatch(rule compiledRule, text string, from int) (int, int, bool) {
	for from <= len(text) {
		loc := rule.re.FindStringIndex(text[from:])
		if loc == nil {
			return 0, 0, false
		}
		start, end := from+loc[0], from+loc[1]
		if !p.opts.WholeWord || wordBounded(text, start, end) {
			return start, end, true
		}
		// Overlapping partial hit inside a larger word; keep scanning.
		_, size := utf8.DecodeRuneInString(text[start:])
		from = start + size
	}
	return 0, 0, false
}

// wordBounded reports whether text[start:end] is bounded by non-alphanumeric
// runes (or text edges) on both sides, so "tree" matches in "tree-shaped"
// but not in "trees".
func wordBounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// punctuationTable maps non-ASCII punctuation to TTS-safe ASCII.
var punctuationTable = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"„", `"`, // double low-9 quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
	"‚", "'", // single low-9 quotation mark
	"‛", "'", // single high-reversed-9 quotation mark
	"…", "...", // horizontal ellipsis
	"—", "-", // em dash
	"–", "-", // en dash
	"‐", "-", // hyphen
	" ", " ", // no-break space
)

func fixPunctuation(text string) string {
	return punctuationTable.Replace(text)
}

var allCapsPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)

func lowercaseAllCaps(text string) string {
	return allCapsPattern.ReplaceAllStringFunc(text, strings.ToLower)
}
