// Package marker scans narration text for chapter markers, voice markers,
// metadata tags, and timestamp lines. Lexing is fail-open: marker-like text
// that does not match the literal syntax exactly is left as content.
package marker

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies a marker variant.
type Kind int

const (
	// KindChapter is a <<CHAPTER_MARKER:title>> occurrence.
	KindChapter Kind = iota
	// KindVoice is a <<VOICE:expr>> occurrence.
	KindVoice
	// KindMetadata is a <<METADATA_KEY:value>> occurrence.
	KindMetadata
	// KindTimestamp is a bare HH:MM:SS[.mmm] line.
	KindTimestamp
)

// String returns the marker kind name.
func (k Kind) String() string {
	switch k {
	case KindChapter:
		return "chapter"
	case KindVoice:
		return "voice"
	case KindMetadata:
		return "metadata"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Marker is one marker occurrence. Immutable once parsed.
type Marker struct {
	Kind    Kind
	Literal string // exact source text of the marker

	Offset        int // byte offset in the original text
	ContentOffset int // byte offset in Document.Content where the marker stood

	Title      string        // chapter markers
	Expression string        // voice markers, raw payload
	Key, Value string        // metadata tags, Key lower-cased
	Timestamp  time.Duration // timestamp markers
}

// Document is the result of lexing: ordered markers plus the leftover
// content with every marker occurrence excised.
type Document struct {
	Markers []Marker
	Content string
}

// TimestampMode reports whether the document contains any timestamp marker,
// which switches the whole job into timestamp planning.
func (d *Document) TimestampMode() bool {
	for _, m := range d.Markers {
		if m.Kind == KindTimestamp {
			return true
		}
	}
	return false
}

// Metadata collects metadata tag values keyed by lower-cased tag name.
// Later tags win on duplicate keys.
func (d *Document) Metadata() map[string]string {
	tags := make(map[string]string)
	for _, m := range d.Markers {
		if m.Kind == KindMetadata {
			tags[m.Key] = m.Value
		}
	}
	return tags
}

var (
	markerPattern = regexp.MustCompile(
		`(?m)<<CHAPTER_MARKER:[^>]*>>|<<VOICE:[^>]*>>|<<METADATA_[^:>]+:[^>]*>>|^\d{1,2}:\d{2}:\d{2}(?:[.,]\d{1,3})?$`)
	metadataPattern  = regexp.MustCompile(`^<<METADATA_([^:>]+):([^>]*)>>$`)
	timestampPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?:[.,](\d{1,3}))?$`)
)

// Lex scans text and returns all marker occurrences plus the content with
// markers excised. Content offsets let callers split the excised content at
// the positions where markers stood.
func Lex(text string) *Document {
	doc := &Document{}
	var content strings.Builder
	last := 0

	for _, loc := range markerPattern.FindAllStringIndex(text, -1) {
		content.WriteString(text[last:loc[0]])
		literal := text[loc[0]:loc[1]]
		m := classify(literal)
		m.Offset = loc[0]
		m.ContentOffset = content.Len()
		doc.Markers = append(doc.Markers, m)
		last = loc[1]
	}
	content.WriteString(text[last:])
	doc.Content = content.String()
	return doc
}

// Split divides text into alternating marker and content spans, preserving
// every byte. Preprocessing passes run on content spans only and re-splice
// marker spans unchanged.
func Split(text string) []Span {
	var spans []Span
	last := 0
	for _, loc := range markerPattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Text: text[last:loc[0]]})
		}
		spans = append(spans, Span{Marker: true, Text: text[loc[0]:loc[1]]})
		last = loc[1]
	}
	if last < len(text) {
		spans = append(spans, Span{Text: text[last:]})
	}
	return spans
}

// Span is a marker or content slice of the original text.
type Span struct {
	Marker bool
	Text   string
}

func classify(literal string) Marker {
	switch {
	case strings.HasPrefix(literal, "<<CHAPTER_MARKER:"):
		return Marker{
			Kind:    KindChapter,
			Literal: literal,
			Title:   strings.TrimSuffix(strings.TrimPrefix(literal, "<<CHAPTER_MARKER:"), ">>"),
		}
	case strings.HasPrefix(literal, "<<VOICE:"):
		return Marker{
			Kind:       KindVoice,
			Literal:    literal,
			Expression: strings.TrimSuffix(strings.TrimPrefix(literal, "<<VOICE:"), ">>"),
		}
	case strings.HasPrefix(literal, "<<METADATA_"):
		m := Marker{Kind: KindMetadata, Literal: literal}
		if parts := metadataPattern.FindStringSubmatch(literal); parts != nil {
			m.Key = strings.ToLower(parts[1])
			m.Value = parts[2]
		}
		return m
	default:
		return Marker{
			Kind:      KindTimestamp,
			Literal:   literal,
			Timestamp: parseTimestamp(literal),
		}
	}
}

func parseTimestamp(literal string) time.Duration {
	parts := timestampPattern.FindStringSubmatch(literal)
	if parts == nil {
		return 0
	}
	h, _ := strconv.Atoi(parts[1])
	m, _ := strconv.Atoi(parts[2])
	s, _ := strconv.Atoi(parts[3])
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	if parts[4] != "" {
		// One to three fractional digits; "5" means 500ms.
		frac := parts[4] + strings.Repeat("0", 3-len(parts[4]))
		ms, _ := strconv.Atoi(frac)
		d += time.Duration(ms) * time.Millisecond
	}
	return d
}
