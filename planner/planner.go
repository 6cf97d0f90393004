// Package planner splits lexed narration content into chapters and
// fixed-voice segments, or into a flat timestamp-indexed list when the
// document contains timestamp markers.
package planner

import (
	"strings"
	"time"

	"github.com/olandir/abogen/marker"
	"github.com/olandir/abogen/voice"
)

// Segment is a contiguous text span narrated with one voice descriptor.
// Text excludes all markers and is whitespace-trimmed.
type Segment struct {
	Voice voice.Descriptor
	Text  string
}

// Chapter is an ordered list of segments under one title. The implicit
// chapter created for content before the first chapter marker has an empty
// title.
type Chapter struct {
	Title    string
	Segments []Segment
}

// TimedSegment is one (offset, text) pair of a timestamp-mode plan.
type TimedSegment struct {
	Offset time.Duration
	Text   string
}

// Plan is the planner output consumed by the segment driver and assembler.
type Plan struct {
	TimestampMode bool
	Chapters      []Chapter      // set unless TimestampMode
	Timed         []TimedSegment // set when TimestampMode
	Metadata      map[string]string
}

// SegmentCount returns the total number of segments across both modes.
func (p *Plan) SegmentCount() int {
	if p.TimestampMode {
		return len(p.Timed)
	}
	n := 0
	for _, c := range p.Chapters {
		n += len(c.Segments)
	}
	return n
}

// Build plans a lexed document. The voice state machine carries the
// resolved voice into and across chapters; its warnings accumulate on the
// state. Presence of any timestamp marker switches the whole document to
// timestamp mode, ignoring chapter and voice splitting.
func Build(doc *marker.Document, state *voice.State) *Plan {
	plan := &Plan{Metadata: doc.Metadata()}
	if doc.TimestampMode() {
		plan.TimestampMode = true
		plan.Timed = buildTimed(doc)
		return plan
	}
	plan.Chapters = buildChapters(doc, state)
	return plan
}

func buildChapters(doc *marker.Document, state *voice.State) []Chapter {
	var chapters []Chapter
	current := Chapter{}
	cursor := 0

	flush := func(until int) {
		text := strings.TrimSpace(doc.Content[cursor:until])
		cursor = until
		if text != "" {
			current.Segments = append(current.Segments, Segment{Voice: state.Current(), Text: text})
		}
	}

	for _, m := range doc.Markers {
		switch m.Kind {
		case marker.KindChapter:
			flush(m.ContentOffset)
			// Content before the first chapter marker forms an implicit
			// untitled chapter only when non-empty.
			if current.Title != "" || len(current.Segments) > 0 {
				chapters = append(chapters, current)
			}
			current = Chapter{Title: m.Title}
		case marker.KindVoice:
			flush(m.ContentOffset)
			state.Apply(m.Expression, surrounding(doc.Content, m.ContentOffset))
		}
	}
	flush(len(doc.Content))
	if current.Title != "" || len(current.Segments) > 0 {
		chapters = append(chapters, current)
	}
	return chapters
}

func buildTimed(doc *marker.Document) []TimedSegment {
	var timed []TimedSegment
	cursor := 0
	offset := time.Duration(0)
	first := true

	flush := func(until int, next time.Duration, nextFirst bool) {
		text := strings.TrimSpace(doc.Content[cursor:until])
		cursor = until
		if text != "" {
			// Content before the first timestamp is assigned offset zero.
			if first {
				offset = 0
			}
			timed = append(timed, TimedSegment{Offset: offset, Text: text})
		}
		offset = next
		first = nextFirst
	}

	for _, m := range doc.Markers {
		if m.Kind != marker.KindTimestamp {
			continue
		}
		flush(m.ContentOffset, m.Timestamp, false)
	}
	flush(len(doc.Content), 0, first)
	return timed
}

// surrounding returns a short window of content around an offset, used as
// warning context for invalid voice markers.
func surrounding(content string, offset int) string {
	const window = 40
	start := offset - window
	if start < 0 {
		start = 0
	}
	end := offset + window
	if end > len(content) {
		end = len(content)
	}
	return strings.TrimSpace(content[start:end])
}
