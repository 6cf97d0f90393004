package subtitle

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WriteSRT writes entries as a SubRip file.
func WriteSRT(w io.Writer, entries []Entry) error {
	for i, e := range entries {
		_, err := fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
			i+1, formatClock(e.Start, ','), formatClock(e.End, ','), e.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteVTT writes entries as a WebVTT file.
func WriteVTT(w io.Writer, entries []Entry) error {
	if _, err := io.WriteString(w, "WEBVTT\n\n"); err != nil {
		return err
	}
	for _, e := range entries {
		_, err := fmt.Fprintf(w, "%s --> %s\n%s\n\n",
			formatClock(e.Start, '.'), formatClock(e.End, '.'), e.Text)
		if err != nil {
			return err
		}
	}
	return nil
}

func formatClock(d time.Duration, sep byte) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	ms := (d % time.Second) / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

var (
	blockSplitPattern = regexp.MustCompile(`\n\s*\n`)
	cueTimingPattern  = regexp.MustCompile(`([\d:.,]+)\s*-->\s*([\d:.,]+)`)
	styleTagPattern   = regexp.MustCompile(`<[^>]+>|\{[^}]+\}`)
)

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// ParseSRT reads a SubRip file into ordered entries. Malformed blocks are
// skipped; styling tags are stripped.
func ParseSRT(content string) []Entry {
	var entries []Entry
	for _, block := range blockSplitPattern.Split(strings.TrimSpace(normalizeNewlines(content)), -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}
		// First line is the cue index, second the timing.
		e, ok := parseCue(lines[1], lines[2:])
		if ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseVTT reads a WebVTT file into ordered entries. Header, STYLE and NOTE
// blocks are ignored.
func ParseVTT(content string) []Entry {
	var entries []Entry
	for _, block := range blockSplitPattern.Split(strings.TrimSpace(normalizeNewlines(content)), -1) {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) == 0 {
			continue
		}
		head := strings.TrimSpace(lines[0])
		if strings.HasPrefix(head, "WEBVTT") || strings.HasPrefix(head, "STYLE") || strings.HasPrefix(head, "NOTE") {
			continue
		}
		// Optional cue identifier before the timing line.
		timingIdx := -1
		for i := 0; i < len(lines) && i < 2; i++ {
			if strings.Contains(lines[i], "-->") {
				timingIdx = i
				break
			}
		}
		if timingIdx == -1 || timingIdx+1 > len(lines) {
			continue
		}
		e, ok := parseCue(lines[timingIdx], lines[timingIdx+1:])
		if ok {
			entries = append(entries, e)
		}
	}
	return entries
}

func parseCue(timing string, textLines []string) (Entry, bool) {
	m := cueTimingPattern.FindStringSubmatch(timing)
	if m == nil {
		return Entry{}, false
	}
	start, ok := parseClock(m[1])
	if !ok {
		return Entry{}, false
	}
	end, ok := parseClock(m[2])
	if !ok {
		return Entry{}, false
	}
	text := strings.TrimSpace(styleTagPattern.ReplaceAllString(strings.Join(textLines, "\n"), ""))
	if text == "" {
		return Entry{}, false
	}
	return Entry{Start: start, End: end, Text: text}, true
}

// parseClock parses HH:MM:SS, MM:SS, with optional ,mmm or .mmm fraction.
func parseClock(s string) (time.Duration, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	var d time.Duration
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	for i := 0; i < len(parts); i++ {
		v, err := strconv.ParseFloat(parts[len(parts)-1-i], 64)
		if err != nil {
			return 0, false
		}
		d += time.Duration(v * float64(units[i]))
	}
	return d, true
}
