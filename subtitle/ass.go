package subtitle

import "strings"

// ParseASS reads Advanced SubStation Alpha (.ass/.ssa) dialogue events into
// ordered entries. The [Events] Format line determines field positions;
// override tags are stripped and \N breaks become newlines.
func ParseASS(content string) []Entry {
	// Default field layout per the ASS v4+ spec, used when no Format line
	// precedes the dialogue events.
	startIdx, endIdx, textIdx, fieldCount := 1, 2, 9, 10

	var entries []Entry
	inEvents := false
	for _, raw := range strings.Split(normalizeNewlines(content), "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "["):
			inEvents = strings.EqualFold(line, "[events]")
		case !inEvents:
		case hasPrefixFold(line, "Format:"):
			names := strings.Split(line[len("Format:"):], ",")
			fieldCount = len(names)
			for i, name := range names {
				switch strings.ToLower(strings.TrimSpace(name)) {
				case "start":
					startIdx = i
				case "end":
					endIdx = i
				case "text":
					textIdx = i
				}
			}
		case hasPrefixFold(line, "Dialogue:"):
			// Text is the last field and may itself contain commas.
			parts := strings.SplitN(line[len("Dialogue:"):], ",", fieldCount)
			if len(parts) <= startIdx || len(parts) <= endIdx || len(parts) <= textIdx {
				continue
			}
			start, ok := parseClock(strings.TrimSpace(parts[startIdx]))
			if !ok {
				continue
			}
			end, ok := parseClock(strings.TrimSpace(parts[endIdx]))
			if !ok {
				continue
			}
			text := assText(parts[textIdx])
			if text == "" {
				continue
			}
			entries = append(entries, Entry{Start: start, End: end, Text: text})
		}
	}
	return entries
}

func assText(s string) string {
	s = styleTagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, `\N`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\h`, " ")
	return strings.TrimSpace(s)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
