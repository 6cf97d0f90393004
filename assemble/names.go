package assemble

import (
	"regexp"
	"strings"
)

var illegalNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeName makes a chapter title safe as a file name across the
// filesystems the outputs land on. Empty input sanitizes to empty; callers
// substitute their own fallback.
func SanitizeName(name string) string {
	s := illegalNameChars.ReplaceAllString(name, "_")
	s = strings.TrimRight(s, ". ")
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, ".") {
		s = "_" + s[1:]
	}
	if len(s) > 255 {
		s = strings.TrimRight(s[:255], ". ")
	}
	return s
}
