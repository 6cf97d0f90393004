package textproc

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/divan/num2words"
)

// numeralPattern matches a maximal run of decimal digits, optionally with
// an internal decimal point.
var numeralPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// expandNumerals replaces digit runs with their natural-language word
// expansion. Runs that cannot be converted are left unchanged.
func expandNumerals(text string) string {
	return numeralPattern.ReplaceAllStringFunc(text, func(match string) string {
		whole, frac, hasFrac := strings.Cut(match, ".")
		n, err := strconv.Atoi(whole)
		if err != nil {
			return match
		}
		words := num2words.Convert(n)
		if hasFrac {
			words += " point" + spellDigits(frac)
		}
		return words
	})
}

// spellDigits reads fractional digits out one by one, " one four" for "14".
func spellDigits(digits string) string {
	var b strings.Builder
	for _, d := range digits {
		b.WriteByte(' ')
		b.WriteString(num2words.Convert(int(d - '0')))
	}
	return b.String()
}
