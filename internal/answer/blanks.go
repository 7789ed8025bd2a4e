package answer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var blankPattern = regexp.MustCompile(`\{([^}]+)\}`)

// NormalizeBrackets folds full-width ASCII variants such as ｛ and ｝ into
// their ASCII form. Other East Asian characters are left untouched.
func NormalizeBrackets(s string) string {
	return strings.Map(func(r rune) rune {
		p := width.LookupRune(r)
		if p.Kind() == width.EastAsianFullwidth {
			if n := p.Narrow(); n != 0 {
				return n
			}
		}
		return r
	}, s)
}

// ParseBlanks returns the trimmed contents of every {token} in the text, in
// order of appearance. The tokens describe the expected answers but are never
// used for automatic grading.
func ParseBlanks(text string) []string {
	matches := blankPattern.FindAllStringSubmatch(NormalizeBrackets(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.TrimSpace(m[1]))
	}
	return tokens
}

// MaskBlanks replaces every {token} with its 1-based position, so students
// see "Apple is {1}." instead of the expected answer.
func MaskBlanks(text string) string {
	n := 0
	return blankPattern.ReplaceAllStringFunc(NormalizeBrackets(text), func(string) string {
		n++
		return "{" + strconv.Itoa(n) + "}"
	})
}
