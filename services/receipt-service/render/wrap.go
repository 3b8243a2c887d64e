package render

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrInvalidOptions marks caller mistakes in render options (unknown image
// type, unsupported paper width) as opposed to encoder failures.
var ErrInvalidOptions = errors.New("invalid render options")

// Measure returns the width of s in the unit of the target medium.
type Measure func(s string) float64

// RuneWidth measures fixed-pitch text in characters.
func RuneWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s))
}

// WrapText greedily wraps s on spaces so that each line measures at most
// maxWidth. Leading indentation is kept on the first line and words wider
// than maxWidth are split.
func WrapText(s string, maxWidth float64, measure Measure) []string {
	s = strings.TrimRight(s, " ")
	if s == "" {
		return []string{""}
	}
	if maxWidth <= 0 || measure(s) <= maxWidth {
		return []string{s}
	}

	var lines []string
	cur := s[:len(s)-len(strings.TrimLeft(s, " "))]
	for _, word := range strings.Fields(s) {
		candidate := cur + word
		if strings.TrimSpace(cur) != "" {
			candidate = cur + " " + word
		}
		if measure(candidate) <= maxWidth {
			cur = candidate
			continue
		}
		if strings.TrimSpace(cur) != "" {
			lines = append(lines, cur)
		}
		for measure(word) > maxWidth {
			n := fitPrefix(word, maxWidth, measure)
			lines = append(lines, word[:n])
			word = word[n:]
		}
		cur = word
	}
	if strings.TrimSpace(cur) != "" {
		lines = append(lines, cur)
	}
	return lines
}

// fitPrefix returns the byte length of the longest prefix of word that fits,
// and at least one rune.
func fitPrefix(word string, maxWidth float64, measure Measure) int {
	_, first := utf8.DecodeRuneInString(word)
	best := first
	for i := range word {
		if i == 0 {
			continue
		}
		if measure(word[:i]) > maxWidth {
			break
		}
		best = i
	}
	return best
}
