// Package quality scores extracted text for how "text-like" it is, and
// detects table-shaped layout in plain text.
package quality

import (
	"strings"
	"unicode"
)

// Score returns a heuristic quality estimate in [0,1] for t.
//
// Five checks are evaluated; a check whose precondition is undefined (e.g.
// the text has no tokens at all) is excluded from both the numerator and the
// denominator rather than counted as failing.
func Score(t string) float32 {
	if t == "" {
		return 0.0
	}

	applicable := 0
	passed := 0

	check := func(ok, applies bool) {
		if !applies {
			return
		}
		applicable++
		if ok {
			passed++
		}
	}

	check(strings.Contains(t, ". "), true)

	if vr, ok := vowelRatio(t); ok {
		check(vr > 0.20 && vr < 0.50, true)
	}

	if dwf, ok := dictionaryWordFraction(t); ok {
		check(dwf >= 0.5, true)
	}

	if ar, ok := alphaRatio(t); ok {
		check(ar > 0.50 && ar < 0.95, true)
	}

	if wr, ok := whitespaceRatio(t); ok {
		check(wr > 0.05 && wr < 0.50, true)
	}

	if applicable == 0 {
		return 0.0
	}
	return float32(passed) / float32(applicable)
}

// IsGibberish reports whether t's vowel ratio falls outside a plausible
// natural-language range.
func IsGibberish(t string) bool {
	vr, ok := vowelRatio(t)
	if !ok {
		return true
	}
	return vr < 0.10 || vr > 0.60
}

func vowelRatio(t string) (float64, bool) {
	if len(t) == 0 {
		return 0, false
	}
	vowels := 0
	for _, ch := range t {
		if strings.ContainsRune("aeiouAEIOU", ch) {
			vowels++
		}
	}
	return float64(vowels) / float64(len([]rune(t))), true
}

func dictionaryWordFraction(t string) (float64, bool) {
	words := strings.Fields(t)
	if len(words) == 0 {
		return 0, false
	}
	valid := 0
	for _, w := range words {
		n := len([]rune(w))
		if n < 2 || n > 20 {
			continue
		}
		alpha := 0
		for _, ch := range w {
			if unicode.IsLetter(ch) {
				alpha++
			}
		}
		if float64(alpha)/float64(n) > 0.70 {
			valid++
		}
	}
	return float64(valid) / float64(len(words)), true
}

func alphaRatio(t string) (float64, bool) {
	var alpha, digit, special int
	for _, ch := range t {
		switch {
		case unicode.IsLetter(ch):
			alpha++
		case unicode.IsDigit(ch):
			digit++
		case !unicode.IsSpace(ch):
			special++
		}
	}
	total := alpha + digit + special
	if total == 0 {
		return 0, false
	}
	return float64(alpha) / float64(total), true
}

func whitespaceRatio(t string) (float64, bool) {
	if len(t) == 0 {
		return 0, false
	}
	ws := 0
	n := 0
	for _, ch := range t {
		n++
		if unicode.IsSpace(ch) {
			ws++
		}
	}
	return float64(ws) / float64(n), true
}

// HasTables reports whether t looks like it contains tabular data: explicit
// pipe or tab separators, or three consecutive non-empty lines whose
// two-space column positions line up.
func HasTables(t string) bool {
	if strings.Contains(t, "|") || strings.Contains(t, "\t") {
		return true
	}

	lines := strings.Split(t, "\n")
	var nonEmpty []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty = append(nonEmpty, l)
		}
	}

	for i := 0; i+2 < len(nonEmpty); i++ {
		a := twoSpacePositions(nonEmpty[i])
		b := twoSpacePositions(nonEmpty[i+1])
		c := twoSpacePositions(nonEmpty[i+2])
		if len(a) >= 3 && equalInts(a, b) && equalInts(a, c) {
			return true
		}
	}
	return false
}

func twoSpacePositions(line string) []int {
	var positions []int
	for i := 0; i+1 < len(line); i++ {
		if line[i] == ' ' && line[i+1] == ' ' {
			positions = append(positions, i)
		}
	}
	return positions
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
