package exam

import (
	"strings"
	"unicode"
)

// Options holds the four option texts of a question keyed by letter.
type Options struct {
	A, B, C, D string
}

var optionLetters = [4]string{"A", "B", "C", "D"}

func (o Options) text(letter string) string {
	switch letter {
	case "A":
		return o.A
	case "B":
		return o.B
	case "C":
		return o.C
	case "D":
		return o.D
	}
	return ""
}

// matchThreshold is the minimum containment similarity for a fuzzy match,
// calibrated against the legacy question bank.
const matchThreshold = 0.5

// ResolveOption maps a stored answer value to a canonical option letter.
// Legacy data records answers either as a letter or as copied option text,
// so the matcher tries, in order: letter passthrough, exact normalized
// equality, then containment similarity. When nothing clears the threshold
// the raw answer is returned unchanged and callers must treat any
// non-letter result as matching no selection.
func ResolveOption(raw string, opts Options) string {
	if raw == "" {
		return ""
	}

	if u := strings.ToUpper(strings.TrimSpace(raw)); len(u) == 1 && u >= "A" && u <= "D" {
		return u
	}

	cleaned := normalizeAnswer(raw)
	if cleaned == "" {
		return raw
	}

	for _, letter := range optionLetters {
		if normalizeAnswer(opts.text(letter)) == cleaned {
			return letter
		}
	}

	best := ""
	bestScore := 0.0
	for _, letter := range optionLetters {
		opt := normalizeAnswer(opts.text(letter))
		if opt == "" {
			continue
		}
		if strings.Contains(opt, cleaned) || strings.Contains(cleaned, opt) {
			score := ratio(len(opt), len(cleaned))
			if score > bestScore {
				bestScore = score
				best = letter
			}
		}
	}
	if best != "" && bestScore > matchThreshold {
		return best
	}

	return raw
}

// normalizeAnswer strips $ markers (LaTeX delimiters in the legacy bank)
// and all whitespace, then lowercases.
func normalizeAnswer(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '$' || unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

func ratio(a, b int) float64 {
	if a > b {
		a, b = b, a
	}
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// IsOptionLetter reports whether s is a canonical option letter.
func IsOptionLetter(s string) bool {
	return s == "A" || s == "B" || s == "C" || s == "D"
}
