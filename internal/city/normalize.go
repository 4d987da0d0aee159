package city

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key is a normalized municipality name. Two names refer to the same city
// exactly when their keys are equal.
type Key string

// Normalize folds a municipality name into its lookup key: accents stripped,
// uppercase, hyphens as spaces, single spaces between words.
// Every table keyed by city name must be built and queried through this function.
func Normalize(name string) Key {
	decomposed := norm.NFD.String(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r == '-':
			b.WriteRune(' ')
		case r == 'ç' || r == 'Ç':
			b.WriteRune('C')
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	return Key(strings.Join(strings.Fields(b.String()), " "))
}
