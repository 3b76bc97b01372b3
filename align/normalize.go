package align

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// alefVariants collapse to the bare alef, per spec.md §4.1.
var alefVariants = map[rune]rune{
	'أ': 'ا',
	'إ': 'ا',
	'آ': 'ا',
}

const tatweel = 'ـ' // ـ, stripped along with diacritics and punctuation

// stripTransform removes combining marks (diacritics introduced by NFKD
// decomposition) left over after folding alef/yā'/tā'-marbūṭa variants.
var stripTransform = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize canonicalizes Arabic text for comparison, per spec.md §4.1:
// collapse alef variants, map ى→ي and ة→ه, strip diacritics/punctuation/
// tatweel, collapse whitespace, trim. The operation is pure, deterministic,
// and idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	var folded strings.Builder
	folded.Grow(len(text))
	for _, r := range text {
		switch {
		case alefVariants[r] != 0:
			folded.WriteRune(alefVariants[r])
		case r == 'ى':
			folded.WriteRune('ي')
		case r == 'ة':
			folded.WriteRune('ه')
		default:
			folded.WriteRune(r)
		}
	}

	stripped, _, err := transform.String(stripTransform, folded.String())
	if err != nil {
		// NFKD+Remove never fails on well-formed UTF-8; fall back to the
		// pre-transform text rather than lose the input.
		stripped = folded.String()
	}

	var kept strings.Builder
	kept.Grow(len(stripped))
	for _, r := range stripped {
		if r == tatweel {
			continue
		}
		if unicode.IsSpace(r) {
			kept.WriteRune(' ')
			continue
		}
		if isLetterClass(r) {
			kept.WriteRune(r)
		}
		// everything else (diacritics that survived, punctuation, digit
		// marks) is dropped.
	}

	return strings.Join(strings.Fields(kept.String()), " ")
}

// isLetterClass reports whether r belongs to a script's letter class.
// Digits are not letter-class: spec.md §4.1 groups digit marks with
// diacritics/punctuation/tatweel as characters to strip.
func isLetterClass(r rune) bool {
	return unicode.IsLetter(r)
}
