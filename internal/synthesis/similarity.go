package synthesis

import (
	"math"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two texts in [0,1]. It must be symmetric and return 1 for identical input.
type Similarity func(a, b string) float64

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "do": {}, "does": {}, "did": {},
	"what": {}, "when": {}, "where": {}, "who": {}, "whom": {}, "which": {}, "why": {}, "how": {},
	"i": {}, "you": {}, "we": {}, "they": {}, "it": {}, "this": {}, "that": {}, "there": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "for": {}, "at": {}, "by": {}, "with": {}, "about": {},
	"any": {}, "our": {}, "your": {}, "my": {}, "me": {}, "us": {}, "please": {},
}

// TextSimilarity is the default Similarity: an edit-based ratio over normalized text.
func TextSimilarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1
	}
	// SequenceMatcher is not strictly symmetric; take the better of both orders.
	return math.Max(ratio(na, nb), ratio(nb, na))
}

// normalize lowercases, strips punctuation and drops filler words.
// When every token is a filler word the tokens are kept as-is.
func normalize(s string) string {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := stopwords[t]; !ok {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		kept = tokens
	}
	return strings.Join(kept, " ")
}

func ratio(a, b string) float64 {
	return difflib.NewMatcherWithJunk(chars(a), chars(b), false, nil).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
