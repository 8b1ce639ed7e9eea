package retrieval

import (
	"strings"
	"unicode"
)

// stopWords is the fixed stop-word set used for query term extraction.
// It is defined in-source (not loaded from any external dictionary) so that
// keyword-density scoring is reproducible across deployments.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "not": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "should": {}, "may": {}, "might": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {},
	"by": {}, "from": {}, "as": {}, "about": {}, "into": {}, "over": {}, "after": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "there": {}, "then": {}, "than": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "how": {}, "when": {}, "where": {}, "why": {},
	"it": {}, "its": {}, "he": {}, "she": {}, "we": {}, "you": {}, "they": {},
	"his": {}, "her": {}, "our": {}, "your": {}, "their": {}, "all": {}, "any": {}, "some": {},
}

// minTermLength excludes short tokens ("is", "of", "to") from both term
// extraction and coverage counting.
const minTermLength = 3

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// ExtractQueryTerms returns the unique significant terms of a query:
// lower-cased, longer than two characters, stop words removed, original
// order preserved.
func ExtractQueryTerms(query string) []string {
	var terms []string
	seen := make(map[string]struct{})
	for _, tok := range tokenize(query) {
		if len(tok) < minTermLength {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

// QueryWords returns the unique query words longer than two characters,
// lower-cased. Stop words are deliberately kept: query coverage measures
// how much of the literal question appears in a chunk.
func QueryWords(query string) []string {
	var words []string
	seen := make(map[string]struct{})
	for _, tok := range tokenize(query) {
		if len(tok) < minTermLength {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		words = append(words, tok)
	}
	return words
}

// containedFraction reports the fraction of tokens that occur as a
// substring of the lower-cased text. Returns 0 for an empty token list.
func containedFraction(tokens []string, text string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(text)
	matched := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}
