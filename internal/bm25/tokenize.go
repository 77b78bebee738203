package bm25

import "strings"

// stopwords are excluded from both the index and queries. They carry
// no relevance signal and would otherwise dominate document length.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "but": {}, "for": {}, "with": {}, "from": {},
	"are": {}, "was": {}, "were": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {},
	"might": {}, "must": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "its": {},
}

// minTokenLen is the shortest token retained. One- and two-letter
// tokens are almost always noise in clinical text.
const minTokenLen = 3

// Tokenize lowercases text and extracts alphanumeric runs, dropping
// short tokens and stopwords. Index and query sides must use the same
// tokenizer, so it is exported within the package boundary.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tok := current.String()
		current.Reset()
		if len(tok) < minTokenLen {
			return
		}
		if _, ok := stopwords[tok]; ok {
			return
		}
		tokens = append(tokens, tok)
	}

	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			current.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}
