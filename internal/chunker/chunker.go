// Package chunker splits article text into overlapping, bounded-length
// passages suitable for embedding and lexical indexing.
//
// Text is segmented into sentences first, then sentences are greedily
// accumulated into chunks up to a character budget. Each chunk starts
// with an overlap tail of whole sentences from the previous chunk so
// local context survives chunk boundaries.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/aletheia-labs/medsearch-cli/internal/core/domain"
)

// Default configuration values. The target budget is expressed in
// characters, derived from a 300-token target at roughly 4 characters
// per token for clinical English.
const (
	DefaultTargetChars      = 1200
	DefaultOverlapChars     = 120
	DefaultMaxChunkChars    = 6000
	DefaultMinChunkChars    = 50
	DefaultMinSentenceChars = 10
)

// abbreviations are tokens that end with a period without ending a
// sentence. A terminator directly after one of these is not a
// sentence boundary.
var abbreviations = []string{
	"Dr", "Mr", "Mrs", "Ms", "Prof", "et al", "vs", "Fig", "fig", "i.e", "e.g", "al",
}

// Config holds chunking parameters.
type Config struct {
	// TargetChars is the soft character budget per chunk.
	TargetChars int

	// OverlapChars is the character budget for the overlap tail
	// carried into the next chunk.
	OverlapChars int

	// MaxChunkChars is the hard ceiling; single sentences longer than
	// this are truncated before accumulation.
	MaxChunkChars int

	// MinChunkChars is the substance threshold; a trailing chunk
	// shorter than this is dropped.
	MinChunkChars int

	// MinSentenceChars filters out sentence fragments below this
	// length during segmentation.
	MinSentenceChars int
}

// DefaultConfig returns the default chunking configuration.
func DefaultConfig() Config {
	return Config{
		TargetChars:      DefaultTargetChars,
		OverlapChars:     DefaultOverlapChars,
		MaxChunkChars:    DefaultMaxChunkChars,
		MinChunkChars:    DefaultMinChunkChars,
		MinSentenceChars: DefaultMinSentenceChars,
	}
}

// Chunker splits text into chunks.
type Chunker struct {
	cfg Config
}

// New creates a chunker, filling zero-valued config fields with
// defaults.
func New(cfg Config) *Chunker {
	def := DefaultConfig()
	if cfg.TargetChars <= 0 {
		cfg.TargetChars = def.TargetChars
	}
	if cfg.OverlapChars <= 0 {
		cfg.OverlapChars = def.OverlapChars
	}
	if cfg.MaxChunkChars <= 0 {
		cfg.MaxChunkChars = def.MaxChunkChars
	}
	if cfg.MinChunkChars <= 0 {
		cfg.MinChunkChars = def.MinChunkChars
	}
	if cfg.MinSentenceChars <= 0 {
		cfg.MinSentenceChars = def.MinSentenceChars
	}
	// Overlap must leave room for new content in each chunk.
	if cfg.OverlapChars >= cfg.TargetChars {
		cfg.OverlapChars = cfg.TargetChars / 4
	}
	return &Chunker{cfg: cfg}
}

// Split divides text into ordered chunks for the given article.
// Empty or whitespace-only input yields no chunks; so does input
// entirely below the substance threshold. Callers must treat a
// zero-chunk article as unindexed, not as an error.
func (c *Chunker) Split(text, articleID string) []domain.Chunk {
	sentences := c.splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	var current []string
	currentLen := 0
	position := 0

	emit := func(content string) {
		chunks = append(chunks, domain.Chunk{
			ArticleID: articleID,
			Position:  position,
			Content:   content,
		})
		position++
	}

	for _, sentence := range sentences {
		if currentLen+len(sentence) > c.cfg.TargetChars && len(current) > 0 {
			emit(strings.Join(current, " "))

			// Seed the next chunk with whole trailing sentences from
			// the one just closed.
			tail := overlapTail(current, c.cfg.OverlapChars)
			current = current[:0]
			currentLen = 0
			if tail != "" {
				current = append(current, tail)
				currentLen = len(tail)
			}
		}

		if len(sentence) > c.cfg.MaxChunkChars {
			sentence = truncate(sentence, c.cfg.MaxChunkChars)
		}
		current = append(current, sentence)
		currentLen += len(sentence)
	}

	if len(current) > 0 {
		content := strings.Join(current, " ")
		if len(content) > c.cfg.MaxChunkChars {
			content = truncate(content, c.cfg.MaxChunkChars)
		}
		if len(strings.TrimSpace(content)) > c.cfg.MinChunkChars {
			emit(content)
		}
	}

	return chunks
}

// splitSentences segments text on sentence terminators, protecting
// common abbreviations and discarding short fragments.
func (c *Chunker) splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Terminators only split when followed by whitespace, which
		// keeps decimals like "2.5" intact.
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		if r == '.' && endsWithAbbreviation(current.String()) {
			continue
		}

		if s := strings.TrimSpace(current.String()); len(s) > c.cfg.MinSentenceChars {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	if s := strings.TrimSpace(current.String()); len(s) > c.cfg.MinSentenceChars {
		sentences = append(sentences, s)
	}

	return sentences
}

// overlapTail walks backward through sentences, accumulating whole
// sentences until the overlap budget is met or exceeded.
func overlapTail(sentences []string, budget int) string {
	if budget <= 0 || len(sentences) == 0 {
		return ""
	}

	start := len(sentences)
	total := 0
	for start > 0 && total < budget {
		start--
		total += len(sentences[start])
	}

	return strings.Join(sentences[start:], " ")
}

// endsWithAbbreviation reports whether the accumulated text ends with
// a protected abbreviation followed by the period just written.
func endsWithAbbreviation(s string) bool {
	s = strings.TrimSuffix(s, ".")
	for _, abbr := range abbreviations {
		if !strings.HasSuffix(s, abbr) {
			continue
		}
		// The abbreviation must be a whole token, not the end of a
		// longer word ("al" vs "clinical").
		prefix := s[:len(s)-len(abbr)]
		if prefix == "" || !isWordChar(rune(prefix[len(prefix)-1])) {
			return true
		}
	}
	return false
}

// truncate cuts s to at most max bytes, backing off so the cut never
// splits a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isWordChar(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
