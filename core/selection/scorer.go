package selection

import (
	"strings"

	"github.com/contextenginehq/context-core/core/document"
	schemaselection "github.com/contextenginehq/context-core/core/schema/v1/selection"
)

// ScoreDetails carries the components behind a score.
type ScoreDetails struct {
	QueryTerms  []string
	TermMatches int
	TotalWords  int
}

// Scorer turns a document and query into score details and a score value.
// The v0 implementation is fixed; replacements must stay pure (no I/O, no
// randomness, no clocks) and deterministic.
type Scorer interface {
	Score(doc document.Document, query schemaselection.Query) ScoreDetails
	Value(details ScoreDetails) float64
}

// TermFrequencyScorer is the v0 scorer: exact term matches over total words.
// Deliberately naive; a stable definition is worth more than a clever one.
type TermFrequencyScorer struct{}

func (TermFrequencyScorer) Score(doc document.Document, query schemaselection.Query) ScoreDetails {
	words := splitASCIIWhitespace(strings.ToLower(doc.Content))
	matches := 0
	for _, word := range words {
		for _, term := range query.Terms {
			if word == term {
				matches++
			}
		}
	}
	return ScoreDetails{
		QueryTerms:  query.Terms,
		TermMatches: matches,
		TotalWords:  len(words),
	}
}

// Value is term_matches/total_words as an IEEE-754 double, or 0 for an empty
// document. The only arithmetic is one integer-to-double division, so the
// result is identical on every conforming platform.
func (TermFrequencyScorer) Value(details ScoreDetails) float64 {
	if details.TotalWords == 0 {
		return 0.0
	}
	return float64(details.TermMatches) / float64(details.TotalWords)
}

// TokenCounter estimates the token cost of content.
type TokenCounter interface {
	CountTokens(content string) int
}

// ApproxTokenCounter is the v0 counter: ceil(byte_length/4). Intentionally
// stable and approximate, faithful to no real tokenizer.
type ApproxTokenCounter struct{}

func (ApproxTokenCounter) CountTokens(content string) int {
	return (len(content) + 3) / 4
}
