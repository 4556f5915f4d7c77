package selection

import (
	"errors"
	"fmt"
	"sort"

	"github.com/contextenginehq/context-core/core/cache"
	"github.com/contextenginehq/context-core/core/document"
	coreerrors "github.com/contextenginehq/context-core/core/errors"
	schemaselection "github.com/contextenginehq/context-core/core/schema/v1/selection"
)

// ErrInvalidBudget rejects negative budgets at the boundary. A zero budget
// is valid and selects nothing.
var ErrInvalidBudget = errors.New("budget must not be negative")

type scoredDocument struct {
	doc     document.Document
	score   float64
	details ScoreDetails
	tokens  int
}

// Selector runs the three-phase pipeline: score every cached document, order
// by (score desc, id asc), then fill the token budget greedily. It holds no
// state between calls.
type Selector struct {
	scorer Scorer
	tokens TokenCounter
}

func NewSelector(scorer Scorer, tokens TokenCounter) *Selector {
	return &Selector{scorer: scorer, tokens: tokens}
}

// DefaultSelector wires the fixed v0 scorer and token counter.
func DefaultSelector() *Selector {
	return NewSelector(TermFrequencyScorer{}, ApproxTokenCounter{})
}

func (s *Selector) Select(loaded *cache.Cache, query schemaselection.Query, budgetTokens int) (schemaselection.Result, error) {
	if budgetTokens < 0 {
		return schemaselection.Result{}, coreerrors.Wrap(
			fmt.Errorf("%w: %d", ErrInvalidBudget, budgetTokens),
			coreerrors.CategoryInvalidInput, "invalid_budget", "pass a budget of zero or more tokens", false)
	}

	docs, err := loaded.LoadDocuments()
	if err != nil {
		return schemaselection.Result{}, fmt.Errorf("load cache documents: %w", err)
	}

	scored := make([]scoredDocument, 0, len(docs))
	for _, doc := range docs {
		details := s.scorer.Score(doc, query)
		scored = append(scored, scoredDocument{
			doc:     doc,
			score:   s.scorer.Value(details),
			details: details,
			tokens:  s.tokens.CountTokens(doc.Content),
		})
	}

	// Score descending, ties broken by ID ascending. The explicit tie-break
	// is what makes float-valued scores yield one total order everywhere.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].doc.ID.Less(scored[j].doc.ID)
	})

	budget := applyBudget(scored, budgetTokens)
	return schemaselection.Result{
		Documents: budget.Selected,
		Selection: schemaselection.Summary{
			Query:                     query,
			BudgetTokens:              budgetTokens,
			TokensUsed:                budget.TokensUsed,
			DocumentsConsidered:       len(docs),
			DocumentsSelected:         budget.DocumentsSelected,
			DocumentsExcludedByBudget: budget.DocumentsExcludedByBudget,
		},
	}, nil
}

// orderedCorrectly reports whether the Phase 2 invariant holds: for every
// adjacent pair, score strictly decreases or the tie is broken by ID. Tests
// use it to pin the ordering contract.
func orderedCorrectly(scored []scoredDocument) bool {
	for i := 1; i < len(scored); i++ {
		previous, current := scored[i-1], scored[i]
		if previous.score > current.score {
			continue
		}
		if previous.score == current.score && previous.doc.ID.Less(current.doc.ID) {
			continue
		}
		return false
	}
	return true
}
