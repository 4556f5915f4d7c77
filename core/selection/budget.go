package selection

import (
	schemaselection "github.com/contextenginehq/context-core/core/schema/v1/selection"
)

// BudgetResult is the outcome of the greedy budget walk.
type BudgetResult struct {
	Selected                  []schemaselection.SelectedDocument
	TokensUsed                int
	DocumentsSelected         int
	DocumentsExcludedByBudget int
}

// applyBudget walks the ordered list and admits each document that still
// fits in the remaining budget. It never stops at the first over-budget
// document: a later, smaller one may still fit. Documents are admitted whole
// or not at all, and a zero score does not exclude anything.
func applyBudget(ordered []scoredDocument, budgetTokens int) BudgetResult {
	result := BudgetResult{Selected: []schemaselection.SelectedDocument{}}
	for _, scored := range ordered {
		if result.TokensUsed+scored.tokens > budgetTokens {
			result.DocumentsExcludedByBudget++
			continue
		}
		result.Selected = append(result.Selected, schemaselection.SelectedDocument{
			ID:      scored.doc.ID.String(),
			Source:  scored.doc.Source,
			Content: scored.doc.Content,
			Version: scored.doc.Version.String(),
			Score:   scored.score,
			Tokens:  scored.tokens,
			Why: schemaselection.Why{
				QueryTerms:  scored.details.QueryTerms,
				TermMatches: scored.details.TermMatches,
				TotalWords:  scored.details.TotalWords,
			},
		})
		result.TokensUsed += scored.tokens
		result.DocumentsSelected++
	}
	return result
}
