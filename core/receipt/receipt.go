package receipt

import (
	"fmt"
	"strings"

	"github.com/contextenginehq/context-core/core/jcs"
	schemaselection "github.com/contextenginehq/context-core/core/schema/v1/selection"
)

const (
	SchemaID      = "contextcore.selection.receipt"
	SchemaVersion = "1.0.0"
)

// Document is one admitted document as the receipt records it: identity,
// version, and token cost, without the content.
type Document struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	Tokens  int    `json:"tokens"`
}

// Receipt binds a selection outcome to its inputs for audit. The digest is
// computed over the RFC 8785 canonical form with receipt_digest empty, so
// the same cache, query, and budget always reproduce the same receipt
// byte-for-byte.
type Receipt struct {
	SchemaID      string                `json:"schema_id"`
	SchemaVersion string                `json:"schema_version"`
	CacheVersion  string                `json:"cache_version"`
	Query         schemaselection.Query `json:"query"`
	BudgetTokens  int                   `json:"budget_tokens"`
	Documents     []Document            `json:"documents"`
	ReceiptDigest string                `json:"receipt_digest"`
}

// Build records a selection result against the cache version it ran over.
// Documents keep selection order, which is already total and deterministic.
func Build(cacheVersion string, result schemaselection.Result) (Receipt, error) {
	if strings.TrimSpace(cacheVersion) == "" {
		return Receipt{}, fmt.Errorf("cache_version is required")
	}
	documents := make([]Document, 0, len(result.Documents))
	for _, selected := range result.Documents {
		documents = append(documents, Document{
			ID:      selected.ID,
			Version: selected.Version,
			Tokens:  selected.Tokens,
		})
	}
	built := Receipt{
		SchemaID:      SchemaID,
		SchemaVersion: SchemaVersion,
		CacheVersion:  cacheVersion,
		Query:         result.Selection.Query,
		BudgetTokens:  result.Selection.BudgetTokens,
		Documents:     documents,
	}
	digest, err := digestOf(built)
	if err != nil {
		return Receipt{}, fmt.Errorf("digest receipt: %w", err)
	}
	built.ReceiptDigest = digest
	return built, nil
}

// Verify recomputes the digest and checks the envelope fields.
func Verify(subject Receipt) error {
	if subject.SchemaID != SchemaID {
		return fmt.Errorf("unsupported receipt schema_id: %s", subject.SchemaID)
	}
	if subject.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported receipt schema_version: %s", subject.SchemaVersion)
	}
	computed, err := digestOf(subject)
	if err != nil {
		return fmt.Errorf("digest receipt: %w", err)
	}
	if computed != subject.ReceiptDigest {
		return fmt.Errorf("receipt_digest mismatch")
	}
	return nil
}

func digestOf(subject Receipt) (string, error) {
	subject.ReceiptDigest = ""
	return jcs.DigestValue(subject)
}
