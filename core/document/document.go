package document

import (
	"fmt"
	"unicode/utf8"
)

// Document is the atomic unit of content. The field order below is the
// serialized field order of documents/<hash>.json and is part of the on-disk
// contract.
type Document struct {
	ID       ID       `json:"id"`
	Version  Version  `json:"version"`
	Source   string   `json:"source"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Ingest validates raw bytes and constructs a Document whose content is
// UTF-8-validated and whose version is derived from the content bytes alone.
// The fields are exported, so a struct literal or a decoded JSON document
// skips these checks; the cache builder rejects a version that is not
// "sha256:" plus 64 hex characters but does not recompute it from the
// content, and LoadDocuments rechecks each content hash.
func Ingest(id ID, source string, rawContent []byte, metadata Metadata) (Document, error) {
	if !utf8.Valid(rawContent) {
		return Document{}, fmt.Errorf("%w: content for %s", ErrInvalidUTF8, id)
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	return Document{
		ID:       id,
		Version:  VersionFromContent(rawContent),
		Source:   source,
		Content:  string(rawContent),
		Metadata: metadata,
	}, nil
}
