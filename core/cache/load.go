package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/contextenginehq/context-core/core/document"
	coreerrors "github.com/contextenginehq/context-core/core/errors"
	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
)

// Cache is a read-only view over a built cache directory: the parsed
// manifest plus, on demand, the documents it lists.
type Cache struct {
	Root     string
	Manifest schemacache.Manifest
}

// Load parses manifest.json and holds the directory for lazy document
// loading. It does not touch the document files; LoadDocuments and Verify
// do.
func Load(dir string) (*Cache, error) {
	manifestPath := filepath.Join(dir, "manifest.json")
	// #nosec G304 -- cache dir is explicit local caller input.
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, coreerrors.Wrap(fmt.Errorf("read manifest: %w", err),
			coreerrors.CategoryIOFailure, "read_manifest", "check the cache directory path", false)
	}
	var manifest schemacache.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, coreerrors.Wrap(fmt.Errorf("parse manifest: %w", err),
			coreerrors.CategorySerialization, "parse_manifest", "the cache may be corrupt; run verify", false)
	}
	return &Cache{Root: dir, Manifest: manifest}, nil
}

// LoadDocuments reads every document the manifest lists, in manifest order
// (sorted-ID order). Each document is checked against its manifest entry:
// the stored ID must match and the content must hash back to the manifest
// version, which catches silent on-disk corruption. One bad document fails
// the whole load.
func (c *Cache) LoadDocuments() ([]document.Document, error) {
	loaded := make([]document.Document, 0, len(c.Manifest.Documents))
	for _, entry := range c.Manifest.Documents {
		path := filepath.Join(c.Root, "documents", entry.Filename)
		// #nosec G304 -- path is manifest-derived inside the cache root.
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, coreerrors.Wrap(fmt.Errorf("read document %s: %w", entry.ID, err),
				coreerrors.CategoryIOFailure, "read_document", "run verify to locate missing files", false)
		}
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, coreerrors.Wrap(fmt.Errorf("parse document %s: %w", entry.ID, err),
				coreerrors.CategorySerialization, "parse_document", "run verify to locate corrupt files", false)
		}
		if doc.ID.String() != entry.ID {
			return nil, coreerrors.Wrap(
				fmt.Errorf("document id mismatch in %s: manifest says %s, file says %s", entry.Filename, entry.ID, doc.ID),
				coreerrors.CategoryVerification, "id_mismatch", "the cache is corrupt; rebuild it", false)
		}
		recomputed := document.VersionFromContent([]byte(doc.Content))
		if recomputed.String() != entry.Version {
			return nil, coreerrors.Wrap(
				fmt.Errorf("document version mismatch for %s: manifest says %s, content hashes to %s", entry.ID, entry.Version, recomputed),
				coreerrors.CategoryVerification, "version_mismatch", "the cache is corrupt; rebuild it", false)
		}
		loaded = append(loaded, doc)
	}
	return loaded, nil
}
