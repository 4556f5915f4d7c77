package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/contextenginehq/context-core/core/document"
	coreerrors "github.com/contextenginehq/context-core/core/errors"
	"github.com/contextenginehq/context-core/core/fsx"
	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
)

var (
	ErrOutputExists         = errors.New("cache output directory already exists")
	ErrDuplicateDocumentID  = errors.New("duplicate document id")
	ErrFilenameCollision    = errors.New("cache filename collision")
	ErrInvalidVersionFormat = errors.New("invalid document version format")
)

// Builder materializes caches. It is single-threaded and non-reentrant per
// output directory: two concurrent builds against the same directory leave
// one of them failing with ErrOutputExists after the other's rename.
type Builder struct {
	config schemacache.BuildConfig
}

func NewBuilder(config schemacache.BuildConfig) *Builder {
	return &Builder{config: config}
}

// Build writes documents into a new cache directory and returns the loaded
// cache. Input order never matters: documents are sorted by ID before any
// byte is derived from them. Publication is a single rename, so outputDir
// either appears complete or not at all.
func (b *Builder) Build(documents []document.Document, outputDir string) (*Cache, error) {
	outputDir = filepath.Clean(outputDir)
	if _, err := os.Stat(outputDir); err == nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("%w: %s", ErrOutputExists, outputDir),
			coreerrors.CategoryStateConflict, "output_exists",
			"choose a new output directory; caches are write-once", false)
	} else if !os.IsNotExist(err) {
		return nil, coreerrors.Wrap(fmt.Errorf("stat output directory: %w", err),
			coreerrors.CategoryIOFailure, "stat_output", "check output path permissions", false)
	}

	sorted := append([]document.Document(nil), documents...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.Less(sorted[j].ID)
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].ID == sorted[i].ID {
			return nil, coreerrors.Wrap(
				fmt.Errorf("%w: %s", ErrDuplicateDocumentID, sorted[i].ID),
				coreerrors.CategoryInvalidInput, "duplicate_document_id",
				"deduplicate document ids before building", false)
		}
	}

	entries := make([]schemacache.ManifestDocument, 0, len(sorted))
	index := make(schemacache.Index, len(sorted))
	seenStems := make(map[string]struct{}, len(sorted))
	for _, doc := range sorted {
		hexDigest, ok := doc.Version.Hex()
		if !ok {
			return nil, coreerrors.Wrap(
				fmt.Errorf("%w: %s for %s", ErrInvalidVersionFormat, doc.Version, doc.ID),
				coreerrors.CategoryInvalidInput, "invalid_version_format",
				"documents must come from Ingest", false)
		}
		stem := hexDigest[:12]
		if _, collided := seenStems[stem]; collided {
			return nil, coreerrors.Wrap(
				fmt.Errorf("%w: hash fragment %s", ErrFilenameCollision, stem),
				coreerrors.CategoryInvalidInput, "filename_collision",
				"two distinct contents share a 12-hex prefix; rebuild with different content", false)
		}
		seenStems[stem] = struct{}{}
		filename := stem + ".json"
		entries = append(entries, schemacache.ManifestDocument{
			ID:       doc.ID.String(),
			Version:  doc.Version.String(),
			Filename: filename,
		})
		index[doc.ID.String()] = filename
	}

	cacheVersion, err := ComputeCacheVersion(b.config, entries)
	if err != nil {
		return nil, coreerrors.Wrap(err, coreerrors.CategorySerialization, "cache_version", "", false)
	}

	// created_at is informational only; it never feeds the digest above.
	manifest := schemacache.Manifest{
		CacheVersion: cacheVersion,
		Config:       b.config,
		CreatedAt:    time.Now().UTC(),
		Documents:    entries,
	}

	if err := b.writeCacheDir(sorted, entries, index, manifest, outputDir); err != nil {
		return nil, err
	}
	return &Cache{Root: outputDir, Manifest: manifest}, nil
}

func (b *Builder) writeCacheDir(
	sorted []document.Document,
	entries []schemacache.ManifestDocument,
	index schemacache.Index,
	manifest schemacache.Manifest,
	outputDir string,
) error {
	tempDir := outputDir + ".tmp"
	if _, err := os.Stat(tempDir); err == nil {
		// Stale leftover from a crashed prior build.
		if err := os.RemoveAll(tempDir); err != nil {
			return coreerrors.Wrap(fmt.Errorf("remove stale temp dir: %w", err),
				coreerrors.CategoryIOFailure, "stale_temp", "remove the temp directory manually", false)
		}
	}
	published := false
	defer func() {
		if !published {
			_ = os.RemoveAll(tempDir)
		}
	}()

	if err := os.MkdirAll(filepath.Join(tempDir, "documents"), 0o750); err != nil {
		return coreerrors.Wrap(fmt.Errorf("create temp dir: %w", err),
			coreerrors.CategoryIOFailure, "create_temp", "check output path permissions", false)
	}

	for position, doc := range sorted {
		encoded, err := encodePretty(doc)
		if err != nil {
			return coreerrors.Wrap(fmt.Errorf("encode document %s: %w", doc.ID, err),
				coreerrors.CategorySerialization, "encode_document", "", false)
		}
		path := filepath.Join(tempDir, "documents", entries[position].Filename)
		if err := fsx.WriteFileSync(path, encoded, 0o644); err != nil {
			return coreerrors.Wrap(fmt.Errorf("write document %s: %w", doc.ID, err),
				coreerrors.CategoryIOFailure, "write_document", "", false)
		}
	}

	indexBytes, err := encodePretty(index)
	if err != nil {
		return coreerrors.Wrap(fmt.Errorf("encode index: %w", err),
			coreerrors.CategorySerialization, "encode_index", "", false)
	}
	if err := fsx.WriteFileSync(filepath.Join(tempDir, "index.json"), indexBytes, 0o644); err != nil {
		return coreerrors.Wrap(fmt.Errorf("write index: %w", err),
			coreerrors.CategoryIOFailure, "write_index", "", false)
	}

	manifestBytes, err := encodePretty(manifest)
	if err != nil {
		return coreerrors.Wrap(fmt.Errorf("encode manifest: %w", err),
			coreerrors.CategorySerialization, "encode_manifest", "", false)
	}
	if err := fsx.WriteFileSync(filepath.Join(tempDir, "manifest.json"), manifestBytes, 0o644); err != nil {
		return coreerrors.Wrap(fmt.Errorf("write manifest: %w", err),
			coreerrors.CategoryIOFailure, "write_manifest", "", false)
	}

	if err := fsx.PublishDir(tempDir, outputDir); err != nil {
		if _, statErr := os.Stat(outputDir); statErr == nil {
			return coreerrors.Wrap(
				fmt.Errorf("%w: %s", ErrOutputExists, outputDir),
				coreerrors.CategoryStateConflict, "output_exists",
				"another build may have published the same directory first", false)
		}
		return coreerrors.Wrap(err, coreerrors.CategoryIOFailure, "publish_cache",
			"another build may have published the same directory first", false)
	}
	published = true
	return nil
}
