package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/contextenginehq/context-core/core/document"
	coreerrors "github.com/contextenginehq/context-core/core/errors"
	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
	"github.com/contextenginehq/context-core/core/schema/validate"
)

type HashMismatch struct {
	Path     string `json:"path"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// VerifyResult is the full integrity report for a cache directory.
type VerifyResult struct {
	Path                 string         `json:"path"`
	CacheVersion         string         `json:"cache_version,omitempty"`
	ComputedCacheVersion string         `json:"computed_cache_version,omitempty"`
	FilesChecked         int            `json:"files_checked"`
	SchemaErrors         []string       `json:"schema_errors,omitempty"`
	MissingFiles         []string       `json:"missing_files,omitempty"`
	HashMismatches       []HashMismatch `json:"hash_mismatches,omitempty"`
	IDMismatches         []HashMismatch `json:"id_mismatches,omitempty"`
	IndexErrors          []string       `json:"index_errors,omitempty"`
	OrphanFiles          []string       `json:"orphan_files,omitempty"`
}

func (r VerifyResult) OK() bool {
	return len(r.SchemaErrors) == 0 &&
		len(r.MissingFiles) == 0 &&
		len(r.HashMismatches) == 0 &&
		len(r.IDMismatches) == 0 &&
		len(r.IndexErrors) == 0 &&
		len(r.OrphanFiles) == 0
}

// Verify sweeps a cache directory offline: the manifest parses and validates
// against its schema, the recomputed cache version matches, every listed
// file exists with content hashing back to its manifest version and filename
// prefix, index.json reproduces the manifest byte-for-byte, and documents/
// holds no orphans. It reports findings rather than stopping at the first
// problem; an unreadable or unparsable manifest is the one fatal case.
func Verify(dir string) (VerifyResult, error) {
	result := VerifyResult{Path: dir}

	manifestBytes, err := os.ReadFile(filepath.Join(dir, "manifest.json")) // #nosec G304 -- explicit local caller input.
	if err != nil {
		return VerifyResult{}, coreerrors.Wrap(fmt.Errorf("read manifest: %w", err),
			coreerrors.CategoryIOFailure, "read_manifest", "check the cache directory path", false)
	}
	if err := validate.ValidateManifest(manifestBytes); err != nil {
		result.SchemaErrors = append(result.SchemaErrors, fmt.Sprintf("manifest.json: %v", err))
	}
	var manifest schemacache.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return VerifyResult{}, coreerrors.Wrap(fmt.Errorf("parse manifest: %w", err),
			coreerrors.CategorySerialization, "parse_manifest", "the cache is corrupt beyond reporting", false)
	}
	result.CacheVersion = manifest.CacheVersion

	computed, err := ComputeCacheVersion(manifest.Config, manifest.Documents)
	if err != nil {
		return VerifyResult{}, coreerrors.Wrap(err, coreerrors.CategorySerialization, "cache_version", "", false)
	}
	result.ComputedCacheVersion = computed
	if computed != manifest.CacheVersion {
		result.HashMismatches = append(result.HashMismatches, HashMismatch{
			Path:     "manifest.json",
			Expected: manifest.CacheVersion,
			Actual:   computed,
		})
	}

	verifyIndex(dir, manifest, &result)
	referenced := verifyDocuments(dir, manifest, &result)
	verifyNoOrphans(dir, referenced, &result)

	sort.Strings(result.SchemaErrors)
	sort.Strings(result.MissingFiles)
	sort.Strings(result.IndexErrors)
	sort.Strings(result.OrphanFiles)
	sort.Slice(result.HashMismatches, func(i, j int) bool {
		return result.HashMismatches[i].Path < result.HashMismatches[j].Path
	})
	sort.Slice(result.IDMismatches, func(i, j int) bool {
		return result.IDMismatches[i].Path < result.IDMismatches[j].Path
	})
	return result, nil
}

func verifyIndex(dir string, manifest schemacache.Manifest, result *VerifyResult) {
	indexBytes, err := os.ReadFile(filepath.Join(dir, "index.json")) // #nosec G304 -- explicit local caller input.
	if err != nil {
		result.MissingFiles = append(result.MissingFiles, "index.json")
		return
	}
	if err := validate.ValidateIndex(indexBytes); err != nil {
		result.SchemaErrors = append(result.SchemaErrors, fmt.Sprintf("index.json: %v", err))
	}

	expected := make(schemacache.Index, len(manifest.Documents))
	for _, entry := range manifest.Documents {
		expected[entry.ID] = entry.Filename
	}
	expectedBytes, err := encodePretty(expected)
	if err != nil {
		result.IndexErrors = append(result.IndexErrors, fmt.Sprintf("encode expected index: %v", err))
		return
	}
	if !bytes.Equal(indexBytes, expectedBytes) {
		result.IndexErrors = append(result.IndexErrors, "index.json does not match the manifest document list")
	}
}

func verifyDocuments(dir string, manifest schemacache.Manifest, result *VerifyResult) map[string]struct{} {
	referenced := make(map[string]struct{}, len(manifest.Documents))
	for _, entry := range manifest.Documents {
		referenced[entry.Filename] = struct{}{}
		relative := "documents/" + entry.Filename
		raw, err := os.ReadFile(filepath.Join(dir, "documents", entry.Filename)) // #nosec G304 -- manifest-derived path inside the cache root.
		if err != nil {
			result.MissingFiles = append(result.MissingFiles, relative)
			continue
		}
		result.FilesChecked++
		if err := validate.ValidateDocument(raw); err != nil {
			result.SchemaErrors = append(result.SchemaErrors, fmt.Sprintf("%s: %v", relative, err))
		}
		var doc document.Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			result.SchemaErrors = append(result.SchemaErrors, fmt.Sprintf("%s: parse: %v", relative, err))
			continue
		}
		if doc.ID.String() != entry.ID {
			result.IDMismatches = append(result.IDMismatches, HashMismatch{
				Path:     relative,
				Expected: entry.ID,
				Actual:   doc.ID.String(),
			})
		}
		recomputed := document.VersionFromContent([]byte(doc.Content))
		if recomputed.String() != entry.Version {
			result.HashMismatches = append(result.HashMismatches, HashMismatch{
				Path:     relative,
				Expected: entry.Version,
				Actual:   recomputed.String(),
			})
		}
		if hexDigest, ok := recomputed.Hex(); ok {
			if expectedName := hexDigest[:12] + ".json"; expectedName != entry.Filename {
				result.HashMismatches = append(result.HashMismatches, HashMismatch{
					Path:     relative,
					Expected: expectedName,
					Actual:   entry.Filename,
				})
			}
		}
	}
	return referenced
}

func verifyNoOrphans(dir string, referenced map[string]struct{}, result *VerifyResult) {
	dirEntries, err := os.ReadDir(filepath.Join(dir, "documents"))
	if err != nil {
		result.MissingFiles = append(result.MissingFiles, "documents/")
		return
	}
	for _, dirEntry := range dirEntries {
		if _, ok := referenced[dirEntry.Name()]; !ok {
			result.OrphanFiles = append(result.OrphanFiles, "documents/"+dirEntry.Name())
		}
	}
}
