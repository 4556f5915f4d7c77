package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/contextenginehq/context-core/core/jcs"
	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
)

// CanonicalConfigJSON is the config serialization fed into the cache version
// digest: pretty-printed (two-space indent, no trailing newline) with keys in
// sorted order (the BuildConfig struct declares its fields in that order).
// manifest.json carries the same keys and values nested one level deeper, so
// its config bytes are indented differently.
func CanonicalConfigJSON(config schemacache.BuildConfig) ([]byte, error) {
	encoded, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode build config: %w", err)
	}
	return encoded, nil
}

// ComputeCacheVersion digests the build config plus one "<id>:<version>"
// line per document. Entries must already be in sorted-ID order. created_at
// never participates, so rebuilding the same inputs always reproduces the
// same cache version.
func ComputeCacheVersion(config schemacache.BuildConfig, entries []schemacache.ManifestDocument) (string, error) {
	configJSON, err := CanonicalConfigJSON(config)
	if err != nil {
		return "", err
	}
	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, string(configJSON))
	for _, entry := range entries {
		lines = append(lines, entry.ID+":"+entry.Version)
	}
	input := strings.Join(lines, "\n")
	return "sha256:" + jcs.SHA256Hex([]byte(input)), nil
}
