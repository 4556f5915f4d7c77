package cache

import "time"

// BuildConfig is the versioned cache build configuration; v0 is the only
// variant. Fields are declared in sorted key order so the serialized form is
// its own canonical form.
type BuildConfig struct {
	HashAlgorithm string `json:"hash_algorithm"`
	Version       string `json:"version"`
}

// BuildConfigV0 is the only configuration current builders emit.
func BuildConfigV0() BuildConfig {
	return BuildConfig{
		HashAlgorithm: "sha256",
		Version:       "1",
	}
}

// ManifestDocument describes one cached document.
type ManifestDocument struct {
	ID       string `json:"id"`
	Version  string `json:"version"`
	Filename string `json:"filename"`
}

// Manifest is the logical description of a built cache. created_at is
// informational only and excluded from cache_version.
type Manifest struct {
	CacheVersion string             `json:"cache_version"`
	Config       BuildConfig        `json:"config"`
	CreatedAt    time.Time          `json:"created_at"`
	Documents    []ManifestDocument `json:"documents"`
}

// Index maps document IDs to on-disk filenames. It serializes as a flat JSON
// object with keys in sorted order; there is no wrapper field.
type Index map[string]string
