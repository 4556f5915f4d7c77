package cache

import (
	"testing"

	schemacache "github.com/contextenginehq/context-core/core/schema/v1/cache"
)

func TestCanonicalConfigJSONSortedKeys(t *testing.T) {
	encoded, err := CanonicalConfigJSON(schemacache.BuildConfigV0())
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	expected := "{\n  \"hash_algorithm\": \"sha256\",\n  \"version\": \"1\"\n}"
	if string(encoded) != expected {
		t.Fatalf("unexpected canonical config:\n%s", encoded)
	}
}

func TestComputeCacheVersionEmpty(t *testing.T) {
	version, err := ComputeCacheVersion(schemacache.BuildConfigV0(), nil)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if version != "sha256:f99458899313790326890035b1994f4239a811c3d113b93a97d1aafcc7ada8e1" {
		t.Fatalf("unexpected empty cache version: %s", version)
	}
}

func TestComputeCacheVersionSingleDocument(t *testing.T) {
	entries := []schemacache.ManifestDocument{{
		ID:       "docs/guide.md",
		Version:  "sha256:27a5e443f8e58d49fbdca2468a789b61554c1426c2ddf6a2792abe494d6726d9",
		Filename: "27a5e443f8e5.json",
	}}
	version, err := ComputeCacheVersion(schemacache.BuildConfigV0(), entries)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if version != "sha256:d097882670c985781981f435ec02f8cd94cc7342a396e764d69a4c37c2ff96bb" {
		t.Fatalf("unexpected cache version: %s", version)
	}
}

func TestComputeCacheVersionSensitiveToEntries(t *testing.T) {
	base := []schemacache.ManifestDocument{{ID: "a.md", Version: "sha256:" + repeatHex("1"), Filename: "111111111111.json"}}
	withSecond := append(append([]schemacache.ManifestDocument(nil), base...),
		schemacache.ManifestDocument{ID: "b.md", Version: "sha256:" + repeatHex("2"), Filename: "222222222222.json"})

	first, err := ComputeCacheVersion(schemacache.BuildConfigV0(), base)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	second, err := ComputeCacheVersion(schemacache.BuildConfigV0(), withSecond)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if first == second {
		t.Fatalf("adding an entry must change the cache version")
	}

	again, err := ComputeCacheVersion(schemacache.BuildConfigV0(), withSecond)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if second != again {
		t.Fatalf("cache version must be stable across calls")
	}
}

func repeatHex(digit string) string {
	out := ""
	for range 64 {
		out += digit
	}
	return out
}
