package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/contextenginehq/context-core/core/jcs"
)

var (
	// ErrOutsideRoot means the source path does not live under the
	// ingestion root.
	ErrOutsideRoot = errors.New("source path is outside the ingestion root")

	// ErrInvalidUTF8 covers both path components and content bytes that are
	// not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
)

// ID is a normalized relative-path identifier: forward slashes, lowercase,
// no leading "./". Equality is string equality and ordering is byte-lex
// ordering of the normalized form; that ordering is the sort key everywhere.
type ID string

// IDFromPath derives an ID for a source path under an ingestion root.
func IDFromPath(root, source string) (ID, error) {
	relative, err := filepath.Rel(root, source)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, source)
	}
	slashed := filepath.ToSlash(relative)
	if slashed == ".." || strings.HasPrefix(slashed, "../") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, source)
	}
	if !utf8.ValidString(slashed) {
		return "", fmt.Errorf("%w: path %q", ErrInvalidUTF8, source)
	}

	normalized := strings.ToLower(strings.ReplaceAll(slashed, "\\", "/"))
	normalized = strings.TrimPrefix(normalized, "./")
	return ID(normalized), nil
}

func (id ID) String() string {
	return string(id)
}

// Less orders IDs by byte-lex comparison of the normalized form.
func (id ID) Less(other ID) bool {
	return id < other
}

const versionPrefix = "sha256:"

// Version is a content-hash version string: "sha256:" followed by the
// lowercase hex digest of the content bytes exactly as ingested. Metadata
// never contributes.
type Version string

// VersionFromContent hashes raw content bytes. No newline normalization, no
// trimming: inputs that differ by one byte get different versions.
func VersionFromContent(content []byte) Version {
	return Version(versionPrefix + jcs.SHA256Hex(content))
}

func (v Version) String() string {
	return string(v)
}

// Hex returns the digest portion without the "sha256:" prefix. ok is false
// when the version string is malformed.
func (v Version) Hex() (string, bool) {
	hexPart, found := strings.CutPrefix(string(v), versionPrefix)
	if !found || len(hexPart) != 64 {
		return "", false
	}
	return hexPart, true
}
