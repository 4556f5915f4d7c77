package selection

import (
	"strings"

	schemaselection "github.com/contextenginehq/context-core/core/schema/v1/selection"
)

// NewQuery normalizes a raw query: lowercase, split on runs of ASCII
// whitespace. Terms is never nil and never contains empty strings.
func NewQuery(raw string) schemaselection.Query {
	return schemaselection.Query{
		Raw:   raw,
		Terms: splitASCIIWhitespace(strings.ToLower(raw)),
	}
}

// splitASCIIWhitespace is the one word-splitting rule in the engine: both
// query terms and document words come from it. Only ASCII whitespace
// separates words; Unicode spaces are word bytes like any other.
func splitASCIIWhitespace(text string) []string {
	words := []string{}
	start := -1
	for position := 0; position < len(text); position++ {
		if isASCIISpace(text[position]) {
			if start >= 0 {
				words = append(words, text[start:position])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = position
		}
	}
	if start >= 0 {
		words = append(words, text[start:])
	}
	return words
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
