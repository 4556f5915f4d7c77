package cache

import "encoding/json"

// encodePretty renders every cache artifact: two-space indent plus a trailing
// newline. The exact bytes are part of the on-disk contract, so nothing else
// in this package may serialize differently.
func encodePretty(value any) ([]byte, error) {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(encoded, '\n'), nil
}
