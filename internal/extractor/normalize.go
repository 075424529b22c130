package extractor

import "strings"

// Normalize passes raw through unchanged, or returns ErrEmptyInput when it is
// empty or whitespace-only.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmptyInput
	}
	return raw, nil
}
