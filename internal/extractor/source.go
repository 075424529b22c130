package extractor

import (
	"fmt"
	"strings"
)

// Source is where the raw text came from. It selects the prompt framing and
// the placeholder used for blank input.
type Source string

const (
	SourceEmail Source = "email"
	SourceVoice Source = "voice"
)

const (
	emailPlaceholder = "No content provided."
	voicePlaceholder = "No valid text to process."
)

// ParseSource maps a user-supplied label to a Source. Empty means email.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "email", "text":
		return SourceEmail, nil
	case "voice", "audio":
		return SourceVoice, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Placeholder is the Notes value recorded for blank input from this source.
func (s Source) Placeholder() string {
	if s == SourceVoice {
		return voicePlaceholder
	}
	return emailPlaceholder
}
