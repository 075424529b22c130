package extractor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

const (
	fence   = "```"
	langTag = "json"
)

// Parse turns a raw model response into a Record. It never fails: output that
// is not a JSON object yields record.Fallback(original).
func Parse(raw, original string) record.Record {
	rec, err := decode(raw)
	if err != nil {
		return record.Fallback(original)
	}
	return rec
}

// stripFence removes a leading ``` or ```json marker and a trailing ``` marker.
// Text that does not open with a fence is returned untouched.
func stripFence(s string) string {
	if !strings.HasPrefix(s, fence) {
		return s
	}
	body := s[len(fence):]
	if len(body) >= len(langTag) && strings.EqualFold(body[:len(langTag)], langTag) {
		body = body[len(langTag):]
	}
	return strings.TrimSuffix(body, fence)
}

func decode(raw string) (record.Record, error) {
	text := stripFence(strings.TrimSpace(raw))

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return record.Record{}, &malformedResponseError{reason: "decode", err: err}
	}
	// A bare `null` decodes without error into a nil map.
	if obj == nil {
		return record.Record{}, &malformedResponseError{reason: "not an object"}
	}

	return record.Record{
		Name:         field(obj, record.FieldName),
		Company:      field(obj, record.FieldCompany),
		FollowUpDate: field(obj, record.FieldFollowUpDate),
		Notes:        field(obj, record.FieldNotes),
	}, nil
}

// field returns nil for a missing key or JSON null. Strings are unquoted; any
// other JSON value is carried through as its literal text.
func field(obj map[string]json.RawMessage, key string) *string {
	raw, ok := obj[key]
	if !ok {
		return nil
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	return record.Ptr(string(raw))
}
