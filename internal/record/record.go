package record

import "time"

// Field names as they appear in the extraction service's JSON and in API payloads.
const (
	FieldName         = "Name"
	FieldCompany      = "Company"
	FieldFollowUpDate = "Follow_up_Date"
	FieldNotes        = "Notes"
)

// Fields lists the four required keys in their canonical order.
var Fields = []string{FieldName, FieldCompany, FieldFollowUpDate, FieldNotes}

// Record is one normalized CRM entry. A nil field means the value was not
// mentioned (or not returned by the extraction service).
type Record struct {
	Name         *string `json:"Name"`
	Company      *string `json:"Company"`
	FollowUpDate *string `json:"Follow_up_Date"`
	Notes        *string `json:"Notes"`
}

// Stored is a Record as it sits in the append-only log.
type Stored struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Record
}

// Fallback is the record produced when the extraction response cannot be decoded.
// The original input survives in Notes.
func Fallback(original string) Record {
	return Record{Notes: Ptr(original)}
}

// Placeholder is the record produced for blank input.
func Placeholder(notes string) Record {
	return Record{Notes: Ptr(notes)}
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

// Value dereferences a field, returning "" for nil.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Equal reports whether two records hold the same values, nil-aware.
func (r Record) Equal(o Record) bool {
	return eq(r.Name, o.Name) && eq(r.Company, o.Company) &&
		eq(r.FollowUpDate, o.FollowUpDate) && eq(r.Notes, o.Notes)
}

func eq(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
