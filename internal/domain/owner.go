package domain

import "strings"

// DocumentType distinguishes person (DNI) from business (RUC) identifiers.
type DocumentType string

const (
	DocumentDNI     DocumentType = "dni"
	DocumentRUC     DocumentType = "ruc"
	DocumentUnknown DocumentType = "unknown"
)

// DocumentFilter values accepted by the owner search endpoint.
const (
	FilterDNI = "dni"
	FilterRUC = "ruc"
	FilterAny = "any"
)

// IsValidDocumentFilter checks whether the given filter is acceptable.
func IsValidDocumentFilter(f string) bool {
	return f == FilterDNI || f == FilterRUC || f == FilterAny
}

// ClassifyDocument derives the document type from a Peruvian identity number:
// 8 digits is a DNI, 11 digits is a RUC, anything else is unknown.
func ClassifyDocument(doc string) DocumentType {
	doc = strings.TrimSpace(doc)
	for _, r := range doc {
		if r < '0' || r > '9' {
			return DocumentUnknown
		}
	}
	switch len(doc) {
	case 8:
		return DocumentDNI
	case 11:
		return DocumentRUC
	default:
		return DocumentUnknown
	}
}

// OwnerRecord is a customer suggestion: the display and contact fields plus
// a server-side selection frequency used for ranking.
type OwnerRecord struct {
	ID       string       `json:"id"`
	Type     DocumentType `json:"type"`
	Name     string       `json:"name"`
	Document string       `json:"document,omitempty"`
	Address  string       `json:"address,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	Freq     int          `json:"freq"`
}

// NormalizeName lowercases a name and collapses runs of whitespace, making
// it usable as a fallback identity when no document number is known.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Key returns the de-duplication and frequency-lookup key for a record:
// "doc:<document>" when a document number is present, else
// "name:<normalized name>".
func (r OwnerRecord) Key() string {
	if r.Document != "" {
		return "doc:" + r.Document
	}
	return "name:" + NormalizeName(r.Name)
}

// DedupeOwners removes duplicate records, keeping the first occurrence per
// Key. Input order is preserved.
func DedupeOwners(records []OwnerRecord) []OwnerRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		k := r.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}
