package domain

import "strings"

// Metadata carries per-document descriptive values. Values are either a
// string or a []string (entity lists), matching what is persisted as JSONB.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaSource        = "source"
	MetaPersons       = "persons"
	MetaOrganizations = "organizations"
	MetaLocations     = "locations"
	MetaDates         = "dates"
)

// Document is a normalized source document produced by the loader.
// Immutable once produced; ownership passes to the chunker.
type Document struct {
	Content  string
	Metadata Metadata
}

// Chunk is a bounded-size, sentence-aligned fragment of a Document used as
// the atomic retrieval unit. Metadata is inherited unmodified from the
// parent Document.
type Chunk struct {
	Content  string
	Metadata Metadata
}

// Empty reports whether the chunk has no content after trimming. Empty
// chunks are invalid and must be dropped before persistence.
func (c Chunk) Empty() bool {
	return strings.TrimSpace(c.Content) == ""
}

// Clone returns a copy of the metadata so chunks of sibling documents never
// alias a caller-held map.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Source returns the originating file path, if recorded.
func (m Metadata) Source() string {
	if m == nil {
		return ""
	}
	s, _ := m[MetaSource].(string)
	return s
}
