// Package store provides the vector search layer: the SearchResults carrier,
// the embedding client, and the Postgres/pgvector and in-memory stores.
package store

// SearchResults is an immutable bundle of retrieved documents with aligned
// metadata and distance scores. Err set means the slices are empty; results
// are never both populated and errored.
type SearchResults struct {
	Documents []string
	Metadata  []map[string]any
	Distances []float64
	Err       string
}

// ErrorResults builds an errored result set.
func ErrorResults(msg string) SearchResults {
	return SearchResults{Err: msg}
}

// IsEmpty reports whether the search returned no documents and no error.
func (r SearchResults) IsEmpty() bool {
	return r.Err == "" && len(r.Documents) == 0
}

// Metadata keys produced by the stores.
const (
	MetaCourseTitle  = "course_title"
	MetaLessonNumber = "lesson_number"
)
