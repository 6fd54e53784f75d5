package db

import "github.com/kailas-cloud/tardis-search/internal/domain/search/filter"

// TextQuery is the input for a scored full-text search on one index.
type TextQuery struct {
	IndexName string
	// Fields are the TEXT fields Text is matched against (OR across fields).
	Fields  []string
	Text    string
	Filters filter.Expression
	Limit   int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
