package query

import "github.com/kailas-cloud/tardis-search/internal/domain/search/filter"

// Query is one planned engine query. It runs against every index in Indexes.
type Query struct {
	Indexes []string
	// Fields are matched with any-term semantics against Text.
	Fields  []string
	Text    string
	Filters filter.Expression
}
