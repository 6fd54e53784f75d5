package search

import (
	"context"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/query"
)

// Engine runs planned queries as one batched request. Hits come back in
// query order, each tagged with its source index.
type Engine interface {
	MultiSearch(ctx context.Context, qs []query.Query) ([]hit.Raw, error)
}

// AccessFilter drops hits the principal may not read.
type AccessFilter interface {
	Apply(ctx context.Context, b hit.Buckets, p domain.Principal) (hit.Buckets, error)
}
