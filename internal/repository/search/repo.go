package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/db"
	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/query"
	"github.com/kailas-cloud/tardis-search/internal/logger"
)

// DefaultMaxHits caps hits per index when no limit is configured.
const DefaultMaxHits = 1000

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchMulti(ctx context.Context, qs []*db.TextQuery) ([]*db.SearchResult, error)
}

// Repo implements usecase/search.Engine on FT.SEARCH.
type Repo struct {
	store     store
	keyPrefix string
	maxHits   int
}

// New creates a search repository. keyPrefix is the namespace documents are
// indexed under; maxHits caps hits per index.
func New(s store, keyPrefix string, maxHits int) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	return &Repo{store: s, keyPrefix: keyPrefix, maxHits: maxHits}
}

// MultiSearch expands every query into one FT.SEARCH per index and sends
// them in a single pipeline. Hits come back in query order, then index order.
func (r *Repo) MultiSearch(ctx context.Context, qs []query.Query) ([]hit.Raw, error) {
	var tqs []*db.TextQuery
	for _, q := range qs {
		for _, index := range q.Indexes {
			tqs = append(tqs, &db.TextQuery{
				IndexName: index,
				Fields:    q.Fields,
				Text:      q.Text,
				Filters:   q.Filters,
				Limit:     r.maxHits,
			})
		}
	}
	if len(tqs) == 0 {
		return nil, nil
	}

	results, err := r.store.SearchMulti(ctx, tqs)
	if err != nil {
		return nil, fmt.Errorf("multi search: %w", err)
	}
	if len(results) != len(tqs) {
		return nil, fmt.Errorf("multi search: expected %d results, got %d", len(tqs), len(results))
	}

	var hits []hit.Raw
	for i, sr := range results {
		// Matches past the cap are dropped before access filtering.
		if sr != nil && sr.Total > tqs[i].Limit {
			logger.FromContext(ctx).Debug("search results truncated",
				zap.String("index", tqs[i].IndexName),
				zap.Int("total", sr.Total),
				zap.Int("limit", tqs[i].Limit),
			)
		}
		hits = append(hits, r.parseHits(tqs[i].IndexName, sr)...)
	}
	return hits, nil
}

// parseHits tags each entry with its index and strips the document key prefix.
func (r *Repo) parseHits(index string, sr *db.SearchResult) []hit.Raw {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	prefix := domain.SearchDocPrefix(r.keyPrefix, index)
	hits := make([]hit.Raw, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)
		if id == "" {
			continue
		}
		hits = append(hits, hit.Raw{
			Index:  index,
			ID:     id,
			Score:  entry.Score,
			Fields: entry.Fields,
		})
	}
	return hits
}
