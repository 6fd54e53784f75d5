package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/tardis-search/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchMultiFn func(ctx context.Context, qs []*db.TextQuery) ([]*db.SearchResult, error)
	calls         [][]*db.TextQuery
}

func (m *mockStore) SearchMulti(ctx context.Context, qs []*db.TextQuery) ([]*db.SearchResult, error) {
	m.calls = append(m.calls, qs)
	if m.searchMultiFn != nil {
		return m.searchMultiFn(ctx, qs)
	}
	out := make([]*db.SearchResult, len(qs))
	for i := range out {
		out[i] = &db.SearchResult{}
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "tardis:", 50)
	return repo, ms
}

func entry(key string, score float64, fields map[string]string) db.SearchEntry {
	return db.SearchEntry{Key: key, Score: score, Fields: fields}
}
