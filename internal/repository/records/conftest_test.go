package records

import (
	"context"
	"testing"
)

// mockStore serves hashes and sets from maps and records every key batch.
type mockStore struct {
	hashes map[string]map[string]string
	sets   map[string][]string

	hgetAllMultiErr  error
	smembersMultiErr error

	hashCalls [][]string
	setCalls  [][]string
}

func (m *mockStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	m.hashCalls = append(m.hashCalls, keys)
	if m.hgetAllMultiErr != nil {
		return nil, m.hgetAllMultiErr
	}
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		if h, ok := m.hashes[k]; ok {
			out[i] = h
		} else {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

func (m *mockStore) SMembersMulti(_ context.Context, keys []string) ([][]string, error) {
	m.setCalls = append(m.setCalls, keys)
	if m.smembersMultiErr != nil {
		return nil, m.smembersMultiErr
	}
	out := make([][]string, len(keys))
	for i, k := range keys {
		out[i] = m.sets[k]
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{
		hashes: map[string]map[string]string{
			"tardis:experiment:1": {"title": "Cryo run"},
			"tardis:experiment:2": {"title": "Private"},
			"tardis:dataset:10":   {"description": "grid A"},
			"tardis:datafile:100": {"filename": "a.mrc", "dataset": "10"},
			"tardis:datafile:101": {"filename": "orphan.mrc"},
		},
		sets: map[string][]string{
			"tardis:experiment:1:acl":       {"u1", "u2"},
			"tardis:dataset:10:experiments": {"1", "2"},
		},
	}
	return New(ms, "tardis:"), ms
}
