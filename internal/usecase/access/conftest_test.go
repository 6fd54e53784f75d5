package access

import (
	"context"
	"slices"
	"sync"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
)

// fakeRecords is an in-memory RecordStore that records every batch it serves.
type fakeRecords struct {
	mu sync.Mutex

	acls    map[string][]string
	parents map[string][]string
	owning  map[string]string

	aclErr     error
	parentsErr error
	owningErr  error

	aclCalls     [][]string
	parentsCalls [][]string
	owningCalls  [][]string
}

func (f *fakeRecords) ExperimentACLs(_ context.Context, ids []string) (map[string][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aclCalls = append(f.aclCalls, slices.Clone(ids))
	if f.aclErr != nil {
		return nil, f.aclErr
	}
	out := map[string][]string{}
	for _, id := range ids {
		if v, ok := f.acls[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeRecords) ParentExperiments(_ context.Context, ids []string) (map[string][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parentsCalls = append(f.parentsCalls, slices.Clone(ids))
	if f.parentsErr != nil {
		return nil, f.parentsErr
	}
	out := map[string][]string{}
	for _, id := range ids {
		if v, ok := f.parents[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeRecords) OwningDatasets(_ context.Context, ids []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owningCalls = append(f.owningCalls, slices.Clone(ids))
	if f.owningErr != nil {
		return nil, f.owningErr
	}
	out := map[string]string{}
	for _, id := range ids {
		if v, ok := f.owning[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// sampleRecords: u1 reads E1 only; D1 belongs to E1 and E2; D2 to E2;
// F1 is in D1, F2 in D2, F3 points at a deleted dataset.
func sampleRecords() *fakeRecords {
	return &fakeRecords{
		acls: map[string][]string{
			"E1": {"u1"},
			"E2": {"u2"},
			"E3": {},
		},
		parents: map[string][]string{
			"D1": {"E1", "E2"},
			"D2": {"E2"},
		},
		owning: map[string]string{
			"F1": "D1",
			"F2": "D2",
			"F3": "D-gone",
		},
	}
}

func hits(index string, ids ...string) []hit.Raw {
	out := make([]hit.Raw, len(ids))
	for i, id := range ids {
		out[i] = hit.Raw{Index: index, ID: id, Score: float64(len(ids) - i)}
	}
	return out
}

func ids(hs []hit.Raw) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.ID
	}
	return out
}

var u1 = domain.Principal{ID: "u1"}
