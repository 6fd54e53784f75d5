package access

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

func TestCanRead_Experiment(t *testing.T) {
	p := NewPolicy(sampleRecords(), "")
	ctx := context.Background()

	ok, err := p.CanRead(ctx, domain.Experiment, "E1", u1)
	if err != nil || !ok {
		t.Fatalf("expected E1 readable, got %v, %v", ok, err)
	}
	ok, err = p.CanRead(ctx, domain.Experiment, "E2", u1)
	if err != nil || ok {
		t.Fatalf("expected E2 denied, got %v, %v", ok, err)
	}
}

// A dataset is readable when any parent experiment is.
func TestCanRead_DatasetOrAcrossParents(t *testing.T) {
	p := NewPolicy(sampleRecords(), "")

	ok, err := p.CanRead(context.Background(), domain.Dataset, "D1", u1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("D1 has parents {E1, E2} and u1 reads E1: expected readable")
	}

	ok, _ = p.CanRead(context.Background(), domain.Dataset, "D2", u1)
	if ok {
		t.Error("D2 only belongs to E2: expected denied")
	}
}

func TestCanRead_DatafileThroughDataset(t *testing.T) {
	p := NewPolicy(sampleRecords(), "")
	ctx := context.Background()

	if ok, _ := p.CanRead(ctx, domain.Datafile, "F1", u1); !ok {
		t.Error("F1 -> D1 -> E1: expected readable")
	}
	if ok, _ := p.CanRead(ctx, domain.Datafile, "F2", u1); ok {
		t.Error("F2 -> D2 -> E2: expected denied")
	}
}

func TestResolve_StaleReferencesDenied(t *testing.T) {
	p := NewPolicy(sampleRecords(), "")

	d, err := p.Resolve(context.Background(), u1, map[domain.EntityType][]string{
		domain.Experiment: {"E-gone"},
		domain.Dataset:    {"D-gone"},
		domain.Datafile:   {"F-gone", "F3"},
	})
	if err != nil {
		t.Fatalf("stale references must not error: %v", err)
	}
	for _, c := range []struct {
		t  domain.EntityType
		id string
	}{
		{domain.Experiment, "E-gone"},
		{domain.Dataset, "D-gone"},
		{domain.Datafile, "F-gone"},
		{domain.Datafile, "F3"},
	} {
		if d.Allowed(c.t, c.id) {
			t.Errorf("%v %s: expected denied", c.t, c.id)
		}
	}
}

// Readability of an experiment propagates to every dataset under it and every
// datafile under those datasets.
func TestResolve_TransitiveClosure(t *testing.T) {
	recs := &fakeRecords{
		acls:    map[string][]string{"E1": {"u1"}, "E2": {"u2"}},
		parents: map[string][]string{"D1": {"E2", "E1"}, "D2": {"E1"}, "D3": {"E2"}},
		owning:  map[string]string{"F1": "D1", "F2": "D2", "F3": "D3"},
	}
	p := NewPolicy(recs, "")

	d, err := p.Resolve(context.Background(), u1, map[domain.EntityType][]string{
		domain.Experiment: {"E1", "E2"},
		domain.Dataset:    {"D1", "D2", "D3"},
		domain.Datafile:   {"F1", "F2", "F3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for expID, exps := range map[string]bool{"E1": true, "E2": false} {
		if d.Allowed(domain.Experiment, expID) != exps {
			t.Errorf("experiment %s: got %v", expID, !exps)
		}
	}
	for dsID, parents := range recs.parents {
		want := false
		for _, e := range parents {
			want = want || d.Allowed(domain.Experiment, e)
		}
		if got := d.Allowed(domain.Dataset, dsID); got != want {
			t.Errorf("dataset %s: got %v, want %v", dsID, got, want)
		}
	}
	for dfID, dsID := range recs.owning {
		if got, want := d.Allowed(domain.Datafile, dfID), d.Allowed(domain.Dataset, dsID); got != want {
			t.Errorf("datafile %s: got %v, want %v", dfID, got, want)
		}
	}
}

func TestResolve_BatchesOneLookupPerHop(t *testing.T) {
	recs := sampleRecords()
	p := NewPolicy(recs, "")

	_, err := p.Resolve(context.Background(), u1, map[domain.EntityType][]string{
		domain.Experiment: {"E1", "E1"},
		domain.Dataset:    {"D1", "D1"},
		domain.Datafile:   {"F1", "F2", "F1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(recs.owningCalls) != 1 || len(recs.owningCalls[0]) != 2 {
		t.Errorf("expected one deduplicated OwningDatasets batch, got %v", recs.owningCalls)
	}
	// D1 requested directly, D2 reached through F2.
	if len(recs.parentsCalls) != 2 {
		t.Errorf("expected 2 ParentExperiments batches, got %v", recs.parentsCalls)
	}
	if len(recs.parentsCalls[0]) != 1 || recs.parentsCalls[0][0] != "D1" {
		t.Errorf("first parents batch = %v", recs.parentsCalls[0])
	}
	if len(recs.parentsCalls[1]) != 1 || recs.parentsCalls[1][0] != "D2" {
		t.Errorf("second parents batch = %v", recs.parentsCalls[1])
	}
	// E1 requested directly, E2 reached through D1/D2.
	if len(recs.aclCalls) != 2 {
		t.Errorf("expected 2 ExperimentACLs batches, got %v", recs.aclCalls)
	}
	if len(recs.aclCalls) == 2 && (len(recs.aclCalls[1]) != 1 || recs.aclCalls[1][0] != "E2") {
		t.Errorf("second acl batch = %v", recs.aclCalls[1])
	}
}

func TestResolve_EmptyInputMakesNoLookups(t *testing.T) {
	recs := sampleRecords()
	p := NewPolicy(recs, "")

	d, err := p.Resolve(context.Background(), u1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed(domain.Experiment, "E1") {
		t.Error("unrequested ids must not be allowed")
	}
	if len(recs.aclCalls)+len(recs.parentsCalls)+len(recs.owningCalls) != 0 {
		t.Error("expected no store calls")
	}
}

func TestResolve_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("store unavailable")

	tests := []struct {
		name string
		mod  func(*fakeRecords)
		ids  map[domain.EntityType][]string
	}{
		{"acls", func(f *fakeRecords) { f.aclErr = boom }, map[domain.EntityType][]string{domain.Experiment: {"E1"}}},
		{"parents", func(f *fakeRecords) { f.parentsErr = boom }, map[domain.EntityType][]string{domain.Dataset: {"D1"}}},
		{"owning", func(f *fakeRecords) { f.owningErr = boom }, map[domain.EntityType][]string{domain.Datafile: {"F1"}}},
		{"acls via dataset", func(f *fakeRecords) { f.aclErr = boom }, map[domain.EntityType][]string{domain.Dataset: {"D1"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			recs := sampleRecords()
			tc.mod(recs)
			_, err := NewPolicy(recs, "").Resolve(context.Background(), u1, tc.ids)
			if !errors.Is(err, boom) {
				t.Fatalf("expected store error, got %v", err)
			}
		})
	}
}

func TestResolve_AnonymousDenied(t *testing.T) {
	recs := sampleRecords()
	recs.acls["E-blank"] = []string{""}

	d, err := NewPolicy(recs, "").Resolve(context.Background(), domain.Anonymous, map[domain.EntityType][]string{
		domain.Experiment: {"E1", "E2", "E-blank"},
		domain.Dataset:    {"D1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"E1", "E2", "E-blank"} {
		if d.Allowed(domain.Experiment, id) {
			t.Errorf("anonymous must not read %s", id)
		}
	}
}

func TestResolve_PublicPrincipal(t *testing.T) {
	recs := sampleRecords()
	recs.acls["E2"] = append(recs.acls["E2"], "public")

	d, err := NewPolicy(recs, "public").Resolve(context.Background(), domain.Anonymous,
		map[domain.EntityType][]string{
			domain.Experiment: {"E1", "E2"},
			domain.Datafile:   {"F2"},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Allowed(domain.Experiment, "E1") {
		t.Error("E1 is not public")
	}
	if !d.Allowed(domain.Experiment, "E2") || !d.Allowed(domain.Datafile, "F2") {
		t.Error("E2 and F2 (via D2) should be public")
	}
}
