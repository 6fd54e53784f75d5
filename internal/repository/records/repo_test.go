package records

import (
	"context"
	"errors"
	"testing"
)

func TestExperimentACLs(t *testing.T) {
	repo, ms := newTestRepo(t)

	acls, err := repo.ExperimentACLs(context.Background(), []string{"1", "2", "404"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := acls["1"]; len(got) != 2 || got[0] != "u1" {
		t.Errorf("acl[1] = %v", got)
	}
	got, ok := acls["2"]
	if !ok {
		t.Fatal("existing experiment without ACL entries must be present")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("acl[2] = %v, want empty", got)
	}
	if _, ok := acls["404"]; ok {
		t.Error("missing experiment must be absent")
	}

	if len(ms.hashCalls) != 1 || len(ms.setCalls) != 1 {
		t.Fatalf("expected one hash batch and one set batch, got %d and %d", len(ms.hashCalls), len(ms.setCalls))
	}
	if len(ms.setCalls[0]) != 2 || ms.setCalls[0][0] != "tardis:experiment:1:acl" {
		t.Errorf("set keys = %v (missing records must not be read)", ms.setCalls[0])
	}
}

func TestParentExperiments(t *testing.T) {
	repo, _ := newTestRepo(t)

	parents, err := repo.ParentExperiments(context.Background(), []string{"10", "11"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := parents["10"]; len(got) != 2 {
		t.Errorf("parents[10] = %v", got)
	}
	if _, ok := parents["11"]; ok {
		t.Error("missing dataset must be absent")
	}
}

func TestOwningDatasets(t *testing.T) {
	repo, ms := newTestRepo(t)

	owning, err := repo.OwningDatasets(context.Background(), []string{"100", "101", "102"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if owning["100"] != "10" {
		t.Errorf("owning[100] = %q", owning["100"])
	}
	if _, ok := owning["101"]; ok {
		t.Error("datafile without dataset field must be absent")
	}
	if _, ok := owning["102"]; ok {
		t.Error("missing datafile must be absent")
	}
	if len(ms.setCalls) != 0 {
		t.Error("datafile lookups must not read sets")
	}
}

func TestLookups_EmptyIDs(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if m, err := repo.ExperimentACLs(ctx, nil); err != nil || len(m) != 0 {
		t.Errorf("ExperimentACLs(nil) = %v, %v", m, err)
	}
	if m, err := repo.OwningDatasets(ctx, nil); err != nil || len(m) != 0 {
		t.Errorf("OwningDatasets(nil) = %v, %v", m, err)
	}
	if len(ms.hashCalls) != 0 {
		t.Error("expected no store calls")
	}
}

func TestLookups_NothingExistsSkipsSets(t *testing.T) {
	repo, ms := newTestRepo(t)

	m, err := repo.ParentExperiments(context.Background(), []string{"77"})
	if err != nil || len(m) != 0 {
		t.Fatalf("expected empty map, got %v, %v", m, err)
	}
	if len(ms.setCalls) != 0 {
		t.Error("no set batch expected when no record exists")
	}
}

func TestLookups_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("hash", func(t *testing.T) {
		repo, ms := newTestRepo(t)
		ms.hgetAllMultiErr = boom
		if _, err := repo.OwningDatasets(context.Background(), []string{"100"}); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})

	t.Run("set", func(t *testing.T) {
		repo, ms := newTestRepo(t)
		ms.smembersMultiErr = boom
		if _, err := repo.ExperimentACLs(context.Background(), []string{"1"}); !errors.Is(err, boom) {
			t.Fatalf("expected boom, got %v", err)
		}
	})
}

func TestNew_CustomPrefix(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "mt:")
	_, _ = repo.OwningDatasets(context.Background(), []string{"5"})
	if len(ms.hashCalls) != 1 || ms.hashCalls[0][0] != "mt:datafile:5" {
		t.Errorf("keys = %v", ms.hashCalls)
	}
}
