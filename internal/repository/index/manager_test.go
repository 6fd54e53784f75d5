package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/tardis-search/internal/db"
	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	existing  map[string]bool
	existsErr error
	createErr error
	created   []*db.IndexDefinition
}

func (m *mockStore) IndexExists(_ context.Context, name string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[name], nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, def)
	return nil
}

func testLayout() Layout {
	return Layout{
		Indexes: map[domain.EntityType]string{
			domain.Experiment: "experiments",
			domain.Dataset:    "dataset",
			domain.Datafile:   "datafile",
		},
		TextFields: map[domain.EntityType]string{
			domain.Experiment: "title",
			domain.Dataset:    "description",
			domain.Datafile:   "filename",
		},
		InstrumentField: "instrument_name",
		DateField:       "created_time",
	}
}

func TestEnsure_CreatesMissingOnly(t *testing.T) {
	ms := &mockStore{existing: map[string]bool{"experiments": true}}
	m := New(ms, "tardis:", testLayout())

	created, err := m.Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 2 || created[0] != "dataset" || created[1] != "datafile" {
		t.Errorf("created = %v", created)
	}
	if len(ms.created) != 2 {
		t.Fatalf("expected 2 FT.CREATE calls, got %d", len(ms.created))
	}
}

func TestEnsure_Definition(t *testing.T) {
	ms := &mockStore{}
	m := New(ms, "tardis:", testLayout())

	if _, err := m.Ensure(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	def := ms.created[1] // dataset
	if def.Name != "dataset" || def.StorageType != db.StorageHash {
		t.Errorf("unexpected definition: %+v", def)
	}
	if len(def.Prefixes) != 1 || def.Prefixes[0] != "tardis:search:dataset:" {
		t.Errorf("prefixes = %v", def.Prefixes)
	}

	fields := map[string]db.IndexField{}
	for _, f := range def.Fields {
		fields[f.Name] = f
	}
	for _, name := range []string{"title", "description", "filename", "instrument_name"} {
		if fields[name].Type != db.IndexFieldText {
			t.Errorf("%s should be TEXT, got %v", name, fields[name].Type)
		}
	}
	if fields["description"].TextWeight != PrimaryFieldWeight {
		t.Errorf("dataset primary field weight = %v", fields["description"].TextWeight)
	}
	if fields["title"].TextWeight != 0 {
		t.Errorf("secondary field should keep default weight, got %v", fields["title"].TextWeight)
	}
	if f := fields["created_time"]; f.Type != db.IndexFieldNumeric || !f.Sortable {
		t.Errorf("created_time = %+v", f)
	}
}

func TestEnsure_ConcurrentCreateIsNotAnError(t *testing.T) {
	ms := &mockStore{createErr: db.ErrIndexExists}
	created, err := New(ms, "", testLayout()).Ensure(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("created = %v", created)
	}
}

func TestEnsure_Errors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := New(&mockStore{existsErr: boom}, "", testLayout()).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("exists error: got %v", err)
	}
	if _, err := New(&mockStore{createErr: boom}, "", testLayout()).Ensure(context.Background()); !errors.Is(err, boom) {
		t.Errorf("create error: got %v", err)
	}
}

func TestCheck(t *testing.T) {
	all := map[string]bool{"experiments": true, "dataset": true, "datafile": true}
	if err := New(&mockStore{existing: all}, "", testLayout()).Check(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delete(all, "datafile")
	err := New(&mockStore{existing: all}, "", testLayout()).Check(context.Background())
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}
