package index

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/tardis-search/internal/db"
	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// PrimaryFieldWeight boosts the field a type's advanced search matches on.
const PrimaryFieldWeight = 2.0

// store is the consumer interface for index management (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Layout names the indexes and fields of the search documents.
type Layout struct {
	Indexes         map[domain.EntityType]string
	TextFields      map[domain.EntityType]string
	InstrumentField string
	DateField       string
}

// Manager creates the search indexes the service queries.
type Manager struct {
	store     store
	keyPrefix string
	layout    Layout
}

// New creates an index manager.
func New(s store, keyPrefix string, layout Layout) *Manager {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Manager{store: s, keyPrefix: keyPrefix, layout: layout}
}

// Ensure creates every missing index and leaves existing ones untouched.
// It returns the names of the indexes it created.
func (m *Manager) Ensure(ctx context.Context) ([]string, error) {
	var created []string
	for _, t := range domain.EntityTypes {
		name := m.layout.Indexes[t]

		exists, err := m.store.IndexExists(ctx, name)
		if err != nil {
			return created, fmt.Errorf("check index %s: %w", name, err)
		}
		if exists {
			continue
		}

		def, err := m.definition(t)
		if err != nil {
			return created, fmt.Errorf("build index %s: %w", name, err)
		}
		if err := m.store.CreateIndex(ctx, def); err != nil {
			if errors.Is(err, db.ErrIndexExists) {
				continue
			}
			return created, fmt.Errorf("create index %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}

// Check reports an error naming the first missing index.
func (m *Manager) Check(ctx context.Context) error {
	for _, t := range domain.EntityTypes {
		name := m.layout.Indexes[t]
		exists, err := m.store.IndexExists(ctx, name)
		if err != nil {
			return fmt.Errorf("check index %s: %w", name, err)
		}
		if !exists {
			return fmt.Errorf("index %s: %w", name, db.ErrIndexNotFound)
		}
	}
	return nil
}

// definition builds the FT index for one entity type. Every index carries
// all text fields so a single multi-field query runs against any of them.
func (m *Manager) definition(t domain.EntityType) (*db.IndexDefinition, error) {
	name := m.layout.Indexes[t]
	b := db.NewIndex(name).
		OnHash().
		Prefix(domain.SearchDocPrefix(m.keyPrefix, name))

	for _, et := range domain.EntityTypes {
		field := m.layout.TextFields[et]
		if et == t {
			b.TextWeighted(field, PrimaryFieldWeight)
		} else {
			b.Text(field)
		}
	}

	return b.
		Text(m.layout.InstrumentField).
		SortableNumeric(m.layout.DateField).
		Build()
}
