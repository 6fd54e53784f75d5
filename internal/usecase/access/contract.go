package access

import (
	"context"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// RecordStore is the batched view of the system of record.
// Ids absent from a returned map do not exist.
type RecordStore interface {
	// ExperimentACLs returns the principal ids with read access per experiment.
	ExperimentACLs(ctx context.Context, experimentIDs []string) (map[string][]string, error)
	// ParentExperiments returns the experiments each dataset belongs to.
	ParentExperiments(ctx context.Context, datasetIDs []string) (map[string][]string, error)
	// OwningDatasets returns the dataset each datafile belongs to.
	OwningDatasets(ctx context.Context, datafileIDs []string) (map[string]string, error)
}

// Resolver decides read access for a batch of entity ids.
type Resolver interface {
	Resolve(ctx context.Context, p domain.Principal, ids map[domain.EntityType][]string) (Decisions, error)
}
