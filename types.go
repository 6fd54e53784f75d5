package tardissearch

import (
	"time"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
)

// EntityType is one of the three searchable record kinds.
type EntityType = domain.EntityType

// Entity types.
const (
	Experiment = domain.Experiment
	Dataset    = domain.Dataset
	Datafile   = domain.Datafile
)

// Hit is one visible search result.
type Hit struct {
	Index  string
	ID     string
	Score  float64
	Fields map[string]string
}

// Results holds the visible hits of a search, bucketed by entity type in
// engine order.
type Results struct {
	Experiments []Hit
	Datasets    []Hit
	Datafiles   []Hit
}

// Len returns the total number of hits.
func (r Results) Len() int {
	return len(r.Experiments) + len(r.Datasets) + len(r.Datafiles)
}

// AdvancedQuery narrows a search by entity type, creation date and instrument.
type AdvancedQuery struct {
	// Text is matched against each type's primary field. Blank matches all.
	Text string
	// Types lists the entity types to search. Empty searches nothing.
	Types []EntityType
	// From and To bound the creation date, inclusive, as calendar dates in
	// the client time zone. The range applies only when both are set.
	From, To time.Time
	// Instruments restricts dataset hits to these instrument names.
	Instruments []string
}

func fromBuckets(b hit.Buckets) Results {
	return Results{
		Experiments: fromRaw(b.Experiments),
		Datasets:    fromRaw(b.Datasets),
		Datafiles:   fromRaw(b.Datafiles),
	}
}

func fromRaw(in []hit.Raw) []Hit {
	out := make([]Hit, len(in))
	for i, h := range in {
		out[i] = Hit{Index: h.Index, ID: h.ID, Score: h.Score, Fields: h.Fields}
	}
	return out
}
