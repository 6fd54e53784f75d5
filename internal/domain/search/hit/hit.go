package hit

import (
	"encoding/json"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// Raw is a single engine hit. Fields is opaque beyond Index and ID.
type Raw struct {
	Index  string            `json:"_index"`
	ID     string            `json:"_id"`
	Score  float64           `json:"_score"`
	Fields map[string]string `json:"_source"`
}

// Buckets groups hits per entity type in engine order.
type Buckets struct {
	Experiments []Raw
	Datasets    []Raw
	Datafiles   []Raw
}

// NewBuckets returns three empty buckets.
func NewBuckets() Buckets {
	return Buckets{
		Experiments: []Raw{},
		Datasets:    []Raw{},
		Datafiles:   []Raw{},
	}
}

// Of returns the bucket for t.
func (b *Buckets) Of(t domain.EntityType) []Raw {
	switch t {
	case domain.Experiment:
		return b.Experiments
	case domain.Dataset:
		return b.Datasets
	case domain.Datafile:
		return b.Datafiles
	}
	return nil
}

// Set replaces the bucket for t.
func (b *Buckets) Set(t domain.EntityType, hits []Raw) {
	if hits == nil {
		hits = []Raw{}
	}
	switch t {
	case domain.Experiment:
		b.Experiments = hits
	case domain.Dataset:
		b.Datasets = hits
	case domain.Datafile:
		b.Datafiles = hits
	}
}

// Append adds h to the bucket for t.
func (b *Buckets) Append(t domain.EntityType, h Raw) {
	b.Set(t, append(b.Of(t), h))
}

// Len returns the total number of hits across all buckets.
func (b *Buckets) Len() int {
	return len(b.Experiments) + len(b.Datasets) + len(b.Datafiles)
}

// MarshalJSON always emits all three keys as arrays.
func (b Buckets) MarshalJSON() ([]byte, error) {
	out := make(map[string][]Raw, len(domain.EntityTypes))
	for _, t := range domain.EntityTypes {
		hits := b.Of(t)
		if hits == nil {
			hits = []Raw{}
		}
		out[t.BucketKey()] = hits
	}
	return json.Marshal(out)
}
