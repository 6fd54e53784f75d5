package records

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// store is the consumer interface for record lookups (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SMembersMulti(ctx context.Context, keys []string) ([][]string, error)
}

// Record key suffixes and fields.
const (
	aclSuffix         = ":acl"
	experimentsSuffix = ":experiments"
	datasetField      = "dataset"
)

// Repo implements usecase/access.RecordStore over Redis hashes and sets:
//
//	{prefix}experiment:{id}              hash, record exists
//	{prefix}experiment:{id}:acl          set of principal ids
//	{prefix}dataset:{id}                 hash, record exists
//	{prefix}dataset:{id}:experiments     set of experiment ids
//	{prefix}datafile:{id}                hash with field "dataset"
type Repo struct {
	store  store
	prefix string
}

// New creates a records repository.
func New(s store, keyPrefix string) *Repo {
	if keyPrefix == "" {
		keyPrefix = domain.DefaultKeyPrefix
	}
	return &Repo{store: s, prefix: keyPrefix}
}

// ExperimentACLs returns the ACL principals of every existing experiment.
func (r *Repo) ExperimentACLs(ctx context.Context, ids []string) (map[string][]string, error) {
	return r.existingSets(ctx, domain.Experiment, ids, aclSuffix)
}

// ParentExperiments returns the parent experiments of every existing dataset.
func (r *Repo) ParentExperiments(ctx context.Context, ids []string) (map[string][]string, error) {
	return r.existingSets(ctx, domain.Dataset, ids, experimentsSuffix)
}

// OwningDatasets returns the owning dataset of every existing datafile.
// A datafile hash without a dataset field counts as missing.
func (r *Repo) OwningDatasets(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, r.keys(domain.Datafile, ids, ""))
	if err != nil {
		return nil, fmt.Errorf("load datafiles: %w", err)
	}

	for i, h := range hashes {
		if ds := h[datasetField]; ds != "" {
			out[ids[i]] = ds
		}
	}
	return out, nil
}

// existingSets checks record existence with one HGETALL batch, then reads
// the set under suffix for the records that exist with one SMEMBERS batch.
func (r *Repo) existingSets(
	ctx context.Context, t domain.EntityType, ids []string, suffix string,
) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, r.keys(t, ids, ""))
	if err != nil {
		return nil, fmt.Errorf("load %ss: %w", t.RecordName(), err)
	}

	existing := make([]string, 0, len(ids))
	for i, h := range hashes {
		if len(h) > 0 {
			existing = append(existing, ids[i])
		}
	}
	if len(existing) == 0 {
		return out, nil
	}

	sets, err := r.store.SMembersMulti(ctx, r.keys(t, existing, suffix))
	if err != nil {
		return nil, fmt.Errorf("load %s%s: %w", t.RecordName(), suffix, err)
	}
	for i, members := range sets {
		if members == nil {
			members = []string{}
		}
		out[existing[i]] = members
	}
	return out, nil
}

func (r *Repo) keys(t domain.EntityType, ids []string, suffix string) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = domain.RecordKey(r.prefix, t, id) + suffix
	}
	return keys
}
