package access

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/logger"
	"github.com/kailas-cloud/tardis-search/internal/metrics"
)

// Filter drops hits the principal may not read.
type Filter struct {
	policy Resolver
}

// NewFilter creates a Filter backed by the given resolver.
func NewFilter(policy Resolver) *Filter {
	return &Filter{policy: policy}
}

// Apply resolves every distinct id once, then filters each bucket in place
// order. The result always has all three buckets.
func (f *Filter) Apply(ctx context.Context, b hit.Buckets, principal domain.Principal) (hit.Buckets, error) {
	out := hit.NewBuckets()
	if b.Len() == 0 {
		return out, nil
	}

	ids := make(map[domain.EntityType][]string, len(domain.EntityTypes))
	for _, t := range domain.EntityTypes {
		for _, h := range b.Of(t) {
			ids[t] = append(ids[t], h.ID)
		}
	}

	decisions, err := f.policy.Resolve(ctx, principal, ids)
	if err != nil {
		return hit.Buckets{}, fmt.Errorf("resolve access: %w", err)
	}

	for _, t := range domain.EntityTypes {
		var kept, denied int
		for _, h := range b.Of(t) {
			if decisions.Allowed(t, h.ID) {
				out.Append(t, h)
				kept++
			} else {
				denied++
			}
		}
		if kept > 0 {
			metrics.AccessDecisionsTotal.WithLabelValues(t.RecordName(), "allow").Add(float64(kept))
		}
		if denied > 0 {
			metrics.AccessDecisionsTotal.WithLabelValues(t.RecordName(), "deny").Add(float64(denied))
		}
	}

	logger.FromContext(ctx).Debug("access filter applied",
		zap.Int("hits_in", b.Len()),
		zap.Int("hits_out", out.Len()),
	)
	return out, nil
}
