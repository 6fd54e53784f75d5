package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/logger"
	"github.com/kailas-cloud/tardis-search/internal/metrics"
)

// Classifier buckets hits by the entity type of their source index.
type Classifier struct {
	byIndex map[string]domain.EntityType
}

// NewClassifier creates a Classifier for the given index table.
func NewClassifier(indexes map[domain.EntityType]string) *Classifier {
	byIndex := make(map[string]domain.EntityType, len(indexes))
	for t, name := range indexes {
		byIndex[name] = t
	}
	return &Classifier{byIndex: byIndex}
}

// Classify keeps engine order within each bucket. Hits from unmapped
// indexes are dropped.
func (c *Classifier) Classify(ctx context.Context, hits []hit.Raw) hit.Buckets {
	b := hit.NewBuckets()
	for _, h := range hits {
		t, ok := c.byIndex[h.Index]
		if !ok {
			metrics.UnknownIndexHitsTotal.WithLabelValues(h.Index).Inc()
			logger.FromContext(ctx).Debug("dropping hit from unknown index",
				zap.String("index", h.Index),
				zap.String("id", h.ID),
			)
			continue
		}
		b.Append(t, h)
	}
	return b
}
