package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/query"
	"github.com/kailas-cloud/tardis-search/internal/logger"
	"github.com/kailas-cloud/tardis-search/internal/metrics"
)

// InstrumentedEngine wraps Engine with duration metrics and error logging.
type InstrumentedEngine struct {
	inner Engine
}

// NewInstrumentedEngine wraps an engine with observability.
func NewInstrumentedEngine(inner Engine) *InstrumentedEngine {
	return &InstrumentedEngine{inner: inner}
}

// MultiSearch delegates to the inner engine and records the outcome.
func (e *InstrumentedEngine) MultiSearch(ctx context.Context, qs []query.Query) ([]hit.Raw, error) {
	start := time.Now()
	hits, err := e.inner.MultiSearch(ctx, qs)
	elapsed := time.Since(start)

	status := "ok"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		status = "timeout"
	case errors.Is(err, context.Canceled):
		status = "canceled"
	case err != nil:
		status = "error"
	}

	metrics.EngineRequestDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	metrics.EngineSubQueries.Observe(float64(len(qs)))

	if err != nil {
		fields := []zap.Field{
			zap.Int("queries", len(qs)),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		}
		if status == "canceled" {
			logger.FromContext(ctx).Debug("search engine dispatch canceled", fields...)
		} else {
			logger.FromContext(ctx).Warn("search engine dispatch failed", fields...)
		}
		return nil, err
	}
	return hits, nil
}
