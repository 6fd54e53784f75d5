package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/query"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/request"
	"github.com/kailas-cloud/tardis-search/internal/logger"
)

// DefaultTimeout bounds a single batched engine dispatch.
const DefaultTimeout = 10 * time.Second

// Config configures the search service.
type Config struct {
	Planner PlannerConfig
	// Timeout bounds the engine dispatch. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Service runs the search pipeline: plan, dispatch, classify, filter.
type Service struct {
	planner    *Planner
	classifier *Classifier
	engine     Engine
	access     AccessFilter
	timeout    time.Duration
}

// New creates a search service.
func New(engine Engine, access AccessFilter, cfg Config) *Service {
	planner := NewPlanner(cfg.Planner)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		planner:    planner,
		classifier: NewClassifier(planner.Config().Indexes),
		engine:     engine,
		access:     access,
		timeout:    timeout,
	}
}

// DateConverter returns the converter for API timestamps in the deployment zone.
func (s *Service) DateConverter() request.DateConverter {
	return s.planner.DateConverter()
}

// Simple searches every index for text. Blank text is ErrInvalidRequest.
func (s *Service) Simple(ctx context.Context, text string, p domain.Principal) (hit.Buckets, error) {
	req, err := request.NewSimple(text)
	if err != nil {
		return hit.Buckets{}, err
	}
	return s.run(ctx, "simple", s.planner.PlanSimple(req), p)
}

// Advanced searches the requested indexes with optional date and instrument constraints.
func (s *Service) Advanced(ctx context.Context, req request.Advanced, p domain.Principal) (hit.Buckets, error) {
	qs, err := s.planner.PlanAdvanced(req)
	if err != nil {
		return hit.Buckets{}, err
	}
	return s.run(ctx, "advanced", qs, p)
}

func (s *Service) run(ctx context.Context, kind string, qs []query.Query, p domain.Principal) (hit.Buckets, error) {
	if len(qs) == 0 {
		return hit.NewBuckets(), nil
	}

	raw, err := s.dispatch(ctx, qs)
	if err != nil {
		return hit.Buckets{}, err
	}

	classified := s.classifier.Classify(ctx, raw)

	out, err := s.access.Apply(ctx, classified, p)
	if err != nil {
		return hit.Buckets{}, fmt.Errorf("filter %s search: %w", kind, err)
	}

	logger.FromContext(ctx).Debug("search completed",
		zap.String("kind", kind),
		zap.Int("queries", len(qs)),
		zap.Int("raw_hits", len(raw)),
		zap.Int("experiments", len(out.Experiments)),
		zap.Int("datasets", len(out.Datasets)),
		zap.Int("datafiles", len(out.Datafiles)),
	)
	return out, nil
}

// dispatch sends all queries in one engine call under the configured timeout.
// No retries.
func (s *Service) dispatch(ctx context.Context, qs []query.Query) ([]hit.Raw, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.engine.MultiSearch(ctx, qs)
	if err == nil {
		return raw, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineTimeout, err)
	}
	// The caller went away; the engine is not at fault.
	if errors.Is(err, context.Canceled) {
		return nil, fmt.Errorf("search canceled: %w", err)
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
}
