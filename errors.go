package tardissearch

import "github.com/kailas-cloud/tardis-search/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrEngineUnavailable = domain.ErrEngineUnavailable
	ErrEngineTimeout     = domain.ErrEngineTimeout
)
