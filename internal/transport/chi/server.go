package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/hit"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/request"
	"github.com/kailas-cloud/tardis-search/internal/logger"
	healthuc "github.com/kailas-cloud/tardis-search/internal/usecase/health"
)

// maxBodyBytes caps the advanced search request body.
const maxBodyBytes = 64 << 10

// statusClientClosedRequest is written when the caller cancels mid-search.
const statusClientClosedRequest = 499

// Searcher is the search use case as seen by the HTTP layer.
type Searcher interface {
	Simple(ctx context.Context, text string, p domain.Principal) (hit.Buckets, error)
	Advanced(ctx context.Context, req request.Advanced, p domain.Principal) (hit.Buckets, error)
	DateConverter() request.DateConverter
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the search API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrEngineTimeout, http.StatusGatewayTimeout, ErrorResponseCodeEngineTimeout),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, ErrorResponseCodeEngineUnavailable),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/api/v1/simple-search", s.SimpleSearch)
	r.Post("/api/v1/simple-search", s.SimpleSearch)
	r.Post("/api/v1/advance-search", s.AdvancedSearch)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SimpleSearch handles GET|POST /api/v1/simple-search?query=...
func (s *Server) SimpleSearch(w http.ResponseWriter, r *http.Request) {
	var query string
	if err := runtime.BindQueryParameter("form", true, false, "query", r.URL.Query(), &query); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter query")
		return
	}
	if query == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Missing query parameter")
		return
	}

	out, err := s.search.Simple(r.Context(), query, PrincipalFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// AdvancedSearch handles POST /api/v1/advance-search.
func (s *Server) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var body AdvancedSearchRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := request.ParseAdvanced(
		body.Text, body.TypeTag,
		deref(body.StartDate), deref(body.EndDate),
		body.InstrumentList, s.search.DateConverter(),
	)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out, err := s.search.Advanced(r.Context(), req, PrincipalFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Invalid requests keep their detail; engine faults only name the sentinel.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	for _, s := range []error{domain.ErrEngineTimeout, domain.ErrEngineUnavailable} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	if errors.Is(err, context.Canceled) {
		log.Debug("search canceled by client", zap.Error(err))
		writeError(w, statusClientClosedRequest, ErrorResponseCodeCanceled, "request canceled")
		return
	}
	if errors.Is(err, domain.ErrInvalidRequest) {
		log.Debug("invalid request", zap.Error(err))
	} else {
		log.Warn("search failed", zap.Error(err))
	}

	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, msg)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
