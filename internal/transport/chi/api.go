package chi

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// API error codes.
const (
	ErrorResponseCodeBadRequest        ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized      ErrorResponseCode = "unauthorized"
	ErrorResponseCodeEngineTimeout     ErrorResponseCode = "engine_timeout"
	ErrorResponseCodeEngineUnavailable ErrorResponseCode = "engine_unavailable"
	ErrorResponseCodeInternalError     ErrorResponseCode = "internal_error"
	ErrorResponseCodeCanceled          ErrorResponseCode = "canceled"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// AdvancedSearchRequest is the body of POST /api/v1/advance-search.
type AdvancedSearchRequest struct {
	Text           string   `json:"text"`
	TypeTag        []string `json:"TypeTag"`
	StartDate      *string  `json:"StartDate,omitempty"`
	EndDate        *string  `json:"EndDate,omitempty"`
	InstrumentList []string `json:"InstrumentList,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
