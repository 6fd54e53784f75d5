package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/tardis-search/internal/domain"
)

// MaxQueryLength is the maximum allowed search text length.
const MaxQueryLength = 4096

// Simple is a validated multi-field text search.
type Simple struct {
	text string
}

// NewSimple validates the query text. Blank text is rejected.
func NewSimple(text string) (Simple, error) {
	if err := validateText(text); err != nil {
		return Simple{}, err
	}
	return Simple{text: text}, nil
}

// Text returns the query text.
func (s Simple) Text() string { return s.text }

// Advanced is a validated per-type search with optional date and instrument constraints.
type Advanced struct {
	text        string
	entityTypes []domain.EntityType
	dates       *DateRange
	instruments []string
}

// NewAdvanced validates an advanced query.
// Entity types are deduplicated and put in canonical order.
// A nil dates means no date constraint.
func NewAdvanced(text string, types []domain.EntityType, dates *DateRange, instruments []string) (Advanced, error) {
	if len(text) > MaxQueryLength {
		return Advanced{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}

	requested := make(map[domain.EntityType]bool, len(types))
	for _, t := range types {
		if !t.IsValid() {
			return Advanced{}, fmt.Errorf("%w: invalid entity type %d", domain.ErrInvalidRequest, int(t))
		}
		requested[t] = true
	}
	ordered := make([]domain.EntityType, 0, len(requested))
	for _, t := range domain.EntityTypes {
		if requested[t] {
			ordered = append(ordered, t)
		}
	}

	var names []string
	for _, n := range instruments {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}

	return Advanced{text: text, entityTypes: ordered, dates: dates, instruments: names}, nil
}

// ParseAdvanced builds an Advanced query from raw API input: type tags and
// optional UTC timestamps. Dates are converted with ToLocalRange.
func ParseAdvanced(text string, tags []string, start, end string, instruments []string, conv DateConverter) (Advanced, error) {
	types := make([]domain.EntityType, 0, len(tags))
	for _, tag := range tags {
		t, err := domain.ParseEntityType(tag)
		if err != nil {
			return Advanced{}, err
		}
		types = append(types, t)
	}

	dates, err := conv.ToLocalRange(start, end)
	if err != nil {
		return Advanced{}, err
	}

	return NewAdvanced(text, types, dates, instruments)
}

// Text returns the query text.
func (a Advanced) Text() string { return a.text }

// EntityTypes returns the requested types in canonical order.
func (a Advanced) EntityTypes() []domain.EntityType { return a.entityTypes }

// Dates returns the date constraint (nil when absent).
func (a Advanced) Dates() *DateRange { return a.dates }

// Instruments returns the non-blank instrument names in request order.
func (a Advanced) Instruments() []string { return a.instruments }

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: query text is required", domain.ErrInvalidRequest)
	}
	if len(text) > MaxQueryLength {
		return fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	return nil
}
