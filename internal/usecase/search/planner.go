package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/filter"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/query"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/request"
)

// Default engine index names per entity type.
const (
	DefaultExperimentIndex = "experiments"
	DefaultDatasetIndex    = "dataset"
	DefaultDatafileIndex   = "datafile"
)

// Default document field names.
const (
	DefaultInstrumentField = "instrument_name"
	DefaultDateField       = "created_time"
)

// PlannerConfig holds the deployment settings the planner depends on.
type PlannerConfig struct {
	// Location is the deployment time zone used for calendar dates.
	Location *time.Location
	// Indexes maps each entity type to its engine index.
	Indexes map[domain.EntityType]string
	// TextFields maps each entity type to the field its text is matched on.
	TextFields      map[domain.EntityType]string
	InstrumentField string
	DateField       string
}

// DefaultPlannerConfig returns the stock index and field layout in UTC.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		Location: time.UTC,
		Indexes: map[domain.EntityType]string{
			domain.Experiment: DefaultExperimentIndex,
			domain.Dataset:    DefaultDatasetIndex,
			domain.Datafile:   DefaultDatafileIndex,
		},
		TextFields: map[domain.EntityType]string{
			domain.Experiment: "title",
			domain.Dataset:    "description",
			domain.Datafile:   "filename",
		},
		InstrumentField: DefaultInstrumentField,
		DateField:       DefaultDateField,
	}
}

// withDefaults fills unset entries from DefaultPlannerConfig.
func (c PlannerConfig) withDefaults() PlannerConfig {
	def := DefaultPlannerConfig()
	if c.Location == nil {
		c.Location = def.Location
	}
	c.Indexes = mergeDefaults(c.Indexes, def.Indexes)
	c.TextFields = mergeDefaults(c.TextFields, def.TextFields)
	if c.InstrumentField == "" {
		c.InstrumentField = def.InstrumentField
	}
	if c.DateField == "" {
		c.DateField = def.DateField
	}
	return c
}

func mergeDefaults(m, def map[domain.EntityType]string) map[domain.EntityType]string {
	out := make(map[domain.EntityType]string, len(def))
	for t, v := range def {
		out[t] = v
	}
	for t, v := range m {
		if v != "" {
			out[t] = v
		}
	}
	return out
}

// Planner turns validated requests into engine queries.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner creates a Planner. Unset config entries take their defaults.
func NewPlanner(cfg PlannerConfig) *Planner {
	return &Planner{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (p *Planner) Config() PlannerConfig { return p.cfg }

// DateConverter returns a converter bound to the planner's time zone.
func (p *Planner) DateConverter() request.DateConverter {
	return request.DateConverter{Location: p.cfg.Location}
}

// PlanSimple builds one multi-field query over every index.
func (p *Planner) PlanSimple(req request.Simple) []query.Query {
	indexes := make([]string, 0, len(domain.EntityTypes))
	fields := make([]string, 0, len(domain.EntityTypes))
	for _, t := range domain.EntityTypes {
		indexes = append(indexes, p.cfg.Indexes[t])
		fields = append(fields, p.cfg.TextFields[t])
	}
	return []query.Query{{
		Indexes: indexes,
		Fields:  fields,
		Text:    req.Text(),
	}}
}

// PlanAdvanced builds one index-scoped query per requested entity type,
// in canonical order. The date constraint applies only when both bounds
// were given; the instrument constraint applies to datasets only.
// An empty date range (end before start) plans no queries.
func (p *Planner) PlanAdvanced(req request.Advanced) ([]query.Query, error) {
	var base filter.Expression
	if dr := req.Dates(); dr != nil {
		if dr.IsEmpty() {
			return nil, nil
		}
		from, to := dr.Bounds(p.cfg.Location)
		r, err := filter.HalfOpen(float64(from.Unix()), float64(to.Unix()))
		if err != nil {
			return nil, fmt.Errorf("date range: %w", err)
		}
		cond, err := filter.NewRange(p.cfg.DateField, r)
		if err != nil {
			return nil, fmt.Errorf("date filter: %w", err)
		}
		base = base.And(cond)
	}

	qs := make([]query.Query, 0, len(req.EntityTypes()))
	for _, t := range req.EntityTypes() {
		q := query.Query{
			Indexes: []string{p.cfg.Indexes[t]},
			Fields:  []string{p.cfg.TextFields[t]},
			Text:    req.Text(),
			Filters: base,
		}

		if t == domain.Dataset && len(req.Instruments()) > 0 {
			cond, err := filter.NewText(p.cfg.InstrumentField, strings.Join(req.Instruments(), " "))
			if err != nil {
				return nil, fmt.Errorf("instrument filter: %w", err)
			}
			q.Filters = q.Filters.And(cond)
		}

		qs = append(qs, q)
	}
	return qs, nil
}
