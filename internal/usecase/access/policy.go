package access

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/logger"
	"github.com/kailas-cloud/tardis-search/internal/metrics"
)

// Decisions holds per-id read decisions for one principal and one request.
type Decisions struct {
	allowed map[domain.EntityType]map[string]bool
}

// Allowed reports whether id of type t is readable. Unknown ids are denied.
func (d Decisions) Allowed(t domain.EntityType, id string) bool {
	return d.allowed[t][id]
}

// Policy answers read-access questions over the experiment ACL graph:
// a datafile is readable through its dataset, a dataset through any of its
// experiments, an experiment through its ACL.
type Policy struct {
	records RecordStore
	public  string
}

// NewPolicy creates a Policy. publicPrincipal, when non-empty, is an ACL
// entry that grants read access to every principal.
func NewPolicy(records RecordStore, publicPrincipal string) *Policy {
	return &Policy{records: records, public: publicPrincipal}
}

// CanRead decides access for a single entity.
func (p *Policy) CanRead(ctx context.Context, t domain.EntityType, id string, principal domain.Principal) (bool, error) {
	d, err := p.Resolve(ctx, principal, map[domain.EntityType][]string{t: {id}})
	if err != nil {
		return false, err
	}
	return d.Allowed(t, id), nil
}

// graph is the slice of the permission graph fetched for one Resolve call.
type graph struct {
	acls     map[string][]string
	parents  map[string][]string
	owning   map[string]string
	stale    map[domain.EntityType]map[string]bool
	resolved map[domain.EntityType]map[string]bool
}

// Resolve decides access for every id with one batched lookup per hop.
// Missing records are denied. Store failures are returned as errors.
func (p *Policy) Resolve(
	ctx context.Context, principal domain.Principal, ids map[domain.EntityType][]string,
) (Decisions, error) {
	experimentIDs := distinct(ids[domain.Experiment])
	datasetIDs := distinct(ids[domain.Dataset])
	datafileIDs := distinct(ids[domain.Datafile])

	g := &graph{
		acls:    map[string][]string{},
		parents: map[string][]string{},
		owning:  map[string]string{},
	}

	// Hop 1: the three independent lookups.
	eg, egCtx := errgroup.WithContext(ctx)
	if len(datafileIDs) > 0 {
		eg.Go(func() error {
			m, err := p.records.OwningDatasets(egCtx, datafileIDs)
			if err != nil {
				return fmt.Errorf("owning datasets: %w", err)
			}
			g.owning = m
			return nil
		})
	}
	if len(datasetIDs) > 0 {
		eg.Go(func() error {
			m, err := p.records.ParentExperiments(egCtx, datasetIDs)
			if err != nil {
				return fmt.Errorf("parent experiments: %w", err)
			}
			g.parents = m
			return nil
		})
	}
	if len(experimentIDs) > 0 {
		eg.Go(func() error {
			m, err := p.records.ExperimentACLs(egCtx, experimentIDs)
			if err != nil {
				return fmt.Errorf("experiment acls: %w", err)
			}
			g.acls = m
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Decisions{}, err
	}

	// Hop 2: datasets reached only through datafiles.
	var extraDatasets []string
	for _, ds := range g.owning {
		if _, ok := g.parents[ds]; !ok {
			extraDatasets = append(extraDatasets, ds)
		}
	}
	if extraDatasets = distinct(extraDatasets); len(extraDatasets) > 0 {
		m, err := p.records.ParentExperiments(ctx, extraDatasets)
		if err != nil {
			return Decisions{}, fmt.Errorf("parent experiments: %w", err)
		}
		for k, v := range m {
			g.parents[k] = v
		}
	}

	// Hop 3: experiments reached only through datasets.
	var extraExperiments []string
	for _, exps := range g.parents {
		for _, e := range exps {
			if _, ok := g.acls[e]; !ok {
				extraExperiments = append(extraExperiments, e)
			}
		}
	}
	if extraExperiments = distinct(extraExperiments); len(extraExperiments) > 0 {
		m, err := p.records.ExperimentACLs(ctx, extraExperiments)
		if err != nil {
			return Decisions{}, fmt.Errorf("experiment acls: %w", err)
		}
		for k, v := range m {
			g.acls[k] = v
		}
	}

	d := Decisions{allowed: make(map[domain.EntityType]map[string]bool, len(domain.EntityTypes))}
	for _, t := range domain.EntityTypes {
		d.allowed[t] = map[string]bool{}
	}
	for _, id := range experimentIDs {
		d.allowed[domain.Experiment][id] = p.experimentReadable(g, id, principal)
	}
	for _, id := range datasetIDs {
		d.allowed[domain.Dataset][id] = p.datasetReadable(g, id, principal)
	}
	for _, id := range datafileIDs {
		d.allowed[domain.Datafile][id] = p.datafileReadable(g, id, principal)
	}

	p.reportStale(ctx, g)
	return d, nil
}

func (p *Policy) experimentReadable(g *graph, id string, principal domain.Principal) bool {
	acl, ok := g.acls[id]
	if !ok {
		g.markStale(domain.Experiment, id)
		return false
	}
	for _, entry := range acl {
		if entry == "" {
			continue
		}
		if entry == principal.ID || (p.public != "" && entry == p.public) {
			return true
		}
	}
	return false
}

func (p *Policy) datasetReadable(g *graph, id string, principal domain.Principal) bool {
	exps, ok := g.parents[id]
	if !ok {
		g.markStale(domain.Dataset, id)
		return false
	}
	for _, e := range exps {
		if p.experimentReadable(g, e, principal) {
			return true
		}
	}
	return false
}

func (p *Policy) datafileReadable(g *graph, id string, principal domain.Principal) bool {
	ds, ok := g.owning[id]
	if !ok {
		g.markStale(domain.Datafile, id)
		return false
	}
	return p.datasetReadable(g, ds, principal)
}

func (g *graph) markStale(t domain.EntityType, id string) {
	if g.stale == nil {
		g.stale = map[domain.EntityType]map[string]bool{}
	}
	if g.stale[t] == nil {
		g.stale[t] = map[string]bool{}
	}
	g.stale[t][id] = true
}

func (p *Policy) reportStale(ctx context.Context, g *graph) {
	if len(g.stale) == 0 {
		return
	}
	log := logger.FromContext(ctx)
	for _, t := range domain.EntityTypes {
		ids := g.stale[t]
		if len(ids) == 0 {
			continue
		}
		metrics.StaleReferencesTotal.WithLabelValues(t.RecordName()).Add(float64(len(ids)))
		log.Debug("stale references denied",
			zap.String("entity_type", t.RecordName()),
			zap.Strings("ids", sortedKeys(ids)),
		)
	}
}

// distinct returns ids without duplicates or blanks, in first-seen order.
func distinct(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
