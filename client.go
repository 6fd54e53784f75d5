package tardissearch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/tardis-search/internal/db"
	dbRedis "github.com/kailas-cloud/tardis-search/internal/db/redis"
	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/tardis-search/internal/logger"
	indexrepo "github.com/kailas-cloud/tardis-search/internal/repository/index"
	recordsrepo "github.com/kailas-cloud/tardis-search/internal/repository/records"
	searchrepo "github.com/kailas-cloud/tardis-search/internal/repository/search"
	accessuc "github.com/kailas-cloud/tardis-search/internal/usecase/access"
	searchuc "github.com/kailas-cloud/tardis-search/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the tardis-search entry point.
type Client struct {
	store     db.Store
	searchSvc *searchuc.Service
	indexes   *indexrepo.Manager
	location  *time.Location
	obs       *observer
}

// New creates a Client and connects to Redis.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{readinessTimeout: defaultReadinessTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("tardissearch: redis address required (use WithRedis)")
	}
	if err := cfg.resolveLocation(); err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("tardissearch: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("tardissearch: redis not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func (c *clientConfig) resolveLocation() error {
	if c.location != nil {
		return nil
	}
	if c.timeZone == "" {
		c.location = time.UTC
		return nil
	}
	loc, err := time.LoadLocation(c.timeZone)
	if err != nil {
		return fmt.Errorf("tardissearch: load time zone %q: %w", c.timeZone, err)
	}
	c.location = loc
	return nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	plannerCfg := searchuc.NewPlanner(searchuc.PlannerConfig{
		Location: cfg.location,
		Indexes:  cfg.indexes,
	}).Config()

	engine := searchuc.NewInstrumentedEngine(searchrepo.New(store, cfg.keyPrefix, cfg.maxHits))
	records := recordsrepo.New(store, cfg.keyPrefix)
	filter := accessuc.NewFilter(accessuc.NewPolicy(records, cfg.publicPrincipal))

	return &Client{
		store: store,
		searchSvc: searchuc.New(engine, filter, searchuc.Config{
			Planner: plannerCfg,
			Timeout: cfg.timeout,
		}),
		indexes: indexrepo.New(store, cfg.keyPrefix, indexrepo.Layout{
			Indexes:         plannerCfg.Indexes,
			TextFields:      plannerCfg.TextFields,
			InstrumentField: plannerCfg.InstrumentField,
			DateField:       plannerCfg.DateField,
		}),
		location: plannerCfg.Location,
		obs:      obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureIndexes creates every missing search index and returns the names
// of the ones it created.
func (c *Client) EnsureIndexes(ctx context.Context) (created []string, err error) {
	defer func(start time.Time) { c.obs.observe("ensure_indexes", start, err) }(time.Now())

	created, err = c.indexes.Ensure(c.withLogger(ctx))
	if err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return created, nil
}

// Search matches text against every entity type and returns the hits
// principal may read. An empty principal is anonymous.
func (c *Client) Search(ctx context.Context, principal, text string) (res Results, err error) {
	defer func(start time.Time) { c.obs.observe("search", start, err) }(time.Now())

	b, err := c.searchSvc.Simple(c.withLogger(ctx), text, domain.Principal{ID: principal})
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	return fromBuckets(b), nil
}

// AdvancedSearch runs q and returns the hits principal may read.
func (c *Client) AdvancedSearch(ctx context.Context, principal string, q AdvancedQuery) (res Results, err error) {
	defer func(start time.Time) { c.obs.observe("advanced_search", start, err) }(time.Now())

	req, err := c.toRequest(q)
	if err != nil {
		return Results{}, fmt.Errorf("advanced search: %w", err)
	}

	b, err := c.searchSvc.Advanced(c.withLogger(ctx), req, domain.Principal{ID: principal})
	if err != nil {
		return Results{}, fmt.Errorf("advanced search: %w", err)
	}
	return fromBuckets(b), nil
}

func (c *Client) toRequest(q AdvancedQuery) (request.Advanced, error) {
	var dates *request.DateRange
	if !q.From.IsZero() && !q.To.IsZero() {
		dates = &request.DateRange{
			Start: request.LocalDate(q.From, c.location),
			End:   request.LocalDate(q.To, c.location),
		}
	}
	return request.NewAdvanced(q.Text, q.Types, dates, q.Instruments)
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	if c.obs == nil || c.obs.logger == nil {
		return ctx
	}
	return logpkg.ContextWithLogger(ctx, c.obs.logger)
}
