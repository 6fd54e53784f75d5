package tardissearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs            []string
	password         string
	readinessTimeout time.Duration

	location        *time.Location
	timeZone        string
	keyPrefix       string
	maxHits         int
	timeout         time.Duration
	publicPrincipal string
	indexes         map[EntityType]string

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = append(c.addrs, addrs...)
	})
}

// WithPassword sets the Redis password.
func WithPassword(password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.password = password
	})
}

// WithReadinessTimeout bounds how long New waits for Redis. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithTimeZone sets the IANA time zone calendar dates are evaluated in.
// Default: UTC.
func WithTimeZone(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeZone = name
	})
}

// WithLocation is WithTimeZone for an already loaded location.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithKeyPrefix sets the prefix of every Redis key. Default: "tardis:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMaxHits caps the hits fetched per index. Default: 1000.
func WithMaxHits(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxHits = n
	})
}

// WithTimeout bounds each engine round trip. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithPublicPrincipal names the ACL entry that grants read access to everyone.
func WithPublicPrincipal(principal string) Option {
	return optionFunc(func(c *clientConfig) {
		c.publicPrincipal = principal
	})
}

// WithIndex overrides the engine index name of an entity type.
func WithIndex(t EntityType, name string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.indexes == nil {
			c.indexes = make(map[EntityType]string)
		}
		c.indexes[t] = name
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
