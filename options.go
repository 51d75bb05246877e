package docsearch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Backend drivers.
const (
	driverElastic = "elastic"
	driverRedis   = "redis"
	driverMemory  = "memory"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    string // "elastic", "redis" or "memory"
	addrs     []string
	username  string
	password  string
	keyPrefix string
	docs      []Document

	index            string
	timeout          time.Duration
	readinessTimeout time.Duration
	breaker          *BreakerSettings

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// BreakerSettings tune the circuit breaker around the backend.
type BreakerSettings struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// WithElastic configures the client to query an Elasticsearch cluster.
func WithElastic(urls ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverElastic
		c.addrs = urls
	})
}

// WithBasicAuth sets credentials for the Elasticsearch or Redis backend.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithRedis configures the client to query a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix stripped from hit ids.
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithMemory configures an in-process index holding docs.
func WithMemory(docs ...Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.docs = append(c.docs, docs...)
	})
}

// WithIndex sets the index name. Default: "docsearch".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithTimeout bounds each search. Default: 5s. Zero disables the deadline.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithReadinessTimeout bounds how long New waits for a network backend. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithBreaker wraps the backend in a circuit breaker.
func WithBreaker(s BreakerSettings) Option {
	return optionFunc(func(c *clientConfig) {
		c.breaker = &s
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (search counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
