package partkv

// options.go defines the functional options accepted by New: an
// unexported config struct with sensible defaults, populated by Option
// closures, validated once in applyOptions.
//
// © 2025 partkv authors. MIT License.

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Variant selects one of the four store concurrency/storage models.
type Variant int

const (
	// VariantSoft is a single shared engine with per-shard striped locks.
	VariantSoft Variant = iota
	// VariantHard is one engine per shard, each with its own lock.
	VariantHard
	// VariantSoftThreaded is a single shared engine served by per-shard
	// worker goroutines instead of locks.
	VariantSoftThreaded
	// VariantHardThreaded combines per-shard engines with per-shard
	// worker goroutines.
	VariantHardThreaded
)

func (v Variant) String() string {
	switch v {
	case VariantSoft:
		return "soft"
	case VariantHard:
		return "hard"
	case VariantSoftThreaded:
		return "soft-threaded"
	case VariantHardThreaded:
		return "hard-threaded"
	default:
		return "unknown"
	}
}

func (v Variant) threaded() bool {
	return v == VariantSoftThreaded || v == VariantHardThreaded
}

func (v Variant) hard() bool {
	return v == VariantHard || v == VariantHardThreaded
}

// Option configures a Store at construction time.
type Option func(*config)

type config struct {
	paths               []string
	trackingDuration    time.Duration
	repartitionInterval time.Duration
	logger              *zap.Logger
	registry            *prometheus.Registry
	queueCapacity       int
}

func defaultConfig() *config {
	return &config{
		logger: zap.NewNop(),
	}
}

// WithPaths sets the on-disk directories Hard variants round-robin their
// per-shard Badger engines across. Soft variants open their single
// Badger engine under the first path. With no paths, every variant uses
// in-memory engines.
func WithPaths(paths []string) Option {
	return func(c *config) {
		c.paths = append([]string(nil), paths...)
	}
}

// WithTrackingDuration sets how long each repartition cycle leaves
// tracking enabled before requesting a new partition.
func WithTrackingDuration(d time.Duration) Option {
	return func(c *config) { c.trackingDuration = d }
}

// WithRepartitionInterval sets the sleep between repartition cycles.
// Auto-repartitioning only fires when both this and WithTrackingDuration
// are set to positive durations and partitionCount > 1.
func WithRepartitionInterval(d time.Duration) Option {
	return func(c *config) { c.repartitionInterval = d }
}

// WithLogger plugs an external zap.Logger. The store never logs on the
// read/write/scan hot path; only slow/rare events are emitted (repartition
// round completion or failure, partitioner failure, failure to allocate a
// new engine level).
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics collection. Passing nil disables
// metrics (the default).
func WithMetrics(reg *prometheus.Registry) Option {
	return func(c *config) { c.registry = reg }
}

// WithQueueCapacity overrides the per-worker ingress queue capacity used
// by threaded variants (default worker.DefaultQueueCapacity).
func WithQueueCapacity(n int) Option {
	return func(c *config) { c.queueCapacity = n }
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
