package metrics

import (
	"strconv"
	"time"

	"github.com/delaneyj/copysignals/reactive"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config configures the Prometheus recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "copysignals").
	Namespace string

	// Subsystem is the metrics subsystem (default: "reactive").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for effect duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

type Option func(*Config)

func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "copysignals",
		Subsystem: "reactive",
		// effects are expected to run in microseconds
		Buckets:  prometheus.ExponentialBuckets(1e-6, 4, 10),
		Registry: prometheus.DefaultRegisterer,
	}
}

// Prometheus records runtime activity. Pass it to reactive.WithMetrics.
type Prometheus struct {
	signalWrites       prometheus.Counter
	effectRuns         prometheus.Counter
	effectDuration     prometheus.Histogram
	selectorRecomputes *prometheus.CounterVec
	updatesScheduled   prometheus.Counter
	staleEffects       prometheus.Counter
}

var _ reactive.Metrics = (*Prometheus)(nil)

// NewPrometheus registers the collectors with the configured registry. It
// panics if they are already registered there, as promauto does.
//
// Metrics collected:
//   - copysignals_reactive_signal_writes_total
//   - copysignals_reactive_effect_runs_total
//   - copysignals_reactive_effect_duration_seconds
//   - copysignals_reactive_selector_recomputes_total{changed}
//   - copysignals_reactive_updates_scheduled_total
//   - copysignals_reactive_stale_effects_total
func NewPrometheus(opts ...Option) *Prometheus {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Prometheus{
		signalWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of committed signal writes",
			ConstLabels: config.ConstLabels,
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect runs, selectors included",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		selectorRecomputes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "selector_recomputes_total",
			Help:        "Total selector recomputations by whether the value changed",
			ConstLabels: config.ConstLabels,
		}, []string{"changed"}),

		updatesScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_scheduled_total",
			Help:        "Total number of updates handed to the host",
			ConstLabels: config.ConstLabels,
		}),

		staleEffects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stale_effects_total",
			Help:        "Total number of queued effects skipped because their scope was dropped",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (p *Prometheus) SignalWritten() {
	p.signalWrites.Inc()
}

func (p *Prometheus) EffectRan(d time.Duration) {
	p.effectRuns.Inc()
	p.effectDuration.Observe(d.Seconds())
}

func (p *Prometheus) SelectorRecomputed(changed bool) {
	p.selectorRecomputes.WithLabelValues(strconv.FormatBool(changed)).Inc()
}

func (p *Prometheus) UpdateScheduled() {
	p.updatesScheduled.Inc()
}

func (p *Prometheus) StaleEffectSkipped() {
	p.staleEffects.Inc()
}
