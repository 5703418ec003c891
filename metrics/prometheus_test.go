package metrics_test

import (
	"testing"

	"github.com/delaneyj/copysignals/metrics"
	"github.com/delaneyj/copysignals/reactive"
	"github.com/delaneyj/copysignals/scope"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns every sample of the named family keyed by its label values.
func gather(t *testing.T, reg *prometheus.Registry, name string) map[string]*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	out := map[string]*dto.Metric{}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			key := ""
			for _, l := range m.GetLabel() {
				key += l.GetName() + "=" + l.GetValue()
			}
			out[key] = m
		}
	}
	return out
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, labels string) float64 {
	t.Helper()
	m, ok := gather(t, reg, name)[labels]
	if !ok {
		return 0
	}
	require.NotNil(t, m.Counter, "%s is not a counter", name)
	return m.GetCounter().GetValue()
}

func TestPrometheusRecordsRuntimeActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(metrics.WithRegistry(reg), metrics.WithNamespace("test"))

	tree := scope.NewTree(reactive.WithMetrics(recorder))
	rt := tree.Runtime()
	count := reactive.Signal(rt, 1)

	tree.Mount("app", func(s *scope.Scope) {
		positive := reactive.UseSelector(rt, func() bool { return count.Value() > 0 })
		reactive.UseEffect(rt, func() { positive.Value() })
		count.Value()
	})

	count.SetValue(2)
	count.SetValue(-1)

	assert.Equal(t, 3.0, counterValue(t, reg, "test_reactive_signal_writes_total", ""))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_reactive_selector_recomputes_total", "changed=false"))
	assert.Equal(t, 1.0, counterValue(t, reg, "test_reactive_selector_recomputes_total", "changed=true"))
	// selector: 1 + 2, effect: 1 + 1
	assert.Equal(t, 5.0, counterValue(t, reg, "test_reactive_effect_runs_total", ""))
	assert.Equal(t, 2.0, counterValue(t, reg, "test_reactive_updates_scheduled_total", ""))

	hist := gather(t, reg, "test_reactive_effect_duration_seconds")[""]
	require.NotNil(t, hist)
	assert.Equal(t, uint64(5), hist.GetHistogram().GetSampleCount())

	stats := rt.Stats()
	assert.EqualValues(t, stats.SignalWrites, counterValue(t, reg, "test_reactive_signal_writes_total", ""))
	assert.EqualValues(t, stats.EffectRuns, counterValue(t, reg, "test_reactive_effect_runs_total", ""))
}

func TestPrometheusStaleEffects(t *testing.T) {
	reg := prometheus.NewRegistry()
	tree := scope.NewTree(reactive.WithMetrics(metrics.NewPrometheus(metrics.WithRegistry(reg))))
	rt := tree.Runtime()
	count := reactive.Signal(rt, 0)

	root := tree.Mount("app", func(s *scope.Scope) {
		reactive.UseEffect(rt, func() { count.Value() })
	})
	rt.Batch(func() {
		count.SetValue(1)
		root.Unmount()
	})

	assert.Equal(t, 1.0, counterValue(t, reg, "copysignals_reactive_stale_effects_total", ""))
}

func TestPrometheusConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheus(
		metrics.WithRegistry(reg),
		metrics.WithSubsystem("ui"),
		metrics.WithConstLabels(prometheus.Labels{"app": "demo"}),
		metrics.WithBuckets(prometheus.DefBuckets),
	)
	recorder.SignalWritten()

	assert.Equal(t, 1.0, counterValue(t, reg, "copysignals_ui_signal_writes_total", "app=demo"))
}

func TestPrometheusDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewPrometheus(metrics.WithRegistry(reg))
	assert.Panics(t, func() {
		metrics.NewPrometheus(metrics.WithRegistry(reg))
	})
}
