package orchestrator

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAgainstGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Applied.Inc()
	m.Failed.Inc()
	m.Duration.Observe(0.5)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["schemagate_migrations_applied_total"])
	assert.True(t, names["schemagate_migrations_failed_total"])
	assert.True(t, names["schemagate_migration_duration_seconds"])
}

func TestNewMetrics_NilRegistererSkipsRegistration(t *testing.T) {
	m := NewMetrics(nil)
	assert.NotPanics(t, func() {
		m.Applied.Inc()
	})
}

func TestMetrics_AppliedCounterIncrements(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Applied.Inc()
	m.Applied.Inc()

	var out dto.Metric
	require.NoError(t, m.Applied.Write(&out))
	assert.Equal(t, float64(2), out.GetCounter().GetValue())
}
