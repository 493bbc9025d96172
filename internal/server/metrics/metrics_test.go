package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New(nil)

	m.Update(ResultCommitted)
	m.Update(ResultCommitted)
	m.Update(ResultNoop)
	m.Create(ResultRejected)
	m.ArchiveFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.updates.WithLabelValues(ResultCommitted)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.updates.WithLabelValues(ResultNoop)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.updates.WithLabelValues(ResultConflict)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.creates.WithLabelValues(ResultRejected)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.archiveFailures))
}

func TestRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.Update(ResultConflict)
	m.Request("GET", "/checkers/", "200", 0.01)

	expected := `
# HELP checkers_updates_total checker update requests by outcome
# TYPE checkers_updates_total counter
checkers_updates_total{result="conflict"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "checkers_updates_total"))

	n, err := testutil.GatherAndCount(reg, "checkers_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
