package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation(t *testing.T) {
	c := NewCollector("metrics_test")

	before := testutil.ToFloat64(OperationsTotal.WithLabelValues("metrics_test", "combine", "success"))
	c.ObserveOperation("combine", time.Millisecond, nil)
	after := testutil.ToFloat64(OperationsTotal.WithLabelValues("metrics_test", "combine", "success"))
	assert.Equal(t, before+1, after)

	failed := testutil.ToFloat64(OperationsTotal.WithLabelValues("metrics_test", "combine", "failure"))
	c.ObserveOperation("combine", time.Millisecond, errors.New("boom"))
	assert.Equal(t, failed+1, testutil.ToFloat64(OperationsTotal.WithLabelValues("metrics_test", "combine", "failure")))
}

func TestNulledIgnoresZero(t *testing.T) {
	c := NewCollector("metrics_test")

	before := testutil.ToFloat64(CellsNulled.WithLabelValues("metrics_test_reindex"))
	c.Nulled("metrics_test_reindex", 0)
	c.Nulled("metrics_test_reindex", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(CellsNulled.WithLabelValues("metrics_test_reindex")))
}

func TestDisabled(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)

	c := NewCollector("metrics_test")
	before := testutil.ToFloat64(CoercionFallbacks)
	c.CoercionFallback()
	assert.Equal(t, before, testutil.ToFloat64(CoercionFallbacks))
	assert.False(t, Enabled())
}

func TestTimer(t *testing.T) {
	timer := NewTimer("op")
	assert.Equal(t, "op", timer.Name())
	assert.GreaterOrEqual(t, timer.Stop(), time.Duration(0))
}
