// Package metrics provides operation tracking for tabula using Prometheus
// metrics. Every table operation reports its count and latency, and the
// storage layer reports dtype promotions, coercion fallbacks and the number
// of cells nulled by alignment.
//
// # Basic Usage
//
//	collector := metrics.NewCollector("frame")
//	timer := metrics.NewTimer("combine")
//	result, err := combine(a, b)
//	collector.ObserveOperation("combine", timer.Stop(), err)
//
// Recording can be switched off globally with SetEnabled(false), in which
// case every helper is a no-op.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled turns metric recording on or off
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether metric recording is on
func Enabled() bool {
	return enabled.Load()
}

var (
	// OperationsTotal counts table operations.
	// Labels: component, operation, status (success/failure)
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_operations_total",
			Help: "Total number of table operations",
		},
		[]string{"component", "operation", "status"},
	)

	// OperationLatency tracks the distribution of operation latencies in nanoseconds.
	// Labels: component, operation
	OperationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tabula_operation_latency_nanoseconds",
			Help: "Operation latency in nanoseconds",
			Buckets: []float64{
				1000,   // 1μs - single lookups
				10000,  // 10μs - small tables
				100000, // 100μs
				1e6,    // 1ms
				1e7,    // 10ms - large alignments
				1e8,    // 100ms
				1e9,    // 1s
			},
		},
		[]string{"component", "operation"},
	)

	// DTypePromotions counts numeric blocks promoted to float64 to hold nulls.
	// Labels: operation
	DTypePromotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_dtype_promotions_total",
			Help: "Number of numeric blocks promoted to float64",
		},
		[]string{"operation"},
	)

	// CoercionFallbacks counts numeric columns moved to the object block after
	// a failed cast
	CoercionFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tabula_coercion_fallbacks_total",
			Help: "Number of numeric columns converted to object after a failed cast",
		},
	)

	// CellsNulled counts cells filled with the null sentinel by alignment.
	// Labels: operation
	CellsNulled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tabula_cells_nulled_total",
			Help: "Number of cells filled with null during alignment",
		},
		[]string{"operation"},
	)
)

// Collector records metrics on behalf of one component. Each package creates
// its own collector so the component label stays consistent.
type Collector struct {
	name string
}

// NewCollector creates a collector for component
func NewCollector(name string) *Collector {
	return &Collector{name: name}
}

// Name returns the component name
func (c *Collector) Name() string {
	return c.name
}

// ObserveOperation records one operation with its latency and outcome
func (c *Collector) ObserveOperation(operation string, elapsed time.Duration, err error) {
	if !Enabled() {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	OperationsTotal.WithLabelValues(c.name, operation, status).Inc()
	OperationLatency.WithLabelValues(c.name, operation).Observe(float64(elapsed.Nanoseconds()))
}

// Promotion records a numeric block promoted to float64
func (c *Collector) Promotion(operation string) {
	if !Enabled() {
		return
	}
	DTypePromotions.WithLabelValues(operation).Inc()
}

// CoercionFallback records a column moved to the object block
func (c *Collector) CoercionFallback() {
	if !Enabled() {
		return
	}
	CoercionFallbacks.Inc()
}

// Nulled records n cells filled with null by operation
func (c *Collector) Nulled(operation string, n int) {
	if !Enabled() || n <= 0 {
		return
	}
	CellsNulled.WithLabelValues(operation).Add(float64(n))
}

// Timer provides a simple timing mechanism for measuring operation durations.
// It captures the start time on creation and calculates elapsed time on stop.
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the timed operation name
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called
// multiple times.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
