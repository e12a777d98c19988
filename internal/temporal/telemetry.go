package temporal

import (
	"github.com/prometheus/client_golang/prometheus"
)

const insertWindowSize = 32

// Telemetry holds the optional prometheus collectors a Ring reports
// insertion-rate and occupancy metrics through. A nil *Telemetry disables
// reporting entirely; NewTelemetry registers the gauges against reg.
type Telemetry struct {
	occupancy    prometheus.Gauge
	insertRateHz prometheus.Gauge
}

// NewTelemetry creates and registers the ring buffer's gauges under the
// given component label (e.g. "temporal_ring"). Registration errors from an
// already-registered collector are ignored so tests can construct multiple
// rings against a shared registry.
func NewTelemetry(reg prometheus.Registerer, component string) *Telemetry {
	t := &Telemetry{
		occupancy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "memcore_ring_occupancy_ratio",
			Help:        "Fraction of a temporal ring buffer's capacity currently occupied.",
			ConstLabels: prometheus.Labels{"component": component},
		}),
		insertRateHz: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "memcore_ring_insert_rate",
			Help:        "Rolling estimate of insertions per second over the last 32 inserts.",
			ConstLabels: prometheus.Labels{"component": component},
		}),
	}
	if reg != nil {
		_ = reg.Register(t.occupancy)
		_ = reg.Register(t.insertRateHz)
	}
	return t
}

// SetTelemetry attaches t to r; pass nil to disable reporting.
func (r *Ring[T]) SetTelemetry(t *Telemetry) { r.telemetry = t }

// recordInsert tracks a rolling window of up to insertWindowSize insertion
// timestamps and, if telemetry is attached, updates the occupancy and
// insert-rate gauges.
func (r *Ring[T]) recordInsert(nowNanos int64) {
	r.insertTimes = append(r.insertTimes, nowNanos)
	if len(r.insertTimes) > insertWindowSize {
		r.insertTimes = r.insertTimes[len(r.insertTimes)-insertWindowSize:]
	}
	if r.telemetry == nil {
		return
	}
	r.telemetry.occupancy.Set(float64(r.length) / float64(r.capacity))
	if len(r.insertTimes) >= 2 {
		span := r.insertTimes[len(r.insertTimes)-1] - r.insertTimes[0]
		if span > 0 {
			hz := float64(len(r.insertTimes)-1) / (float64(span) / 1e9)
			r.telemetry.insertRateHz.Set(hz)
		}
	}
}
