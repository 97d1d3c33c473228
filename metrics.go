package partkv

// metrics.go is a thin abstraction over Prometheus: a no-op sink by
// default, swapped for a labeled Prometheus sink when the caller supplies
// WithMetrics(reg).
//
// ┌────────────────────────────┐
// │ Metric                    │ Type │
// ├────────────────────────────┼──────┤
// │ partkv_reads_total         │ Ctr  │ (by status)
// │ partkv_writes_total        │ Ctr  │
// │ partkv_scans_total         │ Ctr  │ (by status)
// │ partkv_repartitions_total  │ Ctr  │
// │ partkv_tracker_queue_depth │ Gge  │
// └────────────────────────────┘
//
// © 2025 partkv authors. MIT License.

import "github.com/prometheus/client_golang/prometheus"

type metricsSink interface {
	incRead(status Status)
	incWrite()
	incScan(status Status)
	incRepartition()
	setTrackerQueueDepth(n int)
}

type noopMetrics struct{}

func (noopMetrics) incRead(Status)         {}
func (noopMetrics) incWrite()              {}
func (noopMetrics) incScan(Status)         {}
func (noopMetrics) incRepartition()        {}
func (noopMetrics) setTrackerQueueDepth(int) {}

type promMetrics struct {
	reads          *prometheus.CounterVec
	writes         prometheus.Counter
	scans          *prometheus.CounterVec
	repartitions   prometheus.Counter
	trackerQueue   prometheus.Gauge
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	pm := &promMetrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partkv", Name: "reads_total", Help: "Number of reads by status.",
		}, []string{"status"}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partkv", Name: "writes_total", Help: "Number of writes.",
		}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partkv", Name: "scans_total", Help: "Number of scans by status.",
		}, []string{"status"}),
		repartitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partkv", Name: "repartitions_total", Help: "Number of completed repartition rounds.",
		}),
		trackerQueue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partkv", Name: "tracker_queue_depth", Help: "Approximate depth of the tracker ingress queue.",
		}),
	}
	reg.MustRegister(pm.reads, pm.writes, pm.scans, pm.repartitions, pm.trackerQueue)
	return pm
}

func (m *promMetrics) incRead(status Status)  { m.reads.WithLabelValues(status.String()).Inc() }
func (m *promMetrics) incWrite()              { m.writes.Inc() }
func (m *promMetrics) incScan(status Status)  { m.scans.WithLabelValues(status.String()).Inc() }
func (m *promMetrics) incRepartition()        { m.repartitions.Inc() }
func (m *promMetrics) setTrackerQueueDepth(n int) { m.trackerQueue.Set(float64(n)) }

func newMetricsSink(reg *prometheus.Registry) metricsSink {
	if reg == nil {
		return noopMetrics{}
	}
	return newPromMetrics(reg)
}
