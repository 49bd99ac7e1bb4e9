package hashengine

import "github.com/prometheus/client_golang/prometheus"

// metrics mirrors an Engine's atomic counters onto Prometheus collectors. It
// is nil on an Engine built without WithMetrics, and every call site guards
// against that.
type metrics struct {
	itemCount         prometheus.Gauge
	bucketCount       prometheus.Gauge
	totalMemory       prometheus.Gauge
	migrationProgress prometheus.Gauge

	putTotal      prometheus.Counter
	getTotal      prometheus.Counter
	deleteTotal   prometheus.Counter
	notFoundTotal prometheus.Counter

	resizeTotal          *prometheus.CounterVec
	resizeFinalizedTotal prometheus.Counter
	weakKeyTotal         prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		itemCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "item_count", Help: "Number of live entries.",
		}),
		bucketCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "bucket_count", Help: "Number of slots in the current primary array.",
		}),
		totalMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "total_memory_bytes", Help: "Sum of live key and value byte lengths.",
		}),
		migrationProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hashengine", Name: "migration_progress_ratio", Help: "Fraction of the old array migrated so far, 0 when idle.",
		}),
		putTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "puts_total", Help: "Put calls served.",
		}),
		getTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "gets_total", Help: "Get calls served.",
		}),
		deleteTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "deletes_total", Help: "Delete calls served.",
		}),
		notFoundTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "not_found_total", Help: "Get/Delete calls that found no matching key.",
		}),
		resizeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "resizes_total", Help: "Resizes started, by direction.",
		}, []string{"direction"}),
		resizeFinalizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "resizes_finalized_total", Help: "Resizes that finished migrating and tore down the old array.",
		}),
		weakKeyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hashengine", Name: "weak_key_total", Help: "Times SipHash subkey seeding fell back to a weak key.",
		}),
	}

	collectors := []prometheus.Collector{
		m.itemCount, m.bucketCount, m.totalMemory, m.migrationProgress,
		m.putTotal, m.getTotal, m.deleteTotal, m.notFoundTotal,
		m.resizeTotal, m.resizeFinalizedTotal, m.weakKeyTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
