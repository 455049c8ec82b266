package querycache

import "github.com/prometheus/client_golang/prometheus"

const namespace = "labsite"

type metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	loads         *prometheus.CounterVec
	loadErrors    *prometheus.CounterVec
	sharedWaits   *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "querycache",
				Name:      name,
				Help:      help,
			},
			[]string{"query"},
		)
	}

	m := &metrics{
		hits:          counter("hits_total", "Fetches served from a fresh entry"),
		misses:        counter("misses_total", "Fetches that had to wait for a load"),
		loads:         counter("loads_total", "Loader invocations, retries excluded"),
		loadErrors:    counter("load_errors_total", "Loads that ended in error"),
		sharedWaits:   counter("shared_waits_total", "Fetches whose load was shared with at least one other caller"),
		invalidations: counter("invalidations_total", "Entries marked stale"),
	}

	if reg != nil {
		reg.MustRegister(m.hits, m.misses, m.loads, m.loadErrors, m.sharedWaits, m.invalidations)
	}
	return m
}
