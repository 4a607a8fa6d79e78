package loader

import (
	"github.com/dalemusser/surveydash/internal/app/system/catalog"
	"github.com/prometheus/client_golang/prometheus"
)

// Endpoint label values.
const (
	endpointAll     = "get_all_surveys"
	endpointPopular = "get_popular_survey"
)

// Outcome label values.
const (
	outcomeOK        = "ok"
	outcomePartial   = "partial"
	outcomeMalformed = "malformed"
	outcomeFailed    = "failed"
)

// Metrics are the Prometheus collectors updated by a Loader.
type Metrics struct {
	loads       *prometheus.CounterVec
	records     *prometheus.GaugeVec
	lastLoad    prometheus.Gauge
	coalesced   prometheus.Counter
	snapshotErr prometheus.Counter
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveydash",
			Name:      "backend_loads_total",
			Help:      "Backend loads by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "surveydash",
			Name:      "catalog_records",
			Help:      "Records currently held per collection.",
		}, []string{"collection"}),
		lastLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surveydash",
			Name:      "catalog_last_load_timestamp_seconds",
			Help:      "Unix time of the last collection replacement.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveydash",
			Name:      "refresh_coalesced_total",
			Help:      "Refresh requests that joined one already in flight.",
		}),
		snapshotErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surveydash",
			Name:      "snapshot_errors_total",
			Help:      "Failed snapshot saves, prunes and restores.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.loads, m.records, m.lastLoad, m.coalesced, m.snapshotErr)
	}
	return m
}

func (m *Metrics) observeLoad(endpoint, outcome string) {
	m.loads.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) observeCatalog(cat *catalog.Catalog) {
	n := cat.Counts()
	m.records.WithLabelValues("surveys").Set(float64(n.Surveys))
	m.records.WithLabelValues("questions").Set(float64(n.Questions))
	m.records.WithLabelValues("choices").Set(float64(n.Choices))
	if at := cat.LoadedAt(); !at.IsZero() {
		m.lastLoad.Set(float64(at.Unix()))
	}
}
