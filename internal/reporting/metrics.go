package reporting

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes report fetches and projections.
type Metrics struct {
	fetches     *prometheus.CounterVec
	projections *prometheus.HistogramVec
	rows        *prometheus.GaugeVec
}

// NewMetrics registers the report collectors. Collectors already registered
// on reg are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consola_report_fetch_total",
			Help: "Report feed fetches partitioned by report and outcome.",
		}, []string{"report", "status"}),
		projections: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "consola_report_projection_duration_seconds",
			Help:    "Time spent filtering and folding a report.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "consola_report_rows",
			Help: "Rows held by the last successful fetch of each report.",
		}, []string{"report"}),
	}
	var err error
	m.fetches, err = register(reg, m.fetches)
	if err != nil {
		return nil, err
	}
	m.projections, err = register(reg, m.projections)
	if err != nil {
		return nil, err
	}
	m.rows, err = register(reg, m.rows)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) fetched(report string, err error, rows int) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	} else {
		m.rows.WithLabelValues(report).Set(float64(rows))
	}
	m.fetches.WithLabelValues(report, status).Inc()
}

func (m *Metrics) projected(report string, d time.Duration) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(report).Observe(d.Seconds())
}
