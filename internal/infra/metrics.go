package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a dedicated registry so tests can
// build as many instances as they need.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	DonationsCreated *prometheus.CounterVec
	DonationAmount   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "donation_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		DonationsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_created_total",
				Help: "Total number of donations recorded",
			},
			[]string{"category"},
		),
		DonationAmount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donation_amount_total",
				Help: "Sum of recorded donation amounts in whole currency units",
			},
			[]string{"category"},
		),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.DonationsCreated,
		m.DonationAmount,
	)
	return m
}

// ObserveDonation records a successfully stored donation.
func (m *Metrics) ObserveDonation(category string, amount int64) {
	if m == nil {
		return
	}
	m.DonationsCreated.WithLabelValues(category).Inc()
	m.DonationAmount.WithLabelValues(category).Add(float64(amount))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
