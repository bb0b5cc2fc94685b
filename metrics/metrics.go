// Package metrics collects and exposes Prometheus metrics for the API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics surface used by services and middleware.
type Recorder interface {
	RecordLogin(outcome string)
	RecordRegistration(outcome string)
	RecordTokenIssued()
	RecordTokenRejected(reason string)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	logins        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	tokensIssued  prometheus.Counter
	tokenRejects  *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_logins_total",
			Help: "Password login attempts by outcome.",
		}, []string{"outcome"}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_registrations_total",
			Help: "Registration attempts by outcome.",
		}, []string{"outcome"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_auth_tokens_issued_total",
			Help: "Session tokens issued.",
		}),
		tokenRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_auth_tokens_rejected_total",
			Help: "Session tokens rejected during validation, by cause.",
		}, []string{"reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.logins,
		c.registrations,
		c.tokensIssued,
		c.tokenRejects,
		c.httpRequests,
		c.httpLatency,
	)

	return c
}

func (c *Collector) RecordLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordRegistration(outcome string) {
	c.registrations.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

func (c *Collector) RecordTokenRejected(reason string) {
	c.tokenRejects.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Noop discards every measurement.
type Noop struct{}

func (Noop) RecordLogin(string)                                   {}
func (Noop) RecordRegistration(string)                            {}
func (Noop) RecordTokenIssued()                                   {}
func (Noop) RecordTokenRejected(string)                           {}
func (Noop) RecordHTTPRequest(string, string, int, time.Duration) {}
