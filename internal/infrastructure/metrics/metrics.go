package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "age_checker"

// Metrics groups the collectors exported on /metrics
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	Installs           *prometheus.CounterVec
	AgeVerifications   *prometheus.CounterVec
	ShopUpsertFailures prometheus.Counter
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Installs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oauth_installs_total",
			Help:      "OAuth callback outcomes by error kind, \"success\" when completed.",
		}, []string{"result"}),
		AgeVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "age_verifications_total",
			Help:      "Customer age checks by outcome.",
		}, []string{"verified"}),
		ShopUpsertFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shop_upsert_failures_total",
			Help:      "Shop record writes that failed after a successful token exchange.",
		}),
	}

	reg.MustRegister(m.HTTPRequests, m.HTTPDuration, m.Installs, m.AgeVerifications, m.ShopUpsertFailures)
	return m
}
