package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ensure Metrics implements Recorder interface at compile time
var _ Recorder = (*Metrics)(nil)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Authorization Metrics
	AuthorizeRequestsTotal      *prometheus.CounterVec
	LoginAttemptsTotal          *prometheus.CounterVec
	LoginDuration               *prometheus.HistogramVec
	AuthorizationCodesIssued    *prometheus.CounterVec
	SessionsCreatedTotal        prometheus.Counter
	TokensIssuedTotal           *prometheus.CounterVec
	TokenFailuresTotal          *prometheus.CounterVec
	AccessTokenValidationsTotal *prometheus.CounterVec

	// HTTP Request Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// Init initializes metrics based on enabled flag
// If enabled=true, returns Prometheus-based Metrics registered on the default registry
// If enabled=false, returns NoopMetrics (zero overhead)
// Uses sync.Once to ensure Prometheus metrics are only registered once
func Init(enabled bool) Recorder {
	if !enabled {
		return NewNoopMetrics()
	}

	once.Do(func() {
		defaultMetrics = New(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// New creates all metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AuthorizeRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_authorize_requests_total",
				Help: "Total number of authorization requests by outcome",
			},
			[]string{"outcome"}, // login_form, silent, rejected
		),
		LoginAttemptsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_login_attempts_total",
				Help: "Total number of credential submissions",
			},
			[]string{"result"}, // success, failure
		),
		LoginDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oidc_login_duration_seconds",
				Help:    "Time spent verifying credentials",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		AuthorizationCodesIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_authorization_codes_issued_total",
				Help: "Total number of authorization codes issued",
			},
			[]string{"path"}, // login, session
		),
		SessionsCreatedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "oidc_sessions_created_total",
				Help: "Total number of login sessions created",
			},
		),
		TokensIssuedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_tokens_issued_total",
				Help: "Total number of token responses issued",
			},
			[]string{"grant_type"}, // authorization_code, refresh_token
		),
		TokenFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_token_failures_total",
				Help: "Total number of rejected token requests",
			},
			[]string{"grant_type", "reason"},
		),
		AccessTokenValidationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oidc_access_token_validations_total",
				Help: "Total number of bearer access token validations",
			},
			[]string{"result"}, // valid, invalid
		),

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Current number of HTTP requests being served",
			},
		),
	}
}
