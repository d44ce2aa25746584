package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Only the Prometheus implementation records HTTP metrics
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/realms/:realm/token") or "unknown" if no route matched
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func result(success bool) string {
	if success {
		return resultSuccess
	}
	return resultFailure
}

// RecordAuthorizeRequest records the outcome of a GET authorize request
func (m *Metrics) RecordAuthorizeRequest(outcome string) {
	m.AuthorizeRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordLogin records a credential check and its latency
func (m *Metrics) RecordLogin(success bool, duration time.Duration) {
	r := result(success)
	m.LoginAttemptsTotal.WithLabelValues(r).Inc()
	m.LoginDuration.WithLabelValues(r).Observe(duration.Seconds())
}

// RecordAuthorizationCodeIssued records code minting; silent means an existing session was reused
func (m *Metrics) RecordAuthorizationCodeIssued(silent bool) {
	path := "login"
	if silent {
		path = "session"
	}
	m.AuthorizationCodesIssued.WithLabelValues(path).Inc()
}

// RecordSessionCreated records a new login session
func (m *Metrics) RecordSessionCreated() {
	m.SessionsCreatedTotal.Inc()
}

// RecordTokenIssued records a successful token response
func (m *Metrics) RecordTokenIssued(grantType string) {
	m.TokensIssuedTotal.WithLabelValues(grantType).Inc()
}

// RecordTokenFailure records a rejected token request
func (m *Metrics) RecordTokenFailure(grantType, reason string) {
	m.TokenFailuresTotal.WithLabelValues(grantType, reason).Inc()
}

// RecordTokenValidation records a bearer access token check
func (m *Metrics) RecordTokenValidation(valid bool) {
	r := "valid"
	if !valid {
		r = "invalid"
	}
	m.AccessTokenValidationsTotal.WithLabelValues(r).Inc()
}
