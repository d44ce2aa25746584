package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestInit_Singleton(t *testing.T) {
	m1 := Init(true)
	m2 := Init(true)
	assert.Same(t, m1, m2)
	_, ok := m1.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
}

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordAuthorizeRequest("login_form")
	m.RecordLogin(true, 10*time.Millisecond)
	m.RecordLogin(false, 10*time.Millisecond)
	m.RecordLogin(false, 10*time.Millisecond)
	m.RecordAuthorizationCodeIssued(true)
	m.RecordAuthorizationCodeIssued(false)
	m.RecordSessionCreated()
	m.RecordTokenIssued("authorization_code")
	m.RecordTokenFailure("refresh_token", "invalid_grant")
	m.RecordTokenValidation(false)

	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthorizeRequestsTotal.WithLabelValues("login_form")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginAttemptsTotal.WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthorizationCodesIssued.WithLabelValues("session")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AuthorizationCodesIssued.WithLabelValues("login")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SessionsCreatedTotal), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TokensIssuedTotal.WithLabelValues("authorization_code")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.TokenFailuresTotal.WithLabelValues("refresh_token", "invalid_grant")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.AccessTokenValidationsTotal.WithLabelValues("invalid")), 0)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/realms/:realm/jwks", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/realms/acme/jwks", nil))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.InDelta(t, 1,
		testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/realms/:realm/jwks", "200")), 0)
	assert.InDelta(t, 1,
		testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unknown", "404")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.HTTPRequestsInFlight), 0)
}

func TestHTTPMetricsMiddleware_Noop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(HTTPMetricsMiddleware(NewNoopMetrics()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
