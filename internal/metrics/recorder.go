package metrics

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Authorization endpoint
	RecordAuthorizeRequest(outcome string) // login_form, silent, rejected
	RecordLogin(success bool, duration time.Duration)
	RecordAuthorizationCodeIssued(silent bool)
	RecordSessionCreated()

	// Token endpoint
	RecordTokenIssued(grantType string)
	RecordTokenFailure(grantType, reason string)

	// Bearer-authenticated endpoints
	RecordTokenValidation(valid bool)
}
