package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordAuthorizeRequest(outcome string)            {}
func (n *NoopMetrics) RecordLogin(success bool, duration time.Duration) {}
func (n *NoopMetrics) RecordAuthorizationCodeIssued(silent bool)        {}
func (n *NoopMetrics) RecordSessionCreated()                            {}
func (n *NoopMetrics) RecordTokenIssued(grantType string)               {}
func (n *NoopMetrics) RecordTokenFailure(grantType, reason string)      {}
func (n *NoopMetrics) RecordTokenValidation(valid bool)                 {}
