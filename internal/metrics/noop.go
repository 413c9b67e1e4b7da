package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncRegistration(status string)                       {}
func (n *NoopRecorder) IncLogin(status string)                              {}
func (n *NoopRecorder) IncRefresh(status string)                            {}
func (n *NoopRecorder) IncTenantDenied()                                    {}
func (n *NoopRecorder) IncOrgCacheHit()                                     {}
func (n *NoopRecorder) IncOrgCacheMiss()                                    {}
func (n *NoopRecorder) IncCustomerCreated()                                 {}
func (n *NoopRecorder) IncCustomerUpdated()                                 {}
func (n *NoopRecorder) IncCustomerDeleted()                                 {}
func (n *NoopRecorder) IncIdentityEventPublished(status string)             {}
func (n *NoopRecorder) IncIdentityEventProcessed(status string)             {}
func (n *NoopRecorder) ObserveIdentityBatchSize(size int)                   {}
func (n *NoopRecorder) ObserveIdentityBatchDuration(duration time.Duration) {}
func (n *NoopRecorder) SetIdentityQueueDepth(depth int64)                   {}
