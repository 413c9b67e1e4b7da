// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the identity counters.
const (
	StatusSuccess  = "success"
	StatusFailed   = "failed"
	StatusConflict = "conflict"
	StatusInvalid  = "invalid"
	StatusDropped  = "dropped"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity metrics
	IncRegistration(status string) // success, conflict, invalid, failed
	IncLogin(status string)        // success, failed
	IncRefresh(status string)      // success, failed
	IncTenantDenied()

	// Organization cache metrics
	IncOrgCacheHit()
	IncOrgCacheMiss()

	// Customer management metrics
	IncCustomerCreated()
	IncCustomerUpdated()
	IncCustomerDeleted()

	// Identity event pipeline metrics
	IncIdentityEventPublished(status string) // success, dropped
	IncIdentityEventProcessed(status string) // success, failed
	ObserveIdentityBatchSize(size int)
	ObserveIdentityBatchDuration(duration time.Duration)
	SetIdentityQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
