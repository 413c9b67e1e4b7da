package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Registrations map[string]uint64
	Logins        map[string]uint64
	Refreshes     map[string]uint64
	TenantDenied  uint64

	OrgCacheHits   uint64
	OrgCacheMisses uint64

	CustomersCreated uint64
	CustomersUpdated uint64
	CustomersDeleted uint64

	IdentityEventsPublished      uint64
	IdentityEventsDropped        uint64
	IdentityEventsProcessed      uint64
	IdentityEventsFailed         uint64
	IdentityBatchCount           uint64
	IdentityBatchEvents          uint64
	IdentityBatchDurationTotalNs int64
	IdentityQueueDepth           int64
}

// outcomeCounter counts a fixed set of outcome labels.
type outcomeCounter struct {
	success, failed, conflict, invalid atomic.Uint64
}

func (c *outcomeCounter) inc(status string) {
	switch status {
	case StatusSuccess:
		c.success.Add(1)
	case StatusConflict:
		c.conflict.Add(1)
	case StatusInvalid:
		c.invalid.Add(1)
	default:
		c.failed.Add(1)
	}
}

func (c *outcomeCounter) snapshot() map[string]uint64 {
	return map[string]uint64{
		StatusSuccess:  c.success.Load(),
		StatusFailed:   c.failed.Load(),
		StatusConflict: c.conflict.Load(),
		StatusInvalid:  c.invalid.Load(),
	}
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint.
type InMemoryRecorder struct {
	registrations outcomeCounter
	logins        outcomeCounter
	refreshes     outcomeCounter
	tenantDenied  atomic.Uint64

	orgCacheHits   atomic.Uint64
	orgCacheMisses atomic.Uint64

	customersCreated atomic.Uint64
	customersUpdated atomic.Uint64
	customersDeleted atomic.Uint64

	eventsPublished atomic.Uint64
	eventsDropped   atomic.Uint64
	eventsProcessed atomic.Uint64
	eventsFailed    atomic.Uint64
	batchCount      atomic.Uint64
	batchEvents     atomic.Uint64
	batchDurationNs atomic.Int64
	queueDepth      atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Registrations:                m.registrations.snapshot(),
		Logins:                       m.logins.snapshot(),
		Refreshes:                    m.refreshes.snapshot(),
		TenantDenied:                 m.tenantDenied.Load(),
		OrgCacheHits:                 m.orgCacheHits.Load(),
		OrgCacheMisses:               m.orgCacheMisses.Load(),
		CustomersCreated:             m.customersCreated.Load(),
		CustomersUpdated:             m.customersUpdated.Load(),
		CustomersDeleted:             m.customersDeleted.Load(),
		IdentityEventsPublished:      m.eventsPublished.Load(),
		IdentityEventsDropped:        m.eventsDropped.Load(),
		IdentityEventsProcessed:      m.eventsProcessed.Load(),
		IdentityEventsFailed:         m.eventsFailed.Load(),
		IdentityBatchCount:           m.batchCount.Load(),
		IdentityBatchEvents:          m.batchEvents.Load(),
		IdentityBatchDurationTotalNs: m.batchDurationNs.Load(),
		IdentityQueueDepth:           m.queueDepth.Load(),
	}
}

// IncRegistration counts a registration attempt by outcome.
func (m *InMemoryRecorder) IncRegistration(status string) { m.registrations.inc(status) }

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) { m.logins.inc(status) }

// IncRefresh counts a refresh attempt by outcome.
func (m *InMemoryRecorder) IncRefresh(status string) { m.refreshes.inc(status) }

// IncTenantDenied counts cross-tenant requests rejected by the boundary.
func (m *InMemoryRecorder) IncTenantDenied() { m.tenantDenied.Add(1) }

func (m *InMemoryRecorder) IncOrgCacheHit()  { m.orgCacheHits.Add(1) }
func (m *InMemoryRecorder) IncOrgCacheMiss() { m.orgCacheMisses.Add(1) }

func (m *InMemoryRecorder) IncCustomerCreated() { m.customersCreated.Add(1) }
func (m *InMemoryRecorder) IncCustomerUpdated() { m.customersUpdated.Add(1) }
func (m *InMemoryRecorder) IncCustomerDeleted() { m.customersDeleted.Add(1) }

// IncIdentityEventPublished counts stream publishes; "dropped" means the
// event was discarded after a publish failure.
func (m *InMemoryRecorder) IncIdentityEventPublished(status string) {
	if status == StatusDropped {
		m.eventsDropped.Add(1)
		return
	}
	m.eventsPublished.Add(1)
}

// IncIdentityEventProcessed counts events handled by the worker.
func (m *InMemoryRecorder) IncIdentityEventProcessed(status string) {
	if status == StatusSuccess {
		m.eventsProcessed.Add(1)
		return
	}
	m.eventsFailed.Add(1)
}

func (m *InMemoryRecorder) ObserveIdentityBatchSize(size int) {
	m.batchCount.Add(1)
	m.batchEvents.Add(uint64(size))
}

func (m *InMemoryRecorder) ObserveIdentityBatchDuration(duration time.Duration) {
	m.batchDurationNs.Add(duration.Nanoseconds())
}

func (m *InMemoryRecorder) SetIdentityQueueDepth(depth int64) {
	m.queueDepth.Store(depth)
}
