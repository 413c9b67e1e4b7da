package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncRegistration(StatusSuccess)
	m.IncRegistration(StatusConflict)
	m.IncLogin(StatusFailed)
	m.IncLogin(StatusFailed)
	m.IncLogin(StatusSuccess)
	m.IncRefresh("unknown-label")
	m.IncTenantDenied()
	m.IncIdentityEventPublished(StatusSuccess)
	m.IncIdentityEventPublished(StatusDropped)
	m.ObserveIdentityBatchSize(3)
	m.ObserveIdentityBatchDuration(2 * time.Millisecond)
	m.SetIdentityQueueDepth(7)

	snap := m.Snapshot()

	if snap.Registrations[StatusSuccess] != 1 || snap.Registrations[StatusConflict] != 1 {
		t.Errorf("registrations = %v", snap.Registrations)
	}
	if snap.Logins[StatusFailed] != 2 || snap.Logins[StatusSuccess] != 1 {
		t.Errorf("logins = %v", snap.Logins)
	}
	if snap.Refreshes[StatusFailed] != 1 {
		t.Errorf("unknown labels should count as failed, got %v", snap.Refreshes)
	}
	if snap.TenantDenied != 1 {
		t.Errorf("TenantDenied = %d", snap.TenantDenied)
	}
	if snap.IdentityEventsPublished != 1 || snap.IdentityEventsDropped != 1 {
		t.Errorf("published=%d dropped=%d", snap.IdentityEventsPublished, snap.IdentityEventsDropped)
	}
	if snap.IdentityBatchCount != 1 || snap.IdentityBatchEvents != 3 {
		t.Errorf("batch count=%d events=%d", snap.IdentityBatchCount, snap.IdentityBatchEvents)
	}
	if snap.IdentityBatchDurationTotalNs != int64(2*time.Millisecond) {
		t.Errorf("batch duration = %d", snap.IdentityBatchDurationTotalNs)
	}
	if snap.IdentityQueueDepth != 7 {
		t.Errorf("queue depth = %d", snap.IdentityQueueDepth)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncLogin(StatusSuccess)
			m.IncTenantDenied()
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.Logins[StatusSuccess] != 50 || snap.TenantDenied != 50 {
		t.Errorf("got logins=%d denied=%d", snap.Logins[StatusSuccess], snap.TenantDenied)
	}
}
