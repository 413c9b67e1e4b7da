package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/swiftslot/swiftslot/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeOutcomes(w, "swiftslot_registrations_total", snap.Registrations)
	writeOutcomes(w, "swiftslot_logins_total", snap.Logins)
	writeOutcomes(w, "swiftslot_token_refreshes_total", snap.Refreshes)
	writeMetric(w, "swiftslot_tenant_access_denied_total %d\n", snap.TenantDenied)

	writeMetric(w, "swiftslot_org_cache_hits_total %d\n", snap.OrgCacheHits)
	writeMetric(w, "swiftslot_org_cache_misses_total %d\n", snap.OrgCacheMisses)

	writeMetric(w, "swiftslot_customers_created_total %d\n", snap.CustomersCreated)
	writeMetric(w, "swiftslot_customers_updated_total %d\n", snap.CustomersUpdated)
	writeMetric(w, "swiftslot_customers_deleted_total %d\n", snap.CustomersDeleted)

	writeMetric(w, "swiftslot_identity_events_published_total{status=\"success\"} %d\n", snap.IdentityEventsPublished)
	writeMetric(w, "swiftslot_identity_events_published_total{status=\"dropped\"} %d\n", snap.IdentityEventsDropped)
	writeMetric(w, "swiftslot_identity_events_processed_total{status=\"success\"} %d\n", snap.IdentityEventsProcessed)
	writeMetric(w, "swiftslot_identity_events_processed_total{status=\"failed\"} %d\n", snap.IdentityEventsFailed)

	writeMetric(w, "swiftslot_identity_batches_total %d\n", snap.IdentityBatchCount)
	writeMetric(w, "swiftslot_identity_batch_events_total %d\n", snap.IdentityBatchEvents)
	writeMetric(w, "swiftslot_identity_batch_duration_seconds_sum %.6f\n", float64(snap.IdentityBatchDurationTotalNs)/1e9)
	writeMetric(w, "swiftslot_identity_queue_depth %d\n", snap.IdentityQueueDepth)
}

func writeOutcomes(w http.ResponseWriter, name string, counts map[string]uint64) {
	statuses := make([]string, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		writeMetric(w, "%s{status=%q} %d\n", name, status, counts[status])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
