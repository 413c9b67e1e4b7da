package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
	"github.com/swiftslot/swiftslot/internal/service"
)

// OrganizationIDParam is the path, query and body field naming a tenant.
const OrganizationIDParam = "organizationId"

// TenantConfig holds configuration for the tenant boundary.
type TenantConfig struct {
	Logger  *slog.Logger
	Metrics metrics.Recorder
	Events  service.EventSink
}

// TenantBoundary confines an authenticated request to the caller's own
// organization. It must run after Auth.
//
// The requested organization is read from the chi path parameter, then the
// query string, then the JSON body. A request naming no organization is
// scoped to the caller's. On success the organization id is stamped into the
// context; any mismatch is a 403.
func TenantBoundary(cfg TenantConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	events := cfg.Events
	if events == nil {
		events = service.NoopSink{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w)
				return
			}

			requested := requestedOrganizationID(r)
			orgID, err := auth.ResolveTenant(authCtx.OrganizationID, requested)
			if err != nil {
				recorder.IncTenantDenied()
				events.Record(&model.IdentityEvent{
					Type:           model.EventTenantAccessDenied,
					OrganizationID: authCtx.OrganizationID,
					UserID:         authCtx.UserID,
					IP:             clientIP(r),
					OccurredAt:     time.Now().UTC(),
				})
				logger.Warn("tenant access denied",
					slog.String("user_id", authCtx.UserID),
					slog.String("organization_id", authCtx.OrganizationID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Access denied")
				return
			}

			ctx := auth.ContextWithTenant(r.Context(), orgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestedOrganizationID returns the organization the request names, if any.
func requestedOrganizationID(r *http.Request) string {
	if id := chi.URLParam(r, OrganizationIDParam); id != "" {
		return id
	}
	if id := r.URL.Query().Get(OrganizationIDParam); id != "" {
		return id
	}
	return bodyOrganizationID(r)
}

// bodyOrganizationID peeks at a JSON body and restores it for the handler.
// Malformed and non-JSON bodies name no organization; the handler rejects them.
func bodyOrganizationID(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if !IsJSONRequest(r) {
		return ""
	}

	body, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var probe struct {
		OrganizationID json.RawMessage `json:"organizationId"`
	}
	if err := json.Unmarshal(body, &probe); err != nil || len(probe.OrganizationID) == 0 {
		return ""
	}

	var id string
	if err := json.Unmarshal(probe.OrganizationID, &id); err != nil {
		// A non-string organizationId can never match; treat it as foreign.
		return string(probe.OrganizationID)
	}
	return id
}

// clientIP returns the host part of the remote address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
