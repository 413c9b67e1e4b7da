package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/model"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*model.IdentityEvent
}

func (s *recordingSink) Record(event *model.IdentityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// tenantRouter mounts the boundary the way the API does and echoes the
// stamped tenant and the (restored) body.
func tenantRouter(cfg TenantConfig) http.Handler {
	echo := func(w http.ResponseWriter, r *http.Request) {
		orgID, ok := auth.TenantFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Tenant", orgID)
		_, _ = w.Write(body)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.ContextWithAuth(r.Context(), &model.AuthContext{
				UserID:         "user-a",
				OrganizationID: "org-a",
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.Use(TenantBoundary(cfg))
	r.Get("/organizations/{organizationId}", echo)
	r.Get("/customers", echo)
	r.Post("/customers", echo)
	return r
}

func TestTenantBoundary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"own path param", http.MethodGet, "/organizations/org-a", "", http.StatusOK},
		{"foreign path param", http.MethodGet, "/organizations/org-b", "", http.StatusForbidden},
		{"no tenant named", http.MethodGet, "/customers", "", http.StatusOK},
		{"own query", http.MethodGet, "/customers?organizationId=org-a", "", http.StatusOK},
		{"foreign query", http.MethodGet, "/customers?organizationId=org-b", "", http.StatusForbidden},
		{"own body", http.MethodPost, "/customers", `{"organizationId":"org-a","email":"x@y.z"}`, http.StatusOK},
		{"foreign body", http.MethodPost, "/customers", `{"organizationId":"org-b","email":"x@y.z"}`, http.StatusForbidden},
		{"non-string body", http.MethodPost, "/customers", `{"organizationId":42}`, http.StatusForbidden},
		{"body without tenant", http.MethodPost, "/customers", `{"email":"x@y.z"}`, http.StatusOK},
		{"query wins over body", http.MethodPost, "/customers?organizationId=org-a", `{"organizationId":"org-b"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sink := &recordingSink{}
			recorder := metrics.NewInMemory()
			router := tenantRouter(TenantConfig{Logger: discardLogger(), Metrics: recorder, Events: sink})

			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, rec.Body.String(), `"code":"FORBIDDEN"`)
				assert.Contains(t, rec.Body.String(), "Access denied")
				assert.Equal(t, 1, sink.count())
				assert.Equal(t, uint64(1), recorder.Snapshot().TenantDenied)
				return
			}
			assert.Equal(t, "org-a", rec.Header().Get("X-Tenant"))
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, 0, sink.count())
		})
	}
}

func TestTenantBoundary_ContentTypes(t *testing.T) {
	t.Parallel()

	const foreign = `{"organizationId":"org-b","email":"x@y.z"}`

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{"mixed case media type", "Application/JSON", http.StatusForbidden},
		{"with charset", "application/json; charset=utf-8", http.StatusForbidden},
		{"json suffix type", "application/merge-patch+json", http.StatusForbidden},
		{"absent", "", http.StatusForbidden},
		// The decoder rejects these, so no body reaches a handler.
		{"plain text", "text/plain", http.StatusOK},
		{"unparseable", "json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := tenantRouter(TenantConfig{Logger: discardLogger(), Metrics: metrics.NewInMemory(), Events: &recordingSink{}})

			req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(foreign))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestIsJSONRequest(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"":                                true,
		"application/json":                true,
		"APPLICATION/JSON; charset=UTF-8": true,
		"application/problem+json":        true,
		"text/plain":                      false,
		"multipart/form-data; boundary=x": false,
		"json":                            false,
	}
	for header, want := range tests {
		req := httptest.NewRequest(http.MethodPost, "/customers", nil)
		if header != "" {
			req.Header.Set("Content-Type", header)
		}
		assert.Equal(t, want, IsJSONRequest(req), "Content-Type %q", header)
	}
}

func TestTenantBoundary_RequiresAuth(t *testing.T) {
	t.Parallel()

	handler := TenantBoundary(TenantConfig{Logger: discardLogger()})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run")
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:52100"
	assert.Equal(t, "203.0.113.7", clientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", clientIP(req))
}
