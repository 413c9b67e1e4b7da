package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID(t *testing.T) {
	tests := []struct {
		name      string
		incoming  string
		wantKeep  bool
		wantFresh bool
	}{
		{name: "generated when absent", wantFresh: true},
		{name: "client id kept", incoming: "req-123_abc.DEF:9", wantKeep: true},
		{name: "newline rejected", incoming: "abc\nlevel=ERROR", wantFresh: true},
		{name: "spaces rejected", incoming: "abc def", wantFresh: true},
		{name: "too long rejected", incoming: strings.Repeat("a", maxCorrelationIDLen+1), wantFresh: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if got := rec.Header().Get(RequestIDHeader); got != seen {
				t.Errorf("response header %q != context id %q", got, seen)
			}
			if tt.wantKeep && seen != tt.incoming {
				t.Errorf("request id = %q, want %q", seen, tt.incoming)
			}
			if tt.wantFresh {
				if _, err := uuid.Parse(seen); err != nil {
					t.Errorf("expected generated uuid, got %q", seen)
				}
			}
		})
	}
}

func TestRequestID_TraceEchoed(t *testing.T) {
	var traceID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = GetTraceID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if traceID != "trace-42" || rec.Header().Get(TraceIDHeader) != "trace-42" {
		t.Errorf("trace id not propagated: ctx=%q header=%q", traceID, rec.Header().Get(TraceIDHeader))
	}
}
