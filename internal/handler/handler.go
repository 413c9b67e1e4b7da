// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/swiftslot/swiftslot/internal/apperror"
	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/handler/dto"
	"github.com/swiftslot/swiftslot/internal/middleware"
)

// NotFound handles 404 responses.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
}

// MethodNotAllowed handles 405 responses.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeSuccess wraps data in the success envelope.
func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dto.SuccessResponse{Success: true, Data: data})
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: dto.ErrorBody{Code: code, Message: message},
	})
}

// writeServiceError maps a service error kind to an HTTP response.
// Unclassified errors are logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	kind := apperror.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case apperror.KindInvalid:
		status = http.StatusBadRequest
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict:
		status = http.StatusConflict
	case apperror.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperror.KindForbidden:
		status = http.StatusForbidden
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	writeError(w, status, kind.String(), apperror.MessageOf(err))
}

// decodeJSON decodes a request body into dst. Bodies declared as anything
// other than JSON are rejected, matching what the tenant boundary inspects.
func decodeJSON(r *http.Request, dst any) error {
	if !middleware.IsJSONRequest(r) {
		return apperror.Invalid("Content-Type must be application/json")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.Invalid("Request body too large")
		}
		if errors.Is(err, io.EOF) {
			return apperror.Invalid("Request body is required")
		}
		return apperror.Invalid("Invalid request body")
	}
	return nil
}

// tenantOrFail returns the organization stamped by the tenant boundary.
// A missing scope means the route was mounted without the boundary.
func tenantOrFail(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (string, bool) {
	orgID, ok := auth.TenantFromContext(r.Context())
	if !ok {
		logger.Error("tenant scope missing",
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return "", false
	}
	return orgID, true
}
