package middleware

import (
	"mime"
	"net/http"
	"strings"
)

// IsJSONRequest reports whether the request body is to be read as JSON: the
// Content-Type is absent, application/json or a +json type, matched
// case-insensitively. The tenant boundary and the handlers' decoder both use
// it so they agree on which bodies carry an organizationId.
func IsJSONRequest(r *http.Request) bool {
	header := r.Header.Get("Content-Type")
	if strings.TrimSpace(header) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
