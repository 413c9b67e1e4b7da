// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// SuccessResponse is the envelope for successful responses.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error code and public message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
