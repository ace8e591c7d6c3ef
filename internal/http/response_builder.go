// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses.
// Every error leaves the service in the same envelope: status code, reason
// phrase, message and request path.

package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	payload    any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body. A nil body writes
// headers only.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.payload = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if b.payload == nil || b.statusCode == http.StatusNoContent {
		w.WriteHeader(b.statusCode)
		return
	}

	body, err := json.Marshal(b.payload)
	if err != nil {
		slog.Error("Failed to encode response body", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":500,"error":"Internal Server Error","message":"An unexpected error occurred"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(body)
	_, _ = w.Write([]byte("\n"))
}

// ErrorResponseFor creates an error envelope for the request.
func ErrorResponseFor(r *http.Request, statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorResponse{
			Status:  statusCode,
			Error:   http.StatusText(statusCode),
			Message: message,
			Path:    r.URL.Path,
		})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(r *http.Request, message string) *JSONResponseBuilder {
	return ErrorResponseFor(r, http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(r *http.Request, message string) *JSONResponseBuilder {
	return ErrorResponseFor(r, http.StatusNotFound, message)
}

// ConflictError creates a 409 Conflict error response.
func ConflictError(r *http.Request, message string) *JSONResponseBuilder {
	return ErrorResponseFor(r, http.StatusConflict, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(r *http.Request) *JSONResponseBuilder {
	return ErrorResponseFor(r, http.StatusInternalServerError, "An unexpected error occurred")
}

// TooManyRequestsError creates a 429 response for rate-limited clients.
func TooManyRequestsError(r *http.Request) *JSONResponseBuilder {
	return ErrorResponseFor(r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}
