package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Custom", "value").
		Body(map[string]int{"id": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Errorf("Custom header not set")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "{\"id\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoContent(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body([]int{1}).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want 204", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("204 must not carry a body, got %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(map[string]any{"ch": make(chan int)}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestErrorResponse(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/rewards/calculate/CUST999?startDate=2025-01-01", nil)

	tests := []struct {
		name        string
		builder     *JSONResponseBuilder
		wantStatus  int
		wantReason  string
		wantMessage string
	}{
		{"bad request", BadRequestError(r, "Invalid input"), http.StatusBadRequest, "Bad Request", "Invalid input"},
		{"not found", NotFoundError(r, "Customer with ID 'CUST999' not found."), http.StatusNotFound, "Not Found", "Customer with ID 'CUST999' not found."},
		{"conflict", ConflictError(r, "exists"), http.StatusConflict, "Conflict", "exists"},
		{"internal", InternalServerError(r), http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred"},
		{"rate limited", TooManyRequestsError(r), http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.builder.Write(w)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			want := ErrorResponse{
				Status:  tt.wantStatus,
				Error:   tt.wantReason,
				Message: tt.wantMessage,
				Path:    "/rewards/calculate/CUST999",
			}
			if body != want {
				t.Errorf("body = %+v, want %+v", body, want)
			}
		})
	}
}
