// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"rewards/internal/core"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// ParamError reports a query parameter that is missing or cannot be parsed.
type ParamError struct {
	Name  string
	Value string
	// Missing is set when the parameter was absent or blank.
	Missing bool
}

func (e *ParamError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Required parameter '%s' is not present", e.Name)
	}
	return fmt.Sprintf("Parameter '%s' has invalid value '%s'. Expected type: date (YYYY-MM-DD)", e.Name, e.Value)
}

// ParseDateParam reads a required YYYY-MM-DD query parameter.
func ParseDateParam(query url.Values, name string) (core.Date, error) {
	raw := query.Get(name)
	if strings.TrimSpace(raw) == "" {
		return core.Date{}, &ParamError{Name: name, Missing: true}
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, &ParamError{Name: name, Value: raw}
	}
	return d, nil
}

// DecodeJSONBody decodes a bounded JSON body into dst. Trailing data after
// the first value is rejected.
func DecodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		default:
			return fmt.Errorf("malformed JSON body: %w", err)
		}
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
