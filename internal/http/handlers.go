package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	applog "rewards/internal/log"
)

type createCustomerRequest struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}

type customerResponse struct {
	ID         int64  `json:"id"`
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
}

type recordTransactionRequest struct {
	CustomerID      string              `json:"customerId"`
	Amount          decimal.NullDecimal `json:"amount"`
	TransactionDate core.Date           `json:"transactionDate"`
}

type transactionResponse struct {
	ID              int64            `json:"id"`
	Customer        customerResponse `json:"customer"`
	Amount          json.Number      `json:"amount"`
	TransactionDate core.Date        `json:"transactionDate"`
}

func newCustomerResponse(c core.Customer) customerResponse {
	return customerResponse{ID: c.ID, CustomerID: c.CustomerID, Name: c.Name}
}

// handleCreateCustomer registers a customer under a unique business id.
func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w)
		return
	}

	created, err := s.ledger.CreateCustomer(r.Context(), core.Customer{
		CustomerID: sanitizeInput(req.CustomerID),
		Name:       sanitizeInput(req.Name),
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Body(newCustomerResponse(created)).
		Write(w)
}

// handleRecordTransaction stores a purchase for an existing customer.
func (s *Server) handleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := DecodeJSONBody(w, r, &req); err != nil {
		BadRequestError(r, err.Error()).Write(w)
		return
	}
	if !req.Amount.Valid {
		BadRequestError(r, "Field 'amount' is required").Write(w)
		return
	}
	if req.TransactionDate.IsZero() {
		BadRequestError(r, "Field 'transactionDate' is required").Write(w)
		return
	}

	customer, tx, err := s.ledger.RecordTransaction(r.Context(),
		sanitizeInput(req.CustomerID), req.Amount.Decimal, req.TransactionDate)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Body(transactionResponse{
			ID:              tx.ID,
			Customer:        newCustomerResponse(customer),
			Amount:          json.Number(tx.Amount.String()),
			TransactionDate: tx.Date,
		}).
		Write(w)
}

// handleAllRewards returns one summary per customer with activity, or 204
// when there is nothing to report.
func (s *Server) handleAllRewards(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.calculator.ComputeAllSummaries(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if len(summaries) == 0 {
		NewJSONResponse().Status(http.StatusNoContent).Write(w)
		return
	}
	NewJSONResponse().Body(summaries).Write(w)
}

// handleCustomerRewards summarizes one customer over an inclusive date window.
func (s *Server) handleCustomerRewards(w http.ResponseWriter, r *http.Request) {
	customerID := sanitizeInput(r.PathValue("customerId"))
	query := r.URL.Query()

	start, err := ParseDateParam(query, "startDate")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	end, err := ParseDateParam(query, "endDate")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	summary, err := s.calculator.ComputeSummaryForCustomer(r.Context(), customerID, start, end)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Body(summary).Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	NewJSONResponse().Body(map[string]string{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check against the store
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready == nil {
		NewJSONResponse().Body(map[string]string{"status": "ready"}).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.ready.Ping(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed",
			applog.FieldError, err)
		NewJSONResponse().
			Status(http.StatusServiceUnavailable).
			Body(map[string]string{"status": "not_ready", "store": err.Error()}).
			Write(w)
		return
	}
	NewJSONResponse().Body(map[string]string{"status": "ready", "store": "ok"}).Write(w)
}

// handleMetrics exposes middleware counters as plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	tm := s.tracer.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	sec := s.detector.GetMetrics()

	var b strings.Builder
	fmt.Fprintf(&b, "http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(&b, "http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(&b, "http_response_time_avg_microseconds %d\n", tm.AverageResponseTime)
	fmt.Fprintf(&b, "rate_limit_rejections_total %d\n", rl.TotalHits)
	fmt.Fprintf(&b, "rate_limit_clients %d\n", rl.ClientCount)
	fmt.Fprintf(&b, "security_suspicious_requests_total %d\n", sec.SuspiciousRequests)
	fmt.Fprintf(&b, "security_invalid_ip_total %d\n", sec.InvalidIPAttempts)
	fmt.Fprintf(&b, "uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

// writeServiceError maps a domain error onto the error envelope.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		param    *ParamError
		noAct    *core.NoActivityError
		notFound *core.CustomerNotFoundError
		exists   *core.CustomerExistsError
	)

	switch {
	case errors.As(err, &param):
		BadRequestError(r, param.Error()).Write(w)
	case errors.As(err, &noAct):
		NotFoundError(r, noAct.Error()).Write(w)
	case errors.As(err, &notFound):
		NotFoundError(r, notFound.Error()).Write(w)
	case errors.As(err, &exists):
		ConflictError(r, exists.Error()).Write(w)
	case isValidationError(err):
		BadRequestError(r, err.Error()).Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, applog.OpRead,
				applog.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", ""))
		InternalServerError(r).Write(w)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidDate,
		core.ErrInvalidRange,
		core.ErrInvalidAmount,
		core.ErrEmptyCustomerID,
		core.ErrCustomerIDTooLong,
		core.ErrNameTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
