package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	"rewards/internal/store/memory"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	for _, c := range []core.Customer{
		{CustomerID: "CUST001", Name: "Alice"},
		{CustomerID: "CUST002", Name: "Bob"},
		{CustomerID: "CUST003", Name: "Charlie"},
	} {
		if _, err := s.CreateCustomer(ctx, c); err != nil {
			t.Fatalf("CreateCustomer(%s): %v", c.CustomerID, err)
		}
	}

	for _, tx := range []struct{ id, amount, date string }{
		{"CUST001", "120.00", "2025-01-15"},
		{"CUST001", "75.00", "2025-01-20"},
		{"CUST001", "40.00", "2025-02-10"},
		{"CUST001", "150.00", "2025-03-25"},
		{"CUST003", "100.00", "2025-03-10"},
	} {
		d, _ := core.ParseDate(tx.date)
		if _, err := s.SaveTransaction(ctx, core.Transaction{
			CustomerID: tx.id,
			Amount:     decimal.RequireFromString(tx.amount),
			Date:       d,
		}); err != nil {
			t.Fatalf("SaveTransaction: %v", err)
		}
	}
	return s
}

type failingReader struct{}

func (failingReader) ListTransactions(context.Context) ([]core.Transaction, error) {
	return nil, errors.New("database is locked")
}

func (failingReader) ListCustomerTransactions(context.Context, string, core.Date, core.Date) ([]core.Transaction, error) {
	return nil, errors.New("database is locked")
}

func TestRewardService_ComputeAllSummaries(t *testing.T) {
	svc := NewRewardService(seededStore(t), nil)

	got, err := svc.ComputeAllSummaries(context.Background())
	if err != nil {
		t.Fatalf("ComputeAllSummaries() error = %v", err)
	}

	want := []core.RewardSummary{
		{CustomerID: "CUST001", MonthlyPoints: core.MonthlyPoints{"2025-01": 115, "2025-02": 0, "2025-03": 150}, TotalPoints: 265},
		{CustomerID: "CUST003", MonthlyPoints: core.MonthlyPoints{"2025-03": 50}, TotalPoints: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComputeAllSummaries() = %+v, want %+v", got, want)
	}
}

func TestRewardService_ComputeAllSummaries_Empty(t *testing.T) {
	svc := NewRewardService(memory.New(), nil)

	got, err := svc.ComputeAllSummaries(context.Background())
	if err != nil {
		t.Fatalf("ComputeAllSummaries() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ComputeAllSummaries() = %#v, want empty list", got)
	}
}

func TestRewardService_ComputeSummaryForCustomer(t *testing.T) {
	svc := NewRewardService(seededStore(t), nil)
	ctx := context.Background()

	tests := []struct {
		name       string
		customerID string
		start, end core.Date
		wantTotal  int
		wantErr    error
	}{
		{"full quarter", "CUST001", core.NewDate(2025, 1, 1), core.NewDate(2025, 3, 31), 265, nil},
		{"january only", "CUST001", core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31), 115, nil},
		{"inclusive bounds", "CUST001", core.NewDate(2025, 1, 15), core.NewDate(2025, 1, 15), 90, nil},
		{"no activity in window", "CUST001", core.NewDate(2024, 1, 1), core.NewDate(2024, 12, 31), 0, core.ErrNotFound},
		{"customer without transactions", "CUST002", core.NewDate(2025, 1, 1), core.NewDate(2025, 3, 31), 0, core.ErrNotFound},
		{"unknown customer", "NOPE", core.NewDate(2025, 1, 1), core.NewDate(2025, 3, 31), 0, core.ErrNotFound},
		{"reversed range", "CUST001", core.NewDate(2025, 3, 31), core.NewDate(2025, 1, 1), 0, core.ErrInvalidRange},
		{"missing start", "CUST001", core.Date{}, core.NewDate(2025, 1, 1), 0, core.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ComputeSummaryForCustomer(ctx, tt.customerID, tt.start, tt.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ComputeSummaryForCustomer() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputeSummaryForCustomer() error = %v", err)
			}
			if got.TotalPoints != tt.wantTotal {
				t.Errorf("TotalPoints = %d, want %d", got.TotalPoints, tt.wantTotal)
			}
			if got.CustomerID != tt.customerID {
				t.Errorf("CustomerID = %q, want %q", got.CustomerID, tt.customerID)
			}
		})
	}
}

func TestRewardService_StorageErrors(t *testing.T) {
	svc := NewRewardService(failingReader{}, nil)
	ctx := context.Background()

	if _, err := svc.ComputeAllSummaries(ctx); err == nil || errors.Is(err, core.ErrNotFound) {
		t.Errorf("ComputeAllSummaries() error = %v, want storage error", err)
	}
	_, err := svc.ComputeSummaryForCustomer(ctx, "CUST001", core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 2))
	if err == nil || errors.Is(err, core.ErrNotFound) {
		t.Errorf("ComputeSummaryForCustomer() error = %v, want storage error", err)
	}
}
