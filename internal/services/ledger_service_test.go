package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	"rewards/internal/store/memory"
)

type recordingPublisher struct {
	published []core.Transaction
	err       error
	closed    bool
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, t core.Transaction) error {
	p.published = append(p.published, t)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

func TestLedgerService_CreateCustomer(t *testing.T) {
	s := memory.New()
	svc := NewLedgerService(s, s, nil, nil)
	ctx := context.Background()

	c, err := svc.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001", Name: "Alice"})
	if err != nil {
		t.Fatalf("CreateCustomer() error = %v", err)
	}
	if c.ID == 0 || c.Name != "Alice" {
		t.Errorf("CreateCustomer() = %+v", c)
	}

	_, err = svc.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001"})
	var exists *core.CustomerExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate error = %v, want *core.CustomerExistsError", err)
	}
	if exists.Error() != "Customer with ID 'CUST001' already exists." {
		t.Errorf("message = %q", exists.Error())
	}

	if _, err := svc.CreateCustomer(ctx, core.Customer{}); !errors.Is(err, core.ErrEmptyCustomerID) {
		t.Errorf("empty id error = %v, want ErrEmptyCustomerID", err)
	}
}

func TestLedgerService_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	pub := &recordingPublisher{}
	svc := NewLedgerService(s, s, pub, nil)

	if _, err := svc.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001", Name: "Alice"}); err != nil {
		t.Fatal(err)
	}

	customer, tx, err := svc.RecordTransaction(ctx, "CUST001", decimal.RequireFromString("120.00"), core.NewDate(2025, 1, 15))
	if err != nil {
		t.Fatalf("RecordTransaction() error = %v", err)
	}
	if customer.Name != "Alice" || tx.ID == 0 {
		t.Errorf("RecordTransaction() = %+v, %+v", customer, tx)
	}
	if len(pub.published) != 1 || pub.published[0].ID != tx.ID {
		t.Errorf("published = %+v, want the saved transaction", pub.published)
	}

	t.Run("unknown customer", func(t *testing.T) {
		_, _, err := svc.RecordTransaction(ctx, "NOPE", decimal.NewFromInt(10), core.NewDate(2025, 1, 1))
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("error = %v, want ErrNotFound", err)
		}
		if err.Error() != "Customer with ID 'NOPE' not found." {
			t.Errorf("message = %q", err.Error())
		}
	})

	t.Run("negative amount", func(t *testing.T) {
		_, _, err := svc.RecordTransaction(ctx, "CUST001", decimal.NewFromInt(-5), core.NewDate(2025, 1, 1))
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("missing date", func(t *testing.T) {
		_, _, err := svc.RecordTransaction(ctx, "CUST001", decimal.NewFromInt(5), core.Date{})
		if !errors.Is(err, core.ErrInvalidDate) {
			t.Errorf("error = %v, want ErrInvalidDate", err)
		}
	})

	if len(pub.published) != 1 {
		t.Errorf("failed records must not publish, got %d events", len(pub.published))
	}
}

func TestLedgerService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	pub := &recordingPublisher{err: errors.New("circuit breaker is open")}
	svc := NewLedgerService(s, s, pub, nil)

	if _, err := svc.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.RecordTransaction(ctx, "CUST001", decimal.NewFromInt(60), core.NewDate(2025, 2, 1)); err != nil {
		t.Fatalf("RecordTransaction() error = %v, want nil despite publish failure", err)
	}

	stored, _ := s.ListTransactions(ctx)
	if len(stored) != 1 {
		t.Errorf("stored transactions = %d, want 1", len(stored))
	}
}

func TestLedgerService_Close(t *testing.T) {
	t.Run("nil publisher", func(t *testing.T) {
		svc := NewLedgerService(memory.New(), memory.New(), nil, nil)
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should not return error with nil publisher: %v", err)
		}
	})

	t.Run("closes publisher", func(t *testing.T) {
		pub := &recordingPublisher{}
		svc := NewLedgerService(memory.New(), memory.New(), pub, nil)
		if err := svc.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !pub.closed {
			t.Error("publisher was not closed")
		}
	})
}
