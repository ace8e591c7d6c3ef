package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	"rewards/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestMemoryStoreCustomers(t *testing.T) {
	ctx := context.Background()
	s := New()

	c, err := s.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001", Name: "Alice"})
	if err != nil || c.ID != 1 {
		t.Fatalf("unexpected create: c=%+v err=%v", c, err)
	}

	_, err = s.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001", Name: "Other"})
	if !errors.Is(err, core.ErrCustomerExists) {
		t.Fatalf("duplicate create error = %v, want ErrCustomerExists", err)
	}

	got, err := s.FindCustomer(ctx, "CUST001")
	if err != nil || got.Name != "Alice" {
		t.Fatalf("unexpected find: c=%+v err=%v", got, err)
	}

	_, err = s.FindCustomer(ctx, "NOPE")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("find unknown error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreTransactions(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.CreateCustomer(ctx, core.Customer{CustomerID: "CUST001"}); err != nil {
		t.Fatal(err)
	}

	save := func(date string) core.Transaction {
		t.Helper()
		d, _ := core.ParseDate(date)
		tx, err := s.SaveTransaction(ctx, core.Transaction{CustomerID: "CUST001", Amount: decimal.NewFromInt(120), Date: d})
		if err != nil {
			t.Fatalf("save %s: %v", date, err)
		}
		return tx
	}
	first := save("2025-01-01")
	save("2025-01-31")
	save("2025-02-01")

	if first.ID != 1 {
		t.Errorf("first ID = %d, want 1", first.ID)
	}

	_, err := s.SaveTransaction(ctx, core.Transaction{CustomerID: "NOPE", Amount: decimal.NewFromInt(1), Date: core.NewDate(2025, 1, 1)})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("save for unknown customer error = %v, want ErrNotFound", err)
	}

	all, _ := s.ListTransactions(ctx)
	if len(all) != 3 {
		t.Errorf("ListTransactions len = %d, want 3", len(all))
	}

	jan, _ := s.ListCustomerTransactions(ctx, "CUST001", core.NewDate(2025, 1, 1), core.NewDate(2025, 1, 31))
	if len(jan) != 2 {
		t.Errorf("January transactions = %d, want 2 (bounds inclusive)", len(jan))
	}

	none, _ := s.ListCustomerTransactions(ctx, "CUST002", core.NewDate(2025, 1, 1), core.NewDate(2025, 12, 31))
	if len(none) != 0 {
		t.Errorf("other customer transactions = %d, want 0", len(none))
	}
}

func TestNewFromFile(t *testing.T) {
	s, err := NewFromFile("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if all, _ := s.ListTransactions(context.Background()); len(all) != 0 {
		t.Fatalf("expected empty store, got %d transactions", len(all))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	content := `{
  "customers": [{"customerId": "CUST001", "name": "Alice"}],
  "transactions": [
    {"customerId": "CUST001", "amount": "120.00", "transactionDate": "2025-01-15"},
    {"customerId": "CUST001", "amount": 75, "transactionDate": "2025-01-20"}
  ]
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s, err = NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	all, _ := s.ListTransactions(context.Background())
	if len(all) != 2 {
		t.Fatalf("seeded transactions = %d, want 2", len(all))
	}
	if !all[1].Amount.Equal(decimal.NewFromInt(75)) {
		t.Errorf("amount = %s, want 75", all[1].Amount)
	}

	if err := os.WriteFile(path, []byte(`{"transactions":[{"customerId":"X","amount":1,"transactionDate":"2025-01-01"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFromFile(path); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("seed with unknown customer error = %v, want ErrNotFound", err)
	}
}
