package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"

	"rewards/internal/core"
	"rewards/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestTransactionDocRoundTrip(t *testing.T) {
	in := core.Transaction{
		ID:         7,
		CustomerID: "CUST001",
		Amount:     decimal.RequireFromString("120.45"),
		Date:       core.NewDate(2025, 1, 15),
	}

	doc, err := toTransactionDoc(in)
	if err != nil {
		t.Fatalf("toTransactionDoc() error = %v", err)
	}
	if doc.Date != "2025-01-15" {
		t.Errorf("doc.Date = %q, want 2025-01-15", doc.Date)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("bson.Marshal() error = %v", err)
	}
	var decoded transactionDoc
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("bson.Unmarshal() error = %v", err)
	}

	out, err := fromTransactionDoc(decoded)
	if err != nil {
		t.Fatalf("fromTransactionDoc() error = %v", err)
	}
	if out.ID != in.ID || out.CustomerID != in.CustomerID || out.Date.String() != in.Date.String() {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
	if !out.Amount.Equal(in.Amount) {
		t.Errorf("amount = %s, want %s", out.Amount, in.Amount)
	}
}

func TestFromTransactionDoc_BadDate(t *testing.T) {
	doc, _ := toTransactionDoc(core.Transaction{Amount: decimal.NewFromInt(1), Date: core.NewDate(2025, 1, 1)})
	doc.Date = "not-a-date"
	if _, err := fromTransactionDoc(doc); err == nil {
		t.Fatal("fromTransactionDoc() expected error for malformed date")
	}
}

func TestCustomerRangeFilter(t *testing.T) {
	f := customerRangeFilter("CUST001", core.NewDate(2025, 1, 1), core.NewDate(2025, 3, 31))
	if f["customer_id"] != "CUST001" {
		t.Errorf("customer_id = %v", f["customer_id"])
	}
	date, ok := f["transaction_date"].(bson.M)
	if !ok {
		t.Fatalf("transaction_date filter type = %T", f["transaction_date"])
	}
	if date["$gte"] != "2025-01-01" || date["$lte"] != "2025-03-31" {
		t.Errorf("transaction_date = %v", date)
	}
}
