package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
)

type Store struct {
	mu           sync.RWMutex
	nextCustomer int64
	nextTx       int64
	customers    map[string]core.Customer
	transactions []core.Transaction
}

func New() *Store {
	return &Store{customers: map[string]core.Customer{}}
}

// Seed is the JSON document accepted by NewFromFile.
type Seed struct {
	Customers []struct {
		CustomerID string `json:"customerId"`
		Name       string `json:"name"`
	} `json:"customers"`
	Transactions []struct {
		CustomerID string          `json:"customerId"`
		Amount     decimal.Decimal `json:"amount"`
		Date       core.Date       `json:"transactionDate"`
	} `json:"transactions"`
}

// NewFromFile returns a store preloaded from a JSON seed file. An empty path
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	if strings.TrimSpace(path) == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seed Seed
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	if err := s.Load(context.Background(), seed); err != nil {
		return nil, fmt.Errorf("load seed file %s: %w", path, err)
	}
	return s, nil
}

// Load inserts the seed's customers and then its transactions.
func (s *Store) Load(ctx context.Context, seed Seed) error {
	for _, c := range seed.Customers {
		if _, err := s.CreateCustomer(ctx, core.Customer{CustomerID: c.CustomerID, Name: c.Name}); err != nil {
			return err
		}
	}
	for _, t := range seed.Transactions {
		if _, err := s.SaveTransaction(ctx, core.Transaction{CustomerID: t.CustomerID, Amount: t.Amount, Date: t.Date}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateCustomer(_ context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[c.CustomerID]; ok {
		return core.Customer{}, &core.CustomerExistsError{CustomerID: c.CustomerID}
	}
	s.nextCustomer++
	c.ID = s.nextCustomer
	s.customers[c.CustomerID] = c
	return c, nil
}

func (s *Store) FindCustomer(_ context.Context, customerID string) (core.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[customerID]
	if !ok {
		return core.Customer{}, &core.CustomerNotFoundError{CustomerID: customerID}
	}
	return c, nil
}

func (s *Store) SaveTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[t.CustomerID]; !ok {
		return core.Transaction{}, &core.CustomerNotFoundError{CustomerID: t.CustomerID}
	}
	s.nextTx++
	t.ID = s.nextTx
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...), nil
}

func (s *Store) ListCustomerTransactions(_ context.Context, customerID string, start, end core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.CustomerID != customerID {
			continue
		}
		if t.Date.Before(start) || end.Before(t.Date) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }
