// Package store declares the persistence ports the services depend on.
// Implementations live in internal/store/memory, internal/store/mongo and
// internal/storage (SQLite).
package store

import (
	"context"

	"rewards/internal/core"
)

// Ports for outbound adapters.
type (
	CustomerStore interface {
		// CreateCustomer persists c and returns it with its storage ID set.
		// A taken business id yields a *core.CustomerExistsError.
		CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
		// FindCustomer looks a customer up by business id. An unknown id
		// yields a *core.CustomerNotFoundError.
		FindCustomer(ctx context.Context, customerID string) (core.Customer, error)
	}

	TransactionWriter interface {
		// SaveTransaction persists t for an existing customer and returns it
		// with its storage ID set.
		SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	}

	TransactionReader interface {
		// ListTransactions returns every stored transaction.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// ListCustomerTransactions returns the customer's transactions dated
		// within [start, end], both bounds inclusive.
		ListCustomerTransactions(ctx context.Context, customerID string, start, end core.Date) ([]core.Transaction, error)
	}

	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Store is the full surface a backend provides.
	Store interface {
		CustomerStore
		TransactionWriter
		TransactionReader
		Pinger
		Close() error
	}
)
