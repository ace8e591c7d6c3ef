package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	applog "rewards/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateCustomer implements store.CustomerStore
func (r *SQLiteRepository) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}

	row, err := r.queries.CreateCustomer(ctx, CreateCustomerParams{
		CustomerID: c.CustomerID,
		Name:       c.Name,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return core.Customer{}, &core.CustomerExistsError{CustomerID: c.CustomerID}
		}
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	slog.InfoContext(ctx, "Customer saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate,
		"id", row.ID,
		applog.FieldCustomerID, row.CustomerID)
	return toCoreCustomer(row), nil
}

// FindCustomer implements store.CustomerStore
func (r *SQLiteRepository) FindCustomer(ctx context.Context, customerID string) (core.Customer, error) {
	row, err := r.queries.GetCustomerByBusinessID(ctx, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Customer{}, &core.CustomerNotFoundError{CustomerID: customerID}
	}
	if err != nil {
		return core.Customer{}, fmt.Errorf("get customer %s: %w", customerID, err)
	}
	return toCoreCustomer(row), nil
}

// SaveTransaction implements store.TransactionWriter
func (r *SQLiteRepository) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	customer, err := q.GetCustomerByBusinessID(ctx, t.CustomerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, &core.CustomerNotFoundError{CustomerID: t.CustomerID}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get customer %s: %w", t.CustomerID, err)
	}

	id, err := q.CreateTransaction(ctx, CreateTransactionParams{
		CustomerDBID:    customer.ID,
		Amount:          t.Amount.String(),
		TransactionDate: t.Date.String(),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	t.ID = id
	fields := applog.NewFields().
		WithTransaction(id, t.CustomerID, t.Amount.String(), t.Date.String()).
		WithOperation(applog.OpRecord).
		WithComponent(applog.ComponentStorage)
	slog.InfoContext(ctx, "Transaction saved to SQLite", fields.ToSlice()...)
	return t, nil
}

// ListTransactions implements store.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	slog.DebugContext(ctx, "Transactions loaded from SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpList,
		applog.FieldCount, len(rows))
	return toCoreTransactions(rows)
}

// ListCustomerTransactions implements store.TransactionReader
func (r *SQLiteRepository) ListCustomerTransactions(ctx context.Context, customerID string, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.queries.ListCustomerTransactionsInRange(ctx, ListCustomerTransactionsInRangeParams{
		CustomerID: customerID,
		StartDate:  start.String(),
		EndDate:    end.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", customerID, err)
	}
	return toCoreTransactions(rows)
}

func toCoreCustomer(c Customer) core.Customer {
	return core.Customer{ID: c.ID, CustomerID: c.CustomerID, Name: c.Name}
}

func toCoreTransactions(rows []TransactionRow) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, fmt.Errorf("parse amount of transaction %d: %w", row.ID, err)
		}
		date, err := core.ParseDate(row.TransactionDate)
		if err != nil {
			return nil, fmt.Errorf("parse date of transaction %d: %w", row.ID, err)
		}
		out[i] = core.Transaction{
			ID:         row.ID,
			CustomerID: row.CustomerID,
			Amount:     amount,
			Date:       date,
		}
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
