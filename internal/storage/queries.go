package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Customer struct {
	ID         int64
	CustomerID string
	Name       string
}

type TransactionRow struct {
	ID              int64
	CustomerID      string
	Amount          string
	TransactionDate string
}

const createCustomer = `
INSERT INTO customers (customer_id, name)
VALUES (?, ?)
RETURNING id, customer_id, name
`

type CreateCustomerParams struct {
	CustomerID string
	Name       string
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRowContext(ctx, createCustomer, arg.CustomerID, arg.Name)
	var i Customer
	err := row.Scan(&i.ID, &i.CustomerID, &i.Name)
	return i, err
}

const getCustomerByBusinessID = `
SELECT id, customer_id, name FROM customers WHERE customer_id = ?
`

func (q *Queries) GetCustomerByBusinessID(ctx context.Context, customerID string) (Customer, error) {
	row := q.db.QueryRowContext(ctx, getCustomerByBusinessID, customerID)
	var i Customer
	err := row.Scan(&i.ID, &i.CustomerID, &i.Name)
	return i, err
}

const createTransaction = `
INSERT INTO transactions (customer_db_id, amount, transaction_date)
VALUES (?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	CustomerDBID    int64
	Amount          string
	TransactionDate string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction, arg.CustomerDBID, arg.Amount, arg.TransactionDate)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listTransactions = `
SELECT t.id, c.customer_id, t.amount, t.transaction_date
FROM transactions t
JOIN customers c ON c.id = t.customer_db_id
ORDER BY t.id
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

const listCustomerTransactionsInRange = `
SELECT t.id, c.customer_id, t.amount, t.transaction_date
FROM transactions t
JOIN customers c ON c.id = t.customer_db_id
WHERE c.customer_id = ?
  AND t.transaction_date BETWEEN ? AND ?
ORDER BY t.transaction_date, t.id
`

type ListCustomerTransactionsInRangeParams struct {
	CustomerID string
	StartDate  string
	EndDate    string
}

func (q *Queries) ListCustomerTransactionsInRange(ctx context.Context, arg ListCustomerTransactionsInRangeParams) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listCustomerTransactionsInRange, arg.CustomerID, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	return scanTransactionRows(rows)
}

func scanTransactionRows(rows *sql.Rows) ([]TransactionRow, error) {
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.CustomerID, &i.Amount, &i.TransactionDate); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
