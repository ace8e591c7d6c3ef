package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/store"
)

// EventPublisher announces recorded transactions to other processes.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
}

// LedgerService records customers and their purchases, then publishes a
// TransactionRecorded event for each stored purchase.
type LedgerService struct {
	customers store.CustomerStore
	writer    store.TransactionWriter
	publisher EventPublisher
	logger    *applog.Logger
	events    *applog.StructuredLogger
}

// NewLedgerService wires the service. publisher may be nil, in which case
// events are skipped; pass an untyped nil, never a nil pointer.
func NewLedgerService(customers store.CustomerStore, writer store.TransactionWriter, publisher EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentLedger)
	return &LedgerService{
		customers: customers,
		writer:    writer,
		publisher: publisher,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
	}
}

// CreateCustomer registers a customer under a unique business id.
func (s *LedgerService) CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error) {
	if err := c.Validate(); err != nil {
		return core.Customer{}, err
	}

	created, err := s.customers.CreateCustomer(ctx, c)
	if err != nil {
		return core.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	s.logger.InfoContext(ctx, "Customer created",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldCustomerID, created.CustomerID)
	return created, nil
}

// RecordTransaction stores a purchase for an existing customer and returns
// the customer with the saved transaction. Publishing the event is best
// effort: the transaction is already stored when it fails.
func (s *LedgerService) RecordTransaction(ctx context.Context, customerID string, amount decimal.Decimal, date core.Date) (core.Customer, core.Transaction, error) {
	tx := core.Transaction{CustomerID: customerID, Amount: amount, Date: date}
	if err := tx.Validate(); err != nil {
		return core.Customer{}, core.Transaction{}, err
	}

	customer, err := s.customers.FindCustomer(ctx, customerID)
	if err != nil {
		return core.Customer{}, core.Transaction{}, err
	}

	saved, err := s.writer.SaveTransaction(ctx, tx)
	if err != nil {
		return core.Customer{}, core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.events.LogTransactionRecorded(ctx, saved.ID, saved.CustomerID, saved.Amount.String(), saved.Date.String())

	if err := s.publish(ctx, saved); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish transaction recorded event",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldTransactionID, saved.ID,
			applog.FieldError, err)
	}

	return customer, saved, nil
}

func (s *LedgerService) publish(ctx context.Context, t core.Transaction) error {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping event",
			applog.FieldTransactionID, t.ID)
		return nil
	}
	return s.publisher.PublishTransactionRecorded(ctx, t)
}

// Close releases the publisher when it holds a connection.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
