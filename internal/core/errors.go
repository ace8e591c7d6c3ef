package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both an unknown customer and a customer without
	// activity in the requested window; callers cannot tell them apart.
	ErrNotFound       = errors.New("not found")
	ErrCustomerExists = errors.New("customer already exists")
)

// NoActivityError reports that a customer has no transactions in a window.
type NoActivityError struct {
	CustomerID string
	Start      Date
	End        Date
}

func (e *NoActivityError) Error() string {
	return fmt.Sprintf("Customer with ID '%s' not found or has no transactions for the period: %s to %s",
		e.CustomerID, e.Start, e.End)
}

func (e *NoActivityError) Unwrap() error { return ErrNotFound }

// CustomerNotFoundError reports a lookup by business id that matched nothing.
type CustomerNotFoundError struct {
	CustomerID string
}

func (e *CustomerNotFoundError) Error() string {
	return fmt.Sprintf("Customer with ID '%s' not found.", e.CustomerID)
}

func (e *CustomerNotFoundError) Unwrap() error { return ErrNotFound }

// CustomerExistsError reports a business id that is already taken.
type CustomerExistsError struct {
	CustomerID string
}

func (e *CustomerExistsError) Error() string {
	return fmt.Sprintf("Customer with ID '%s' already exists.", e.CustomerID)
}

func (e *CustomerExistsError) Unwrap() error { return ErrCustomerExists }
