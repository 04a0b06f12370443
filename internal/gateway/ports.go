// Package gateway defines the record store ports every ledger component
// reads and writes through.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"garagetracker/internal/core"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrConstraint = errors.New("constraint violation")
	ErrNoSession  = errors.New("no authenticated session")
	ErrBadFilter  = errors.New("unsupported filter")
)

// Session identifies the caller on whose behalf a store call runs.
type Session struct {
	UserID string
}

// Check returns ErrNoSession when the session carries no identity.
func (s Session) Check() error {
	if strings.TrimSpace(s.UserID) == "" {
		return ErrNoSession
	}
	return nil
}

// StoreError wraps any failure surfaced by a store implementation.
type StoreError struct {
	Op     string // list, create, update, delete
	Entity string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Fail builds a *StoreError.
func Fail(op, entity string, err error) error {
	return &StoreError{Op: op, Entity: entity, Err: err}
}

// Ports for record stores.
type (
	Table[T any] interface {
		List(ctx context.Context, sess Session, f Filter) ([]T, error)
		Create(ctx context.Context, sess Session, rec T) (T, error)
		// Update replaces the stored row whose ID matches rec.
		Update(ctx context.Context, sess Session, rec T) (T, error)
		Delete(ctx context.Context, sess Session, id string) error
	}

	Gateway interface {
		Customers() Table[core.Customer]
		ServiceRecords() Table[core.ServiceRecord]
		Employees() Table[core.Employee]
		SalaryPayments() Table[core.SalaryPayment]
		MarketingExpenses() Table[core.MarketingExpense]
	}
)

// Entity names used in StoreError and by the stores' schemas.
const (
	EntityCustomers         = "customers"
	EntityServiceRecords    = "service_history"
	EntityEmployees         = "employees"
	EntitySalaryPayments    = "salary_payments"
	EntityMarketingExpenses = "marketing_expenses"
)
