// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	// ErrNoData signals insufficient history, a zero denominator, or an
	// upstream fetch failure. Callers treat it as "skip this symbol".
	ErrNoData = errors.New("no data")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoPosition        = errors.New("no open position")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrTimeout           = errors.New("operation timed out")
	ErrConfigInvalid     = errors.New("invalid configuration")
	ErrDatabaseError     = errors.New("database error")
)

// DataError represents a failure at a market-data collaborator boundary.
// It always wraps ErrNoData so callers can branch with errors.Is.
type DataError struct {
	Provider string
	Symbol   string
	Message  string
	Err      error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Provider, e.Symbol, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Provider, e.Symbol, e.Message)
}

func (e *DataError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNoData
}

// Is reports ErrNoData for every DataError, whatever the cause: callers
// treat any data-boundary failure as "skip this symbol".
func (e *DataError) Is(target error) bool {
	return target == ErrNoData
}

// NewDataError creates a new DataError. A nil cause unwraps to ErrNoData.
func NewDataError(provider, symbol, message string, err error) *DataError {
	if err == nil {
		err = ErrNoData
	}
	return &DataError{
		Provider: provider,
		Symbol:   symbol,
		Message:  message,
		Err:      err,
	}
}

// LedgerError represents a rejected ledger operation. The underlying ledger
// state is unchanged whenever a LedgerError is returned.
type LedgerError struct {
	Ticker string
	Action string
	Reason string
	Err    error
}

func (e *LedgerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger error [%s %s]: %s: %v", e.Action, e.Ticker, e.Reason, e.Err)
	}
	return fmt.Sprintf("ledger error [%s %s]: %s", e.Action, e.Ticker, e.Reason)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// NewLedgerError creates a new LedgerError.
func NewLedgerError(ticker, action, reason string, err error) *LedgerError {
	return &LedgerError{
		Ticker: ticker,
		Action: action,
		Reason: reason,
		Err:    err,
	}
}

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidOrder
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
