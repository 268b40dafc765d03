package ics

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateFormat    = errors.New("invalid date format")
	ErrUnknownMonth         = errors.New("unknown month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingRequiredField = errors.New("missing required field")
)

// Header field names reported by MissingFieldError.
const (
	FieldStatementDate    = "statementDate"
	FieldCustomerNumber   = "customerNumber"
	FieldTotalNewExpenses = "totalNewExpenses"
)

// MissingFieldError reports a required header field that could not be found.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingRequiredField, e.Field)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}
