package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRecord = errors.New("invalid compensation record")

	// ErrDeductionValueOutOfRange classifies under ErrInvalidRecord so
	// callers checking for the broad class still match.
	ErrDeductionValueOutOfRange = fmt.Errorf("%w: deduction value out of range", ErrInvalidRecord)

	ErrRunNotFound = errors.New("payroll run not found")
)

// RecordError describes why a single employee's computation was rejected.
// It wraps one of the sentinel kinds above.
type RecordError struct {
	EmployeeID string
	Field      string
	Reason     string
	kind       error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("employee %s: %s: %s", e.EmployeeID, e.Field, e.Reason)
}

func (e *RecordError) Unwrap() error {
	return e.kind
}

func invalidRecord(employeeID, field, reason string) *RecordError {
	return &RecordError{EmployeeID: employeeID, Field: field, Reason: reason, kind: ErrInvalidRecord}
}

func deductionOutOfRange(employeeID, field, reason string) *RecordError {
	return &RecordError{EmployeeID: employeeID, Field: field, Reason: reason, kind: ErrDeductionValueOutOfRange}
}
