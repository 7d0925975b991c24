package logging

import "fmt"

// OperationError annotates an error with the operation and tick it failed in.
type OperationError struct {
	Operation string
	TickID    string
	Err       error
}

func (e *OperationError) Error() string {
	if e == nil || e.Err == nil {
		return ""
	}
	if e.TickID != "" {
		return fmt.Sprintf("%s (tick=%s): %v", e.Operation, e.TickID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewOperationError wraps err with the operation context. A nil err stays nil.
func NewOperationError(operation, tickID string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Operation: operation, TickID: tickID, Err: err}
}
