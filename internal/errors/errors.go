package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents an hl error code.
type ErrorCode string

const (
	ErrValidation ErrorCode = "VALIDATION" // 400
	ErrNotFound   ErrorCode = "NOT_FOUND"  // 404
	ErrLocked     ErrorCode = "LOCKED"     // 409
	ErrBusy       ErrorCode = "BUSY"       // 503 (transient, safe to retry)
	ErrEditor     ErrorCode = "EDITOR"     // 500
	ErrInternal   ErrorCode = "INTERNAL"   // 500
)

// HLError represents a structured error with code, status, and details.
type HLError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *HLError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidation creates a 400 error for invalid input (empty body, empty
// query, unknown author kind).
func NewValidation(msg string) *HLError {
	return &HLError{
		Code:    ErrValidation,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for an unknown entry id.
func NewNotFound(id int64) *HLError {
	return &HLError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("no entry with id %d", id),
		Details: map[string]any{"id": id},
	}
}

// NewLocked creates a 409 error for an entry that is already being edited
// by a live process. The pid is a best-effort label and may be 0 when the
// holder has not recorded it yet.
func NewLocked(id int64, pid int) *HLError {
	msg := fmt.Sprintf("entry #%d is already being edited", id)
	if pid > 0 {
		msg = fmt.Sprintf("entry #%d is already being edited (pid %d)", id, pid)
	}
	return &HLError{
		Code:    ErrLocked,
		Status:  409,
		Message: msg,
		Details: map[string]any{"id": id, "pid": pid},
	}
}

// NewBusy creates a 503 error for transient store contention. Callers may
// retry a bounded number of times before surfacing it.
func NewBusy(err error) *HLError {
	msg := "store is busy"
	if err != nil {
		msg = fmt.Sprintf("store is busy: %s", err.Error())
	}
	return &HLError{
		Code:    ErrBusy,
		Status:  503,
		Message: msg,
	}
}

// NewEditor creates a 500 error for an editor process that failed to launch
// or exited abnormally. User cancellation (empty buffer) is not an error and
// never produces this.
func NewEditor(msg string) *HLError {
	return &HLError{
		Code:    ErrEditor,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *HLError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &HLError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is an HLError with the given code. Wrapped
// HLErrors match as well.
func Is(err error, code ErrorCode) bool {
	var hlErr *HLError
	if stderrors.As(err, &hlErr) {
		return hlErr.Code == code
	}
	return false
}

// IsRetryable reports whether the error is transient contention worth
// retrying.
func IsRetryable(err error) bool {
	return Is(err, ErrBusy)
}
