package common

import "fmt"

// DomainError carries a stable machine-readable code alongside a
// human-readable message. Handlers translate the code to an HTTP status;
// the wrapped cause is logged server-side and never sent to callers.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a DomainError without an underlying cause
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// WrapDomainError creates a DomainError wrapping an underlying cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}
