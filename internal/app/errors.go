package app

import (
	"errors"
	"fmt"
)

// ErrMalformedState means the index points at a vault blob that does not
// exist. The record cannot be merged safely until an operator repairs it.
var ErrMalformedState = errors.New("malformed offer state")

// Error codes carried by DomainError.
const (
	CodeInvalidKey = "invalid_key"
	CodeNotFound   = "not_found"
	CodeBadInput   = "bad_input"
)

// DomainError is a caller mistake, as opposed to a storage failure.
type DomainError struct {
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(code, message string, details any) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// IsDomainError reports whether err wraps a DomainError with the given code.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
