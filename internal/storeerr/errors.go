// Package storeerr defines the error taxonomy shared by the storage engine,
// the authorization layer, and the tool surface. Codes are stable strings
// so they can be echoed verbatim in the RPC error envelope.
package storeerr

import "fmt"

// Code identifies a class of failure from the storage/authorization engine.
type Code string

const (
	InvalidID                  Code = "INVALID_ID"
	PathEscape                 Code = "PATH_ESCAPE"
	PayloadTooLarge            Code = "PAYLOAD_TOO_LARGE"
	PayloadTooDeep             Code = "PAYLOAD_TOO_DEEP"
	NotFound                   Code = "NOT_FOUND"
	AlreadyExists              Code = "ALREADY_EXISTS"
	Conflict                   Code = "CONFLICT"
	Forbidden                  Code = "FORBIDDEN"
	NoPermissionsDefined       Code = "NO_PERMISSIONS_DEFINED"
	InsufficientRead           Code = "INSUFFICIENT_READ"
	InsufficientWrite          Code = "INSUFFICIENT_WRITE"
	ETagMismatch               Code = "ETAG_MISMATCH"
	LockTimeout                Code = "LOCK_TIMEOUT"
	CoordinatorHandoverRequired Code = "COORDINATOR_HANDOVER_REQUIRED"
	HandoffAuthorityError      Code = "HANDOFF_AUTHORITY_ERROR"
	WaitTimeout                Code = "WAIT_TIMEOUT"
	IOError                    Code = "IO_ERROR"
)

// StoreError is a typed engine failure carrying a stable Code plus optional
// structured Details (e.g. the list of coordinator-handover candidates).
type StoreError struct {
	Code    Code
	Message string
	Details any
}

func (e *StoreError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds a StoreError with no details.
func New(code Code, message string) *StoreError {
	return &StoreError{Code: code, Message: message}
}

// WithDetails builds a StoreError carrying structured Details.
func WithDetails(code Code, message string, details any) *StoreError {
	return &StoreError{Code: code, Message: message, Details: details}
}

// CodeOf extracts the Code from err if it (or something it wraps) is a
// *StoreError, returning ("", false) otherwise.
func CodeOf(err error) (Code, bool) {
	se, ok := From(err)
	if !ok {
		return "", false
	}
	return se.Code, true
}

// From extracts the *StoreError from err if it (or something it wraps) is
// one, returning (nil, false) otherwise.
func From(err error) (*StoreError, bool) {
	var se *StoreError
	if asStoreError(err, &se) {
		return se, true
	}
	return nil, false
}

// asStoreError walks err's single-error Unwrap chain by hand, so callers
// only ever need storeerr, never the errors package, for this check.
func asStoreError(err error, target **StoreError) bool {
	for err != nil {
		if se, ok := err.(*StoreError); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
