package models

import (
	"encoding/json"
	"fmt"
)

// Error codes reported to the frontend. The code is the machine-readable
// half of the error contract; the message is for humans.
const (
	CodeUnknownError     = "UNKNOWN_ERROR"
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeInvalidStoreID   = "INVALID_STORE_ID"
	CodeInvalidCategory  = "INVALID_CATEGORY"
	CodePackageNotFound  = "PACKAGE_NOT_FOUND"
	CodeStoreNotFound    = "STORE_NOT_FOUND"
	CodeCacheError       = "CACHE_ERROR"
	CodeLocked           = "LOCKED"
	CodeDiskFull         = "DISK_FULL"
	CodeInstallFailed    = "INSTALL_FAILED"
	CodeRemoveFailed     = "REMOVE_FAILED"
	CodeEssentialPackage = "ESSENTIAL_PACKAGE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// BridgeError is an expected error: it carries a machine-readable code and
// is rendered as JSON on stderr with exit code 1. Anything that is not a
// BridgeError is treated as unexpected and exits 2.
type BridgeError struct {
	Message string
	Code    string
	Details string
	Err     error
}

// Error implements the error interface.
func (e *BridgeError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *BridgeError) Unwrap() error {
	return e.Err
}

// JSON renders the error in the wire format consumed by the frontend:
// {"error": ..., "code": ..., "details"?: ...}.
func (e *BridgeError) JSON() string {
	payload := struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Details string `json:"details,omitempty"`
	}{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		// The payload is three strings; this cannot fail in practice.
		return fmt.Sprintf(`{"error": %q, "code": %q}`, e.Message, e.Code)
	}
	return string(data)
}

// NewError creates a BridgeError with the given code and message.
func NewError(code, format string, args ...interface{}) *BridgeError {
	return &BridgeError{
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// NewErrorWithDetails creates a BridgeError carrying additional context.
func NewErrorWithDetails(code, message, details string) *BridgeError {
	return &BridgeError{
		Message: message,
		Code:    code,
		Details: details,
	}
}

// PackageNotFound creates the standard not-found error for a package.
func PackageNotFound(name string) *BridgeError {
	return &BridgeError{
		Message: fmt.Sprintf("Package not found: %s", name),
		Code:    CodePackageNotFound,
		Details: name,
	}
}

// CacheErrorf creates a cache/backend error.
func CacheErrorf(details string, format string, args ...interface{}) *BridgeError {
	return &BridgeError{
		Message: fmt.Sprintf(format, args...),
		Code:    CodeCacheError,
		Details: details,
	}
}

// Internal wraps an unexpected error for reporting with exit code 2.
func Internal(err error) *BridgeError {
	return &BridgeError{
		Message: fmt.Sprintf("Unexpected error: %v", err),
		Code:    CodeInternalError,
		Err:     err,
	}
}
