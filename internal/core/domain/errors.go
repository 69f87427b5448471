// Package domain defines the core domain models for deckshare.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Codes follow the format DS-<AREA>-<NNNN>, where the first digit of the
// numeric part mirrors the HTTP status class the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "DS-LIST-5001")
	Message string // Human-readable message, safe to show to clients
	Details string // Optional additional details, server-side only
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// Wrap returns a copy of the error wrapping the given cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Listing errors (LIST).
var (
	// ErrDirectoryUnreadable indicates the browse target cannot be opened as a
	// directory: it does not exist, is a regular file, or access is denied.
	ErrDirectoryUnreadable = NewDomainError("DS-LIST-5001", "directory unreadable")

	// ErrEntryUnreadable indicates a single directory entry was dropped from a
	// listing because its name or metadata could not be read.
	ErrEntryUnreadable = NewDomainError("DS-LIST-2001", "entry unreadable")

	// ErrPathRejected indicates the relative path was refused by path hardening.
	ErrPathRejected = NewDomainError("DS-LIST-4001", "path rejected")
)

// Preview errors (PREV).
var (
	// ErrPreviewUnsupported indicates the file is not an image the
	// thumbnailer can decode.
	ErrPreviewUnsupported = NewDomainError("DS-PREV-4001", "preview not supported for this file")

	// ErrPreviewNotFound indicates the file to preview does not exist.
	ErrPreviewNotFound = NewDomainError("DS-PREV-4040", "file not found")

	// ErrPreviewFailed indicates the image could not be decoded or encoded.
	ErrPreviewFailed = NewDomainError("DS-PREV-5001", "preview failed")
)

// Startup errors (BOOT).
var (
	// ErrTLSMaterial indicates the certificate or key could not be loaded.
	ErrTLSMaterial = NewDomainError("DS-BOOT-5001", "tls material unreadable")

	// ErrInvalidConfig indicates the configuration failed validation.
	ErrInvalidConfig = NewDomainError("DS-BOOT-4001", "invalid configuration")
)

// System errors (SYS).
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("DS-SYS-5000", "internal server error")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("DS-SYS-4290", "too many requests")
)
