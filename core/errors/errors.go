// Package errors provides standardized error types and helpers for the corpus
// loading pipeline and its callers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates invalid input or a validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrCacheInvalid indicates a snapshot could not be read or trusted
	ErrCacheInvalid = errors.New("cache invalid")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// ValidationError reports a schema violation in one of the source datasets.
// It aborts the whole load attempt; there is no partial recovery from a
// malformed dataset.
type ValidationError struct {
	Dataset  string // Dataset name (e.g., "arabic", "translation", "tafsir")
	VerseKey string // Offending verse key, if known
	Message  string // Human-readable error message
	Err      error  // Underlying error, if any
}

func (e *ValidationError) Error() string {
	switch {
	case e.Dataset != "" && e.VerseKey != "":
		return fmt.Sprintf("validation failed in %s for verse %s: %s", e.Dataset, e.VerseKey, e.Message)
	case e.Dataset != "":
		return fmt.Sprintf("validation failed in %s: %s", e.Dataset, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// CacheError reports a snapshot read or decode failure. Callers recover by
// rebuilding from source; a CacheError never fails a load on its own.
type CacheError struct {
	Path string // Snapshot file path
	Op   string // Operation being performed (e.g., "read", "decode")
	Err  error  // Underlying error
}

func (e *CacheError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("cache %s failed for %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrCacheInvalid
}

// NotFoundError represents a missing resource with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "verse", "subscriber", "file")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether err is or wraps ErrInvalidInput.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCache reports whether err is or wraps ErrCacheInvalid.
func IsCache(err error) bool {
	return errors.Is(err, ErrCacheInvalid)
}

// Wrap adds context to an error with fmt.Errorf-style %w wrapping.
// Returns nil if err is nil.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", msg, err)
}
