package storage

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a StorageError. The set is closed; handlers map each
// kind to one HTTP status.
type ErrorKind uint8

const (
	// KindNotFound: the requested record does not exist.
	KindNotFound ErrorKind = iota
	// KindAlreadyExists: a uniqueness rule rejected the write.
	KindAlreadyExists
	// KindInvalidReference: a cross-entity pointer names a missing record.
	KindInvalidReference
	// KindValidationError: the input failed a shape or format rule.
	KindValidationError
	// KindOrphanedRecord: a record lost its owner. Declared for API
	// completeness; no current operation produces it.
	KindOrphanedRecord
	// KindSystemError: a lower-level store failure, wrapped.
	KindSystemError
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidReference:
		return "invalid_reference"
	case KindValidationError:
		return "validation_error"
	case KindOrphanedRecord:
		return "orphaned_record"
	default:
		return "system_error"
	}
}

// StorageError is the typed error every storage operation returns. It passes
// through the stack unchanged; only the request layer turns it into a
// user-visible message.
type StorageError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *StorageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StorageError) Unwrap() error { return e.cause }

// NotFound builds a KindNotFound error.
func NotFound(msg string) *StorageError {
	return &StorageError{Kind: KindNotFound, Message: msg}
}

// AlreadyExists builds a KindAlreadyExists error.
func AlreadyExists(msg string) *StorageError {
	return &StorageError{Kind: KindAlreadyExists, Message: msg}
}

// InvalidReference builds a KindInvalidReference error.
func InvalidReference(msg string) *StorageError {
	return &StorageError{Kind: KindInvalidReference, Message: msg}
}

// ValidationError builds a KindValidationError error.
func ValidationError(msg string) *StorageError {
	return &StorageError{Kind: KindValidationError, Message: msg}
}

// SystemError wraps a lower-level failure as KindSystemError.
func SystemError(msg string, cause error) *StorageError {
	return &StorageError{Kind: KindSystemError, Message: msg, cause: cause}
}

// KindOf extracts the kind from err. Non-storage errors report
// KindSystemError, matching how unclassified failures surface.
func KindOf(err error) ErrorKind {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindSystemError
}

// IsKind reports whether err is a StorageError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Kind == kind
}
