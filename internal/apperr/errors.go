package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports bad input the caller can correct.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validation builds a ValidationError for a field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a reference to a missing or archived entity.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// NotFound builds a NotFoundError for an entity reference.
func NotFound(entity string, id any) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError reports an invariant violation under concurrent-looking
// access, e.g. starting a second focus session.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s", e.Reason)
}

// Conflict builds a ConflictError.
func Conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

// CycleError reports a parent/child assignment that would make a task its
// own ancestor.
type CycleError struct {
	TaskID uint
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("task #%d would become its own ancestor", e.TaskID)
}

// TransientStorageError wraps storage contention that persisted past the
// internal retry budget. Callers may retry the whole operation.
type TransientStorageError struct {
	Attempts int
	Err      error
}

func (e *TransientStorageError) Error() string {
	return fmt.Sprintf("storage busy after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientStorageError) Unwrap() error {
	return e.Err
}

// FormatError reports corrupt or incompatible persisted data on import.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad snapshot format: %s", e.Reason)
}

// Format builds a FormatError.
func Format(reason string) error {
	return &FormatError{Reason: reason}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
