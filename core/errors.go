package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports missing or malformed input, or a reference to a record that does not exist.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldValidationError builds a ValidationError citing a single field.
func NewFieldValidationError(field, msg string) error {
	return &ValidationError{
		Err:    errors.New(field + ": " + msg),
		Fields: []FieldError{{Field: field, Error: msg}},
	}
}

func (err *ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	return strings.Join(msgs, "; ")
}

// Field returns the message reported for `name`, if any.
func (err *ValidationError) Field(name string) (string, bool) {
	for _, f := range err.Fields {
		if f.Field == name {
			return f.Error, true
		}
	}
	return "", false
}

// StorageError wraps a failure of the persistence medium.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (err *StorageError) Error() string { return "storage: " + err.Op + ": " + err.Err.Error() }
func (err *StorageError) Unwrap() error { return err.Err }

// NotFoundError is returned when an operation requires a record that does not exist.
type NotFoundError struct {
	Entity string
	ID     int64
}

func NewNotFoundError(entity string, id int64) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", err.Entity, err.ID)
}

// DuplicateAssignmentError is returned when a learner is already assigned to a session.
type DuplicateAssignmentError struct {
	SessionID int64
	LearnerID int64
}

func (err *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("learner %d is already assigned to session %d", err.LearnerID, err.SessionID)
}

// PresenceWindowExpiredError is returned when attendance is written outside of the configured window.
type PresenceWindowExpiredError struct {
	Start string
	End   string
}

func (err *PresenceWindowExpiredError) Error() string {
	return fmt.Sprintf("attendance can only be recorded on the session day between %s and %s", err.Start, err.End)
}

// InUseError is returned when deleting a record that other records still reference.
type InUseError struct {
	Entity     string
	ID         int64
	Dependents string
}

func (err *InUseError) Error() string {
	return fmt.Sprintf("%s %d is still referenced by %s", err.Entity, err.ID, err.Dependents)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsStorage(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}

func IsDuplicateAssignment(err error) bool {
	var e *DuplicateAssignmentError
	return errors.As(err, &e)
}

func IsPresenceWindowExpired(err error) bool {
	var e *PresenceWindowExpiredError
	return errors.As(err, &e)
}

func IsInUse(err error) bool {
	var e *InUseError
	return errors.As(err, &e)
}

// Message maps an error to the text shown to end users. Storage failures never leak their cause.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var (
		vErr   *ValidationError
		nfErr  *NotFoundError
		dupErr *DuplicateAssignmentError
		pwErr  *PresenceWindowExpiredError
		iuErr  *InUseError
		stErr  *StorageError
	)
	switch {
	case errors.As(err, &vErr):
		if len(vErr.Fields) > 0 {
			f := vErr.Fields[0]
			return fmt.Sprintf("invalid %s: %s", f.Field, f.Error)
		}
		return "invalid input"
	case errors.As(err, &nfErr):
		return fmt.Sprintf("this %s no longer exists", nfErr.Entity)
	case errors.As(err, &dupErr):
		return "this learner is already assigned to the session"
	case errors.As(err, &pwErr):
		return fmt.Sprintf("the attendance period has expired (%s-%s)", pwErr.Start, pwErr.End)
	case errors.As(err, &iuErr):
		return fmt.Sprintf("this %s cannot be deleted while %s still reference it", iuErr.Entity, iuErr.Dependents)
	case errors.As(err, &stErr):
		return "the local database could not complete the operation"
	default:
		return "an unexpected error occurred"
	}
}
