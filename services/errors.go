package services

import (
	"errors"
	"fmt"

	"tournament-dashboard/repository"

	"gorm.io/gorm"
)

// NotFoundError is returned when an entity id does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports an operation the current state does not allow.
// Err optionally names the underlying cause.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return e.Err }

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// ErrStorageDisabled is returned by uploads when no object store is configured.
var ErrStorageDisabled = errors.New("file storage is not configured")

// ErrCapacityReached is wrapped by the ConflictError returned for approvals
// past maxParticipants.
var ErrCapacityReached = errors.New("tournament is full")

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func forbidden(msg string) error {
	return &ForbiddenError{Message: msg}
}

// notFound converts repository and gorm misses into a NotFoundError for entity.
func notFound(entity string, err error) error {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity}
	}
	return err
}

// duplicate converts unique-index violations into a ConflictError.
func duplicate(msg string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Message: msg}
	}
	return err
}

// missingParent converts foreign-key violations into a NotFoundError for the
// referenced entity.
func missingParent(entity string, err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &NotFoundError{Entity: entity}
	}
	return err
}
