package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Msg string
	Err error
}

func (e NotFoundError) Error() string {
	if e.Msg == "" {
		return "not found"
	}
	return e.Msg
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError carries per-field messages when they are known.
type ValidationError struct {
	Msg    string
	Fields map[string]string
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "validation failed"
}

type ConflictError struct {
	Msg string
	Err error
}

func (e ConflictError) Error() string {
	if e.Msg == "" {
		return "conflict"
	}
	return e.Msg
}

func (e ConflictError) Unwrap() error { return e.Err }

type UnauthorizedError struct {
	Msg string
}

func (e UnauthorizedError) Error() string {
	if e.Msg == "" {
		return "unauthorized"
	}
	return e.Msg
}

// UnavailableError means a downstream dependency could not serve the call,
// either because it failed or because its breaker is open.
type UnavailableError struct {
	Dependency string
	Err        error
}

func (e UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Dependency)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e UnavailableError) Unwrap() error { return e.Err }

func NewNotFound(format string, args ...any) error {
	return NotFoundError{Msg: fmt.Sprintf(format, args...)}
}

func NewValidation(msg string) error {
	return ValidationError{Msg: msg}
}

func NewConflict(msg string) error {
	return ConflictError{Msg: msg}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target UnauthorizedError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}
