// Package apperror defines the error kinds surfaced by the workflow core.
// Callers branch on kind with errors.Is against the sentinel values.
package apperror

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind categorizes an Error.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindInvalidTransition Kind = "invalid_transition"
	KindNotFound          Kind = "not_found"
	KindDependency        Kind = "dependency"
	KindPermission        Kind = "permission"
)

// PostgreSQL SQLSTATE codes the core cares about.
const (
	CodeUndefinedTable            = "42P01"
	CodeUniqueViolation           = "23505"
	CodeForeignKeyViolation       = "23503"
	CodeInvalidTextRepresentation = "22P02"
)

// Error is the single error type returned by usecases.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	// Code is the store's SQLSTATE for dependency errors, when one was reported.
	Code   string
	Fields map[string]string
	Err    error
}

var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrDependency        = &Error{Kind: KindDependency}
	ErrPermission        = &Error{Kind: KindPermission}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of op or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(op, message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message, Fields: fields}
}

func InvalidTransition(op, message string) *Error {
	return &Error{Kind: KindInvalidTransition, Op: op, Message: message}
}

func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func Permission(op, message string) *Error {
	return &Error{Kind: KindPermission, Op: op, Message: message}
}

// Dependency wraps a store, cache or broker failure. The PostgreSQL error code is
// kept so callers can tell a missing relation from a generic failure.
func Dependency(op string, err error) *Error {
	e := &Error{Kind: KindDependency, Op: op, Message: "dependency failure", Err: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		e.Code = pgErr.Code
		e.Message = pgErr.Message
	}
	return e
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRelationMissing reports whether err is a dependency error caused by a missing table.
func IsRelationMissing(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindDependency && e.Code == CodeUndefinedTable
}
