package oql

import (
	"fmt"
)

// Error classifications for query derivation failures
var (
	// ErrMalformedQuery is returned when a mandatory clause keyword or the
	// region path cannot be located in the query statement.
	ErrMalformedQuery = &QueryError{code: "malformed_query", msg: "malformed query"}

	// ErrIllegalState is returned when derivation is attempted in an
	// unsupported order or the query shape defeats alias resolution.
	ErrIllegalState = &QueryError{code: "illegal_state", msg: "illegal state"}

	// ErrUnsupportedOperator is returned when a predicate part maps to no
	// known OQL operator.
	ErrUnsupportedOperator = &QueryError{code: "unsupported_operator", msg: "unsupported operator"}
)

// QueryError represents a query derivation error classified by code
type QueryError struct {
	code string
	msg  string
	err  error // wrapped error
}

// Error implements the error interface
func (e *QueryError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Code returns the error code
func (e *QueryError) Code() string {
	return e.code
}

// Unwrap returns the wrapped error
func (e *QueryError) Unwrap() error {
	return e.err
}

// Is checks if the error matches the target by code
func (e *QueryError) Is(target error) bool {
	if t, ok := target.(*QueryError); ok {
		return e.code == t.code
	}
	return false
}

// NewMalformedQueryError creates a malformed-query error with a formatted message
func NewMalformedQueryError(format string, args ...interface{}) *QueryError {
	return &QueryError{
		code: ErrMalformedQuery.code,
		msg:  fmt.Sprintf(format, args...),
	}
}

// NewIllegalStateError creates an illegal-state error with a formatted message
func NewIllegalStateError(format string, args ...interface{}) *QueryError {
	return &QueryError{
		code: ErrIllegalState.code,
		msg:  fmt.Sprintf(format, args...),
	}
}

// NewUnsupportedOperatorError creates an unsupported-operator error with a formatted message
func NewUnsupportedOperatorError(format string, args ...interface{}) *QueryError {
	return &QueryError{
		code: ErrUnsupportedOperator.code,
		msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a query error of the same code
func Wrap(err error, code, format string, args ...interface{}) *QueryError {
	return &QueryError{
		code: code,
		msg:  fmt.Sprintf(format, args...),
		err:  err,
	}
}

// IsQueryError checks if an error is a QueryError
func IsQueryError(err error) bool {
	_, ok := err.(*QueryError)
	return ok
}
