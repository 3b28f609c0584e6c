// Package errors defines the core engine's error taxonomy as sentinel
// errors, plus an AppError wrapper that carries an HTTP status code for
// build_api's JSON error responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIoError covers any file open/read/write failure.
	ErrIoError = errors.New("io error")
	// ErrInvalidFormat covers magic/version/length mismatches on load.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrTruncatedFile covers a short read of a header or entry.
	ErrTruncatedFile = errors.New("truncated file")
	// ErrHashTableFull is returned when probing wraps during indexing.
	ErrHashTableFull = errors.New("hash table full, retry with a larger capacity")
	// ErrOutOfMemory covers any allocation failure.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrUnbalancedParentheses is a query parse error.
	ErrUnbalancedParentheses = errors.New("unbalanced parentheses")
	// ErrMalformedExpression is a query parse/eval error.
	ErrMalformedExpression = errors.New("malformed expression")
	// ErrMalformedLine covers wrong column counts in TSV / stemmed input.
	ErrMalformedLine = errors.New("malformed line")
	// ErrUnorderedDocIDs is returned when input doc_ids are not presented
	// in non-decreasing, contiguous-run order.
	ErrUnorderedDocIDs = errors.New("doc ids not presented in contiguous non-decreasing order")

	ErrIdempotencyConflict = errors.New("idempotency key already used")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrNotFound            = errors.New("not found")
)

// AppError wraps a sentinel error with an HTTP status code and a
// human-readable message.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// HTTPStatusCode maps an error to the HTTP status build_api reports
// for it.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrIdempotencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnbalancedParentheses), errors.Is(err, ErrMalformedExpression):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
