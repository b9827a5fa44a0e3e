// Package ferrors defines the typed error kinds the engine can surface to
// callers, distinct from the per-path errors that enumeration and watching
// always recover from locally.
package ferrors

import (
	"fmt"
	"time"
)

// Kind classifies an error by the recovery policy the engine applies to it.
type Kind string

const (
	KindInvalidQuery  Kind = "invalid_query"
	KindCancelled     Kind = "cancelled"
	KindTimeout       Kind = "timeout"
	KindAccessDenied  Kind = "access_denied"
	KindIOTransient   Kind = "io_transient"
	KindIOFatal       Kind = "io_fatal"
	KindCorruptRecord Kind = "corrupt_record"
)

// QueryError reports a malformed SearchQuery. Always surfaced to the caller.
type QueryError struct {
	Field      string
	Reason     string
	Underlying error
}

func NewQueryError(field, reason string, err error) *QueryError {
	return &QueryError{Field: field, Reason: reason, Underlying: err}
}

func (e *QueryError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid query: %s", e.Reason)
}

func (e *QueryError) Unwrap() error { return e.Underlying }
func (e *QueryError) Kind() Kind    { return KindInvalidQuery }

// CancelledError reports cooperative cancellation. Not a failure: results
// already yielded remain valid.
type CancelledError struct {
	Operation string
}

func NewCancelledError(op string) *CancelledError { return &CancelledError{Operation: op} }
func (e *CancelledError) Error() string            { return fmt.Sprintf("%s: cancelled", e.Operation) }
func (e *CancelledError) Kind() Kind                { return KindCancelled }

// TimeoutError reports a per-query wall-clock timeout. Results already
// yielded remain valid.
type TimeoutError struct {
	Operation string
	Elapsed   time.Duration
	Budget    time.Duration
}

func NewTimeoutError(op string, elapsed, budget time.Duration) *TimeoutError {
	return &TimeoutError{Operation: op, Elapsed: elapsed, Budget: budget}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: exceeded timeout of %s (ran %s)", e.Operation, e.Budget, e.Elapsed)
}
func (e *TimeoutError) Kind() Kind { return KindTimeout }

// AccessDeniedError reports a filesystem permission refusal for a single
// path. Always recovered locally by the caller of this type — it is
// returned from low-level helpers so a caller can log it, not to abort a
// session.
type AccessDeniedError struct {
	Path       string
	Underlying error
}

func NewAccessDeniedError(path string, err error) *AccessDeniedError {
	return &AccessDeniedError{Path: path, Underlying: err}
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: %s: %v", e.Path, e.Underlying)
}
func (e *AccessDeniedError) Unwrap() error { return e.Underlying }
func (e *AccessDeniedError) Kind() Kind    { return KindAccessDenied }

// IOTransientError reports a recoverable I/O failure for a single path
// during enumeration; the path is skipped and the session continues.
type IOTransientError struct {
	Path       string
	Underlying error
}

func NewIOTransientError(path string, err error) *IOTransientError {
	return &IOTransientError{Path: path, Underlying: err}
}

func (e *IOTransientError) Error() string {
	return fmt.Sprintf("transient I/O error at %s: %v", e.Path, e.Underlying)
}
func (e *IOTransientError) Unwrap() error { return e.Underlying }
func (e *IOTransientError) Kind() Kind    { return KindIOTransient }

// IOFatalError reports a failure that prevents startup of a component
// (raw volume open, watcher creation). The orchestrator does not return it
// from StartIndexing: a failed MFT open skips that volume's MFT stream,
// and a failed observer start returns the engine to Idle without
// monitoring.
type IOFatalError struct {
	Operation  string
	Underlying error
}

func NewIOFatalError(op string, err error) *IOFatalError {
	return &IOFatalError{Operation: op, Underlying: err}
}

func (e *IOFatalError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Underlying)
}
func (e *IOFatalError) Unwrap() error { return e.Underlying }
func (e *IOFatalError) Kind() Kind    { return KindIOFatal }

// CorruptRecordError reports a malformed MFT record. The current record (or
// batch) is skipped; enumeration continues.
type CorruptRecordError struct {
	Offset int
	Reason string
}

func NewCorruptRecordError(offset int, reason string) *CorruptRecordError {
	return &CorruptRecordError{Offset: offset, Reason: reason}
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt MFT record at offset %d: %s", e.Offset, e.Reason)
}
func (e *CorruptRecordError) Kind() Kind { return KindCorruptRecord }

// MultiError aggregates independent errors from a batch operation that
// reports all failures at once without aborting partway through.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors (first: %v)", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error { return e.Errors }
