// Package codecerr defines the fixed W3C WebCodecs error kinds (spec
// §6 "Error kinds") as a typed error wrapping any underlying cause,
// analogous to the teacher's pipeline/core.StageError /
// ConfigurationError pattern: a Kind enum, the failing Op name, and an
// Unwrap-able cause.
package codecerr

import "fmt"

// Kind enumerates the WebCodecs error kinds.
type Kind string

// Error kinds, per spec §6.
const (
	KindTypeError          Kind = "TypeError"
	KindInvalidState       Kind = "InvalidStateError"
	KindDataError          Kind = "DataError"
	KindNotSupported       Kind = "NotSupportedError"
	KindQuotaExceeded      Kind = "QuotaExceededError"
	KindOperationError     Kind = "OperationError"
)

// CodecError is the typed error returned by façade and worker
// operations. Op names the failing method or handler ("configure",
// "decode", "flush") for log correlation.
type CodecError struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *CodecError) Unwrap() error { return e.Err }

// New constructs a CodecError.
func New(kind Kind, op string, err error) *CodecError {
	return &CodecError{Kind: kind, Op: op, Err: err}
}

// TypeError constructs a TypeError-kind CodecError.
func TypeError(op string, err error) *CodecError { return New(KindTypeError, op, err) }

// InvalidState constructs an InvalidStateError-kind CodecError.
func InvalidState(op string, err error) *CodecError { return New(KindInvalidState, op, err) }

// DataError constructs a DataError-kind CodecError.
func DataError(op string, err error) *CodecError { return New(KindDataError, op, err) }

// NotSupported constructs a NotSupportedError-kind CodecError.
func NotSupported(op string, err error) *CodecError { return New(KindNotSupported, op, err) }

// QuotaExceeded constructs a QuotaExceededError-kind CodecError.
func QuotaExceeded(op string, err error) *CodecError { return New(KindQuotaExceeded, op, err) }

// OperationError constructs an OperationError-kind CodecError wrapping
// a codec-library failure passthrough.
func OperationError(op string, err error) *CodecError { return New(KindOperationError, op, err) }
