package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ergo/ergo/api/internal/domain"
)

// Kind classifies every failure that can reach the response boundary
type Kind uint8

const (
	KindDecode Kind = iota
	KindDivisionByZero
	KindRejected
	KindTransport

	numKinds
)

// Kinds lists every kind in declaration order
var Kinds = []Kind{KindDecode, KindDivisionByZero, KindRejected, KindTransport}

// Error codes
const (
	CodeDecode         = "DECODE_ERROR"
	CodeDivisionByZero = "DIVISION_BY_ZERO"
	CodeRejected       = "REJECTED"
	CodeTransport      = "TRANSPORT_ERROR"
)

// Fixed response bodies
const (
	MessageDivisionByZero = "count can't be zero"
	MessageRejected       = "The server doesn't like this number"
)

type wireTemplate struct {
	code   string
	status int
}

// wireTable maps each kind to its code and status. Transport statuses are
// taken from the carrier when it supplies one.
var wireTable = [...]wireTemplate{
	KindDecode:         {code: CodeDecode, status: http.StatusUnprocessableEntity},
	KindDivisionByZero: {code: CodeDivisionByZero, status: http.StatusUnprocessableEntity},
	KindRejected:       {code: CodeRejected, status: http.StatusInternalServerError},
	KindTransport:      {code: CodeTransport, status: http.StatusInternalServerError},
}

// Fails to compile unless wireTable has exactly one row per kind.
var _ = [1]struct{}{}[len(wireTable)-int(numKinds)]

// String returns the error code of the kind
func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return wireTable[k].code
}

// AppError represents a classified failure with the message sent to the client
type AppError struct {
	Kind       Kind   `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithError wraps an underlying error
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// newKind creates an AppError using the table row of kind
func newKind(kind Kind, message string) *AppError {
	row := wireTable[kind]
	return &AppError{
		Kind:       kind,
		Code:       row.code,
		Message:    message,
		StatusCode: row.status,
	}
}

// Decode creates a decode error. decoder names the codec, e.g. "YAML".
func Decode(decoder string, err error) *AppError {
	diagnostic := "empty diagnostic"
	if err != nil {
		diagnostic = err.Error()
	}
	return newKind(KindDecode, fmt.Sprintf("%s error: %s", decoder, diagnostic)).WithError(err)
}

// DivisionByZero creates a zero-divisor error
func DivisionByZero() *AppError {
	return newKind(KindDivisionByZero, MessageDivisionByZero)
}

// Rejected creates a policy rejection error
func Rejected() *AppError {
	return newKind(KindRejected, MessageRejected)
}

// Transport creates a transport error. A status of zero selects the table default.
func Transport(status int, message string) *AppError {
	e := newKind(KindTransport, message)
	if status != 0 {
		e.StatusCode = status
	}
	return e
}

// FromDomain converts an error returned by domain.Evaluate.
// Errors outside the domain set are classified as transport errors.
func FromDomain(err error) *AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrDivisionByZero):
		return DivisionByZero().WithError(err)
	case errors.Is(err, domain.ErrRejected):
		return Rejected().WithError(err)
	}
	return FromTransport(err)
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error if present
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// KindOf returns the kind of err, classifying unknown errors as transport errors
func KindOf(err error) Kind {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Kind
	}
	return KindTransport
}

// IsDecode checks if the error is a decode error
func IsDecode(err error) bool {
	return err != nil && KindOf(err) == KindDecode
}

// IsDivisionByZero checks if the error is a zero-divisor error
func IsDivisionByZero(err error) bool {
	return err != nil && KindOf(err) == KindDivisionByZero
}

// IsRejected checks if the error is a policy rejection
func IsRejected(err error) bool {
	return err != nil && KindOf(err) == KindRejected
}
