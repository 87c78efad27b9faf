package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeUnresolvableName marks an expression that has no dotted-name form
	// (a call result, subscript or literal at the base of an attribute chain).
	CodeUnresolvableName ErrorCode = "UNRESOLVABLE_NAME"
	// CodeNameResolution marks a dotted name that the environment does not know.
	CodeNameResolution  ErrorCode = "NAME_RESOLUTION"
	CodeParse           ErrorCode = "PARSE_ERROR"
	CodeEnvironment     ErrorCode = "ENVIRONMENT_FAULT"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeValidationError ErrorCode = "VALIDATION_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeNotSupported    ErrorCode = "NOT_SUPPORTED"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxNodeKind  = "node_kind"
	CtxSymbol    = "symbol"
	CtxLine      = "line"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

// AddContext attaches a key/value to err, wrapping plain errors as internal.
func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsRecoverable reports whether err belongs to the local-recovery part of the
// taxonomy: an unresolvable expression or an unknown name.
func IsRecoverable(err error) bool {
	return IsCode(err, CodeUnresolvableName) || IsCode(err, CodeNameResolution)
}
