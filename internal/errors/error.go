package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups error codes by the layer that raises them.
type Category string

const (
	CategoryComponent Category = "component"
	CategoryWindow    Category = "window"
	CategoryProtocol  Category = "protocol"
	CategorySession   Category = "session"
	CategoryConfig    Category = "config"
	CategoryResource  Category = "resource"
	CategoryCLI       Category = "cli"
)

// TesseraError is a structured error with a registered code, an explanation
// and an optional hint.
type TesseraError struct {
	// Code is the registered identifier, e.g. "T061".
	Code string

	Category Category

	// Message is a short description.
	Message string

	// Detail is a longer explanation.
	Detail string

	// Field names the configuration key or protocol field at fault, if any.
	Field string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *TesseraError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *TesseraError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a TesseraError with the same code.
func (e *TesseraError) Is(target error) bool {
	te, ok := target.(*TesseraError)
	return ok && te.Code != "" && te.Code == e.Code
}

// WithField names the offending configuration key or field.
func (e *TesseraError) WithField(f string) *TesseraError {
	e.Field = f
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *TesseraError) WithSuggestion(s string) *TesseraError {
	e.Suggestion = s
	return e
}

// WithDetail replaces the registered explanation.
func (e *TesseraError) WithDetail(d string) *TesseraError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *TesseraError) Wrap(err error) *TesseraError {
	e.Wrapped = err
	return e
}

// New creates a TesseraError from a registered error code.
func New(code string) *TesseraError {
	template, ok := GetTemplate(code)
	if !ok {
		return &TesseraError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &TesseraError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a TesseraError with a formatted message and no code.
func Newf(category Category, format string, args ...any) *TesseraError {
	return &TesseraError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps err in a TesseraError with the given code. An error that
// already carries a TesseraError is returned unchanged.
func FromError(err error, code string) *TesseraError {
	if err == nil {
		return nil
	}
	var te *TesseraError
	if stderrors.As(err, &te) {
		return te
	}
	return New(code).Wrap(err)
}

// CodeOf returns the code of the first TesseraError in err's chain, or "".
func CodeOf(err error) string {
	var te *TesseraError
	if stderrors.As(err, &te) {
		return te.Code
	}
	return ""
}
