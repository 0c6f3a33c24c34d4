package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// storage wraps data-store failures. Full detail is logged server-side;
// clients only ever see a generic message.
type storage struct {
	err error
}

func NewStorageError(err error) error {
	if err == nil {
		return nil
	}
	return &storage{err: err}
}

func (s storage) Error() string {
	return s.err.Error()
}

func IsStorageError(err error) bool {
	_, ok := errors.Cause(err).(*storage)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
