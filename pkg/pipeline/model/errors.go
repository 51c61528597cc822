package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every error returned by a stage matches exactly one of them
// with errors.Is.
var (
	ErrConfig         = errors.New("configuration error")
	ErrIO             = errors.New("io error")
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Error tags an underlying error with one of the error kinds.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message + ": " + e.Kind.Error()
	}

	return e.Message + ": " + e.Err.Error()
}

// Unwrap exposes both the kind and the cause, so errors.Is(err, fs.ErrNotExist)
// and errors.Is(err, ErrIO) can both hold.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Wrap tags err with kind. err may be nil when the failure has no cause.
func Wrap(kind, err error, message string) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}
