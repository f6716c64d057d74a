// Package failure classifies pipeline errors into the small set of kinds that
// entry points translate into responses or log entries.
package failure

import (
	"errors"
	"fmt"
)

// Kind identifies the class of a failure.
type Kind int

const (
	// Internal is any error that carries no classification.
	Internal Kind = iota
	// InvalidInput is a malformed request body or a request satisfying no source variant.
	InvalidInput
	// NotFound is a missing local source file or storage object.
	NotFound
	// ParseFailure is source data that is not a readable PDF.
	ParseFailure
	// SinkFailure is a failed directory/container creation, write or upload.
	SinkFailure
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case NotFound:
		return "NotFound"
	case ParseFailure:
		return "ParseFailure"
	case SinkFailure:
		return "SinkFailure"
	default:
		return "Internal"
	}
}

// Error is a classified error. Message is safe to show to callers for
// InvalidInput and NotFound; Err keeps the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with printf formatting.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err. A nil err returns nil.
func Wrap(kind Kind, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or Internal when there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Internal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-visible message of the outermost classified
// error, or an empty string.
func MessageOf(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return ""
}
