package linter

import (
	"errors"
	"net/http"

	"hlsllint/internal/scheduler"
)

// documentNotFoundError is returned for operations on a URI that is not open.
type documentNotFoundError struct{ uri string }

func (e documentNotFoundError) Error() string { return "document not open: " + e.uri }

func (e documentNotFoundError) StatusCode() int { return http.StatusNotFound }

// ErrDocumentNotFound constructs a documentNotFoundError.
func ErrDocumentNotFound(uri string) error { return documentNotFoundError{uri: uri} }

// IsDocumentNotFound reports whether err indicates an unknown document.
func IsDocumentNotFound(err error) bool {
	var e documentNotFoundError
	return errors.As(err, &e)
}

// toolUnavailableError signals that the compiler could not be found. It is
// returned while the linter is disabled and until Reconfigure is called.
type toolUnavailableError struct{ msg string }

func (e toolUnavailableError) Error() string { return e.msg }

func (e toolUnavailableError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrToolUnavailable constructs a toolUnavailableError.
func ErrToolUnavailable(msg string) error { return toolUnavailableError{msg: msg} }

// IsToolUnavailable reports whether err indicates a missing compiler.
func IsToolUnavailable(err error) bool {
	var e toolUnavailableError
	return errors.As(err, &e)
}

// badInputError rejects malformed requests.
type badInputError struct{ msg string }

func (e badInputError) Error() string { return e.msg }

func (e badInputError) StatusCode() int { return http.StatusBadRequest }

// ErrBadInput constructs a badInputError.
func ErrBadInput(msg string) error { return badInputError{msg: msg} }

// IsBadInput reports whether err indicates an invalid request.
func IsBadInput(err error) bool {
	var e badInputError
	return errors.As(err, &e)
}

// IsCanceled reports whether a run was withdrawn before it started, either by
// a cancellation, a close, or a shutdown.
func IsCanceled(err error) bool {
	return errors.Is(err, scheduler.ErrCanceled) || errors.Is(err, scheduler.ErrClosed)
}
