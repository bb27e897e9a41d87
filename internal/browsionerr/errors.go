// Package browsionerr defines the error kinds shared across the core.
//
// Handlers in internal/httpapi map these kinds to HTTP status codes; the
// CDP operations layer and lifecycle manager return them directly so
// callers can type-switch without parsing error strings.
package browsionerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories from the failure semantics
// section of the spec. It is never the whole story — wrap it with fmt.Errorf
// and %w so callers can still unwrap down to the Kind with errors.Is.
type Kind string

const (
	KindInvalidArgument       Kind = "InvalidArgument"
	KindProfileNotFound       Kind = "ProfileNotFound"
	KindProfileAlreadyRunning Kind = "ProfileAlreadyRunning"
	KindProfileNotRunning     Kind = "ProfileNotRunning"
	KindLaunchFailed          Kind = "LaunchFailed"
	KindDisconnected          Kind = "Disconnected"
	KindCDPError              Kind = "CDPError"
	KindTimeout               Kind = "Timeout"
	KindSelectorNotFound      Kind = "SelectorNotFound"
	KindIOError               Kind = "IOError"
)

// Error is a Kind carrying a human message and, for CDPError, the browser's
// own error code.
type Error struct {
	Kind    Kind
	Message string
	Code    int64 // populated only for KindCDPError
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is lets errors.Is(err, browsionerr.New(KindX, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New builds an *Error for the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// CDP wraps a browser-returned protocol error.
func CDP(code int64, message string) *Error {
	return &Error{Kind: KindCDPError, Message: message, Code: code}
}

// KindOf extracts the Kind from err, or "" if err doesn't carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
