package weather

import (
	"errors"
	"net/http"
)

// Kind classifies a resolve failure.
type Kind int

const (
	KindUnclassified Kind = iota
	KindInvalidInput
	KindNotFound
	KindUpstreamUnavailable
)

const (
	msgUpstreamUnavailable = "Der Wetterdienst ist derzeit nicht erreichbar."
	msgInternal            = "Interner Serverfehler"
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "unclassified"
	}
}

// StatusCode is the HTTP status the request layer should answer with.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is the only error type Resolve returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode delegates to the error kind.
func (e *Error) StatusCode() int {
	return e.Kind.StatusCode()
}

// PublicMessage returns the text safe to show to end users. Server-side
// failures never expose their cause.
func (e *Error) PublicMessage() string {
	switch e.Kind {
	case KindInvalidInput, KindNotFound:
		return e.Message
	case KindUpstreamUnavailable:
		return msgUpstreamUnavailable
	default:
		return msgInternal
	}
}

func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func UpstreamUnavailable(msg string, cause error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: msg, Err: cause}
}

func Unclassified(cause error) *Error {
	return &Error{Kind: KindUnclassified, Message: msgInternal, Err: cause}
}

// KindOf reports the kind of err. Errors that are not *Error are unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// Classify returns err as an *Error, wrapping anything else as unclassified.
func Classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unclassified(err)
}
