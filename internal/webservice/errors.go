package webservice

import (
	"errors"
	"net/http"
)

// Kind categorizes web service failures.
type Kind string

const (
	KindBadURL      Kind = "bad_url"
	KindTransport   Kind = "transport"
	KindNoResponse  Kind = "no_response"
	KindBadResponse Kind = "bad_response"
	KindOther       Kind = "other"
	KindParse       Kind = "parse"
)

// CodeBadURL is the transport error code reported when a request URL cannot
// be built. It matches the value used by Foundation's NSURLErrorBadURL.
const CodeBadURL = -1000

// Sentinels for errors.Is. Any *Error of the same Kind matches.
var (
	ErrBadURL      = &Error{Kind: KindBadURL}
	ErrTransport   = &Error{Kind: KindTransport}
	ErrNoResponse  = &Error{Kind: KindNoResponse}
	ErrBadResponse = &Error{Kind: KindBadResponse}
	ErrOther       = &Error{Kind: KindOther}
	ErrParse       = &Error{Kind: KindParse}
)

// Error is a classified web service error.
type Error struct {
	Kind    Kind
	Status  int
	Code    int
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	switch e.Kind {
	case KindNoResponse:
		return "no response"
	case KindBadResponse:
		return "bad response"
	case KindOther:
		if e.Status != 0 {
			return "unexpected status: " + http.StatusText(e.Status)
		}
		return "request failed"
	case KindParse:
		return "parsing failed"
	}
	return "web service error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func badURL(path string, err error) *Error {
	return &Error{
		Kind:    KindBadURL,
		Code:    CodeBadURL,
		Path:    path,
		Message: "There was a problem creating the request URL:\n" + path,
		Err:     err,
	}
}
