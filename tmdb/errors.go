package tmdb

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates TMDB has no movie for a well-formed identifier
var ErrNotFound = errors.New("movie not found")

// ErrorKind classifies failed TMDB calls
type ErrorKind int

const (
	// KindIO covers transport failures, cancellation and 5xx responses
	KindIO ErrorKind = iota
	// KindRequest covers rejected or malformed requests and unexpected responses
	KindRequest
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Error represents a failed TMDB call
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Body       string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := fmt.Sprintf("tmdb %s error: %s", e.Kind, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a 404 response
func (e *Error) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsIO reports whether err is a TMDB error of kind KindIO
func IsIO(err error) bool {
	var tErr *Error
	return errors.As(err, &tErr) && tErr.Kind == KindIO
}

// IsRequest reports whether err is a TMDB error of kind KindRequest
func IsRequest(err error) bool {
	var tErr *Error
	return errors.As(err, &tErr) && tErr.Kind == KindRequest
}

// SizeError indicates an image size descriptor in the TMDB configuration
// that is neither "original" nor carries a width
type SizeError struct {
	Descriptor string
}

func (e *SizeError) Error() string {
	if e.Descriptor == "" {
		return "no image sizes configured"
	}
	return fmt.Sprintf("invalid image size descriptor '%s'", e.Descriptor)
}

const (
	maxResponseBody = 4 << 20
	maxErrorBody    = 1 << 10
)

func ioError(message string, err error) *Error {
	return &Error{Kind: KindIO, Message: message, Err: err}
}

// classify maps a non-2xx response to an Error. It returns nil for success.
func classify(statusCode int, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode >= 500:
		return &Error{
			Kind:       KindIO,
			StatusCode: statusCode,
			Message:    "received server error response",
		}
	case statusCode >= 400:
		return &Error{
			Kind:       KindRequest,
			StatusCode: statusCode,
			Message:    "received client error response",
			Body:       string(body),
		}
	default:
		return &Error{
			Kind:       KindRequest,
			StatusCode: statusCode,
			Message:    "received non-successful response",
		}
	}
}
