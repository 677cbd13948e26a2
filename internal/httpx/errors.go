package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"warnmode/internal/telemetry"
)

// Error is the JSON body written for failed requests.
type Error struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	RequestID string            `json:"requestId"`
	Details   map[string]string `json:"details,omitempty"`
}

// HTTPError is an error with an associated HTTP status and code.
type HTTPError struct {
	status  int
	code    string
	message string
	details map[string]string
}

func (e *HTTPError) Error() string { return e.message }
func (e *HTTPError) Status() int   { return e.status }
func (e *HTTPError) Code() string  { return e.code }

func (e *HTTPError) WithDetails(d map[string]string) *HTTPError {
	e.details = d
	return e
}

// BadRequest returns a 400 HTTPError.
func BadRequest(msg string) *HTTPError {
	return &HTTPError{status: http.StatusBadRequest, code: "bad_request", message: msg}
}

// NotFound returns a 404 HTTPError.
func NotFound(msg string) *HTTPError {
	return &HTTPError{status: http.StatusNotFound, code: "not_found", message: msg}
}

// MethodNotAllowed returns a 405 HTTPError.
func MethodNotAllowed(msg string) *HTTPError {
	return &HTTPError{status: http.StatusMethodNotAllowed, code: "method_not_allowed", message: msg}
}

// TooManyRequests returns a 429 HTTPError.
func TooManyRequests(msg string) *HTTPError {
	return &HTTPError{status: http.StatusTooManyRequests, code: "rate_limited", message: msg}
}

// Unavailable returns a 503 HTTPError.
func Unavailable(msg string) *HTTPError {
	return &HTTPError{status: http.StatusServiceUnavailable, code: "service_unavailable", message: msg}
}

// Internal returns a 500 HTTPError.
func Internal(err error) *HTTPError {
	msg := "internal server error"
	if err != nil {
		msg = err.Error()
	}
	return &HTTPError{status: http.StatusInternalServerError, code: "internal_error", message: msg}
}

// Write writes err to w as JSON. Errors that are not *HTTPError become 500s.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	var he *HTTPError
	if errors.As(err, &he) {
		write(w, r, he.status, he.code, he.message, he.details)
		return
	}
	write(w, r, http.StatusInternalServerError, "internal_error", err.Error(), nil)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func write(w http.ResponseWriter, r *http.Request, status int, code, msg string, details map[string]string) {
	telemetry.Event(r.Context(), "api_error", map[string]string{"status": strconv.Itoa(status), "code": code})
	JSON(w, status, Error{
		Code:      code,
		Message:   msg,
		RequestID: RequestID(r.Context()),
		Details:   details,
	})
}
