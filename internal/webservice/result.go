package webservice

import "errors"

// Result holds either a value or an error, never both.
// Build it with Ok or Fail. The zero Result is neither a success nor a
// failure.
type Result[T any] struct {
	value T
	err   error
	ok    bool
}

// Ok returns a successful Result.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail returns a failed Result. It panics if err is nil.
func Fail[T any](err error) Result[T] {
	if err == nil {
		panic("webservice: Fail called with nil error")
	}
	return Result[T]{err: err}
}

// Value returns the value and true on success.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.ok
}

// Err returns the failure, or nil on success.
func (r Result[T]) Err() error { return r.err }

// ErrEmptyResult is what Get reports for a zero Result.
var ErrEmptyResult = errors.New("webservice: empty result")

// Get unpacks the Result into the usual Go pair.
func (r Result[T]) Get() (T, error) {
	if !r.ok && r.err == nil {
		return r.value, ErrEmptyResult
	}
	return r.value, r.err
}

func resultOf[T any](v T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(v)
}
