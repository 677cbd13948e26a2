package webservice

import (
	"errors"
	"testing"
)

func TestResult(t *testing.T) {
	ok := Ok(map[string]any{"success": "1"})
	if v, good := ok.Value(); !good || v["success"] != "1" {
		t.Fatalf("Ok value = %v, %v", v, good)
	}
	if ok.Err() != nil {
		t.Fatalf("Ok carries error %v", ok.Err())
	}

	cause := errors.New("boom")
	bad := Fail[map[string]any](cause)
	if _, good := bad.Value(); good {
		t.Fatalf("Fail reported a value")
	}
	if v, err := bad.Get(); v != nil || err != cause {
		t.Fatalf("Get = %v, %v", v, err)
	}
}

func TestZeroResultIsNeitherValueNorError(t *testing.T) {
	var r Result[map[string]any]
	if _, good := r.Value(); good {
		t.Fatalf("zero Result reported a value")
	}
	if _, err := r.Get(); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("Get err = %v, want ErrEmptyResult", err)
	}
	if _, good := Ok[map[string]any](nil).Value(); !good {
		t.Fatalf("Ok(nil) lost its success")
	}
}

func TestFailNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("Fail(nil) did not panic")
		}
	}()
	Fail[int](nil)
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Kind: KindOther, Status: 404}
	if !errors.Is(err, ErrOther) || errors.Is(err, ErrParse) {
		t.Fatalf("Is mismatch for %v", err)
	}
	if KindOf(err) != KindOther {
		t.Fatalf("KindOf = %q", KindOf(err))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Fatalf("KindOf plain error should be empty")
	}
	if err.Error() != "unexpected status: Not Found" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if (&Error{Kind: KindParse}).Error() != "parsing failed" {
		t.Fatalf("parse message wrong")
	}
}
