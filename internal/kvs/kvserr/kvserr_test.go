package kvserr

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	e := New(KeyNotFound, "key not found")
	if e.Error() != "KeyNotFound: key not found" {
		t.Errorf("Error() = %q", e.Error())
	}

	wrapped := Wrap(IoError, "flush failed", errors.New("disk full"))
	if wrapped.Error() != "IoError: flush failed: disk full" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestIsSentinel(t *testing.T) {
	err := New(KeyNotFound, "key not found: foo")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("errors.Is should match sentinel by Code")
	}
	if errors.Is(err, ErrIoError) {
		t.Error("errors.Is should not match a different Code")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := Wrap(KvsFileReadError, "open defaults file", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should see through to the wrapped cause")
	}
}

func TestIsHelper(t *testing.T) {
	err := fmt.Errorf("loading defaults: %w", New(JsonParserError, "bad json"))
	if !Is(err, JsonParserError) {
		t.Error("Is() should find the Code through fmt.Errorf wrapping")
	}
	if Is(err, IoError) {
		t.Error("Is() should not match an unrelated Code")
	}
}

func TestCodeOf(t *testing.T) {
	err := New(IntegrityError, "mismatch")
	if CodeOf(err) != IntegrityError {
		t.Errorf("CodeOf() = %v, want IntegrityError", CodeOf(err))
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf() should return empty Code for a non-kvserr error")
	}
}
