package wkerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{InvalidMagic, "invalid_magic"},
		{CorruptChunk, "corrupt_chunk"},
		{MalformedContainer, "malformed_container"},
		{UnsupportedFeature, "unsupported_feature"},
		{DecodeLimitExceeded, "decode_limit_exceeded"},
		{IoError, "io_error"},
		{InternalInvariant, "internal_invariant"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestNew(t *testing.T) {
	e := New(InvalidMagic, "bad header")
	if e.Kind != InvalidMagic {
		t.Errorf("Kind = %v, want InvalidMagic", e.Kind)
	}
	if e.Offset != -1 {
		t.Errorf("Offset = %d, want -1", e.Offset)
	}
	if e.Error() != "wk: invalid_magic: bad header" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestNewf(t *testing.T) {
	e := Newf(DecodeLimitExceeded, "width %d exceeds limit %d", 100000, 65535)
	want := "wk: decode_limit_exceeded: width 100000 exceeds limit 65535"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestAt(t *testing.T) {
	e := At(CorruptChunk, 42, "crc mismatch")
	if e.Offset != 42 {
		t.Errorf("Offset = %d, want 42", e.Offset)
	}
	want := "wk: corrupt_chunk at offset 42: crc mismatch"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("short read")
	e := Wrap(IoError, cause, "reading chunk payload")
	if !errors.Is(e, cause) {
		t.Error("errors.Is(e, cause) = false, want true")
	}
	if e.Unwrap() != cause {
		t.Error("Unwrap() did not return the original cause")
	}
}

func TestIs(t *testing.T) {
	e := New(UnsupportedFeature, "cabac entropy coding")
	wrapped := fmt.Errorf("decode IDAT: %w", e)
	if !Is(wrapped, UnsupportedFeature) {
		t.Error("Is(wrapped, UnsupportedFeature) = false, want true")
	}
	if Is(wrapped, CorruptChunk) {
		t.Error("Is(wrapped, CorruptChunk) = true, want false")
	}
	if Is(errors.New("plain error"), InvalidMagic) {
		t.Error("Is(plain error) = true, want false")
	}
}

func TestErrorsAs(t *testing.T) {
	e := New(MalformedContainer, "missing IHDR")
	wrapped := fmt.Errorf("parse: %w", e)
	var target *Error
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As failed to find *Error in chain")
	}
	if target.Kind != MalformedContainer {
		t.Errorf("Kind = %v, want MalformedContainer", target.Kind)
	}
}
