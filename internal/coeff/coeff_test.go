package coeff

import (
	"bytes"
	"testing"

	"github.com/wk-codec/wk/internal/bio"
)

func encodeDecode(t *testing.T, natural *[BlockLen]int32) *[BlockLen]int32 {
	t.Helper()
	buf := &bytes.Buffer{}
	w := bio.NewWriter(buf)
	if err := EncodeBlock(w, natural); err != nil {
		t.Fatalf("EncodeBlock error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	r := bio.NewReader(bytes.NewReader(buf.Bytes()))
	got, err := DecodeBlock(r)
	if err != nil {
		t.Fatalf("DecodeBlock error: %v", err)
	}
	return got
}

func TestRoundTrip_AllZero(t *testing.T) {
	var in [BlockLen]int32
	got := encodeDecode(t, &in)
	if *got != in {
		t.Errorf("round trip mismatch: got %v, want all zero", got)
	}
}

func TestRoundTrip_DCOnly(t *testing.T) {
	var in [BlockLen]int32
	in[0] = 42
	got := encodeDecode(t, &in)
	if *got != in {
		t.Errorf("round trip mismatch: got %v, want %v", got, in)
	}
}

func TestRoundTrip_Sparse(t *testing.T) {
	var in [BlockLen]int32
	in[0] = 10
	in[1] = -3
	in[5] = 1
	in[20] = -100
	got := encodeDecode(t, &in)
	if *got != in {
		t.Errorf("round trip mismatch: got %v, want %v", got, in)
	}
}

func TestRoundTrip_AllNonZero(t *testing.T) {
	var in [BlockLen]int32
	for i := range in {
		in[i] = int32(i%17) - 8
	}
	got := encodeDecode(t, &in)
	if *got != in {
		t.Errorf("round trip mismatch: got %v, want %v", got, in)
	}
}

func TestRoundTrip_NegativeAndPositiveValues(t *testing.T) {
	var in [BlockLen]int32
	in[0] = -1
	in[3] = 1000
	in[63] = -2000
	got := encodeDecode(t, &in)
	if *got != in {
		t.Errorf("round trip mismatch: got %v, want %v", got, in)
	}
}

func TestEncodeBlock_AllZeroEmitsShortStream(t *testing.T) {
	var in [BlockLen]int32
	buf := &bytes.Buffer{}
	w := bio.NewWriter(buf)
	if err := EncodeBlock(w, &in); err != nil {
		t.Fatalf("EncodeBlock error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	// A single EOB marker (flag 1, magnitude-0 exp-Golomb, sign bit)
	// should fit comfortably in one byte.
	if buf.Len() > 1 {
		t.Errorf("all-zero block encoded to %d bytes, want <= 1", buf.Len())
	}
}

func TestEncodeBlock_ZigZagOrdering(t *testing.T) {
	// Coefficient at natural index 1 (row 0, col 1) is the second
	// position visited by the zig-zag scan, so it is emitted as the
	// first value code, preceded only by a zero run of length 1 for the
	// empty DC position.
	var in [BlockLen]int32
	in[1] = 7
	buf := &bytes.Buffer{}
	w := bio.NewWriter(buf)
	if err := EncodeBlock(w, &in); err != nil {
		t.Fatalf("EncodeBlock error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush error: %v", err)
	}
	r := bio.NewReader(bytes.NewReader(buf.Bytes()))
	flag, err := r.ReadBit()
	if err != nil {
		t.Fatalf("ReadBit error: %v", err)
	}
	if flag != 0 {
		t.Errorf("first flag = %d, want 0 (zero run of length 1 before the value)", flag)
	}
}
