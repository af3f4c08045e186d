package tval

import (
	"bytes"
	"math"
	"testing"

	"github.com/icza/bitio"
)

func encode(t *testing.T, fn func(bw *bitio.Writer) error) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	if err := fn(bw); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeIntVectorNarrowing(t *testing.T) {
	tests := []struct {
		name   string
		values []int32
		want   Type
		nBytes int
	}{
		{"fits int8", []int32{1, 2, 127}, Int8, 3},
		{"needs int16", []int32{1, 2, 128}, Int16, 6},
		{"missing plus small", []int32{math.MinInt32, 5}, Int8, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := encode(t, func(bw *bitio.Writer) error {
				return EncodeIntVector(bw, tt.values, -1)
			})
			count, typ, rest, err := DecodeSize(got)
			if err != nil {
				t.Fatalf("DecodeSize: %v", err)
			}
			if typ != tt.want {
				t.Fatalf("type = %v, want %v", typ, tt.want)
			}
			if count != len(tt.values) {
				t.Fatalf("count = %d, want %d", count, len(tt.values))
			}
			if len(rest) != tt.nBytes {
				t.Fatalf("payload length = %d, want %d", len(rest), tt.nBytes)
			}
		})
	}
}

func TestEncodeIntVectorFirstByteIsSentinel(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeIntVector(bw, []int32{math.MinInt32, 5}, -1)
	})
	_, typ, rest, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if typ != Int8 {
		t.Fatalf("type = %v, want Int8", typ)
	}
	if int8(rest[0]) != math.MinInt8 {
		t.Fatalf("first byte = %d, want %d", int8(rest[0]), math.MinInt8)
	}
	if int8(rest[1]) != 5 {
		t.Fatalf("second byte = %d, want 5", int8(rest[1]))
	}
}

func TestDescriptorSpillAtFifteen(t *testing.T) {
	values := make([]int32, 15)
	for i := range values {
		values[i] = int32(i)
	}
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeIntVector(bw, values, -1)
	})
	// high nibble of the first byte must be the spill marker, not 15 elements
	// encoded directly, since a literal count of 15 must also spill.
	if got[0]>>4 != spillCount {
		t.Fatalf("first descriptor high nibble = %d, want spill marker %d", got[0]>>4, spillCount)
	}
	count, _, _, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if count != 15 {
		t.Fatalf("count = %d, want 15", count)
	}
}

func TestEncodeEmptyIntVector(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeIntVector(bw, nil, -1)
	})
	if len(got) != 1 {
		t.Fatalf("empty vector should encode to a single descriptor byte, got %d bytes", len(got))
	}
	count, typ, _, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if count != 0 || typ != Null {
		t.Fatalf("got count=%d type=%v, want 0/NULL", count, typ)
	}
}

func TestEncodeCharRoundTrip(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeChar(bw, []byte("rs123"))
	})
	count, typ, rest, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if typ != Char || count != 5 {
		t.Fatalf("got count=%d type=%v, want 5/CHAR", count, typ)
	}
	text, _, err := DecodeChar(rest, count)
	if err != nil {
		t.Fatalf("DecodeChar: %v", err)
	}
	if string(text) != "rs123" {
		t.Fatalf("text = %q, want rs123", text)
	}
}

func TestFormatVectorAllMissingRendersDot(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeIntVector(bw, []int32{math.MinInt32, math.MinInt32}, -1)
	})
	count, typ, rest, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	text, _, err := FormatVector(rest, count, typ)
	if err != nil {
		t.Fatalf("FormatVector: %v", err)
	}
	if text != "." {
		t.Fatalf("text = %q, want .", text)
	}
}

func TestFormatVectorFloat(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeFloatVector(bw, []float32{1.5, 2.25})
	})
	count, typ, rest, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	text, _, err := FormatVector(rest, count, typ)
	if err != nil {
		t.Fatalf("FormatVector: %v", err)
	}
	if text != "1.5,2.25" {
		t.Fatalf("text = %q, want 1.5,2.25", text)
	}
}

func TestIntVectorWindowPadsWithSentinel(t *testing.T) {
	got := encode(t, func(bw *bitio.Writer) error {
		return EncodeIntVector(bw, []int32{1}, 3)
	})
	count, typ, rest, err := DecodeSize(got)
	if err != nil {
		t.Fatalf("DecodeSize: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3 (window overrides natural length)", count)
	}
	vals, _, err := DecodeIntVector(rest, count, typ)
	if err != nil {
		t.Fatalf("DecodeIntVector: %v", err)
	}
	if vals[0] != 1 || vals[1] != math.MinInt32 || vals[2] != math.MinInt32 {
		t.Fatalf("vals = %v, want [1 missing missing]", vals)
	}
}
