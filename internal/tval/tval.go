// Package tval implements the typed-value wire encoding shared by the
// shared and individual byte streams of a record: a one-byte descriptor
// (primitive type in the low nibble, element count in the high nibble,
// spilling to a nested typed integer when the count reaches 15) followed
// by a little-endian payload.
//
// ref: SPEC_FULL.md §4.1
package tval

import (
	"fmt"
	"math"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// Type is the low-nibble primitive type code of a descriptor byte.
type Type byte

// Primitive types, per the typed-value descriptor.
const (
	Null    Type = 0
	Int8    Type = 1
	Int16   Type = 2
	Int32   Type = 3
	Float32 Type = 5
	Char    Type = 7
)

func (t Type) String() string {
	switch t {
	case Null:
		return "NULL"
	case Int8:
		return "INT8"
	case Int16:
		return "INT16"
	case Int32:
		return "INT32"
	case Float32:
		return "FLOAT32"
	case Char:
		return "CHAR"
	default:
		return fmt.Sprintf("Type(%d)", byte(t))
	}
}

// Size returns the on-wire byte width of a single element of t.
func (t Type) Size() int {
	switch t {
	case Null:
		return 0
	case Int8, Char:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	default:
		panic(fmt.Sprintf("tval: unhandled type %v", t))
	}
}

// FloatMissingBits is the IEEE-754 bit pattern used as the FLOAT32 missing
// sentinel (a signaling NaN).
const FloatMissingBits uint32 = 0x7F800001

// MissingFloat32 is the float32 value of FloatMissingBits.
func MissingFloat32() float32 {
	return math.Float32frombits(FloatMissingBits)
}

// IsMissingFloat32Bits reports whether the raw bits of an encoded float32
// equal the missing sentinel.
func IsMissingFloat32Bits(bits uint32) bool {
	return bits == FloatMissingBits
}

// Sentinel returns the type-specific "missing" sentinel for an integer
// type, widened to int32. Char has no integer sentinel (callers check for
// NUL padding instead); Null and Float32 have no integer sentinel either.
func Sentinel(t Type) int32 {
	switch t {
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	default:
		panic(fmt.Sprintf("tval: type %v has no integer sentinel", t))
	}
}

// spillCount is the high-nibble value that marks a spilled (out-of-line)
// element count.
const spillCount = 15

// EncodeSize writes a descriptor byte for count elements of type t,
// spilling the true count into a nested typed integer when count >= 15 (a
// literal count of 15 always spills, since 15 in the nibble is reserved as
// the spill marker).
func EncodeSize(bw *bitio.Writer, count int, t Type) error {
	if count < spillCount {
		if err := bw.WriteByte(byte(count)<<4 | byte(t)); err != nil {
			return errors.Wrap(err, "tval: write descriptor")
		}
		return nil
	}
	if err := bw.WriteByte(spillCount<<4 | byte(t)); err != nil {
		return errors.Wrap(err, "tval: write spill descriptor")
	}
	return EncodeInt1(bw, int32(count))
}

// EncodeInt1 writes a single integer as the narrowest typed value that can
// hold it.
func EncodeInt1(bw *bitio.Writer, v int32) error {
	t := narrowestFor(int64(v), int64(v))
	if err := EncodeSize(bw, 1, t); err != nil {
		return err
	}
	return writeIntPayload(bw, []int32{v}, t)
}

// narrowestFor picks the narrowest integer type whose sentinel is not
// needed to represent min..max, i.e. min strictly exceeds the type's
// minimum (which is reserved as the missing sentinel) and max does not
// exceed the type's maximum.
func narrowestFor(min, max int64) Type {
	switch {
	case min > math.MinInt8 && max <= math.MaxInt8:
		return Int8
	case min > math.MinInt16 && max <= math.MaxInt16:
		return Int16
	default:
		return Int32
	}
}

// EncodeIntVector encodes values as an integer vector at the narrowest
// width that fits every non-missing element (missing elements, marked by
// math.MinInt32, do not constrain the width). window, when positive,
// overrides the declared element count so that a fixed per-sample stride
// can be wider than the number of values actually present; the remaining
// slots are padded with the chosen width's sentinel. window <= 0 means
// "use len(values)".
func EncodeIntVector(bw *bitio.Writer, values []int32, window int) error {
	if len(values) == 0 {
		return EncodeSize(bw, 0, Null)
	}
	min, max := int64(math.MaxInt32), int64(math.MinInt32)
	for _, v := range values {
		if v == math.MinInt32 {
			continue
		}
		if int64(v) < min {
			min = int64(v)
		}
		if int64(v) > max {
			max = int64(v)
		}
	}
	if min > max {
		// every element is missing
		min, max = 0, 0
	}
	t := narrowestFor(min, max)
	n := window
	if n <= 0 {
		n = len(values)
	}
	if err := EncodeSize(bw, n, t); err != nil {
		return err
	}
	if err := writeIntPayload(bw, values, t); err != nil {
		return err
	}
	if len(values) < n {
		pad := make([]int32, n-len(values))
		for i := range pad {
			pad[i] = math.MinInt32
		}
		return writeIntPayload(bw, pad, t)
	}
	return nil
}

func writeIntPayload(bw *bitio.Writer, values []int32, t Type) error {
	sentinel := Sentinel(t)
	for _, v := range values {
		x := v
		if x == math.MinInt32 {
			x = sentinel
		}
		var err error
		switch t {
		case Int8:
			err = bw.WriteByte(byte(int8(x)))
		case Int16:
			err = bw.WriteByte(byte(int16(x)))
			if err == nil {
				err = bw.WriteByte(byte(int16(x) >> 8))
			}
		case Int32:
			u := uint32(x)
			err = bw.WriteByte(byte(u))
			if err == nil {
				err = bw.WriteByte(byte(u >> 8))
			}
			if err == nil {
				err = bw.WriteByte(byte(u >> 16))
			}
			if err == nil {
				err = bw.WriteByte(byte(u >> 24))
			}
		}
		if err != nil {
			return errors.Wrap(err, "tval: write int payload")
		}
	}
	return nil
}

// EncodeFloatVector encodes values as a FLOAT32 vector.
func EncodeFloatVector(bw *bitio.Writer, values []float32) error {
	if err := EncodeSize(bw, len(values), Float32); err != nil {
		return err
	}
	for _, v := range values {
		u := math.Float32bits(v)
		if err := bw.WriteByte(byte(u)); err != nil {
			return errors.Wrap(err, "tval: write float payload")
		}
		if err := bw.WriteByte(byte(u >> 8)); err != nil {
			return errors.Wrap(err, "tval: write float payload")
		}
		if err := bw.WriteByte(byte(u >> 16)); err != nil {
			return errors.Wrap(err, "tval: write float payload")
		}
		if err := bw.WriteByte(byte(u >> 24)); err != nil {
			return errors.Wrap(err, "tval: write float payload")
		}
	}
	return nil
}

// EncodeChar writes text as a CHAR vector, with no length prefix beyond
// the descriptor and no NUL termination.
func EncodeChar(bw *bitio.Writer, text []byte) error {
	if err := EncodeSize(bw, len(text), Char); err != nil {
		return err
	}
	if len(text) == 0 {
		return nil
	}
	if _, err := bw.Write(text); err != nil {
		return errors.Wrap(err, "tval: write char payload")
	}
	return nil
}

// DecodeSize reads a descriptor byte (and its spilled count, if any) from
// the front of buf, returning the element count, primitive type, and the
// remaining buffer after the descriptor.
func DecodeSize(buf []byte) (count int, t Type, rest []byte, err error) {
	if len(buf) < 1 {
		return 0, 0, nil, errors.New("tval: truncated descriptor")
	}
	d := buf[0]
	t = Type(d & 0xf)
	n := int(d >> 4)
	rest = buf[1:]
	if n < spillCount {
		return n, t, rest, nil
	}
	spilled, rest2, err := DecodeInt1(rest, 0)
	if err != nil {
		return 0, 0, nil, errors.Wrap(err, "tval: decode spilled count")
	}
	return int(spilled), t, rest2, nil
}

// DecodeInt1 reads one typed integer value from the front of buf. The
// passed-in expected type is advisory only; the descriptor in buf governs.
func DecodeInt1(buf []byte, _ Type) (value int32, rest []byte, err error) {
	count, t, rest, err := DecodeSize(buf)
	if err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, rest, nil
	}
	v, rest, err := decodeIntElem(rest, t)
	return v, rest, err
}

func decodeIntElem(buf []byte, t Type) (int32, []byte, error) {
	size := t.Size()
	if len(buf) < size {
		return 0, nil, errors.New("tval: truncated int payload")
	}
	switch t {
	case Int8:
		return int32(int8(buf[0])), buf[1:], nil
	case Int16:
		u := uint16(buf[0]) | uint16(buf[1])<<8
		return int32(int16(u)), buf[2:], nil
	case Int32:
		u := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		return int32(u), buf[4:], nil
	default:
		return 0, nil, errors.Errorf("tval: %v is not an integer type", t)
	}
}

// DecodeIntVector decodes count integer elements of type t from the front
// of buf, returning the widened int32 values (using math.MinInt32 for
// missing elements) and the remaining buffer.
func DecodeIntVector(buf []byte, count int, t Type) ([]int32, []byte, error) {
	if t == Null {
		return nil, buf, nil
	}
	out := make([]int32, count)
	sentinel := Sentinel(t)
	for i := 0; i < count; i++ {
		v, rest, err := decodeIntElem(buf, t)
		if err != nil {
			return nil, nil, err
		}
		if v == sentinel {
			v = math.MinInt32
		}
		out[i] = v
		buf = rest
	}
	return out, buf, nil
}

// DecodeFloatVector decodes count FLOAT32 elements from the front of buf.
func DecodeFloatVector(buf []byte, count int) ([]float32, []byte, error) {
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		if len(buf) < 4 {
			return nil, nil, errors.New("tval: truncated float payload")
		}
		u := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		out[i] = math.Float32frombits(u)
		buf = buf[4:]
	}
	return out, buf, nil
}

// DecodeChar decodes a count-byte CHAR payload from the front of buf.
func DecodeChar(buf []byte, count int) (text []byte, rest []byte, err error) {
	if len(buf) < count {
		return nil, nil, errors.New("tval: truncated char payload")
	}
	return buf[:count], buf[count:], nil
}

// FormatVector renders the count elements of type t at the front of buf as
// their comma-separated VCF-TEXT form, stopping at the first missing
// sentinel. A vector with no non-missing elements renders as ".". Returns
// the remaining buffer after the fixed-size payload (count elements, not
// just the elements actually rendered).
func FormatVector(buf []byte, count int, t Type) (text string, rest []byte, err error) {
	size := count * t.Size()
	if len(buf) < size {
		return "", nil, errors.New("tval: truncated vector payload")
	}
	payload, rest := buf[:size], buf[size:]

	var b []byte
	switch t {
	case Char:
		for _, c := range payload {
			if c == 0 {
				break
			}
			b = append(b, c)
		}
	case Int8, Int16, Int32:
		sentinel := Sentinel(t)
		p := payload
		rendered := 0
		for i := 0; i < count; i++ {
			v, next, derr := decodeIntElem(p, t)
			if derr != nil {
				return "", nil, derr
			}
			if v == sentinel {
				break
			}
			if rendered > 0 {
				b = append(b, ',')
			}
			b = append(b, []byte(fmt.Sprintf("%d", v))...)
			rendered++
			p = next
		}
	case Float32:
		p := payload
		rendered := 0
		for i := 0; i < count; i++ {
			u := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
			if IsMissingFloat32Bits(u) {
				break
			}
			if rendered > 0 {
				b = append(b, ',')
			}
			b = append(b, []byte(fmt.Sprintf("%g", math.Float32frombits(u)))...)
			rendered++
			p = p[4:]
		}
	case Null:
		// zero-length vector: falls through to the "." case below.
	}
	if len(b) == 0 {
		return ".", rest, nil
	}
	return string(b), rest, nil
}
