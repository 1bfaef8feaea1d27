package riv

import (
	"fmt"
	"math"
)

// Value is one decoded property value. Type records the wire type it was
// read with; WireUnknown values hold the VarWord consumed by the best-effort
// skip in Uint.
type Value struct {
	Type  WireType
	num   uint64 // flag, uint, color, float bits
	bytes []byte // string and bytes payloads, aliasing the source buffer
}

func FlagValue(b bool) Value {
	if b {
		return Value{Type: WireFlag, num: 1}
	}
	return Value{Type: WireFlag}
}

func UintValue(v uint64) Value {
	return Value{Type: WireUint, num: v}
}

func FloatValue(v float32) Value {
	return Value{Type: WireFloat, num: uint64(math.Float32bits(v))}
}

func StringValue(s string) Value {
	return Value{Type: WireString, bytes: []byte(s)}
}

func ColorValue(argb uint32) Value {
	return Value{Type: WireColor, num: uint64(argb)}
}

func BytesValue(b []byte) Value {
	return Value{Type: WireBytes, bytes: b}
}

// Uint returns the value as an unsigned integer. Flags and colors convert.
func (v Value) Uint() (uint64, bool) {
	switch v.Type {
	case WireUint, WireFlag, WireColor, WireUnknown:
		return v.num, true
	default:
		return 0, false
	}
}

// Bool accepts flags and uints, the two encodings seen for boolean properties.
func (v Value) Bool() (bool, bool) {
	switch v.Type {
	case WireFlag, WireUint:
		return v.num != 0, true
	default:
		return false, false
	}
}

func (v Value) Float() (float32, bool) {
	if v.Type != WireFloat {
		return 0, false
	}
	return math.Float32frombits(uint32(v.num)), true
}

func (v Value) Color() (uint32, bool) {
	if v.Type != WireColor {
		return 0, false
	}
	return uint32(v.num), true
}

func (v Value) Str() (string, bool) {
	if v.Type != WireString {
		return "", false
	}
	return string(v.bytes), true
}

// Bytes returns string or bytes payloads. The slice aliases the decoded buffer.
func (v Value) Bytes() ([]byte, bool) {
	if v.Type != WireString && v.Type != WireBytes {
		return nil, false
	}
	return v.bytes, true
}

// Any returns the value as a plain Go value for display and serialisation.
func (v Value) Any() any {
	switch v.Type {
	case WireFlag:
		return v.num != 0
	case WireUint, WireUnknown:
		return v.num
	case WireFloat:
		f, _ := v.Float()
		return f
	case WireString:
		return string(v.bytes)
	case WireColor:
		return fmt.Sprintf("#%08x", uint32(v.num))
	case WireBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bytes))
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.Type == WireString {
		return fmt.Sprintf("%q", string(v.bytes))
	}
	return fmt.Sprint(v.Any())
}

// readValue decodes one value of wire type t.
func readValue(r *Reader, t WireType) (Value, error) {
	switch t {
	case WireFlag:
		b, err := r.ReadByte()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: WireFlag, num: uint64(b)}, nil
	case WireUint:
		u, err := r.ReadVarWord()
		if err != nil {
			return Value{}, err
		}
		return UintValue(u), nil
	case WireFloat, WireColor:
		u, err := r.ReadUint32()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, num: uint64(u)}, nil
	case WireString, WireBytes:
		b, err := r.ReadBytes()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, bytes: b}, nil
	default:
		u, err := r.ReadVarWord()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: WireUnknown, num: u}, nil
	}
}

// appendValue encodes v in its wire type.
func appendValue(w *Writer, v Value) error {
	switch v.Type {
	case WireFlag:
		return w.WriteByte(byte(v.num))
	case WireUint:
		w.WriteVarWord(v.num)
	case WireFloat, WireColor:
		w.WriteUint32(uint32(v.num))
	case WireString, WireBytes:
		w.WriteBytes(v.bytes)
	default:
		return fmt.Errorf("riv: cannot encode %s value", v.Type)
	}
	return nil
}
