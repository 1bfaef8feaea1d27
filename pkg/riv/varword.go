package riv

// MaxVarWordLen is the longest encoding of a 64-bit VarWord.
const MaxVarWordLen = 10

// DecodeVarWord decodes a VarWord from the front of b and returns the value
// and the number of bytes consumed. Values are limited to 64 bits.
func DecodeVarWord(b []byte) (uint64, int, error) {
	var v uint64
	var shift uint
	for i, c := range b {
		if i == MaxVarWordLen-1 && c > 1 {
			return 0, 0, ErrOverflow
		}
		v |= uint64(c&0x7F) << shift
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncatedInput
}

// AppendVarWord appends the VarWord encoding of v to dst.
func AppendVarWord(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// VarWordLen returns the encoded size of v.
func VarWordLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
