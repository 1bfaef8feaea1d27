package riv

import (
	"encoding/binary"
	"math"
)

// Reader is a position-tracked cursor over an immutable buffer. A failed read
// leaves the position at the start of the value that could not be read.
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the absolute offset of the next byte to be read.
func (r *Reader) Pos() int {
	return r.pos
}

// Seek moves the cursor to an absolute offset. Seeking to len(data) is valid.
func (r *Reader) Seek(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return errAt(ErrTruncatedInput, pos)
	}
	r.pos = pos
	return nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Len returns the size of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errAt(ErrTruncatedInput, r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadVarWord() (uint64, error) {
	v, n, err := DecodeVarWord(r.data[r.pos:])
	if err != nil {
		return 0, errAt(err, r.pos)
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	u, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ReadBytes reads a VarWord length followed by that many bytes. The returned
// slice aliases the underlying buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.pos
	n, err := r.ReadVarWord()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Remaining()) {
		r.pos = start
		return nil, errAt(ErrTruncatedInput, start)
	}
	b, _ := r.next(int(n))
	return b, nil
}

func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Writer is an append-only encoding buffer.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

func (w *Writer) WriteVarWord(v uint64) {
	w.buf = AppendVarWord(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarWord(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *Writer) WriteString(s string) {
	w.WriteVarWord(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteRaw appends b without a length prefix.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the accumulated bytes. The slice is only valid until the next
// write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}
