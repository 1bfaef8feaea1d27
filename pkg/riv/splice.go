package riv

import (
	"bytes"
	"fmt"
)

// Anchor locates a named state machine record inside a raw buffer.
type Anchor struct {
	Name         string
	NameKey      PropertyKey
	RecordOffset int // first byte of the state machine's type tag
	NameOffset   int // first byte of the name property key
	PropsEnd     int // offset of the record's terminating key 0
	InsertAt     int // first byte after the terminator
	Diagnostics  []Diagnostic
}

// FindAnchor finds the last state machine record named name and the offset
// just past its property list. It needs only the property table, not a full
// decode.
func FindAnchor(data []byte, name string, opts ...Option) (Anchor, error) {
	o := buildOptions(opts)
	r := NewReader(data)
	_, table, err := ReadHeader(r, o.layout)
	if err != nil {
		return Anchor{}, err
	}
	streamStart := r.Pos()

	if name == "" || !bytes.Contains(data[streamStart:], []byte(name)) {
		return Anchor{}, fmt.Errorf("%w: %q does not occur", ErrAnchorNotFound, name)
	}

	tag := AppendVarWord(nil, uint64(TypeStateMachine))
	best := Anchor{NameOffset: -1}
	var bestLen int
	for _, key := range NameKeys(TypeStateMachine) {
		pattern := AppendVarWord(nil, uint64(key))
		pattern = AppendVarWord(pattern, uint64(len(name)))
		pattern = append(pattern, name...)

		idx := lastTagged(data, pattern, tag, streamStart)
		if idx > best.NameOffset {
			best = Anchor{
				Name:         name,
				NameKey:      key,
				RecordOffset: idx - len(tag),
				NameOffset:   idx,
			}
			bestLen = len(pattern)
		}
	}
	if best.NameOffset < 0 {
		return Anchor{}, fmt.Errorf("%w: %q is not the name of a state machine", ErrAnchorNotFound, name)
	}

	if err := r.Seek(best.NameOffset + bestLen); err != nil {
		return Anchor{}, err
	}
	d := streamDecoder{
		r:            r,
		table:        table,
		strict:       o.strict,
		recordOffset: best.RecordOffset,
		recordType:   TypeStateMachine,
	}
	for {
		keyOff := r.Pos()
		k, err := r.ReadVarWord()
		if err != nil {
			return Anchor{}, err
		}
		if k == 0 {
			best.PropsEnd = keyOff
			best.InsertAt = r.Pos()
			best.Diagnostics = d.diags
			return best, nil
		}
		if _, err := d.property(PropertyKey(k), keyOff); err != nil {
			return Anchor{}, err
		}
	}
}

// lastTagged returns the offset of the last occurrence of pattern that is
// immediately preceded by tag at or after from, or -1.
func lastTagged(data, pattern, tag []byte, from int) int {
	limit := len(data)
	for {
		idx := bytes.LastIndex(data[:limit], pattern)
		if idx < 0 {
			return -1
		}
		start := idx - len(tag)
		if start >= from && bytes.Equal(data[start:idx], tag) {
			return idx
		}
		// allow overlapping occurrences that begin before idx
		limit = idx + len(pattern) - 1
	}
}

// Splice returns a new buffer with insert placed at offset at. data is not
// modified.
func Splice(data []byte, at int, insert []byte) ([]byte, error) {
	if at < 0 || at > len(data) {
		return nil, fmt.Errorf("riv: splice offset %d outside buffer of %d bytes", at, len(data))
	}
	out := make([]byte, 0, len(data)+len(insert))
	out = append(out, data[:at]...)
	out = append(out, insert...)
	out = append(out, data[at:]...)
	return out, nil
}

// SpliceAfter inserts records immediately after the property list of the
// state machine named anchor. Offsets and object ids from any earlier decode
// of data do not apply to the result.
func SpliceAfter(data []byte, anchor string, records []byte, opts ...Option) ([]byte, Anchor, error) {
	a, err := FindAnchor(data, anchor, opts...)
	if err != nil {
		return nil, Anchor{}, err
	}
	out, err := Splice(data, a.InsertAt, records)
	if err != nil {
		return nil, Anchor{}, err
	}
	return out, a, nil
}
