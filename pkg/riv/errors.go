package riv

import (
	"errors"
	"fmt"
)

var (
	ErrBadMagic        = errors.New("riv: bad magic")
	ErrTruncatedInput  = errors.New("riv: truncated input")
	ErrDuplicateKey    = errors.New("riv: duplicate property key")
	ErrUnknownProperty = errors.New("riv: unknown property")
	ErrAnchorNotFound  = errors.New("riv: anchor not found")
	ErrOverflow        = errors.New("riv: varword overflow")
)

// DecodeError reports a failure at a byte offset. It unwraps to one of the
// package sentinels.
type DecodeError struct {
	Err    error
	Offset int
	Key    PropertyKey // set for property related failures
}

func (e *DecodeError) Error() string {
	if e.Key != 0 {
		return fmt.Sprintf("%v: key %d at offset %d", e.Err, e.Key, e.Offset)
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func errAt(err error, off int) *DecodeError {
	return &DecodeError{Err: err, Offset: off}
}

// Diagnostic is a non-fatal event recorded while decoding. Err is one of the
// package sentinels, usually ErrUnknownProperty.
type Diagnostic struct {
	Err          error
	Key          PropertyKey
	Offset       int // offset of the property key or failing value
	RecordOffset int // offset of the record's type tag, -1 outside the object stream
	Type         TypeTag
}

func (d Diagnostic) Error() string {
	if d.Key != 0 {
		return fmt.Sprintf("%v: key %d at offset %d (record type %d at %d)", d.Err, d.Key, d.Offset, d.Type, d.RecordOffset)
	}
	return fmt.Sprintf("%v at offset %d", d.Err, d.Offset)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}
