// Package riv implements the RIVE runtime container format.
//
// A container is a 4-byte magic, three VarWords (major, minor, file id), a
// property table mapping property keys to wire types, and a flat stream of
// records. Each record is a type tag followed by key/value properties and a
// terminating key 0. The property table lets a reader skip any property it
// does not understand without losing its place in the stream.
//
// Parent/child relationships are not stored on the wire. They are implied by
// record order and recovered by the domain model builder.
package riv

import "fmt"

// Magic is the 4-byte file signature.
const Magic = "RIVE"

// WireType selects how the value bytes of a property are encoded.
type WireType uint8

const (
	WireFlag   WireType = 0 // single byte
	WireUint   WireType = 1 // VarWord
	WireFloat  WireType = 2 // 4-byte little-endian IEEE-754
	WireString WireType = 3 // VarWord length + UTF-8
	WireColor  WireType = 4 // 4-byte little-endian
	WireBytes  WireType = 5 // VarWord length + raw bytes

	// WireUnknown marks a value whose width could not be determined from the
	// property table. It never appears on the wire.
	WireUnknown WireType = 0xFF
)

func (t WireType) String() string {
	switch t {
	case WireFlag:
		return "flag"
	case WireUint:
		return "uint"
	case WireFloat:
		return "float"
	case WireString:
		return "string"
	case WireColor:
		return "color"
	case WireBytes:
		return "bytes"
	case WireUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("wire(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the six wire types defined by the format.
func (t WireType) Valid() bool {
	return t <= WireBytes
}
