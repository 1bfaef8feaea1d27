package riv

import "errors"

var errReservedKey = errors.New("riv: property key 0 is reserved")

// Header is the fixed prefix of every container.
type Header struct {
	Major  uint64
	Minor  uint64
	FileID uint64
}

// TOCLayout selects how the property table is laid out on the wire.
type TOCLayout uint8

const (
	// TOCPairs is the default layout: (key, wire type) VarWord pairs
	// terminated by key 0.
	TOCPairs TOCLayout = iota
	// TOCPacked is a key list terminated by 0 followed by little-endian
	// uint32 words holding a 2-bit field type per key, four keys per word in
	// the low byte.
	TOCPacked
)

func (l TOCLayout) String() string {
	switch l {
	case TOCPairs:
		return "pairs"
	case TOCPacked:
		return "packed"
	default:
		return "unknown"
	}
}

// ParseTOCLayout accepts "pairs" or "packed". Empty selects pairs.
func ParseTOCLayout(s string) (TOCLayout, bool) {
	switch s {
	case "", "pairs":
		return TOCPairs, true
	case "packed":
		return TOCPacked, true
	default:
		return TOCPairs, false
	}
}

// packedFieldTypes maps the 2-bit field index of the packed layout.
var packedFieldTypes = [4]WireType{WireUint, WireString, WireFloat, WireColor}

// PropertyTable maps property keys to the wire type of their values.
type PropertyTable struct {
	types map[PropertyKey]WireType
	keys  []PropertyKey
}

func NewPropertyTable() *PropertyTable {
	return &PropertyTable{types: make(map[PropertyKey]WireType)}
}

// Add registers key with wire type t. Key 0 is reserved.
func (t *PropertyTable) Add(key PropertyKey, wt WireType) error {
	if key == 0 {
		return errReservedKey
	}
	if _, ok := t.types[key]; ok {
		return &DecodeError{Err: ErrDuplicateKey, Offset: -1, Key: key}
	}
	t.types[key] = wt
	t.keys = append(t.keys, key)
	return nil
}

// Lookup returns the wire type declared for key.
func (t *PropertyTable) Lookup(key PropertyKey) (WireType, bool) {
	if t == nil {
		return 0, false
	}
	wt, ok := t.types[key]
	return wt, ok
}

func (t *PropertyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the keys in declaration order.
func (t *PropertyTable) Keys() []PropertyKey {
	if t == nil {
		return nil
	}
	out := make([]PropertyKey, len(t.keys))
	copy(out, t.keys)
	return out
}

// ReadHeader reads the magic, version, file id and property table. On return
// r is positioned at the first record of the object stream.
func ReadHeader(r *Reader, layout TOCLayout) (Header, *PropertyTable, error) {
	var h Header
	start := r.Pos()
	if n := r.Remaining(); n < len(Magic) {
		// a proper prefix of the magic is a cut file, anything else is not ours
		if n == 0 || string(r.data[start:]) != Magic[:n] {
			return h, nil, errAt(ErrBadMagic, start)
		}
		return h, nil, errAt(ErrTruncatedInput, start)
	}
	magic, err := r.next(len(Magic))
	if err != nil {
		return h, nil, err
	}
	if string(magic) != Magic {
		return h, nil, errAt(ErrBadMagic, start)
	}
	if h.Major, err = r.ReadVarWord(); err != nil {
		return h, nil, err
	}
	if h.Minor, err = r.ReadVarWord(); err != nil {
		return h, nil, err
	}
	if h.FileID, err = r.ReadVarWord(); err != nil {
		return h, nil, err
	}

	var table *PropertyTable
	switch layout {
	case TOCPacked:
		table, err = readPackedTable(r)
	default:
		table, err = readPairTable(r)
	}
	if err != nil {
		return h, nil, err
	}
	return h, table, nil
}

func readPairTable(r *Reader) (*PropertyTable, error) {
	table := NewPropertyTable()
	for {
		off := r.Pos()
		key, err := r.ReadVarWord()
		if err != nil {
			return nil, err
		}
		if key == 0 {
			return table, nil
		}
		wt, err := r.ReadVarWord()
		if err != nil {
			return nil, err
		}
		if _, dup := table.types[PropertyKey(key)]; dup {
			return nil, &DecodeError{Err: ErrDuplicateKey, Offset: off, Key: PropertyKey(key)}
		}
		if wt > uint64(WireBytes) {
			// Out of range tags are kept so the decoder can surface them per use.
			wt = uint64(WireUnknown)
		}
		table.types[PropertyKey(key)] = WireType(wt)
		table.keys = append(table.keys, PropertyKey(key))
	}
}

func readPackedTable(r *Reader) (*PropertyTable, error) {
	table := NewPropertyTable()
	for {
		off := r.Pos()
		key, err := r.ReadVarWord()
		if err != nil {
			return nil, err
		}
		if key == 0 {
			break
		}
		if _, dup := table.types[PropertyKey(key)]; dup {
			return nil, &DecodeError{Err: ErrDuplicateKey, Offset: off, Key: PropertyKey(key)}
		}
		table.types[PropertyKey(key)] = WireUnknown
		table.keys = append(table.keys, PropertyKey(key))
	}

	var word uint32
	bit := 8
	for _, key := range table.keys {
		if bit == 8 {
			w, err := r.ReadUint32()
			if err != nil {
				return nil, err
			}
			word = w
			bit = 0
		}
		table.types[key] = packedFieldTypes[(word>>bit)&3]
		bit += 2
	}
	return table, nil
}

// EncodeHeader returns the header and property table in the pair layout.
func EncodeHeader(h Header, table *PropertyTable) []byte {
	w := NewWriter()
	w.WriteRaw([]byte(Magic))
	w.WriteVarWord(h.Major)
	w.WriteVarWord(h.Minor)
	w.WriteVarWord(h.FileID)
	for _, key := range table.Keys() {
		wt, _ := table.Lookup(key)
		w.WriteVarWord(uint64(key))
		w.WriteVarWord(uint64(wt))
	}
	w.WriteVarWord(0)
	return w.Bytes()
}
