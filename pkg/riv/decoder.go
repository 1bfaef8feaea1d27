package riv

import (
	"errors"
	"sort"
)

// Record is one type-tagged unit of the object stream.
type Record struct {
	ID         uint64 // positional object id, starting at 1
	Type       TypeTag
	Offset     int // first byte of the type tag
	PropsEnd   int // offset of the terminating key 0
	End        int // first byte after the terminator
	Properties map[PropertyKey]Value
}

// Kind classifies the record's type tag.
func (rec *Record) Kind() Kind {
	return KindOf(rec.Type)
}

// Property returns the value stored under key.
func (rec *Record) Property(key PropertyKey) (Value, bool) {
	v, ok := rec.Properties[key]
	return v, ok
}

// Name returns the record's name using the name keys of its type.
func (rec *Record) Name() string {
	for _, key := range NameKeys(rec.Type) {
		if v, ok := rec.Properties[key]; ok {
			if s, ok := v.Str(); ok {
				return s
			}
		}
	}
	return ""
}

// Uint returns the unsigned integer stored under key, or 0.
func (rec *Record) Uint(key PropertyKey) uint64 {
	if v, ok := rec.Properties[key]; ok {
		u, _ := v.Uint()
		return u
	}
	return 0
}

// Float returns the float stored under key, or 0.
func (rec *Record) Float(key PropertyKey) float32 {
	if v, ok := rec.Properties[key]; ok {
		f, _ := v.Float()
		return f
	}
	return 0
}

// Container is the result of one decode. It is never mutated after Decode
// returns; edits go through Splice and a fresh decode.
type Container struct {
	Header      Header
	Table       *PropertyTable
	Records     []*Record
	Diagnostics []Diagnostic

	// StreamOffset is the offset of the first byte after the property table.
	StreamOffset int
	// Partial is set when recovery mode returned a truncated record list.
	Partial bool

	StateMachines []*StateMachine
	// Orphans are recognized records that had no open parent to attach to.
	Orphans []*Record

	inputs map[uint64]*Input
}

// Record returns the record with object id id.
func (c *Container) Record(id uint64) (*Record, bool) {
	if id == 0 || id > uint64(len(c.Records)) {
		return nil, false
	}
	return c.Records[id-1], true
}

// RecordAt returns the record whose type tag starts at offset.
func (c *Container) RecordAt(offset int) (*Record, bool) {
	i := sort.Search(len(c.Records), func(i int) bool {
		return c.Records[i].Offset >= offset
	})
	if i < len(c.Records) && c.Records[i].Offset == offset {
		return c.Records[i], true
	}
	return nil, false
}

// HasUnknownProperties reports whether any UnknownProperty diagnostic was
// recorded.
func (c *Container) HasUnknownProperties() bool {
	for _, d := range c.Diagnostics {
		if errors.Is(d.Err, ErrUnknownProperty) {
			return true
		}
	}
	return false
}

type decodeOptions struct {
	strict  bool
	recover bool
	layout  TOCLayout
}

// Option configures Decode and FindAnchor.
type Option func(*decodeOptions)

// WithStrict makes the first unknown property a fatal error.
func WithStrict() Option {
	return func(o *decodeOptions) {
		o.strict = true
	}
}

// WithRecovery returns the records decoded before a truncation instead of
// failing. The container is marked Partial.
func WithRecovery() Option {
	return func(o *decodeOptions) {
		o.recover = true
	}
}

// WithTOCLayout selects the property table layout. The default is TOCPairs.
func WithTOCLayout(l TOCLayout) Option {
	return func(o *decodeOptions) {
		o.layout = l
	}
}

func buildOptions(opts []Option) decodeOptions {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Decode parses a complete container and builds its domain model.
func Decode(data []byte, opts ...Option) (*Container, error) {
	o := buildOptions(opts)
	r := NewReader(data)
	h, table, err := ReadHeader(r, o.layout)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Header:       h,
		Table:        table,
		StreamOffset: r.Pos(),
	}
	d := streamDecoder{r: r, table: table, strict: o.strict}
	for r.Remaining() > 0 {
		rec, err := d.next()
		if err != nil {
			var de *DecodeError
			if o.recover && errors.As(err, &de) && errors.Is(de.Err, ErrTruncatedInput) {
				c.Partial = true
				d.diags = append(d.diags, Diagnostic{
					Err:          ErrTruncatedInput,
					Offset:       de.Offset,
					RecordOffset: d.recordOffset,
				})
				break
			}
			return nil, err
		}
		if rec == nil {
			continue
		}
		rec.ID = uint64(len(c.Records) + 1)
		c.Records = append(c.Records, rec)
	}
	c.Diagnostics = d.diags

	build(c)
	return c, nil
}

// streamDecoder reads records from the object stream.
type streamDecoder struct {
	r      *Reader
	table  *PropertyTable
	strict bool
	diags  []Diagnostic

	recordOffset int
	recordType   TypeTag
}

// next reads one record. A zero type tag is padding and yields nil.
func (d *streamDecoder) next() (*Record, error) {
	start := d.r.Pos()
	d.recordOffset = start
	tag, err := d.r.ReadVarWord()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	d.recordType = TypeTag(tag)

	rec := &Record{
		Type:       TypeTag(tag),
		Offset:     start,
		Properties: make(map[PropertyKey]Value),
	}
	for {
		keyOff := d.r.Pos()
		if d.r.Remaining() == 0 {
			return nil, errAt(ErrTruncatedInput, keyOff)
		}
		k, err := d.r.ReadVarWord()
		if err != nil {
			return nil, err
		}
		if k == 0 {
			rec.PropsEnd = keyOff
			rec.End = d.r.Pos()
			return rec, nil
		}
		key := PropertyKey(k)
		v, err := d.property(key, keyOff)
		if err != nil {
			return nil, err
		}
		rec.Properties[key] = v
	}
}

// property reads the value of key. Keys missing from the table are skipped as
// a single VarWord and reported.
func (d *streamDecoder) property(key PropertyKey, keyOff int) (Value, error) {
	wt, ok := d.table.Lookup(key)
	if ok && wt.Valid() {
		return readValue(d.r, wt)
	}
	if d.strict {
		return Value{}, &DecodeError{Err: ErrUnknownProperty, Offset: keyOff, Key: key}
	}
	d.diags = append(d.diags, Diagnostic{
		Err:          ErrUnknownProperty,
		Key:          key,
		Offset:       keyOff,
		RecordOffset: d.recordOffset,
		Type:         d.recordType,
	})
	return readValue(d.r, WireUnknown)
}
