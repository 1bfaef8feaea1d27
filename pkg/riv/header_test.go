package riv

import (
	"errors"
	"testing"
)

func TestReadHeaderPairs(t *testing.T) {
	t.Parallel()

	data := []byte{'R', 'I', 'V', 'E', 0x07, 0x01, 0xAC, 0x02, 0x04, 0x03, 0x8C, 0x01, 0x02, 0x00}
	r := NewReader(data)
	h, table, err := ReadHeader(r, TOCPairs)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h != (Header{Major: 7, Minor: 1, FileID: 300}) {
		t.Fatalf("header: got %+v", h)
	}
	if table.Len() != 2 {
		t.Fatalf("table len: got %d want 2", table.Len())
	}
	if wt, ok := table.Lookup(KeyName); !ok || wt != WireString {
		t.Fatalf("key 4: got %v %v", wt, ok)
	}
	if wt, ok := table.Lookup(KeyNumberValue); !ok || wt != WireFloat {
		t.Fatalf("key 140: got %v %v", wt, ok)
	}
	if r.Pos() != len(data) {
		t.Fatalf("stream offset: got %d want %d", r.Pos(), len(data))
	}
}

func TestReadHeaderBadMagic(t *testing.T) {
	t.Parallel()

	_, _, err := ReadHeader(NewReader([]byte("RIFF\x01\x00\x00\x00")), TOCPairs)
	if !errors.Is(err, ErrBadMagic) {
		t.Fatalf("got %v want %v", err, ErrBadMagic)
	}
}

func TestReadHeaderShortInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", ErrBadMagic},
		{"zip prefix", "PK", ErrBadMagic},
		{"gif prefix", "GIF", ErrBadMagic},
		{"cut magic", "RIV", ErrTruncatedInput},
	}
	for _, tt := range tests {
		_, _, err := ReadHeader(NewReader([]byte(tt.data)), TOCPairs)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: got %v want %v", tt.name, err, tt.want)
		}
	}
}

func TestReadHeaderDuplicateKey(t *testing.T) {
	t.Parallel()

	data := []byte{'R', 'I', 'V', 'E', 0x07, 0x00, 0x00, 0x04, 0x03, 0x04, 0x01, 0x00}
	_, _, err := ReadHeader(NewReader(data), TOCPairs)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("got %v want %v", err, ErrDuplicateKey)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Key != 4 || de.Offset != 9 {
		t.Fatalf("decode error: got %+v", de)
	}
}

func TestReadHeaderTruncatedVarWordOffset(t *testing.T) {
	t.Parallel()

	_, _, err := ReadHeader(NewReader([]byte{'R', 'I', 'V', 'E', 0x07, 0x81}), TOCPairs)
	var de *DecodeError
	if !errors.As(err, &de) || !errors.Is(err, ErrTruncatedInput) {
		t.Fatalf("got %v want truncated input", err)
	}
	if de.Offset != 5 {
		t.Fatalf("offset: got %d want 5", de.Offset)
	}
}

func TestReadHeaderPacked(t *testing.T) {
	t.Parallel()

	// five keys: the fifth spills into a second word
	data := []byte{'R', 'I', 'V', 'E', 0x07, 0x00, 0x00,
		0x04, 0x05, 0x8C, 0x01, 0x37, 0x8A, 0x01, 0x00,
		// word 1: key4=String(1) key5=Uint(0) key140=Float(2) key55=String(1)
		0x01 | 0x00<<2 | 0x02<<4 | 0x01<<6, 0x00, 0x00, 0x00,
		// word 2: key138=Color(3)
		0x03, 0x00, 0x00, 0x00,
	}
	_, table, err := ReadHeader(NewReader(data), TOCPacked)
	if err != nil {
		t.Fatalf("read packed header: %v", err)
	}
	want := map[PropertyKey]WireType{
		4:   WireString,
		5:   WireUint,
		140: WireFloat,
		55:  WireString,
		138: WireColor,
	}
	for key, wt := range want {
		got, ok := table.Lookup(key)
		if !ok || got != wt {
			t.Fatalf("key %d: got %v %v want %v", key, got, ok, wt)
		}
	}
}

func TestEncodeHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	table := fullTable(t)
	data := EncodeHeader(Header{Major: 7, Minor: 2, FileID: 99}, table)
	h, got, err := ReadHeader(NewReader(data), TOCPairs)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h.Major != 7 || h.Minor != 2 || h.FileID != 99 {
		t.Fatalf("header: got %+v", h)
	}
	keys := table.Keys()
	gotKeys := got.Keys()
	if len(keys) != len(gotKeys) {
		t.Fatalf("key count: got %d want %d", len(gotKeys), len(keys))
	}
	for i := range keys {
		if keys[i] != gotKeys[i] {
			t.Fatalf("key order at %d: got %d want %d", i, gotKeys[i], keys[i])
		}
	}
}

func TestPropertyTableRejectsDuplicates(t *testing.T) {
	t.Parallel()

	table := NewPropertyTable()
	if err := table.Add(4, WireString); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := table.Add(4, WireUint); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("got %v want %v", err, ErrDuplicateKey)
	}
	if err := table.Add(0, WireUint); err == nil {
		t.Fatalf("expected error for reserved key 0")
	}
}
