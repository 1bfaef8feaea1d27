package riv

import "testing"

// fullTable declares every key the builder and encoder understand.
func fullTable(t *testing.T) *PropertyTable {
	t.Helper()
	table := NewPropertyTable()
	for _, e := range []struct {
		key PropertyKey
		wt  WireType
	}{
		{KeyName, WireString},
		{KeyParentID, WireUint},
		{KeyStateMachineName, WireString},
		{KeyComponentName, WireString},
		{KeyNumberValue, WireFloat},
		{KeyBoolValue, WireFlag},
		{KeyAnimationID, WireUint},
		{KeyStateToID, WireUint},
		{KeyConditionInputID, WireUint},
		{KeyConditionOp, WireUint},
		{KeyConditionValue, WireFloat},
		{KeyBlendAnimationID, WireUint},
		{KeyBlendValue, WireFloat},
		{KeyBlendInputID, WireUint},
	} {
		if err := table.Add(e.key, e.wt); err != nil {
			t.Fatalf("add key %d: %v", e.key, err)
		}
	}
	return table
}

func record(t *testing.T, tag TypeTag, fields ...Field) []byte {
	t.Helper()
	b, err := EncodeRecord(tag, fields...)
	if err != nil {
		t.Fatalf("encode record %d: %v", tag, err)
	}
	return b
}

func container(t *testing.T, table *PropertyTable, records ...[]byte) []byte {
	t.Helper()
	out := EncodeHeader(Header{Major: 7, Minor: 0, FileID: 0}, table)
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}

func decode(t *testing.T, data []byte, opts ...Option) *Container {
	t.Helper()
	c, err := Decode(data, opts...)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return c
}
