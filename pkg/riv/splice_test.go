package riv

import (
	"bytes"
	"errors"
	"testing"
)

func TestSpliceAfterCockpitScenario(t *testing.T) {
	t.Parallel()

	data := cockpitFixture(t)
	orig := append([]byte(nil), data...)
	insert := EncodeNumberInput("mouthState", 0, 0)

	out, anchor, err := SpliceAfter(data, "CockpitSM", insert)
	if err != nil {
		t.Fatalf("splice: %v", err)
	}
	if !bytes.Equal(data, orig) {
		t.Fatalf("source buffer was modified")
	}

	before := decode(t, data)
	sm := before.Records[1]
	if anchor.RecordOffset != sm.Offset || anchor.PropsEnd != sm.PropsEnd || anchor.InsertAt != sm.End {
		t.Fatalf("anchor: got %+v want record %d..%d", anchor, sm.Offset, sm.End)
	}
	if anchor.NameKey != KeyStateMachineName {
		t.Fatalf("name key: got %d", anchor.NameKey)
	}

	if !bytes.Equal(out[:anchor.InsertAt], data[:anchor.InsertAt]) {
		t.Fatalf("prefix differs")
	}
	if !bytes.Equal(out[anchor.InsertAt+len(insert):], data[anchor.InsertAt:]) {
		t.Fatalf("suffix differs")
	}

	after := decode(t, out)
	if len(after.Records) != 4 {
		t.Fatalf("records: got %d want 4", len(after.Records))
	}
	if after.Records[2].Name() != "mouthState" || after.Records[2].Type != TypeStateMachineNum {
		t.Fatalf("record 3: got %+v", after.Records[2])
	}
	cockpit, ok := after.FindStateMachine("CockpitSM")
	if !ok || len(cockpit.Inputs) != 1 || len(cockpit.Layers) != 1 {
		t.Fatalf("state machine: got %+v", cockpit)
	}
}

func TestFindAnchorSkipsTrailingProperties(t *testing.T) {
	t.Parallel()

	table := fullTable(t)
	data := container(t, table,
		record(t, TypeStateMachine,
			Field{KeyStateMachineName, StringValue("SM")},
			Field{KeyParentID, UintValue(1000)},
			Field{KeyNumberValue, FloatValue(1)},
		),
		record(t, TypeStateMachineLyr),
	)
	anchor, err := FindAnchor(data, "SM")
	if err != nil {
		t.Fatalf("find anchor: %v", err)
	}
	c := decode(t, data)
	if anchor.InsertAt != c.Records[0].End {
		t.Fatalf("insert at: got %d want %d", anchor.InsertAt, c.Records[0].End)
	}
}

func TestFindAnchorUsesLastStateMachine(t *testing.T) {
	t.Parallel()

	data := container(t, fullTable(t),
		record(t, TypeStateMachine, Field{KeyStateMachineName, StringValue("Dup")}),
		record(t, TypeStateMachine, Field{KeyStateMachineName, StringValue("Dup")}),
		record(t, TypeStateMachineNum, Field{KeyComponentName, StringValue("Dup")}),
	)
	anchor, err := FindAnchor(data, "Dup")
	if err != nil {
		t.Fatalf("find anchor: %v", err)
	}
	c := decode(t, data)
	if anchor.RecordOffset != c.Records[1].Offset {
		t.Fatalf("record offset: got %d want %d", anchor.RecordOffset, c.Records[1].Offset)
	}
}

func TestFindAnchorGenericNameKey(t *testing.T) {
	t.Parallel()

	data := []byte{'R', 'I', 'V', 'E', 0x01, 0x00, 0x00,
		0x04, 0x03, 0x00,
		0x35, 0x04, 0x03, 'F', 'o', 'o', 0x00,
	}
	anchor, err := FindAnchor(data, "Foo")
	if err != nil {
		t.Fatalf("find anchor: %v", err)
	}
	if anchor.NameKey != KeyName || anchor.InsertAt != len(data) {
		t.Fatalf("anchor: got %+v", anchor)
	}
}

func TestFindAnchorNotFound(t *testing.T) {
	t.Parallel()

	data := container(t, fullTable(t),
		record(t, TypeArtboard, Field{KeyName, StringValue("Board")}),
		record(t, TypeStateMachineNum, Field{KeyComponentName, StringValue("Input")}),
	)
	for _, name := range []string{"Missing", "Board", "Input", ""} {
		if _, err := FindAnchor(data, name); !errors.Is(err, ErrAnchorNotFound) {
			t.Fatalf("%q: got %v want %v", name, err, ErrAnchorNotFound)
		}
	}
}

func TestSpliceBounds(t *testing.T) {
	t.Parallel()

	data := []byte{1, 2, 3}
	out, err := Splice(data, 3, []byte{9})
	if err != nil {
		t.Fatalf("splice at end: %v", err)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 9}) {
		t.Fatalf("got %v", out)
	}
	if _, err := Splice(data, 4, nil); err == nil {
		t.Fatalf("expected out of range error")
	}
	out, _ = Splice(data, 0, []byte{0})
	out[1] = 42
	if data[0] != 1 {
		t.Fatalf("splice result aliases the source")
	}
}
