package riv

import (
	"bytes"
	"testing"
)

func TestEncodeNumberInputScenario(t *testing.T) {
	t.Parallel()

	got := EncodeNumberInput("mouthState", 0, 0)
	want := []byte{0x38, 0x8A, 0x01, 0x0A}
	want = append(want, "mouthState"...)
	want = append(want, 0x8C, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00)
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x want %x", got, want)
	}

	c := decode(t, container(t, InputTable(), got))
	if len(c.Records) != 1 {
		t.Fatalf("records: got %d want 1", len(c.Records))
	}
	rec := c.Records[0]
	if rec.Type != TypeStateMachineNum || rec.Name() != "mouthState" {
		t.Fatalf("record: got type=%d name=%q", rec.Type, rec.Name())
	}
	if v, ok := rec.Property(KeyNumberValue); !ok {
		t.Fatalf("missing value property")
	} else if f, _ := v.Float(); f != 0 {
		t.Fatalf("value: got %v want 0", f)
	}
	if _, ok := rec.Property(KeyParentID); ok {
		t.Fatalf("parent id must be omitted")
	}
}

func TestEncodeInputRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		spec InputSpec
	}{
		{"number", InputSpec{Name: "headTurn", Kind: InputNumber, Number: -45.5}},
		{"boolean", InputSpec{Name: "isTalking", Kind: InputBoolean, Bool: true}},
		{"trigger", InputSpec{Name: "blink", Kind: InputTrigger}},
		{"parented", InputSpec{Name: "eyeState", Kind: InputNumber, Number: 3, ParentID: 300}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b, err := EncodeInput(tc.spec)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			c := decode(t, container(t, InputTable(), b))
			if len(c.Diagnostics) != 0 {
				t.Fatalf("diagnostics: %v", c.Diagnostics)
			}
			rec := c.Records[0]
			if rec.Type != tc.spec.Kind.Tag() || rec.Name() != tc.spec.Name {
				t.Fatalf("record: got type=%d name=%q", rec.Type, rec.Name())
			}
			if got := rec.Uint(KeyParentID); got != tc.spec.ParentID {
				t.Fatalf("parent id: got %d want %d", got, tc.spec.ParentID)
			}
			in := newInput(rec)
			switch tc.spec.Kind {
			case InputNumber:
				if in.Number != tc.spec.Number {
					t.Fatalf("number: got %v want %v", in.Number, tc.spec.Number)
				}
			case InputBoolean:
				if in.Bool != tc.spec.Bool {
					t.Fatalf("bool: got %v want %v", in.Bool, tc.spec.Bool)
				}
			case InputTrigger:
				if len(rec.Properties) != 1 {
					t.Fatalf("trigger properties: got %d want 1", len(rec.Properties))
				}
			}
		})
	}
}

func TestEncodeConvenienceMatchesSpec(t *testing.T) {
	t.Parallel()

	b, _ := EncodeInput(InputSpec{Name: "on", Kind: InputBoolean, Bool: true, ParentID: 2})
	if !bytes.Equal(EncodeBooleanInput("on", true, 2), b) {
		t.Fatalf("boolean encoders disagree")
	}
	tr, _ := EncodeInput(InputSpec{Name: "go", Kind: InputTrigger})
	if !bytes.Equal(EncodeTriggerInput("go", 0), tr) {
		t.Fatalf("trigger encoders disagree")
	}
}

func TestEncodeInputRejectsInvalid(t *testing.T) {
	t.Parallel()

	if _, err := EncodeInput(InputSpec{Kind: InputNumber}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := EncodeInput(InputSpec{Name: "x", Kind: InputKind(9)}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, err := EncodeRecord(0); err == nil {
		t.Fatalf("expected error for tag 0")
	}
	if _, err := EncodeRecord(TypeStateMachine, Field{0, UintValue(1)}); err == nil {
		t.Fatalf("expected error for key 0")
	}
}
