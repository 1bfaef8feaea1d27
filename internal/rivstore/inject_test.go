package rivstore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/samcharles93/rivet/pkg/riv"
)

func TestInjectAddsInputs(t *testing.T) {
	t.Parallel()

	src := cockpit(t, true)
	orig := bytes.Clone(src)
	res, err := Inject(src, Plan{
		Anchor: "CockpitSM",
		Inputs: []riv.InputSpec{
			{Name: "mouthState", Kind: riv.InputNumber},
			{Name: "blink", Kind: riv.InputTrigger},
		},
	})
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if !bytes.Equal(src, orig) {
		t.Fatalf("source modified")
	}
	if !slices.Equal(res.Added, []string{"mouthState", "blink"}) || len(res.Skipped) != 0 {
		t.Fatalf("added=%v skipped=%v", res.Added, res.Skipped)
	}

	c, err := riv.Decode(res.Data)
	if err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	sm, ok := c.FindStateMachine("CockpitSM")
	if !ok {
		t.Fatalf("state machine missing")
	}
	var names []string
	for _, in := range sm.Inputs {
		names = append(names, in.Name)
	}
	want := []string{"mouthState", "blink", "isTalking"}
	if !slices.Equal(names, want) {
		t.Fatalf("inputs: got %v want %v", names, want)
	}
	if len(sm.Layers) != 1 {
		t.Fatalf("layers: got %d want 1", len(sm.Layers))
	}
}

func TestInjectIsIdempotent(t *testing.T) {
	t.Parallel()

	plan := Plan{
		Anchor: "CockpitSM",
		Inputs: []riv.InputSpec{
			{Name: "isTalking", Kind: riv.InputBoolean},
			{Name: "mouthState", Kind: riv.InputNumber, Number: 2},
			{Name: "mouthState", Kind: riv.InputNumber, Number: 3},
		},
	}
	first, err := Inject(cockpit(t, true), plan)
	if err != nil {
		t.Fatalf("first inject: %v", err)
	}
	if !slices.Equal(first.Skipped, []string{"isTalking", "mouthState"}) {
		t.Fatalf("skipped: got %v", first.Skipped)
	}

	second, err := Inject(first.Data, plan)
	if err != nil {
		t.Fatalf("second inject: %v", err)
	}
	if len(second.Added) != 0 {
		t.Fatalf("added on re-run: %v", second.Added)
	}
	if !bytes.Equal(second.Data, first.Data) {
		t.Fatalf("re-run changed the data")
	}
}

func TestInjectUndeclaredKeys(t *testing.T) {
	t.Parallel()

	src := cockpit(t, false)
	plan := Plan{
		Anchor: "CockpitSM",
		Inputs: []riv.InputSpec{{Name: "mouthState", Kind: riv.InputNumber}},
	}
	if _, err := Inject(src, plan); !errors.Is(err, ErrUndeclaredKey) {
		t.Fatalf("got %v want %v", err, ErrUndeclaredKey)
	}

	plan.AllowUndeclared = true
	res, err := Inject(src, plan)
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if !slices.Equal(res.Undeclared, []riv.PropertyKey{riv.KeyComponentName, riv.KeyNumberValue}) {
		t.Fatalf("undeclared: got %v", res.Undeclared)
	}
	if len(res.Data) != len(src)+len(riv.EncodeNumberInput("mouthState", 0, 0)) {
		t.Fatalf("size: got %d", len(res.Data))
	}
}

// packedCockpit builds a container whose property table uses the packed
// layout, where boolean keys are declared as uint.
func packedCockpit(t *testing.T) []byte {
	t.Helper()
	out := []byte{'R', 'I', 'V', 'E', 0x07, 0x00, 0x00,
		0x37, 0x8A, 0x01, 0x8C, 0x01, 0x8D, 0x01, 0x00,
		// key55=String key138=String key140=Float key141=Uint
		0x01 | 0x01<<2 | 0x02<<4 | 0x00<<6, 0x00, 0x00, 0x00,
	}
	out = append(out, mustRecord(t, riv.TypeStateMachine, riv.Field{Key: riv.KeyStateMachineName, Value: riv.StringValue("CockpitSM")})...)
	return out
}

func TestInjectBooleanIntoPackedTable(t *testing.T) {
	t.Parallel()

	opts := []riv.Option{riv.WithTOCLayout(riv.TOCPacked)}
	res, err := Inject(packedCockpit(t), Plan{
		Anchor:  "CockpitSM",
		Inputs:  []riv.InputSpec{{Name: "isTalking", Kind: riv.InputBoolean, Bool: true}},
		Options: opts,
	})
	if err != nil {
		t.Fatalf("inject: %v", err)
	}
	if len(res.Undeclared) != 0 {
		t.Fatalf("undeclared: got %v", res.Undeclared)
	}

	c, err := riv.Decode(res.Data, opts...)
	if err != nil {
		t.Fatalf("decode patched: %v", err)
	}
	if len(c.Diagnostics) != 0 {
		t.Fatalf("diagnostics: got %v", c.Diagnostics)
	}
	sm, ok := c.FindStateMachine("CockpitSM")
	if !ok {
		t.Fatalf("state machine missing")
	}
	in, ok := sm.Input("isTalking")
	if !ok || in.Kind != riv.InputBoolean || !in.Bool {
		t.Fatalf("input: got %+v %v", in, ok)
	}
}

func TestCompatibleWireTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		declared riv.WireType
		value    riv.Value
		want     bool
	}{
		{"same type", riv.WireFlag, riv.FlagValue(true), true},
		{"flag as uint", riv.WireUint, riv.FlagValue(true), true},
		{"flag as float", riv.WireFloat, riv.FlagValue(false), false},
		{"uint as flag", riv.WireFlag, riv.UintValue(1), false},
	}
	for _, tt := range tests {
		if got := compatible(tt.declared, tt.value); got != tt.want {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
}

func TestInjectErrors(t *testing.T) {
	t.Parallel()

	src := cockpit(t, true)
	if _, err := Inject(src, Plan{}); err == nil {
		t.Fatalf("expected error without anchor")
	}
	if _, err := Inject(src, Plan{Anchor: "Missing"}); !errors.Is(err, riv.ErrAnchorNotFound) {
		t.Fatalf("got %v want %v", err, riv.ErrAnchorNotFound)
	}
	_, err := Inject(src, Plan{Anchor: "CockpitSM", Inputs: []riv.InputSpec{{Kind: riv.InputNumber}}})
	if err == nil {
		t.Fatalf("expected error for unnamed input")
	}
	if _, err := Inject([]byte("nope"), Plan{Anchor: "CockpitSM"}); !errors.Is(err, riv.ErrBadMagic) {
		t.Fatalf("got %v want %v", err, riv.ErrBadMagic)
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.riv")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := WriteFile(path, []byte("new contents")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "new contents" {
		t.Fatalf("contents: got %q", got)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("mode: got %v want %v", st.Mode().Perm(), os.FileMode(0o600))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %d entries", len(entries))
	}
}
