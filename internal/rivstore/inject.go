package rivstore

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samcharles93/rivet/pkg/riv"
)

var (
	ErrUndeclaredKey = errors.New("rivstore: property key not declared in the property table")
	ErrVerify        = errors.New("rivstore: patched container failed verification")
)

// Plan lists the inputs to add to one state machine.
type Plan struct {
	Anchor string
	Inputs []riv.InputSpec
	// AllowUndeclared splices even when the property table does not declare
	// a key the inputs use. Verification is skipped in that case because
	// the patched records cannot be decoded against the table.
	AllowUndeclared bool
	Options         []riv.Option
}

type Result struct {
	Data     []byte
	Location Location
	Added    []string
	Skipped  []string
	// Undeclared lists keys the inputs use that the table does not declare.
	Undeclared []riv.PropertyKey
}

// Inject adds p.Inputs to the state machine named p.Anchor. Inputs whose
// names already exist on that state machine, or repeat an earlier name in
// the plan, are skipped. data is never modified.
func Inject(data []byte, p Plan) (Result, error) {
	if p.Anchor == "" {
		return Result{}, errors.New("rivstore: anchor name is required")
	}
	c, err := riv.Decode(data, p.Options...)
	if err != nil {
		return Result{}, fmt.Errorf("decode source: %w", err)
	}
	loc, err := locate(data, c, p.Anchor, p.Options)
	if err != nil {
		return Result{}, err
	}

	seen := make(map[string]bool)
	if sm, ok := c.StateMachineByID(loc.ID); ok {
		for _, in := range sm.Inputs {
			seen[in.Name] = true
		}
	}

	res := Result{Location: loc}
	var insert bytes.Buffer
	for _, spec := range p.Inputs {
		if seen[spec.Name] {
			res.Skipped = append(res.Skipped, spec.Name)
			continue
		}
		b, err := riv.EncodeInput(spec)
		if err != nil {
			return Result{}, fmt.Errorf("input %q: %w", spec.Name, err)
		}
		for _, f := range spec.Fields() {
			if wt, ok := c.Table.Lookup(f.Key); !ok || !compatible(wt, f.Value) {
				res.Undeclared = appendKey(res.Undeclared, f.Key)
			}
		}
		seen[spec.Name] = true
		res.Added = append(res.Added, spec.Name)
		insert.Write(b)
	}
	if len(res.Undeclared) > 0 && !p.AllowUndeclared {
		return Result{}, fmt.Errorf("%w: %v", ErrUndeclaredKey, res.Undeclared)
	}

	if insert.Len() == 0 {
		res.Data = append([]byte(nil), data...)
		return res, nil
	}
	out, err := riv.Splice(data, loc.InsertAt, insert.Bytes())
	if err != nil {
		return Result{}, err
	}
	res.Data = out

	if len(res.Undeclared) == 0 {
		if err := verify(out, loc, insert.Len(), res.Added, p.Options); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

// compatible reports whether v, written with its own wire type, decodes
// unchanged under the declared type. A flag is a single 0 or 1 byte, which
// is also a one-byte VarWord, so uint declarations accept it. The packed
// layout has no flag type and declares boolean keys as uint.
func compatible(declared riv.WireType, v riv.Value) bool {
	if declared == v.Type {
		return true
	}
	if declared == riv.WireUint && v.Type == riv.WireFlag {
		n, _ := v.Uint()
		return n < 0x80
	}
	return false
}

func appendKey(keys []riv.PropertyKey, k riv.PropertyKey) []riv.PropertyKey {
	for _, have := range keys {
		if have == k {
			return keys
		}
	}
	return append(keys, k)
}

// verify decodes the patched buffer and checks that every added input is
// attached to the anchor state machine and decoded cleanly.
func verify(out []byte, loc Location, n int, added []string, opts []riv.Option) error {
	c, err := riv.Decode(out, opts...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerify, err)
	}
	for _, d := range c.Diagnostics {
		if d.RecordOffset >= loc.InsertAt && d.RecordOffset < loc.InsertAt+n {
			return fmt.Errorf("%w: %v", ErrVerify, d)
		}
	}
	rec, ok := c.RecordAt(loc.RecordOffset)
	if !ok {
		return fmt.Errorf("%w: anchor record moved", ErrVerify)
	}
	sm, ok := c.StateMachineByID(rec.ID)
	if !ok {
		return fmt.Errorf("%w: anchor is no longer a state machine", ErrVerify)
	}
	for _, name := range added {
		if _, ok := sm.Input(name); !ok {
			return fmt.Errorf("%w: input %q not attached to %q", ErrVerify, name, sm.Name)
		}
	}
	return nil
}

// WriteFile replaces path with data via a temporary file in the same
// directory, keeping the existing file mode when there is one.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}
