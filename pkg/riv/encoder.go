package riv

import (
	"errors"
	"fmt"
)

// Field is one property to encode.
type Field struct {
	Key   PropertyKey
	Value Value
}

// EncodeRecord serialises a record: type tag, fields in order, terminator.
func EncodeRecord(tag TypeTag, fields ...Field) ([]byte, error) {
	if tag == 0 {
		return nil, errors.New("riv: type tag 0 is reserved for padding")
	}
	w := NewWriter()
	w.WriteVarWord(uint64(tag))
	for _, f := range fields {
		if f.Key == 0 {
			return nil, errReservedKey
		}
		w.WriteVarWord(uint64(f.Key))
		if err := appendValue(w, f.Value); err != nil {
			return nil, fmt.Errorf("key %d: %w", f.Key, err)
		}
	}
	w.WriteVarWord(0)
	return w.Bytes(), nil
}

// InputSpec describes a state machine input to encode.
type InputSpec struct {
	Name   string
	Kind   InputKind
	Number float32 // default for number inputs
	Bool   bool    // default for boolean inputs
	// ParentID links the input to a state machine by object id. Zero omits
	// the property and relies on record order.
	ParentID uint64
}

// Fields returns the properties written for the input, in wire order.
func (s InputSpec) Fields() []Field {
	fields := make([]Field, 0, 3)
	if s.ParentID != 0 {
		fields = append(fields, Field{KeyParentID, UintValue(s.ParentID)})
	}
	fields = append(fields, Field{KeyComponentName, StringValue(s.Name)})
	switch s.Kind {
	case InputNumber:
		fields = append(fields, Field{KeyNumberValue, FloatValue(s.Number)})
	case InputBoolean:
		fields = append(fields, Field{KeyBoolValue, FlagValue(s.Bool)})
	}
	return fields
}

// EncodeInput serialises a state machine input record.
func EncodeInput(s InputSpec) ([]byte, error) {
	switch s.Kind {
	case InputNumber, InputBoolean, InputTrigger:
	default:
		return nil, fmt.Errorf("riv: unsupported input kind %s", s.Kind)
	}
	if s.Name == "" {
		return nil, errors.New("riv: input name is required")
	}
	return EncodeRecord(s.Kind.Tag(), s.Fields()...)
}

// EncodeNumberInput encodes a number input. parentID 0 omits the parent link.
func EncodeNumberInput(name string, value float32, parentID uint64) []byte {
	b, _ := EncodeRecord(TypeStateMachineNum, InputSpec{Name: name, Kind: InputNumber, Number: value, ParentID: parentID}.Fields()...)
	return b
}

// EncodeBooleanInput encodes a boolean input. parentID 0 omits the parent link.
func EncodeBooleanInput(name string, value bool, parentID uint64) []byte {
	b, _ := EncodeRecord(TypeStateMachineBool, InputSpec{Name: name, Kind: InputBoolean, Bool: value, ParentID: parentID}.Fields()...)
	return b
}

// EncodeTriggerInput encodes a trigger input. parentID 0 omits the parent link.
func EncodeTriggerInput(name string, parentID uint64) []byte {
	b, _ := EncodeRecord(TypeStateMachineTrig, InputSpec{Name: name, Kind: InputTrigger, ParentID: parentID}.Fields()...)
	return b
}

// InputTable returns a property table declaring every key written by the
// input encoders.
func InputTable() *PropertyTable {
	t := NewPropertyTable()
	_ = t.Add(KeyParentID, WireUint)
	_ = t.Add(KeyComponentName, WireString)
	_ = t.Add(KeyNumberValue, WireFloat)
	_ = t.Add(KeyBoolValue, WireFlag)
	return t
}
