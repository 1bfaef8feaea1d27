package riv

import "fmt"

// InputKind is the type of a state machine input.
type InputKind uint8

const (
	InputNumber InputKind = iota
	InputBoolean
	InputTrigger
)

func (k InputKind) String() string {
	switch k {
	case InputNumber:
		return "number"
	case InputBoolean:
		return "boolean"
	case InputTrigger:
		return "trigger"
	default:
		return fmt.Sprintf("input(%d)", uint8(k))
	}
}

// ParseInputKind accepts the names produced by String plus "bool" and "num".
func ParseInputKind(s string) (InputKind, bool) {
	switch s {
	case "number", "num":
		return InputNumber, true
	case "boolean", "bool":
		return InputBoolean, true
	case "trigger":
		return InputTrigger, true
	default:
		return 0, false
	}
}

// Tag returns the record type tag used for inputs of kind k.
func (k InputKind) Tag() TypeTag {
	switch k {
	case InputBoolean:
		return TypeStateMachineBool
	case InputTrigger:
		return TypeStateMachineTrig
	default:
		return TypeStateMachineNum
	}
}

func inputKindOf(t TypeTag) (InputKind, bool) {
	switch t {
	case TypeStateMachineNum:
		return InputNumber, true
	case TypeStateMachineBool:
		return InputBoolean, true
	case TypeStateMachineTrig:
		return InputTrigger, true
	default:
		return 0, false
	}
}

type StateMachine struct {
	ID     uint64
	Name   string
	Inputs []*Input
	Layers []*Layer
	Record *Record
}

// Input returns the first input named name.
func (sm *StateMachine) Input(name string) (*Input, bool) {
	for _, in := range sm.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return nil, false
}

// InputIndex returns the position of the named input, or -1.
func (sm *StateMachine) InputIndex(name string) int {
	for i, in := range sm.Inputs {
		if in.Name == name {
			return i
		}
	}
	return -1
}

// InputAt returns the input at index i of the state machine's input list.
// Runtime references such as condition input ids are indices into this list.
func (sm *StateMachine) InputAt(i uint64) (*Input, bool) {
	if i >= uint64(len(sm.Inputs)) {
		return nil, false
	}
	return sm.Inputs[i], true
}

type Input struct {
	ID     uint64
	Name   string
	Kind   InputKind
	Number float32 // default for number inputs
	Bool   bool    // default for boolean inputs
	Record *Record
}

// Default returns the kind specific default value, nil for triggers.
func (in *Input) Default() any {
	switch in.Kind {
	case InputNumber:
		return in.Number
	case InputBoolean:
		return in.Bool
	default:
		return nil
	}
}

type Layer struct {
	ID           uint64
	Name         string
	States       []State
	Transitions  []*Transition
	EntryStateID uint64 // 0 when the layer has no entry state
	AnyStateID   uint64 // 0 when the layer has no any state
	Record       *Record
}

// State returns the layer's state with object id id.
func (l *Layer) State(id uint64) (State, bool) {
	for _, s := range l.States {
		if s.Base().ID == id {
			return s, true
		}
	}
	return nil, false
}

// StateAt returns the state at index i, the form used by transition targets.
func (l *Layer) StateAt(i uint64) (State, bool) {
	if i >= uint64(len(l.States)) {
		return nil, false
	}
	return l.States[i], true
}

// State is one of AnimationState, BlendState1D, AnyState, EntryState or
// ExitState.
type State interface {
	Base() *StateBase
}

type StateBase struct {
	ID     uint64
	Name   string
	Record *Record
}

func (s *StateBase) Base() *StateBase { return s }

type AnimationState struct {
	StateBase
	AnimationID uint64
}

type BlendState1D struct {
	StateBase
	InputID    uint64 // driving input, resolved through Container.Input
	Animations []BlendAnimation1D
}

type BlendAnimation1D struct {
	ID          uint64
	AnimationID uint64
	Value       float32
}

type AnyState struct{ StateBase }

type EntryState struct{ StateBase }

type ExitState struct{ StateBase }

type Transition struct {
	ID          uint64
	FromStateID uint64
	ToStateID   uint64 // as written on the wire
	Conditions  []Condition
	Record      *Record
}

type Condition struct {
	ID      uint64
	Type    TypeTag
	InputID uint64
	Op      uint64
	Value   float32
}

// FindStateMachine returns the first state machine named name.
func (c *Container) FindStateMachine(name string) (*StateMachine, bool) {
	for _, sm := range c.StateMachines {
		if sm.Name == name {
			return sm, true
		}
	}
	return nil, false
}

// StateMachineByID returns the state machine with object id id.
func (c *Container) StateMachineByID(id uint64) (*StateMachine, bool) {
	for _, sm := range c.StateMachines {
		if sm.ID == id {
			return sm, true
		}
	}
	return nil, false
}

// Input resolves an input by object id.
func (c *Container) Input(id uint64) (*Input, bool) {
	in, ok := c.inputs[id]
	return in, ok
}
