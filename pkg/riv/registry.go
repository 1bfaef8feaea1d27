package riv

import "fmt"

// TypeTag identifies the kind of a record.
type TypeTag uint64

// PropertyKey identifies a property within a record.
type PropertyKey uint64

// Type tags understood by the domain model builder.
const (
	TypeArtboard         TypeTag = 1
	TypeBackboard        TypeTag = 23
	TypeLinearAnimation  TypeTag = 31
	TypeStateMachine     TypeTag = 53
	TypeStateMachineNum  TypeTag = 56
	TypeStateMachineLyr  TypeTag = 57
	TypeStateMachineTrig TypeTag = 58
	TypeStateMachineBool TypeTag = 59
	TypeAnimationState   TypeTag = 61
	TypeAnyState         TypeTag = 62
	TypeEntryState       TypeTag = 63
	TypeExitState        TypeTag = 64
	TypeStateTransition  TypeTag = 65
	TypeTriggerCondition TypeTag = 68
	TypeValueCondition   TypeTag = 69
	TypeNumberCondition  TypeTag = 70
	TypeBoolCondition    TypeTag = 71
	TypeBlendAnimation1D TypeTag = 75
	TypeBlendState1D     TypeTag = 76
	// TypeBlendState1DAlt is the tag some exporters write for 1D blend states.
	TypeBlendState1DAlt TypeTag = 527
)

// Property keys understood by the builder and the encoder.
const (
	KeyName             PropertyKey = 4 // generic component name
	KeyParentID         PropertyKey = 5
	KeyStateMachineName PropertyKey = 55
	KeyComponentName    PropertyKey = 138 // state machine components: inputs, layers, states
	KeyNumberValue      PropertyKey = 140
	KeyBoolValue        PropertyKey = 141
	KeyAnimationID      PropertyKey = 149
	KeyStateToID        PropertyKey = 151
	KeyConditionInputID PropertyKey = 155
	KeyConditionOp      PropertyKey = 156
	KeyConditionValue   PropertyKey = 157
	KeyBlendAnimationID PropertyKey = 165
	KeyBlendValue       PropertyKey = 166
	KeyBlendInputID     PropertyKey = 167
)

// Kind is the builder's classification of a type tag.
type Kind uint8

const (
	KindUnrecognized Kind = iota
	KindBoundary          // top level objects that close any open state machine
	KindStateMachine
	KindInput
	KindLayer
	KindState
	KindTransition
	KindBlendAnimation
	KindCondition
)

func (k Kind) String() string {
	switch k {
	case KindUnrecognized:
		return "unrecognized"
	case KindBoundary:
		return "boundary"
	case KindStateMachine:
		return "state_machine"
	case KindInput:
		return "input"
	case KindLayer:
		return "layer"
	case KindState:
		return "state"
	case KindTransition:
		return "transition"
	case KindBlendAnimation:
		return "blend_animation"
	case KindCondition:
		return "condition"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// depth is the nesting level of a kind in the implicit hierarchy.
func (k Kind) depth() int {
	switch k {
	case KindStateMachine:
		return 0
	case KindInput, KindLayer:
		return 1
	case KindState:
		return 2
	case KindTransition, KindBlendAnimation:
		return 3
	case KindCondition:
		return 4
	default:
		return -1
	}
}

type typeInfo struct {
	name     string
	kind     Kind
	nameKeys []PropertyKey
}

var (
	stateMachineNameKeys = []PropertyKey{KeyStateMachineName, KeyName}
	componentNameKeys    = []PropertyKey{KeyComponentName}
)

var typeRegistry = map[TypeTag]typeInfo{
	TypeArtboard:         {"Artboard", KindBoundary, []PropertyKey{KeyName}},
	TypeBackboard:        {"Backboard", KindBoundary, nil},
	TypeLinearAnimation:  {"LinearAnimation", KindBoundary, []PropertyKey{KeyStateMachineName}},
	TypeStateMachine:     {"StateMachine", KindStateMachine, stateMachineNameKeys},
	TypeStateMachineNum:  {"StateMachineNumber", KindInput, componentNameKeys},
	TypeStateMachineLyr:  {"StateMachineLayer", KindLayer, componentNameKeys},
	TypeStateMachineTrig: {"StateMachineTrigger", KindInput, componentNameKeys},
	TypeStateMachineBool: {"StateMachineBool", KindInput, componentNameKeys},
	TypeAnimationState:   {"AnimationState", KindState, componentNameKeys},
	TypeAnyState:         {"AnyState", KindState, componentNameKeys},
	TypeEntryState:       {"EntryState", KindState, componentNameKeys},
	TypeExitState:        {"ExitState", KindState, componentNameKeys},
	TypeBlendState1D:     {"BlendState1D", KindState, componentNameKeys},
	TypeBlendState1DAlt:  {"BlendState1D", KindState, componentNameKeys},
	TypeStateTransition:  {"StateTransition", KindTransition, nil},
	TypeBlendAnimation1D: {"BlendAnimation1D", KindBlendAnimation, nil},
	TypeTriggerCondition: {"TransitionTriggerCondition", KindCondition, nil},
	TypeValueCondition:   {"TransitionValueCondition", KindCondition, nil},
	TypeNumberCondition:  {"TransitionNumberCondition", KindCondition, nil},
	TypeBoolCondition:    {"TransitionBoolCondition", KindCondition, nil},
}

// KindOf classifies a type tag. Tags outside the registry are KindUnrecognized.
func KindOf(t TypeTag) Kind {
	return typeRegistry[t].kind
}

// NameKeys returns the property keys, in priority order, that carry the
// human-readable name of records with tag t. State machines and their
// components use different keys.
func NameKeys(t TypeTag) []PropertyKey {
	if info, ok := typeRegistry[t]; ok {
		return info.nameKeys
	}
	return []PropertyKey{KeyName}
}

func (t TypeTag) String() string {
	if info, ok := typeRegistry[t]; ok {
		return info.name
	}
	return fmt.Sprintf("type(%d)", uint64(t))
}
