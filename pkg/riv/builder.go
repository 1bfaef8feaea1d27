package riv

// frame is an open entity on the builder stack.
type frame struct {
	depth  int
	entity any
	layer  *Layer // owning layer for states and transitions
}

// build folds c.Records into the typed graph. Parents are the nearest open
// entity one level above the record; nothing on the wire points upwards.
func build(c *Container) {
	c.inputs = make(map[uint64]*Input)
	var stack []frame

	for _, rec := range c.Records {
		kind := rec.Kind()
		switch kind {
		case KindUnrecognized:
			continue
		case KindBoundary:
			stack = stack[:0]
			continue
		}

		depth := kind.depth()
		for len(stack) > 0 && stack[len(stack)-1].depth >= depth {
			stack = stack[:len(stack)-1]
		}
		var parent *frame
		if len(stack) > 0 && stack[len(stack)-1].depth == depth-1 {
			parent = &stack[len(stack)-1]
		}

		next, ok := attach(c, rec, kind, parent)
		if !ok {
			c.Orphans = append(c.Orphans, rec)
			continue
		}
		if next != nil {
			next.depth = depth
			stack = append(stack, *next)
		}
	}
}

// attach links rec to parent. It returns the frame to push when rec can own
// children, and false when parent cannot own a record of this kind.
func attach(c *Container, rec *Record, kind Kind, parent *frame) (*frame, bool) {
	if kind == KindStateMachine {
		sm := &StateMachine{ID: rec.ID, Name: rec.Name(), Record: rec}
		c.StateMachines = append(c.StateMachines, sm)
		return &frame{entity: sm}, true
	}
	if parent == nil {
		return nil, false
	}

	switch kind {
	case KindInput:
		sm, ok := parent.entity.(*StateMachine)
		if !ok {
			return nil, false
		}
		in := newInput(rec)
		sm.Inputs = append(sm.Inputs, in)
		c.inputs[in.ID] = in
		return nil, true

	case KindLayer:
		sm, ok := parent.entity.(*StateMachine)
		if !ok {
			return nil, false
		}
		l := &Layer{ID: rec.ID, Name: rec.Name(), Record: rec}
		sm.Layers = append(sm.Layers, l)
		return &frame{entity: l, layer: l}, true

	case KindState:
		l, ok := parent.entity.(*Layer)
		if !ok {
			return nil, false
		}
		s := newState(rec)
		switch s.(type) {
		case *EntryState:
			l.EntryStateID = rec.ID
		case *AnyState:
			l.AnyStateID = rec.ID
		}
		l.States = append(l.States, s)
		return &frame{entity: s, layer: l}, true

	case KindTransition:
		s, ok := parent.entity.(State)
		if !ok {
			return nil, false
		}
		t := &Transition{
			ID:          rec.ID,
			FromStateID: s.Base().ID,
			ToStateID:   rec.Uint(KeyStateToID),
			Record:      rec,
		}
		parent.layer.Transitions = append(parent.layer.Transitions, t)
		return &frame{entity: t, layer: parent.layer}, true

	case KindBlendAnimation:
		bs, ok := parent.entity.(*BlendState1D)
		if !ok {
			return nil, false
		}
		bs.Animations = append(bs.Animations, BlendAnimation1D{
			ID:          rec.ID,
			AnimationID: rec.Uint(KeyBlendAnimationID),
			Value:       rec.Float(KeyBlendValue),
		})
		return nil, true

	case KindCondition:
		t, ok := parent.entity.(*Transition)
		if !ok {
			return nil, false
		}
		t.Conditions = append(t.Conditions, Condition{
			ID:      rec.ID,
			Type:    rec.Type,
			InputID: rec.Uint(KeyConditionInputID),
			Op:      rec.Uint(KeyConditionOp),
			Value:   rec.Float(KeyConditionValue),
		})
		return nil, true
	}
	return nil, false
}

func newInput(rec *Record) *Input {
	kind, _ := inputKindOf(rec.Type)
	in := &Input{ID: rec.ID, Name: rec.Name(), Kind: kind, Record: rec}
	switch kind {
	case InputNumber:
		in.Number = rec.Float(KeyNumberValue)
	case InputBoolean:
		if v, ok := rec.Property(KeyBoolValue); ok {
			in.Bool, _ = v.Bool()
		}
	}
	return in
}

func newState(rec *Record) State {
	base := StateBase{ID: rec.ID, Name: rec.Name(), Record: rec}
	switch rec.Type {
	case TypeAnimationState:
		return &AnimationState{StateBase: base, AnimationID: rec.Uint(KeyAnimationID)}
	case TypeBlendState1D, TypeBlendState1DAlt:
		return &BlendState1D{StateBase: base, InputID: rec.Uint(KeyBlendInputID)}
	case TypeAnyState:
		return &AnyState{StateBase: base}
	case TypeEntryState:
		return &EntryState{StateBase: base}
	default:
		return &ExitState{StateBase: base}
	}
}
