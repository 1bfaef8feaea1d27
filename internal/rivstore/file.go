package rivstore

import (
	"errors"
	"fmt"

	"github.com/samcharles93/rivet/pkg/riv"
)

var ErrStateMachineNotFound = errors.New("rivstore: state machine not found")

// File is an opened container together with the options it was decoded
// with, so later anchor lookups read the property table the same way.
type File struct {
	file *riv.File
	opts []riv.Option
}

// Location describes where a state machine lives in the raw buffer.
type Location struct {
	Name         string          `json:"name"`
	ID           uint64          `json:"id"`
	NameKey      riv.PropertyKey `json:"name_key"`
	RecordOffset int             `json:"record_offset"`
	PropsEnd     int             `json:"props_end"`
	InsertAt     int             `json:"insert_at"`
	Inputs       int             `json:"inputs"`
	Layers       int             `json:"layers"`
}

func Open(path string, opts ...riv.Option) (*File, error) {
	rf, err := riv.Open(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &File{file: rf, opts: opts}, nil
}

func (f *File) Close() error {
	if f == nil || f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// Container returns the decoded container. It is only valid until Close.
func (f *File) Container() *riv.Container {
	if f == nil || f.file == nil {
		return nil
	}
	return f.file.Container
}

// Bytes returns a copy of the file contents.
func (f *File) Bytes() []byte {
	if f == nil || f.file == nil {
		return nil
	}
	return f.file.Bytes()
}

// StateMachine returns the first state machine named name.
func (f *File) StateMachine(name string) (*riv.StateMachine, error) {
	c := f.Container()
	if c == nil {
		return nil, ErrStateMachineNotFound
	}
	sm, ok := c.FindStateMachine(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStateMachineNotFound, name)
	}
	return sm, nil
}

// Locate resolves the splice anchor for name and the object id of the state
// machine record it points at.
func (f *File) Locate(name string) (Location, error) {
	if f == nil || f.file == nil {
		return Location{}, ErrStateMachineNotFound
	}
	return locate(f.file.Data, f.file.Container, name, f.opts)
}

func locate(data []byte, c *riv.Container, name string, opts []riv.Option) (Location, error) {
	anchor, err := riv.FindAnchor(data, name, opts...)
	if err != nil {
		return Location{}, err
	}
	loc := Location{
		Name:         name,
		NameKey:      anchor.NameKey,
		RecordOffset: anchor.RecordOffset,
		PropsEnd:     anchor.PropsEnd,
		InsertAt:     anchor.InsertAt,
	}
	rec, ok := c.RecordAt(anchor.RecordOffset)
	if !ok {
		return Location{}, fmt.Errorf("rivstore: no record starts at anchor offset %d", anchor.RecordOffset)
	}
	loc.ID = rec.ID
	if sm, ok := c.StateMachineByID(rec.ID); ok {
		loc.Inputs = len(sm.Inputs)
		loc.Layers = len(sm.Layers)
	}
	return loc, nil
}
