// Package snapshot records the bindings visible from an activation as a
// portable, CBOR-encoded document. Snapshots are for debugging and
// diffing scope state; they cannot be loaded back into a VM.
package snapshot

import (
	"crypto/sha256"

	"github.com/chazu/ravel/vm"
	"github.com/google/uuid"
)

// Snapshot is the scope chain visible from one activation, innermost first.
type Snapshot struct {
	ID         string   `cbor:"1,keyasint"` // random UUID
	Hash       [32]byte `cbor:"2,keyasint"` // content hash of Frames
	Generation uint64   `cbor:"3,keyasint"` // shape generation at capture
	Frames     []Frame  `cbor:"4,keyasint"`
}

// Frame is one activation.
type Frame struct {
	ID        int64     `cbor:"1,keyasint"`
	Enclosing int64     `cbor:"2,keyasint"` // -1 for a top scope
	Shape     string    `cbor:"3,keyasint"`
	Bindings  []Binding `cbor:"4,keyasint,omitempty"`
}

// PromiseState describes a binding that holds a promise.
type PromiseState uint8

const (
	NotPromise PromiseState = iota
	Unforced
	Forced
)

// Binding is one bound name.
type Binding struct {
	Name    string       `cbor:"1,keyasint"`
	Kind    string       `cbor:"2,keyasint"` // slot kind
	Type    string       `cbor:"3,keyasint"` // typeof() of the value
	Class   []string     `cbor:"4,keyasint,omitempty"`
	Value   string       `cbor:"5,keyasint"` // printable rendering
	Promise PromiseState `cbor:"6,keyasint,omitempty"`
	Active  bool         `cbor:"7,keyasint,omitempty"`
}

// Capture walks the scope chain from act to its top scope. Promises are
// recorded without being forced and active bindings are not called.
func Capture(m *vm.VM, act *vm.Activation) (*Snapshot, error) {
	s := &Snapshot{
		ID:         uuid.New().String(),
		Generation: vm.CurrentGeneration(),
	}
	for cur := act; cur != nil; cur = m.Arena.EnclosingOf(cur) {
		s.Frames = append(s.Frames, captureFrame(cur))
	}
	h, err := contentHash(s.Frames)
	if err != nil {
		return nil, err
	}
	s.Hash = h
	return s, nil
}

func captureFrame(act *vm.Activation) Frame {
	f := Frame{
		ID:        int64(act.ID),
		Enclosing: int64(act.Enclosing),
		Shape:     act.Shape().Name,
	}
	b := act.Bindings
	for _, name := range b.Names() {
		h, _ := b.Find(name)
		v := b.Get(h)
		entry := Binding{
			Name:  name,
			Kind:  act.Shape().Kind(int(h)).String(),
			Type:  v.TypeName(),
			Value: vm.Format(v),
		}
		switch v := v.(type) {
		case *vm.Promise:
			entry.Promise = Unforced
			if v.IsForced() {
				entry.Promise = Forced
				entry.Type = v.Value().TypeName()
				entry.Class = vm.ClassOf(v.Value())
			}
		case *vm.ActiveBinding:
			entry.Active = true
		default:
			entry.Class = vm.ClassOf(v)
		}
		f.Bindings = append(f.Bindings, entry)
	}
	return f
}

// contentHash hashes the canonical encoding of frames, so two captures of
// identical scope state have the same hash.
func contentHash(frames []Frame) ([32]byte, error) {
	data, err := encMode.Marshal(frames)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Frame returns the frame for an activation ID.
func (s *Snapshot) Frame(id int64) (Frame, bool) {
	for _, f := range s.Frames {
		if f.ID == id {
			return f, true
		}
	}
	return Frame{}, false
}

// Lookup resolves name the way a normal read would: innermost frame first.
func (s *Snapshot) Lookup(name string) (Binding, bool) {
	for _, f := range s.Frames {
		for _, b := range f.Bindings {
			if b.Name == name {
				return b, true
			}
		}
	}
	return Binding{}, false
}
