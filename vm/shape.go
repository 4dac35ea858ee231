package vm

import (
	"sync"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Slot kinds
// ---------------------------------------------------------------------------

// SlotKind is the declared storage kind of a binding slot.
//
// Kinds only widen: Unset -> {Boolean, Integer, Float, Generic} -> Generic.
// A slot that has been Generic stays Generic for the life of its shape.
type SlotKind uint8

const (
	KindUnset SlotKind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindGeneric
)

var slotKindNames = [...]string{
	KindUnset:   "unset",
	KindBoolean: "boolean",
	KindInteger: "integer",
	KindFloat:   "float",
	KindGeneric: "generic",
}

func (k SlotKind) String() string { return slotKindNames[k] }

// KindOf returns the slot kind a value specializes a fresh slot to.
func KindOf(v Value) SlotKind {
	switch v.(type) {
	case Logical:
		return KindBoolean
	case Int:
		return KindInteger
	case Double:
		return KindFloat
	default:
		return KindGeneric
	}
}

// widen returns the kind a slot of kind k must have to hold values of kind to.
func (k SlotKind) widen(to SlotKind) SlotKind {
	switch {
	case k == to || to == KindUnset:
		return k
	case k == KindUnset:
		return to
	default:
		return KindGeneric
	}
}

// ---------------------------------------------------------------------------
// Generations
// ---------------------------------------------------------------------------

// generation is the process-wide shape generation counter. Every shape
// change draws a fresh value from it, so a generation observed by a cache
// can never be reissued.
var generation atomic.Uint64

func nextGeneration() uint64 {
	return generation.Add(1)
}

// CurrentGeneration returns the most recently issued shape generation.
func CurrentGeneration() uint64 {
	return generation.Load()
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// Shape describes the set of slots declared by every activation of one
// function (or by the global scope): slot names, their positions and their
// kinds. Binding stores of the same function share one Shape.
//
// Access sites cache resolutions keyed on a shape and the generation it
// had at the time; any change to the declared slots or their kinds draws a
// new generation and so invalidates those caches.
type Shape struct {
	Name string

	mu    sync.RWMutex
	index map[string]int
	names []string
	kinds []SlotKind

	gen atomic.Uint64

	// activeBindings is false while no activation of this shape has ever
	// installed an active binding. It flips to true exactly once.
	activeBindings atomic.Bool

	invalidations atomic.Uint64
}

// NewShape creates an empty shape.
func NewShape(name string) *Shape {
	s := &Shape{
		Name:  name,
		index: make(map[string]int),
	}
	s.gen.Store(nextGeneration())
	return s
}

// Generation returns the shape's current generation.
func (s *Shape) Generation() uint64 {
	return s.gen.Load()
}

// Invalidations returns how many times the shape has been invalidated.
func (s *Shape) Invalidations() uint64 {
	return s.invalidations.Load()
}

func (s *Shape) invalidate(reason, name string) {
	old := s.gen.Load()
	s.gen.Store(nextGeneration())
	s.invalidations.Add(1)
	log.Debugf("shape %s: %s %q, generation %d -> %d", s.Name, reason, name, old, s.gen.Load())
}

// Len returns the number of declared slots.
func (s *Shape) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.names)
}

// Find returns the position of a declared slot.
func (s *Shape) Find(name string) (int, bool) {
	s.mu.RLock()
	i, ok := s.index[name]
	s.mu.RUnlock()
	return i, ok
}

// Declare returns the position of name, adding a slot of the given kind if
// it is not yet declared. Declaring an existing name only widens its kind.
func (s *Shape) Declare(name string, kind SlotKind) int {
	s.mu.Lock()
	i, ok := s.index[name]
	if !ok {
		i = len(s.names)
		s.index[name] = i
		s.names = append(s.names, name)
		s.kinds = append(s.kinds, kind)
		s.mu.Unlock()
		s.invalidate("declared", name)
		return i
	}
	s.mu.Unlock()
	s.Widen(i, kind)
	return i
}

// Kind returns the kind of slot i.
func (s *Shape) Kind(i int) SlotKind {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kinds[i]
}

// NameAt returns the name of slot i.
func (s *Shape) NameAt(i int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[i]
}

// Names returns the declared slot names in declaration order.
func (s *Shape) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.names...)
}

// Widen widens slot i so it can hold values of the given kind. It reports
// whether the kind changed; a change invalidates the shape.
func (s *Shape) Widen(i int, to SlotKind) bool {
	s.mu.Lock()
	from := s.kinds[i]
	k := from.widen(to)
	if k == from {
		s.mu.Unlock()
		return false
	}
	s.kinds[i] = k
	name := s.names[i]
	s.mu.Unlock()
	s.invalidate("widened "+from.String()+" -> "+k.String(), name)
	return true
}

// NoActiveBindings reports whether no activation of this shape has ever
// installed an active binding. While it holds, writes skip the
// active-binding check entirely.
func (s *Shape) NoActiveBindings() bool {
	return !s.activeBindings.Load()
}

// markActiveBindings drops the no-active-binding assumption. Only the first
// call has any effect.
func (s *Shape) markActiveBindings() {
	if s.activeBindings.CompareAndSwap(false, true) {
		s.invalidate("installed active binding", "")
	}
}
