package vm

// SlotHandle identifies a slot within a binding store. Handles are shape
// positions, so they are valid for every store sharing the same shape.
type SlotHandle int

// BindingStore is the per-activation table of local variables. The set of
// declared names lives in the shared Shape; the store only holds values.
// A declared slot whose value is nil is unset and treated as absent.
type BindingStore struct {
	shape  *Shape
	values []Value
}

// NewBindingStore creates an empty store for the given shape.
func NewBindingStore(shape *Shape) *BindingStore {
	return &BindingStore{shape: shape}
}

// Shape returns the store's shape.
func (b *BindingStore) Shape() *Shape { return b.shape }

// Find returns the handle of a bound (declared and set) slot.
func (b *BindingStore) Find(name string) (SlotHandle, bool) {
	i, ok := b.shape.Find(name)
	if !ok || i >= len(b.values) || b.values[i] == nil {
		return 0, false
	}
	return SlotHandle(i), true
}

// Declare returns the handle for name, declaring the slot in the shape if
// necessary. Repeated declaration returns the same handle and only widens.
func (b *BindingStore) Declare(name string, kind SlotKind) SlotHandle {
	return SlotHandle(b.shape.Declare(name, kind))
}

// Get returns the value in slot h, or nil if the slot is unset.
func (b *BindingStore) Get(h SlotHandle) Value {
	if int(h) >= len(b.values) {
		return nil
	}
	return b.values[h]
}

// IsBound reports whether slot h holds a value.
func (b *BindingStore) IsBound(h SlotHandle) bool {
	return int(h) < len(b.values) && b.values[h] != nil
}

// Set stores v in slot h, widening the slot kind to fit v.
func (b *BindingStore) Set(h SlotHandle, v Value) {
	b.shape.Widen(int(h), KindOf(v))
	b.store(h, v)
}

// store writes without touching the slot kind. Callers must already have
// checked that the kind admits v.
func (b *BindingStore) store(h SlotHandle, v Value) {
	if int(h) >= len(b.values) {
		n := b.shape.Len()
		if n <= int(h) {
			n = int(h) + 1
		}
		grown := make([]Value, n)
		copy(grown, b.values)
		b.values = grown
	}
	b.values[h] = v
}

// Unset clears slot h. The slot stays declared.
func (b *BindingStore) Unset(h SlotHandle) {
	if int(h) < len(b.values) {
		b.values[h] = nil
	}
}

// Names returns the names of bound slots in declaration order.
func (b *BindingStore) Names() []string {
	var names []string
	for i, v := range b.values {
		if v != nil {
			names = append(names, b.shape.NameAt(i))
		}
	}
	return names
}

// Len returns the number of bound slots.
func (b *BindingStore) Len() int {
	n := 0
	for _, v := range b.values {
		if v != nil {
			n++
		}
	}
	return n
}
