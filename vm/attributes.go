package vm

// Well-known attribute names.
const (
	AttrNames = "names"
	AttrClass = "class"
)

type attribute struct {
	name  string
	value Value
}

// Attributes is an ordered, name-keyed attribute table.
//
// The version counter is bumped whenever an attribute is added or removed,
// so slot sites can cache the position of a name and detect when the
// layout they observed has changed. Replacing the value of an existing
// attribute keeps positions stable and does not bump the version.
type Attributes struct {
	entries []attribute
	version uint32
}

// NewAttributes returns an empty table.
func NewAttributes() *Attributes {
	return &Attributes{}
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.entries)
}

// Version returns the layout version.
func (a *Attributes) Version() uint32 {
	if a == nil {
		return 0
	}
	return a.version
}

// Index returns the position of name, or -1.
func (a *Attributes) Index(name string) int {
	if a == nil {
		return -1
	}
	for i := range a.entries {
		if a.entries[i].name == name {
			return i
		}
	}
	return -1
}

// NameAt returns the name stored at position i.
func (a *Attributes) NameAt(i int) string { return a.entries[i].name }

// ValueAt returns the value stored at position i.
func (a *Attributes) ValueAt(i int) Value { return a.entries[i].value }

// Get returns the named attribute.
func (a *Attributes) Get(name string) (Value, bool) {
	if i := a.Index(name); i >= 0 {
		return a.entries[i].value, true
	}
	return nil, false
}

// Set stores an attribute, appending it if absent.
func (a *Attributes) Set(name string, v Value) {
	if i := a.Index(name); i >= 0 {
		a.entries[i].value = v
		return
	}
	a.entries = append(a.entries, attribute{name: name, value: v})
	a.version++
}

// Remove deletes an attribute. It reports whether it was present.
func (a *Attributes) Remove(name string) bool {
	i := a.Index(name)
	if i < 0 {
		return false
	}
	a.entries = append(a.entries[:i], a.entries[i+1:]...)
	a.version++
	return true
}

// Names returns the attribute names in order.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	names := make([]string, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.name
	}
	return names
}

// Copy returns a shallow copy of the table. A nil table copies to nil.
func (a *Attributes) Copy() *Attributes {
	if a == nil {
		return nil
	}
	return &Attributes{entries: append([]attribute(nil), a.entries...)}
}

// attributesFor returns v's table, creating an empty one if needed.
func attributesFor(v Attributable) *Attributes {
	attrs := v.Attributes()
	if attrs == nil {
		attrs = NewAttributes()
		v.SetAttributes(attrs)
	}
	return attrs
}
