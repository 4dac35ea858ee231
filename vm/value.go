package vm

import (
	"math"
)

// Value is any value the access layer can store in a binding, pass through
// a promise, or find inside a record.
//
// The set of implementations is closed: every concrete type lives in this
// package and carries the unexported isValue marker. Code that needs to
// distinguish kinds uses an exhaustive type switch rather than open-ended
// interface probing.
//
// Kinds:
//   - Special: Null, Missing (missing argument), Unbound (silent-read miss)
//   - Scalars: Logical, Int, Double, Str
//   - Vectors: *LogicalVector, *IntVector, *DoubleVector, *StringVector,
//     *List, *IntSequence, *DoubleSequence
//   - Others: *Function, *Promise, *ActiveBinding, *VarArgs, *S4Object,
//     *External
type Value interface {
	// TypeName returns the storage type name, as typeof() reports it.
	TypeName() string
	isValue()
}

// ---------------------------------------------------------------------------
// Specials
// ---------------------------------------------------------------------------

// Special is one of the singleton marker values.
type Special uint8

const (
	// Null is the empty value. Absent record members read as Null.
	Null Special = iota
	// Missing marks an argument that was not supplied.
	Missing
	// Unbound is returned by silent reads of names that resolve nowhere.
	Unbound
)

func (Special) isValue() {}

// TypeName implements Value.
func (s Special) TypeName() string {
	switch s {
	case Null:
		return "NULL"
	case Missing:
		return "symbol"
	default:
		return "unbound"
	}
}

// ---------------------------------------------------------------------------
// Scalars
// ---------------------------------------------------------------------------

// Logical is a scalar three-valued boolean.
type Logical int8

const (
	LogicalFalse Logical = 0
	LogicalTrue  Logical = 1
	LogicalNA    Logical = -1
)

func (Logical) isValue() {}

// TypeName implements Value.
func (Logical) TypeName() string { return "logical" }

// IsNA reports whether l is the logical NA.
func (l Logical) IsNA() bool { return l == LogicalNA }

// FromBool converts a Go bool to a Logical.
func FromBool(b bool) Logical {
	if b {
		return LogicalTrue
	}
	return LogicalFalse
}

// Int is a scalar 32-bit integer. IntNA is the integer NA.
type Int int32

// IntNA is the integer NA value.
const IntNA Int = math.MinInt32

func (Int) isValue() {}

// TypeName implements Value.
func (Int) TypeName() string { return "integer" }

// IsNA reports whether i is the integer NA.
func (i Int) IsNA() bool { return i == IntNA }

// Double is a scalar float64.
type Double float64

// doubleNABits is the payload that distinguishes NA from an ordinary NaN.
const doubleNABits uint64 = 0x7FF00000000007A2

// DoubleNA is the double NA value.
var DoubleNA = Double(math.Float64frombits(doubleNABits))

func (Double) isValue() {}

// TypeName implements Value.
func (Double) TypeName() string { return "double" }

// IsNA reports whether d is the double NA (not merely NaN).
func (d Double) IsNA() bool {
	return math.IsNaN(float64(d)) && uint32(math.Float64bits(float64(d))) == uint32(doubleNABits&0xFFFFFFFF)
}

// Str is a scalar character string.
type Str string

func (Str) isValue() {}

// TypeName implements Value.
func (Str) TypeName() string { return "character" }

// ---------------------------------------------------------------------------
// Vector header: attributes, model flag and share tag
// ---------------------------------------------------------------------------

// ShareState is the aliasing tag carried by vectors and lists.
//
// A freshly computed value is Temporary. Binding it to a name makes it
// NonShared; binding it a second time makes it Shared. A Shared value
// must be copied before it is modified in place.
type ShareState uint8

const (
	Temporary ShareState = iota
	NonShared
	Shared
)

func (s ShareState) String() string {
	switch s {
	case Temporary:
		return "temporary"
	case NonShared:
		return "non-shared"
	default:
		return "shared"
	}
}

// header is embedded by every attributable value.
type header struct {
	attrs *Attributes
	share ShareState
	model bool
}

// Attributes returns the attribute table, or nil if the value has none.
func (h *header) Attributes() *Attributes { return h.attrs }

// SetAttributes replaces the attribute table.
func (h *header) SetAttributes(a *Attributes) { h.attrs = a }

// IsModel reports whether the value is tagged as a model (S4) object.
func (h *header) IsModel() bool { return h.model }

// SetModel sets or clears the model-object tag.
func (h *header) SetModel(model bool) { h.model = model }

// ShareState returns the aliasing tag.
func (h *header) ShareState() ShareState { return h.share }

// MarkNonTemporary records that the value is now bound to a name.
func (h *header) MarkNonTemporary() {
	if h.share == Temporary {
		h.share = NonShared
	}
}

// MakeShared records that the value is reachable from more than one binding.
func (h *header) MakeShared() { h.share = Shared }

func (h *header) copyHeader() header {
	return header{attrs: h.attrs.Copy(), share: Temporary, model: h.model}
}

// Attributable is implemented by values that carry an attribute table.
type Attributable interface {
	Value
	Attributes() *Attributes
	SetAttributes(*Attributes)
	IsModel() bool
}

// Shareable is implemented by values whose aliasing is tracked.
type Shareable interface {
	Value
	ShareState() ShareState
	MarkNonTemporary()
	MakeShared()
	// Copy returns a Temporary deep copy of the data with a copied
	// attribute table.
	Copy() Shareable
}

// Vector is implemented by all vector kinds, including lists.
type Vector interface {
	Attributable
	Len() int
}

// namesOf returns the names attribute of v as a string vector, or nil.
func namesOf(a Attributable) *StringVector {
	attrs := a.Attributes()
	if attrs == nil {
		return nil
	}
	v, ok := attrs.Get(AttrNames)
	if !ok {
		return nil
	}
	names, _ := v.(*StringVector)
	return names
}

// ---------------------------------------------------------------------------
// Vectors
// ---------------------------------------------------------------------------

// LogicalVector is a vector of Logical values.
type LogicalVector struct {
	header
	Data []Logical
}

// IntVector is a vector of 32-bit integers; NA is math.MinInt32.
type IntVector struct {
	header
	Data []int32
}

// DoubleVector is a vector of float64.
type DoubleVector struct {
	header
	Data []float64
}

// StringVector is a vector of strings. Names vectors are never mutated in
// place once attached to a value; replacing names allocates a new vector.
type StringVector struct {
	header
	Data []string
}

// List is a generic vector. With a names attribute it is a structured
// record accessible through `$`.
type List struct {
	header
	Data []Value
}

// IntSequence is a compact arithmetic integer sequence Start, Start+Stride, ...
type IntSequence struct {
	header
	Start  int32
	Stride int32
	Length int
}

// DoubleSequence is a compact arithmetic double sequence.
type DoubleSequence struct {
	header
	Start  float64
	Stride float64
	Length int
}

func (*LogicalVector) isValue()  {}
func (*IntVector) isValue()      {}
func (*DoubleVector) isValue()   {}
func (*StringVector) isValue()   {}
func (*List) isValue()           {}
func (*IntSequence) isValue()    {}
func (*DoubleSequence) isValue() {}

func (*LogicalVector) TypeName() string  { return "logical" }
func (*IntVector) TypeName() string      { return "integer" }
func (*DoubleVector) TypeName() string   { return "double" }
func (*StringVector) TypeName() string   { return "character" }
func (*List) TypeName() string           { return "list" }
func (*IntSequence) TypeName() string    { return "integer" }
func (*DoubleSequence) TypeName() string { return "double" }

func (v *LogicalVector) Len() int  { return len(v.Data) }
func (v *IntVector) Len() int      { return len(v.Data) }
func (v *DoubleVector) Len() int   { return len(v.Data) }
func (v *StringVector) Len() int   { return len(v.Data) }
func (v *List) Len() int           { return len(v.Data) }
func (v *IntSequence) Len() int    { return v.Length }
func (v *DoubleSequence) Len() int { return v.Length }

// Copy implements Shareable.
func (v *LogicalVector) Copy() Shareable {
	return &LogicalVector{header: v.copyHeader(), Data: append([]Logical(nil), v.Data...)}
}

// Copy implements Shareable.
func (v *IntVector) Copy() Shareable {
	return &IntVector{header: v.copyHeader(), Data: append([]int32(nil), v.Data...)}
}

// Copy implements Shareable.
func (v *DoubleVector) Copy() Shareable {
	return &DoubleVector{header: v.copyHeader(), Data: append([]float64(nil), v.Data...)}
}

// Copy implements Shareable.
func (v *StringVector) Copy() Shareable {
	return &StringVector{header: v.copyHeader(), Data: append([]string(nil), v.Data...)}
}

// Copy implements Shareable. Elements are shared, not copied; each element
// is marked shared since it is now reachable from two lists.
func (v *List) Copy() Shareable {
	data := append([]Value(nil), v.Data...)
	for _, e := range data {
		if s, ok := e.(Shareable); ok {
			s.MakeShared()
		}
	}
	return &List{header: v.copyHeader(), Data: data}
}

// Copy implements Shareable.
func (v *IntSequence) Copy() Shareable {
	return &IntSequence{header: v.copyHeader(), Start: v.Start, Stride: v.Stride, Length: v.Length}
}

// Copy implements Shareable.
func (v *DoubleSequence) Copy() Shareable {
	return &DoubleSequence{header: v.copyHeader(), Start: v.Start, Stride: v.Stride, Length: v.Length}
}

// At returns element i of the sequence.
func (v *IntSequence) At(i int) int32 { return v.Start + int32(i)*v.Stride }

// At returns element i of the sequence.
func (v *DoubleSequence) At(i int) float64 { return v.Start + float64(i)*v.Stride }

// Materialize expands the sequence into an IntVector.
func (v *IntSequence) Materialize() *IntVector {
	data := make([]int32, v.Length)
	for i := range data {
		data[i] = v.At(i)
	}
	return &IntVector{Data: data}
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLogicalVector creates a temporary logical vector.
func NewLogicalVector(data ...Logical) *LogicalVector { return &LogicalVector{Data: data} }

// NewIntVector creates a temporary integer vector.
func NewIntVector(data ...int32) *IntVector { return &IntVector{Data: data} }

// NewDoubleVector creates a temporary double vector.
func NewDoubleVector(data ...float64) *DoubleVector { return &DoubleVector{Data: data} }

// NewStringVector creates a temporary character vector.
func NewStringVector(data ...string) *StringVector { return &StringVector{Data: data} }

// NewList creates an unnamed list.
func NewList(elems ...Value) *List { return &List{Data: elems} }

// NewRecord creates a named list. names and elems must have equal length.
func NewRecord(names []string, elems []Value) *List {
	if len(names) != len(elems) {
		panic("NewRecord: names and elements differ in length")
	}
	l := &List{Data: elems}
	attrs := NewAttributes()
	attrs.Set(AttrNames, NewStringVector(append([]string(nil), names...)...))
	l.attrs = attrs
	return l
}

// NewIntSequence creates the sequence from, from+1, ..., to (or descending).
func NewIntSequence(from, to int32) *IntSequence {
	if from <= to {
		return &IntSequence{Start: from, Stride: 1, Length: int(to-from) + 1}
	}
	return &IntSequence{Start: from, Stride: -1, Length: int(from-to) + 1}
}

// NewS4Object creates an attribute-only model object of the given class.
func NewS4Object(class string) *S4Object {
	o := &S4Object{}
	o.model = true
	if class != "" {
		attrs := NewAttributes()
		attrs.Set(AttrClass, NewStringVector(class))
		o.attrs = attrs
	}
	return o
}

// ---------------------------------------------------------------------------
// Non-vector values
// ---------------------------------------------------------------------------

// Builtin is the Go implementation of a primitive function.
type Builtin func(vm *VM, args []Value) (Value, error)

// Function is a closure or a builtin.
type Function struct {
	Name    string
	Formals []string
	Body    Expr
	// Env is the defining activation of a closure.
	Env ActivationID
	// Shape is shared by every activation of this closure.
	Shape   *Shape
	Builtin Builtin
}

func (*Function) isValue() {}

// TypeName implements Value.
func (f *Function) TypeName() string {
	if f.Builtin != nil {
		return "builtin"
	}
	return "closure"
}

// NewBuiltin wraps a Go function as a builtin.
func NewBuiltin(name string, fn Builtin) *Function {
	return &Function{Name: name, Builtin: fn, Env: NoActivation}
}

// ActiveBinding is stored in a slot in place of a value; reads call Fn with
// no arguments and writes call it with the assigned value.
type ActiveBinding struct {
	Fn *Function
}

func (*ActiveBinding) isValue() {}

// TypeName implements Value.
func (*ActiveBinding) TypeName() string { return "active binding" }

// VarArgs is the captured variadic tail bound to `...`.
type VarArgs struct {
	Values []Value
	// Names has the same length as Values; unnamed entries are "".
	Names []string
}

func (*VarArgs) isValue() {}

// TypeName implements Value.
func (*VarArgs) TypeName() string { return "..." }

// NewVarArgs captures a variadic tail. names may be nil; nil values are
// stored as Missing.
func NewVarArgs(values []Value, names []string) *VarArgs {
	va := &VarArgs{Values: make([]Value, len(values)), Names: make([]string, len(values))}
	for i, v := range values {
		if v == nil {
			v = Missing
		}
		va.Values[i] = v
	}
	copy(va.Names, names)
	return va
}

// Len returns the number of captured arguments.
func (v *VarArgs) Len() int { return len(v.Values) }

// S4Object is a model object with no data part of its own; everything it
// holds lives in its attribute table.
type S4Object struct {
	header
}

func (*S4Object) isValue() {}

// TypeName implements Value.
func (*S4Object) TypeName() string { return "S4" }

// Members is implemented by externally managed objects that resolve their
// own member names.
type Members interface {
	// Member returns the named member. A missing member is (Null, nil).
	Member(name string) (Value, error)
}

// External wraps data managed outside the interpreter. `$` on an External
// delegates to its Members.
type External struct {
	header
	Object Members
}

func (*External) isValue() {}

// TypeName implements Value.
func (*External) TypeName() string { return "externalptr" }

// ---------------------------------------------------------------------------
// Classification helpers
// ---------------------------------------------------------------------------

// isAtomic reports whether v is an atomic (non-list) vector or scalar.
func isAtomic(v Value) bool {
	switch v.(type) {
	case Logical, Int, Double, Str,
		*LogicalVector, *IntVector, *DoubleVector, *StringVector,
		*IntSequence, *DoubleSequence:
		return true
	}
	return false
}

// isModel reports whether v is tagged as a model object.
func isModel(v Value) bool {
	a, ok := v.(Attributable)
	return ok && a.IsModel()
}

// ImplicitClass returns the class vector v would report without a class
// attribute.
func ImplicitClass(v Value) []string {
	switch v := v.(type) {
	case Special:
		if v == Null {
			return []string{"NULL"}
		}
		return []string{"name"}
	case Logical, *LogicalVector:
		return []string{"logical"}
	case Int, *IntVector, *IntSequence:
		return []string{"integer"}
	case Double, *DoubleVector, *DoubleSequence:
		return []string{"numeric"}
	case Str, *StringVector:
		return []string{"character"}
	case *List:
		return []string{"list"}
	case *Function:
		return []string{"function"}
	case *S4Object:
		return []string{"S4"}
	case *External:
		return []string{"externalptr"}
	default:
		return []string{v.TypeName()}
	}
}

// ClassAttribute returns the explicit class attribute of v, or nil.
func ClassAttribute(v Value) []string {
	a, ok := v.(Attributable)
	if !ok || a.Attributes() == nil {
		return nil
	}
	c, ok := a.Attributes().Get(AttrClass)
	if !ok {
		return nil
	}
	if sv, ok := c.(*StringVector); ok && len(sv.Data) > 0 {
		return sv.Data
	}
	return nil
}

// ClassOf returns the explicit class of v, falling back to its implicit class.
func ClassOf(v Value) []string {
	if c := ClassAttribute(v); c != nil {
		return c
	}
	return ImplicitClass(v)
}
