package vm

// ActivationID identifies an activation record in an Arena.
type ActivationID int64

// NoActivation is the enclosing ID of the top scope.
const NoActivation ActivationID = -1

// VarArgsName is the binding that holds an activation's variadic tail.
const VarArgsName = "..."

// Activation is the variable-binding context of one function invocation,
// or of the top level. Lexical nesting is recorded as the ID of the
// enclosing activation rather than a pointer, so records never form
// ownership cycles; the Arena resolves IDs.
type Activation struct {
	ID        ActivationID
	Enclosing ActivationID

	// Bindings are owned by this activation but may be read and written by
	// closures that captured it.
	Bindings *BindingStore

	// Args are the supplied argument values after matching, in formal order.
	Args []Value

	refs int32
}

// IsTop reports whether a is a top scope (has no enclosing activation).
func (a *Activation) IsTop() bool {
	return a.Enclosing == NoActivation
}

// Shape returns the activation's binding shape.
func (a *Activation) Shape() *Shape {
	return a.Bindings.shape
}

// BindArguments declares one slot per formal and stores the matched
// argument (usually a promise, or Missing) in it. A formal named "..."
// receives the variadic tail, which must be a *VarArgs.
func (a *Activation) BindArguments(formals []string, args []Value) {
	a.Args = args
	for i, name := range formals {
		v := Value(Missing)
		if i < len(args) && args[i] != nil {
			v = args[i]
		}
		h := a.Bindings.Declare(name, KindUnset)
		a.Bindings.Set(h, v)
	}
}

// VarArgs returns the variadic tail bound locally in a, or nil.
func (a *Activation) VarArgs() *VarArgs {
	h, ok := a.Bindings.Find(VarArgsName)
	if !ok {
		return nil
	}
	va, _ := a.Bindings.Get(h).(*VarArgs)
	return va
}

// ---------------------------------------------------------------------------
// Arena
// ---------------------------------------------------------------------------

// Arena owns the activation records of one VM.
//
// Records are reference counted. The call that creates an activation holds
// one reference; every closure, promise or enclosed activation that
// captures it takes another with Retain. When the count drops to zero the
// record is dropped from the arena. IDs are never reissued, so a stale ID
// resolves to nil rather than to an unrelated activation.
type Arena struct {
	records map[ActivationID]*Activation
	next    ActivationID
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{records: make(map[ActivationID]*Activation)}
}

// New creates an activation with one reference held by the caller. The new
// activation holds a reference to its enclosing activation.
func (ar *Arena) New(shape *Shape, enclosing ActivationID) *Activation {
	ar.Retain(enclosing)
	act := &Activation{
		ID:        ar.next,
		Enclosing: enclosing,
		Bindings:  NewBindingStore(shape),
		refs:      1,
	}
	ar.next++
	ar.records[act.ID] = act
	return act
}

// Get resolves an ID. Released or unknown IDs resolve to nil.
func (ar *Arena) Get(id ActivationID) *Activation {
	return ar.records[id]
}

// EnclosingOf returns the enclosing activation of act, or nil at the top.
func (ar *Arena) EnclosingOf(act *Activation) *Activation {
	return ar.Get(act.Enclosing)
}

// Retain adds a reference to id.
func (ar *Arena) Retain(id ActivationID) {
	if act := ar.Get(id); act != nil {
		act.refs++
	}
}

// Release drops a reference to id. Top scopes are never released.
func (ar *Arena) Release(id ActivationID) {
	act := ar.Get(id)
	if act == nil || act.IsTop() {
		return
	}
	act.refs--
	if act.refs <= 0 {
		delete(ar.records, id)
		ar.Release(act.Enclosing)
	}
}

// Live returns the number of activations still held.
func (ar *Arena) Live() int {
	return len(ar.records)
}

// Depth returns the number of enclosing links from act to its top scope.
func (ar *Arena) Depth(act *Activation) int {
	d := 0
	for cur := ar.EnclosingOf(act); cur != nil; cur = ar.EnclosingOf(cur) {
		d++
	}
	return d
}
