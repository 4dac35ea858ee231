package vm

// ModelDelegate is the model-object (S4) layer. Both calls may run
// arbitrary evaluator code.
type ModelDelegate interface {
	// UnwrapDataPart returns the data part of a model object. An object
	// without one yields an error wrapping ErrNoDataPart.
	UnwrapDataPart(vm *VM, obj Value) (Value, error)
	// WrapDataPart returns obj with its data part replaced by value.
	WrapDataPart(vm *VM, obj Value, value Value) (Value, error)
}

// ClassResolver resolves the class hierarchy of a value, most specific
// class first.
type ClassResolver interface {
	ClassHierarchyOf(v Value) []string
}

// Sharing decides whether a value must be copied before a copying
// assignment stores it.
type Sharing interface {
	NeedsCopy(v Value) bool
}

// Caller invokes functions on behalf of the access layer (active
// bindings).
type Caller interface {
	Call(vm *VM, fn *Function, args []Value) (Value, error)
}

// ImplicitClassResolver reports the class attribute, or the implicit class
// when there is none.
type ImplicitClassResolver struct{}

// ClassHierarchyOf implements ClassResolver.
func (ImplicitClassResolver) ClassHierarchyOf(v Value) []string {
	return ClassOf(v)
}

// TagSharing uses the share tag carried by the value: anything already
// bound somewhere needs a copy.
type TagSharing struct{}

// NeedsCopy implements Sharing.
func (TagSharing) NeedsCopy(v Value) bool {
	s, ok := v.(Shareable)
	return ok && s.ShareState() != Temporary
}

// DefaultCaller applies functions with VM.Apply.
type DefaultCaller struct{}

// Call implements Caller.
func (DefaultCaller) Call(vm *VM, fn *Function, args []Value) (Value, error) {
	return vm.Apply(fn, args)
}

// call dispatches through the configured Caller.
func (vm *VM) call(fn *Function, args ...Value) (Value, error) {
	if vm.Caller == nil {
		return vm.Apply(fn, args)
	}
	return vm.Caller.Call(vm, fn, args)
}
