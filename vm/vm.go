package vm

// ---------------------------------------------------------------------------
// VM: the access layer's view of one interpreter instance
// ---------------------------------------------------------------------------

// Options configures a VM.
type Options struct {
	// MaxSiteEntries is the polymorphic limit of every access site cache.
	MaxSiteEntries int
	// CollectStats registers every access site with the VM so SiteStats
	// can report on it.
	CollectStats bool
	// WarnPartialMatchDollar logs a warning whenever `$` resolves a member
	// by partial name.
	WarnPartialMatchDollar bool
}

// DefaultOptions returns the options used by NewVM.
func DefaultOptions() Options {
	return Options{MaxSiteEntries: DefaultSiteEntries}
}

// VM ties together the activation arena, the top scope and the
// collaborators the access layer calls out to. A VM is driven by one
// logical thread at a time; nothing in it is locked.
type VM struct {
	Arena *Arena

	// Global is the top scope. Unresolved super-assignments land here.
	Global *Activation

	Options Options

	// Collaborators. Models may be nil, in which case data-part access
	// fails with ErrNoSuchFunction.
	Models  ModelDelegate
	Classes ClassResolver
	Sharing Sharing
	Caller  Caller

	// Visible is the "print the last value at top level" flag. Regular and
	// copying assignments clear it.
	Visible bool

	sites []site
}

// NewVM creates a VM with default options.
func NewVM() *VM {
	return NewVMWithOptions(DefaultOptions())
}

// NewVMWithOptions creates a VM with an empty global scope.
func NewVMWithOptions(opts Options) *VM {
	if opts.MaxSiteEntries <= 0 {
		opts.MaxSiteEntries = DefaultSiteEntries
	}
	if opts.MaxSiteEntries > MaxSiteEntries {
		opts.MaxSiteEntries = MaxSiteEntries
	}
	vm := &VM{
		Arena:   NewArena(),
		Options: opts,
		Classes: ImplicitClassResolver{},
		Sharing: TagSharing{},
		Caller:  DefaultCaller{},
		Visible: true,
	}
	vm.Global = vm.Arena.New(NewShape("R_GlobalEnv"), NoActivation)
	return vm
}

// NewActivation creates an activation enclosed by enclosing (nil for a new
// top scope). The caller holds one reference and must Release it.
func (vm *VM) NewActivation(shape *Shape, enclosing *Activation) *Activation {
	enc := NoActivation
	if enclosing != nil {
		enc = enclosing.ID
	}
	return vm.Arena.New(shape, enc)
}

// Release drops the caller's reference to act.
func (vm *VM) Release(act *Activation) {
	vm.Arena.Release(act.ID)
}

// NewClosure creates a closure over env. shape is the binding shape of the
// function definition and should be shared by every closure created from
// that definition, so call sites inside the body see one layout; nil gives
// the closure a shape of its own. The closure retains env for as long as
// the VM lives; closures are not collected by this layer.
func (vm *VM) NewClosure(name string, formals []string, body Expr, env *Activation, shape *Shape) *Function {
	vm.Arena.Retain(env.ID)
	if shape == nil {
		shape = NewShape(name)
	}
	return &Function{
		Name:    name,
		Formals: formals,
		Body:    body,
		Env:     env.ID,
		Shape:   shape,
	}
}

// Apply calls a closure: it creates an activation of fn's shape enclosed by
// fn's defining activation, binds args to the formals and evaluates the
// body. Builtins are called directly.
func (vm *VM) Apply(fn *Function, args []Value) (Value, error) {
	if fn.Builtin != nil {
		return fn.Builtin(vm, args)
	}
	shape := fn.Shape
	if shape == nil {
		shape = NewShape(fn.Name)
		fn.Shape = shape
	}
	act := vm.Arena.New(shape, fn.Env)
	defer vm.Arena.Release(act.ID)
	act.BindArguments(fn.Formals, args)
	if fn.Body == nil {
		return Null, nil
	}
	return fn.Body.Eval(vm, act)
}

// enclosing returns the enclosing activation of act, or nil at the top.
func (vm *VM) enclosing(act *Activation) *Activation {
	return vm.Arena.EnclosingOf(act)
}

// top returns the top scope of act's chain.
func (vm *VM) top(act *Activation) *Activation {
	for {
		enc := vm.enclosing(act)
		if enc == nil {
			return act
		}
		act = enc
	}
}

// Remove unbinds name in act. Removing a name that is not bound logs a
// warning and reports false; it is never an error.
func (vm *VM) Remove(act *Activation, name string) bool {
	h, ok := act.Bindings.Find(name)
	if !ok {
		log.Warningf("object '%s' not found", name)
		return false
	}
	act.Bindings.Unset(h)
	return true
}

// Exists reports whether name is bound in act or, if inherits is set, in
// any enclosing activation.
func (vm *VM) Exists(act *Activation, name string, inherits bool) bool {
	for cur := act; cur != nil; cur = vm.enclosing(cur) {
		if _, ok := cur.Bindings.Find(name); ok {
			return true
		}
		if !inherits {
			break
		}
	}
	return false
}

func (vm *VM) register(s site) {
	if vm.Options.CollectStats {
		vm.sites = append(vm.sites, s)
	}
}
