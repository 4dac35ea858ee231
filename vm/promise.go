package vm

// Expr is an unevaluated expression supplied by the evaluator. The access
// layer never inspects it; it only evaluates it in an activation when a
// promise is forced.
type Expr interface {
	Eval(vm *VM, act *Activation) (Value, error)
}

// ExprFunc adapts a Go function to Expr.
type ExprFunc func(vm *VM, act *Activation) (Value, error)

// Eval implements Expr.
func (f ExprFunc) Eval(vm *VM, act *Activation) (Value, error) { return f(vm, act) }

type promiseState uint8

const (
	promiseUnforced promiseState = iota
	promiseForcing
	promiseForced
)

// Promise is a lazily evaluated value: an expression plus the activation
// it must be evaluated in. It is evaluated at most once; every reader
// afterwards sees the same value.
type Promise struct {
	expr  Expr
	env   ActivationID
	state promiseState
	value Value
}

func (*Promise) isValue() {}

// TypeName implements Value.
func (*Promise) TypeName() string { return "promise" }

// NewPromise creates an unforced promise and retains its activation until
// the promise is forced.
func (vm *VM) NewPromise(expr Expr, env *Activation) *Promise {
	vm.Arena.Retain(env.ID)
	return &Promise{expr: expr, env: env.ID}
}

// NewForcedPromise creates a promise whose value is already known, as the
// evaluator does for arguments it can compute eagerly.
func NewForcedPromise(v Value) *Promise {
	return &Promise{state: promiseForced, value: v, env: NoActivation}
}

// IsForced reports whether the promise has a value.
func (p *Promise) IsForced() bool { return p.state == promiseForced }

// Value returns the forced value, or nil if the promise is unforced.
func (p *Promise) Value() Value {
	if p.state != promiseForced {
		return nil
	}
	return p.value
}

// Env returns the ID of the activation the promise evaluates in.
func (p *Promise) Env() ActivationID { return p.env }

// Force evaluates the promise if necessary and returns its value.
//
// Forcing runs arbitrary code that may read and write bindings, including
// forcing other promises. Re-entering the same promise while it is being
// forced is an error. A failed evaluation leaves the promise unforced so
// a later read retries the expression.
func (vm *VM) Force(p *Promise) (Value, error) {
	switch p.state {
	case promiseForced:
		return p.value, nil
	case promiseForcing:
		return nil, promiseRecursion()
	}

	env := vm.Arena.Get(p.env)
	if env == nil {
		env = vm.Global
	}
	p.state = promiseForcing
	v, err := p.expr.Eval(vm, env)
	if err != nil {
		p.state = promiseUnforced
		return nil, err
	}
	// The result of a promise may itself be a promise; a reader always
	// observes a value.
	for {
		inner, ok := v.(*Promise)
		if !ok {
			break
		}
		if v, err = vm.Force(inner); err != nil {
			p.state = promiseUnforced
			return nil, err
		}
	}
	// The value is now reachable from the promise and from whoever reads it.
	if s, ok := v.(Shareable); ok {
		s.MakeShared()
	}
	p.value = v
	p.state = promiseForced
	p.expr = nil
	vm.Arena.Release(p.env)
	return v, nil
}
