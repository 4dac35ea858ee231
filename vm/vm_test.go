package vm

import (
	"errors"
	"testing"
)

// ---------------------------------------------------------------------------
// VM setup tests
// ---------------------------------------------------------------------------

func TestNewVM(t *testing.T) {
	vm := NewVM()
	if vm.Global == nil || !vm.Global.IsTop() {
		t.Fatal("NewVM has no top scope")
	}
	if vm.Options.MaxSiteEntries != DefaultSiteEntries {
		t.Errorf("MaxSiteEntries = %d, want %d", vm.Options.MaxSiteEntries, DefaultSiteEntries)
	}
	if vm.Classes == nil || vm.Sharing == nil || vm.Caller == nil {
		t.Error("default collaborators not installed")
	}
	if vm.Models != nil {
		t.Error("a model delegate is installed by default")
	}
	if vm.Global.Shape().Name != "R_GlobalEnv" {
		t.Errorf("global shape = %q", vm.Global.Shape().Name)
	}
}

func TestOptionsClamped(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultSiteEntries},
		{-3, DefaultSiteEntries},
		{1, 1},
		{MaxSiteEntries, MaxSiteEntries},
		{MaxSiteEntries + 5, MaxSiteEntries},
	}
	for _, tt := range tests {
		vm := NewVMWithOptions(Options{MaxSiteEntries: tt.in})
		if vm.Options.MaxSiteEntries != tt.want {
			t.Errorf("MaxSiteEntries(%d) = %d, want %d", tt.in, vm.Options.MaxSiteEntries, tt.want)
		}
	}
}

func TestSeparateTopScopes(t *testing.T) {
	vm := NewVM()
	other := vm.NewActivation(NewShape("sandbox"), nil)
	if !other.IsTop() {
		t.Fatal("activation without enclosing is not a top scope")
	}
	if err := vm.Write(other, "x", Int(1), WriteRegular, true); err != nil {
		t.Fatal(err)
	}
	if vm.Exists(vm.Global, "x", true) {
		t.Error("super write from another top scope reached the global scope")
	}
	if vm.top(newChild(vm, other, "f")) != other {
		t.Error("top did not find the sandbox scope")
	}
}

func TestApplyBuiltin(t *testing.T) {
	vm := NewVM()
	add := NewBuiltin("add", func(vm *VM, args []Value) (Value, error) {
		return args[0].(Int) + args[1].(Int), nil
	})
	got, err := vm.Apply(add, []Value{Int(2), Int(3)})
	if err != nil || got != Int(5) {
		t.Errorf("add(2, 3) = %v, %v", got, err)
	}
}

func TestApplyReleasesActivation(t *testing.T) {
	vm := NewVM()
	fn := vm.NewClosure("id", []string{"x"}, ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		return vm.Read(act, "x")
	}), vm.Global, nil)

	live := vm.Arena.Live()
	for i := 0; i < 5; i++ {
		if _, err := vm.Apply(fn, []Value{Int(int32(i))}); err != nil {
			t.Fatal(err)
		}
	}
	if vm.Arena.Live() != live {
		t.Errorf("Live = %d after calls, want %d", vm.Arena.Live(), live)
	}
	if fn.Shape.Len() != 1 {
		t.Errorf("closure shape has %d slots, want 1", fn.Shape.Len())
	}
}

func TestArenaBoundedAcrossCalls(t *testing.T) {
	vm := NewVM()
	fn := vm.NewClosure("id", []string{"x"}, ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		return vm.Read(act, "x")
	}), vm.Global, nil)

	before := len(vm.Arena.records)
	var last ActivationID
	traceID := ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		last = act.ID
		return Null, nil
	})
	for i := 0; i < 100000; i++ {
		if _, err := vm.Apply(fn, []Value{Int(1)}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(vm.Arena.records); got != before {
		t.Errorf("arena holds %d records after calls, want %d", got, before)
	}
	if vm.Arena.Live() != before {
		t.Errorf("Live = %d, want %d", vm.Arena.Live(), before)
	}

	// Released IDs are not reissued.
	tracer := vm.NewClosure("trace", nil, traceID, vm.Global, nil)
	if _, err := vm.Apply(tracer, nil); err != nil {
		t.Fatal(err)
	}
	first := last
	if vm.Arena.Get(first) != nil {
		t.Error("released activation still resolves")
	}
	if _, err := vm.Apply(tracer, nil); err != nil {
		t.Fatal(err)
	}
	if last == first {
		t.Errorf("activation ID %d reissued", last)
	}
}

func TestClosuresShareDefinitionShape(t *testing.T) {
	vm := NewVM()
	site := vm.NewReadSite("x", ReadNormal, false)
	body := ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		return site.Read(act)
	})

	def := NewShape("adder")
	for i := 0; i < 4; i++ {
		env := newChild(vm, vm.Global, "maker")
		fn := vm.NewClosure("adder", []string{"x"}, body, env, def)
		vm.Release(env)
		if fn.Shape != def {
			t.Fatal("closure did not keep the definition shape")
		}
		if got, err := vm.Apply(fn, []Value{Int(int32(i))}); err != nil || got != Int(int32(i)) {
			t.Fatalf("call %d = %v, %v", i, got, err)
		}
	}
	if site.cache.State != CacheMonomorphic {
		t.Errorf("site state = %v, want monomorphic", site.cache.State)
	}

	a := vm.NewClosure("f", nil, nil, vm.Global, nil)
	b := vm.NewClosure("f", nil, nil, vm.Global, nil)
	if a.Shape == nil || a.Shape == b.Shape {
		t.Error("closures without a definition shape share one")
	}
}

func TestApplyPropagatesErrors(t *testing.T) {
	vm := NewVM()
	fn := vm.NewClosure("f", nil, ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		return vm.Read(act, "undefined")
	}), vm.Global, nil)
	if _, err := vm.Apply(fn, nil); !errors.Is(err, ErrUnboundVariable) {
		t.Errorf("err = %v, want ErrUnboundVariable", err)
	}

	empty := vm.NewClosure("g", nil, nil, vm.Global, nil)
	if got, err := vm.Apply(empty, nil); err != nil || got != Null {
		t.Errorf("empty body = %v, %v; want NULL", got, err)
	}
}

type recordingCaller struct {
	calls []string
}

func (c *recordingCaller) Call(vm *VM, fn *Function, args []Value) (Value, error) {
	c.calls = append(c.calls, fn.Name)
	return vm.Apply(fn, args)
}

func TestCustomCaller(t *testing.T) {
	vm := NewVM()
	caller := &recordingCaller{}
	vm.Caller = caller
	vm.MakeActiveBinding(vm.Global, "v", NewBuiltin("getter", func(vm *VM, args []Value) (Value, error) {
		return Int(1), nil
	}))
	if got, err := vm.Read(vm.Global, "v"); err != nil || got != Int(1) {
		t.Fatalf("read = %v, %v", got, err)
	}
	if len(caller.calls) != 1 || caller.calls[0] != "getter" {
		t.Errorf("calls = %v", caller.calls)
	}
}
