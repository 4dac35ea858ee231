package vm

import (
	"errors"
	"testing"
	"testing/quick"
)

func TestPropertyWriteThenRead(t *testing.T) {
	vm := NewVM()
	act := newChild(vm, vm.Global, "f")
	roundtrip := func(name string, v int32, d float64) bool {
		if name == "" || name == VarArgsName {
			return true
		}
		for _, val := range []Value{Int(v), Double(d), NewIntVector(v)} {
			if err := vm.Write(act, name, val, WriteRegular, false); err != nil {
				return false
			}
			got, err := vm.Read(act, name)
			if err != nil || got != val {
				return false
			}
		}
		return true
	}
	if err := quick.Check(roundtrip, nil); err != nil {
		t.Error(err)
	}
}

func TestPropertyKindWideningIsOneWay(t *testing.T) {
	vm := NewVM()
	act := newChild(vm, vm.Global, "f")
	site := vm.NewWriteSite("x", WriteRegular, false)

	mustSiteWrite(t, site, act, Int(1))
	mustSiteWrite(t, site, act, NewList(Str("obj")))
	mustSiteWrite(t, site, act, Int(2))

	h, _ := act.Bindings.Find("x")
	if k := act.Shape().Kind(int(h)); k != KindGeneric {
		t.Errorf("kind = %v, want generic", k)
	}
	if got, _ := vm.Read(act, "x"); got != Int(2) {
		t.Errorf("x = %v, want 2", got)
	}
}

func TestPropertySuperWriteFallback(t *testing.T) {
	vm := NewVM()
	outer := newChild(vm, vm.Global, "outer")
	inner := newChild(vm, outer, "inner")

	if err := vm.Write(inner, "total", Int(5), WriteRegular, true); err != nil {
		t.Fatal(err)
	}
	if vm.Exists(outer, "total", false) || vm.Exists(inner, "total", false) {
		t.Fatal("fallback super write bound a local")
	}

	// Overwrites on a second fallback.
	if err := vm.Write(inner, "total", Int(6), WriteRegular, true); err != nil {
		t.Fatal(err)
	}

	fresh := newChild(vm, vm.Global, "fresh")
	got, err := vm.Read(fresh, "total")
	if err != nil || got != Int(6) {
		t.Errorf("fresh child read = %v, %v; want 6", got, err)
	}
}

func TestPropertyFieldExactThenPrefix(t *testing.T) {
	vm := NewVM()
	rec := NewRecord([]string{"alpha", "alphabet"}, []Value{Int(1), Int(2)})

	if got, _ := vm.GetField(rec, "alp"); got != Null {
		t.Errorf("$alp = %v, want NULL", got)
	}
	if got, _ := vm.GetField(rec, "alpha"); got != Int(1) {
		t.Errorf("$alpha = %v, want 1", got)
	}
	xy := NewRecord([]string{"xy"}, []Value{Int(9)})
	if got, _ := vm.GetField(xy, "x"); got != Int(9) {
		t.Errorf("$x = %v, want 9", got)
	}
}

func TestPropertySlotMissKindsDiffer(t *testing.T) {
	vm := NewVM()
	_, unknown := vm.GetSlot(NewS4Object(""), "s", true)
	_, notInClass := vm.GetSlot(NewS4Object("K"), "s", true)

	var a, b *AccessError
	if !errors.As(unknown, &a) || !errors.As(notInClass, &b) {
		t.Fatalf("errors = %v / %v", unknown, notInClass)
	}
	if a.Miss == b.Miss {
		t.Errorf("both misses classified as %v", a.Miss)
	}
	if a.Miss != SlotUnknownType || b.Miss != SlotNotInClass {
		t.Errorf("miss kinds = %v / %v", a.Miss, b.Miss)
	}
}

func TestPropertyVariadicBounds(t *testing.T) {
	vm := NewVM()
	act := withVarArgs(vm, NewVarArgs([]Value{Int(1), Int(2)}, nil))

	for i := 0; i < 2; i++ {
		if _, err := vm.ReadVariadicComponent(act, i); err != nil {
			t.Errorf("index %d: %v", i, err)
		}
	}
	_, err := vm.ReadVariadicComponent(act, 2)
	var ae *AccessError
	if !errors.Is(err, ErrIndexOutOfRange) || !errors.As(err, &ae) {
		t.Fatalf("err = %v, want ErrIndexOutOfRange", err)
	}
	if ae.Index != 3 {
		t.Errorf("Index = %d, want 3", ae.Index)
	}
}

func TestPropertyIndexCoercion(t *testing.T) {
	tests := []struct {
		raw  Value
		want Index
	}{
		{Double(3.0), IntIndex(3)},
		{Double(3.5), IntIndex(IntNA)},
		{Null, ZeroIndex},
		{NewDoubleVector(), ZeroIndex},
	}
	for _, tt := range tests {
		got, err := CastPosition(tt.raw)
		if err != nil || got != tt.want {
			t.Errorf("CastPosition(%s) = %v, %v; want %v", Format(tt.raw), got, err, tt.want)
		}
	}
}

func TestPropertyPromiseReadIsIdempotent(t *testing.T) {
	vm := NewVM()
	effects := 0
	p := vm.NewPromise(ExprFunc(func(vm *VM, act *Activation) (Value, error) {
		effects++
		return NewStringVector("once"), nil
	}), vm.Global)
	act := newChild(vm, vm.Global, "f")
	act.BindArguments([]string{"lazy"}, []Value{p})

	first, err := vm.Read(act, "lazy")
	if err != nil {
		t.Fatal(err)
	}
	second, err := vm.Read(act, "lazy")
	if err != nil {
		t.Fatal(err)
	}
	if effects != 1 {
		t.Errorf("side effect ran %d times, want 1", effects)
	}
	if first != second {
		t.Error("second read returned a different value")
	}
}
