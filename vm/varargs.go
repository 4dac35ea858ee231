package vm

// lookupVarArgs finds the `...` binding visible from act. Like any other
// variable it may live in an enclosing activation.
func (vm *VM) lookupVarArgs(act *Activation) (*VarArgs, bool) {
	for cur := act; cur != nil; cur = vm.enclosing(cur) {
		h, ok := cur.Bindings.Find(VarArgsName)
		if !ok {
			continue
		}
		switch v := cur.Bindings.Get(h).(type) {
		case *VarArgs:
			return v, true
		case Special:
			// `...` bound but with nothing captured.
			if v == Missing {
				return &VarArgs{}, true
			}
		}
		return nil, false
	}
	return nil, false
}

// ReadVariadicComponent returns the index'th (0-based) element of the
// variadic tail visible from act, as `..N` with N = index+1 does. Promises
// are forced; a missing element is returned as Missing. Errors carry the
// 1-based N.
func (vm *VM) ReadVariadicComponent(act *Activation, index int) (Value, error) {
	n := index + 1
	va, ok := vm.lookupVarArgs(act)
	if !ok {
		return nil, noVariadicContext(n)
	}
	if va.Len() == 0 {
		return nil, emptyVariadicList(n)
	}
	if index < 0 || index >= va.Len() {
		return nil, variadicOutOfRange(n)
	}
	v := va.Values[index]
	if p, ok := v.(*Promise); ok {
		forced, err := vm.Force(p)
		if err != nil {
			return nil, err
		}
		v = forced
	}
	if v == nil {
		return Missing, nil
	}
	return v, nil
}

// MaterializeVarArgs returns the variadic tail visible from act, starting at
// offset, as plain slices for splicing into a new argument list. Elements
// are not forced. With no `...` in scope both slices are nil.
func (vm *VM) MaterializeVarArgs(act *Activation, offset int) ([]Value, []string) {
	va, ok := vm.lookupVarArgs(act)
	if !ok || offset >= va.Len() {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	values := append([]Value(nil), va.Values[offset:]...)
	names := make([]string, len(values))
	if offset < len(va.Names) {
		copy(names, va.Names[offset:])
	}
	return values, names
}
