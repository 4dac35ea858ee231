package vm

// ReadKind selects where a variable read starts and what it accepts.
type ReadKind uint8

const (
	// ReadNormal looks in the activation, then up the enclosing chain.
	ReadNormal ReadKind = iota
	// ReadLocal looks in the activation only.
	ReadLocal
	// ReadSuper starts at the enclosing activation.
	ReadSuper
	// ReadFunction is ReadNormal but skips bindings that are not functions,
	// as a call head does.
	ReadFunction
)

var readKindNames = [...]string{
	ReadNormal:   "normal",
	ReadLocal:    "local",
	ReadSuper:    "super",
	ReadFunction: "function",
}

func (k ReadKind) String() string { return readKindNames[k] }

// step records one activation visited while resolving a name: the shape and
// generation it had, and the slot position of the name in it (-1 when the
// shape does not declare it). Every step but the last was a miss.
type step struct {
	shape *Shape
	gen   uint64
	slot  int
}

// readPath is a cached resolution: the activations walked from the start,
// ending at the one that binds the name.
type readPath struct {
	steps []step
}

// ReadSite is a variable read in the evaluated program. It caches the
// resolution path per starting shape.
type ReadSite struct {
	Name   string
	Kind   ReadKind
	Silent bool

	vm    *VM
	cache SiteCache[*Shape, readPath]
}

// NewReadSite creates a read site for name.
func (vm *VM) NewReadSite(name string, kind ReadKind, silent bool) *ReadSite {
	s := &ReadSite{Name: name, Kind: kind, Silent: silent, vm: vm}
	s.cache.Limit = vm.Options.MaxSiteEntries
	vm.register(s)
	return s
}

// Read resolves the site's name starting from act and returns its value.
//
// Promises are forced in their own activation and the forced value is
// written back to the binding. Active bindings are called with no
// arguments. A name that resolves nowhere is ErrUnboundVariable, or
// Unbound when the site is silent.
func (s *ReadSite) Read(act *Activation) (Value, error) {
	start := act
	if s.Kind == ReadSuper {
		start = s.vm.enclosing(act)
		if start == nil {
			return s.unbound()
		}
	}

	if owner, h, ok := s.cached(start); ok {
		s.cache.Hit()
		v, retry, err := s.vm.deliver(owner, h, s.Name, s.Silent, s.Kind == ReadFunction)
		if !retry {
			return v, err
		}
		// A function read found a promise or active binding that produced
		// a non-function; the general path continues the search past it.
		return s.slowRead(start)
	}
	s.cache.Miss()
	return s.slowRead(start)
}

// cached validates the cached path for start's shape and returns the
// binding it leads to.
func (s *ReadSite) cached(start *Activation) (*Activation, SlotHandle, bool) {
	path, ok := s.cache.Lookup(start.Bindings.shape)
	if !ok {
		return nil, 0, false
	}
	cur := start
	last := len(path.steps) - 1
	for i, st := range path.steps {
		if cur == nil {
			return nil, 0, false
		}
		b := cur.Bindings
		if b.shape != st.shape || st.shape.Generation() != st.gen {
			return nil, 0, false
		}
		if i == last {
			if !b.IsBound(SlotHandle(st.slot)) {
				return nil, 0, false
			}
			return cur, SlotHandle(st.slot), true
		}
		if st.slot >= 0 && b.IsBound(SlotHandle(st.slot)) {
			if s.Kind != ReadFunction || isCallable(b.Get(SlotHandle(st.slot))) {
				return nil, 0, false
			}
		}
		cur = s.vm.enclosing(cur)
	}
	return nil, 0, false
}

// isCallable reports whether a function read must stop at v (or inspect it
// further). Promises and active bindings may produce functions.
func isCallable(v Value) bool {
	switch v.(type) {
	case *Function, *Promise, *ActiveBinding:
		return true
	}
	return false
}

// slowRead performs full name resolution from start and refreshes the cache.
func (s *ReadSite) slowRead(start *Activation) (Value, error) {
	var steps []step
	for cur := start; cur != nil; cur = s.vm.enclosing(cur) {
		b := cur.Bindings
		slot, declared := b.shape.Find(s.Name)
		st := step{shape: b.shape, gen: b.shape.Generation(), slot: -1}
		if declared {
			st.slot = slot
		}
		steps = append(steps, st)

		if declared && b.IsBound(SlotHandle(slot)) {
			v, retry, err := s.vm.deliver(cur, SlotHandle(slot), s.Name, s.Silent, s.Kind == ReadFunction)
			if !retry {
				if err == nil {
					s.remember(start, steps)
				}
				return v, err
			}
		}
		if s.Kind == ReadLocal {
			break
		}
	}
	return s.unbound()
}

func (s *ReadSite) remember(first *Activation, steps []step) {
	before := s.cache.State
	after := s.cache.Update(first.Bindings.shape, readPath{steps: steps})
	if after != before {
		log.Debugf("read site %q: %s -> %s", s.Name, before, after)
	}
}

func (s *ReadSite) unbound() (Value, error) {
	if s.Silent {
		return Unbound, nil
	}
	if s.Kind == ReadFunction {
		return nil, unboundFunction(s.Name)
	}
	return nil, unboundVariable(s.Name)
}

// deliver turns the raw content of a bound slot into the value a reader
// sees. retry is set when a function read must keep searching past it.
func (vm *VM) deliver(owner *Activation, h SlotHandle, name string, silent, wantFunction bool) (Value, bool, error) {
	raw := owner.Bindings.Get(h)
	v := raw
	switch r := raw.(type) {
	case *Promise:
		forced, err := vm.Force(r)
		if err != nil {
			return nil, false, err
		}
		// Write back, unless forcing itself rebound the name.
		if owner.Bindings.Get(h) == raw {
			owner.Bindings.Set(h, forced)
		}
		v = forced
	case *ActiveBinding:
		got, err := vm.call(r.Fn)
		if err != nil {
			return nil, false, err
		}
		v = got
	}

	if wantFunction {
		if _, ok := v.(*Function); !ok {
			return nil, true, nil
		}
		return v, false, nil
	}
	if v == Missing {
		if silent {
			return Missing, false, nil
		}
		return nil, false, missingArgument(name)
	}
	return v, false, nil
}

// stat implements site.
func (s *ReadSite) stat() SiteStat {
	return SiteStat{
		Kind:    "read/" + s.Kind.String(),
		Name:    s.Name,
		State:   s.cache.State,
		Entries: s.cache.Count,
		Hits:    s.cache.Hits,
		Misses:  s.cache.Misses,
	}
}

// Read is an uncached lookup of name from act, for callers without a site.
func (vm *VM) Read(act *Activation, name string) (Value, error) {
	s := &ReadSite{Name: name, Kind: ReadNormal, vm: vm}
	return s.slowRead(act)
}

// ReadFunction is an uncached function lookup of name from act.
func (vm *VM) ReadFunction(act *Activation, name string) (*Function, error) {
	s := &ReadSite{Name: name, Kind: ReadFunction, vm: vm}
	v, err := s.slowRead(act)
	if err != nil {
		return nil, err
	}
	return v.(*Function), nil
}
