package vm

// WriteMode selects how an assignment treats the aliasing of its value.
type WriteMode uint8

const (
	// WriteRegular binds the value; a value already bound elsewhere
	// becomes shared.
	WriteRegular WriteMode = iota
	// WriteCopy stores a copy of any value that is already
	// referenced elsewhere.
	WriteCopy
	// WriteInvisible stores the value without touching its share tag.
	WriteInvisible
)

var writeModeNames = [...]string{
	WriteRegular:   "regular",
	WriteCopy:      "copy",
	WriteInvisible: "invisible",
}

func (m WriteMode) String() string { return writeModeNames[m] }

// writePath is a cached write target. For a local write it has one step;
// for a super write it is the walk from the enclosing activation to the
// activation that binds the name.
type writePath struct {
	steps []step
}

// WriteSite is an assignment in the evaluated program.
type WriteSite struct {
	Name  string
	Mode  WriteMode
	Super bool

	vm    *VM
	cache SiteCache[*Shape, writePath]
}

// NewWriteSite creates an assignment site for name.
func (vm *VM) NewWriteSite(name string, mode WriteMode, super bool) *WriteSite {
	s := &WriteSite{Name: name, Mode: mode, Super: super, vm: vm}
	s.cache.Limit = vm.Options.MaxSiteEntries
	vm.register(s)
	return s
}

// Write assigns v to the site's name.
//
// A local write targets act, declaring the slot if needed. A super write
// targets the nearest enclosing activation that binds the name, or the top
// scope if none does; a super write from a top scope is a local write.
func (s *WriteSite) Write(act *Activation, v Value) error {
	start := act
	if s.Super {
		if enc := s.vm.enclosing(act); enc != nil {
			start = enc
		}
	}
	local := start == act

	if target, h, ok := s.cached(start, local); ok {
		s.cache.Hit()
		return s.vm.assign(target, h, v, s.Mode)
	}
	s.cache.Miss()

	if local {
		h := act.Bindings.Declare(s.Name, KindUnset)
		if err := s.vm.assign(act, h, v, s.Mode); err != nil {
			return err
		}
		sh := act.Bindings.shape
		s.remember(sh, writePath{steps: []step{{shape: sh, gen: sh.Generation(), slot: int(h)}}})
		return nil
	}
	return s.slowSuper(start, v)
}

// cached validates the cached target for start's shape.
func (s *WriteSite) cached(start *Activation, local bool) (*Activation, SlotHandle, bool) {
	path, ok := s.cache.Lookup(start.Bindings.shape)
	if !ok {
		return nil, 0, false
	}
	if local {
		st := path.steps[0]
		if len(path.steps) != 1 || st.shape.Generation() != st.gen || st.slot < 0 {
			return nil, 0, false
		}
		return start, SlotHandle(st.slot), true
	}

	cur := start
	last := len(path.steps) - 1
	for i, st := range path.steps {
		if cur == nil {
			return nil, 0, false
		}
		b := cur.Bindings
		if b.shape != st.shape || st.shape.Generation() != st.gen || (st.slot < 0 && i == last) {
			return nil, 0, false
		}
		bound := st.slot >= 0 && b.IsBound(SlotHandle(st.slot))
		if i == last {
			if !bound {
				return nil, 0, false
			}
			return cur, SlotHandle(st.slot), true
		}
		if bound {
			return nil, 0, false
		}
		cur = s.vm.enclosing(cur)
	}
	return nil, 0, false
}

// slowSuper resolves the target of a super write and refreshes the cache.
func (s *WriteSite) slowSuper(start *Activation, v Value) error {
	var steps []step
	var cur *Activation
	for cur = start; ; cur = s.vm.enclosing(cur) {
		b := cur.Bindings
		slot, declared := b.shape.Find(s.Name)
		if declared && b.IsBound(SlotHandle(slot)) {
			if err := s.vm.assign(cur, SlotHandle(slot), v, s.Mode); err != nil {
				return err
			}
			steps = append(steps, step{shape: b.shape, gen: b.shape.Generation(), slot: slot})
			s.remember(start.Bindings.shape, writePath{steps: steps})
			return nil
		}
		if s.vm.enclosing(cur) == nil {
			break
		}
		st := step{shape: b.shape, gen: b.shape.Generation(), slot: -1}
		if declared {
			st.slot = slot
		}
		steps = append(steps, st)
	}

	// Nothing binds the name: assign in the top scope.
	h := cur.Bindings.Declare(s.Name, KindUnset)
	if err := s.vm.assign(cur, h, v, s.Mode); err != nil {
		return err
	}
	// The top-scope slot is now bound, so the next write through this path
	// finds it as an ordinary binding. Intermediate generations are
	// unchanged by the assignment.
	sh := cur.Bindings.shape
	steps = append(steps, step{shape: sh, gen: sh.Generation(), slot: int(h)})
	s.remember(start.Bindings.shape, writePath{steps: steps})
	return nil
}

func (s *WriteSite) remember(key *Shape, path writePath) {
	before := s.cache.State
	after := s.cache.Update(key, path)
	if after != before {
		log.Debugf("write site %q: %s -> %s", s.Name, before, after)
	}
}

// assign stores v into slot h of target, honouring active bindings, slot
// kinds and share tags.
func (vm *VM) assign(target *Activation, h SlotHandle, v Value, mode WriteMode) error {
	b := target.Bindings
	old := b.Get(h)

	// While the shape has never seen an active binding this check is skipped.
	if !b.shape.NoActiveBindings() {
		if ab, ok := old.(*ActiveBinding); ok {
			_, err := vm.call(ab.Fn, v)
			return err
		}
	}

	if mode != WriteInvisible && old != v {
		v = vm.share(v, mode)
	}
	b.Set(h, v)
	vm.Visible = false
	return nil
}

// share updates the aliasing tag of a value that is about to be bound, or
// substitutes a copy.
func (vm *VM) share(v Value, mode WriteMode) Value {
	s, ok := v.(Shareable)
	if !ok {
		return v
	}
	if mode == WriteCopy {
		if vm.Sharing != nil && vm.Sharing.NeedsCopy(v) {
			c := s.Copy()
			c.MarkNonTemporary()
			return c
		}
		s.MarkNonTemporary()
		return v
	}
	switch s.ShareState() {
	case Temporary:
		s.MarkNonTemporary()
	case NonShared:
		s.MakeShared()
	}
	return v
}

// stat implements site.
func (s *WriteSite) stat() SiteStat {
	kind := "write/local"
	if s.Super {
		kind = "write/super"
	}
	return SiteStat{
		Kind:    kind,
		Name:    s.Name,
		State:   s.cache.State,
		Entries: s.cache.Count,
		Hits:    s.cache.Hits,
		Misses:  s.cache.Misses,
	}
}

// Write is an uncached assignment of v to name, for callers without a site.
func (vm *VM) Write(act *Activation, name string, v Value, mode WriteMode, super bool) error {
	s := &WriteSite{Name: name, Mode: mode, Super: super, vm: vm}
	return s.Write(act, v)
}

// MakeActiveBinding installs fn as an active binding for name in act.
// Reads of the name call fn with no arguments; writes call it with the
// assigned value.
func (vm *VM) MakeActiveBinding(act *Activation, name string, fn *Function) {
	b := act.Bindings
	h := b.Declare(name, KindGeneric)
	b.shape.markActiveBindings()
	b.Set(h, &ActiveBinding{Fn: fn})
}
