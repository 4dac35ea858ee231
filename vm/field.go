package vm

// ---------------------------------------------------------------------------
// Member access: record$name
// ---------------------------------------------------------------------------

// fieldMatch is a cached name resolution against one names vector.
// index is -1 when the name matches nothing.
type fieldMatch struct {
	index   int
	partial bool
}

// FieldSite is a `$` access in the evaluated program. It caches the
// position the name resolved to, keyed on the identity of the record's
// names vector. Names vectors are replaced, never edited, so an identical
// pointer means an identical layout.
type FieldSite struct {
	Name string

	vm    *VM
	cache SiteCache[*StringVector, fieldMatch]
}

// NewFieldSite creates a `$` site for name.
func (vm *VM) NewFieldSite(name string) *FieldSite {
	s := &FieldSite{Name: name, vm: vm}
	s.cache.Limit = vm.Options.MaxSiteEntries
	vm.register(s)
	return s
}

// Get returns record$name.
//
// Lists match an exact name first, then a unique prefix. Anything else
// (no names, an ambiguous prefix, no match) is Null. Null$name is Null.
// Atomic values fail with ErrNotApplicable.
func (s *FieldSite) Get(record Value) (Value, error) {
	switch r := record.(type) {
	case *List:
		names := namesOf(r)
		if names == nil {
			return Null, nil
		}
		m, ok := s.cache.Lookup(names)
		if ok {
			s.cache.Hit()
		} else {
			s.cache.Miss()
			m = matchField(names.Data, s.Name)
			before := s.cache.State
			if after := s.cache.Update(names, m); after != before {
				log.Debugf("field site %q: %s -> %s", s.Name, before, after)
			}
		}
		if m.index < 0 {
			return Null, nil
		}
		if m.partial && s.vm.Options.WarnPartialMatchDollar {
			log.Warningf("partial match of '%s' to '%s'", s.Name, names.Data[m.index])
		}
		return r.Data[m.index], nil

	case *External:
		if r.Object == nil {
			return Null, nil
		}
		return r.Object.Member(s.Name)

	case Special:
		if r == Null {
			return Null, nil
		}
		return nil, notSubsettable(r)
	}

	if isAtomic(record) {
		return nil, dollarOnAtomic()
	}
	return nil, notSubsettable(record)
}

// matchField resolves name against names: exact match, then unique prefix.
func matchField(names []string, name string) fieldMatch {
	for i, n := range names {
		if n == name {
			return fieldMatch{index: i}
		}
	}
	found := -1
	for i, n := range names {
		if len(n) > len(name) && n[:len(name)] == name {
			if found >= 0 {
				return fieldMatch{index: -1}
			}
			found = i
		}
	}
	if found < 0 {
		return fieldMatch{index: -1}
	}
	return fieldMatch{index: found, partial: true}
}

// stat implements site.
func (s *FieldSite) stat() SiteStat {
	return SiteStat{
		Kind:    "field",
		Name:    s.Name,
		State:   s.cache.State,
		Entries: s.cache.Count,
		Hits:    s.cache.Hits,
		Misses:  s.cache.Misses,
	}
}

// GetField is an uncached record$name.
func (vm *VM) GetField(record Value, name string) (Value, error) {
	s := &FieldSite{Name: name, vm: vm}
	return s.Get(record)
}

// SetField returns record with its member name set to value. Assignment
// matches names exactly. A Null value removes the member. A shared record
// is copied first; the input is modified in place otherwise. Null as the
// record starts a new list.
func (vm *VM) SetField(record Value, name string, value Value) (Value, error) {
	var l *List
	switch r := record.(type) {
	case *List:
		l = r
		if l.ShareState() == Shared {
			l = l.Copy().(*List)
		}
	case Special:
		if r != Null {
			return nil, notSubsettable(r)
		}
		l = NewList()
	default:
		if isAtomic(record) {
			return nil, dollarOnAtomic()
		}
		return nil, notSubsettable(record)
	}

	var names []string
	if nv := namesOf(l); nv != nil {
		names = nv.Data
	} else {
		names = make([]string, len(l.Data))
	}
	i := -1
	for j, n := range names {
		if n == name {
			i = j
			break
		}
	}

	switch {
	case value == Null && i < 0:
		return l, nil
	case value == Null:
		data := append(append([]Value(nil), l.Data[:i]...), l.Data[i+1:]...)
		newNames := append(append([]string(nil), names[:i]...), names[i+1:]...)
		l.Data = data
		vm.replaceNames(l, newNames)
	case i >= 0:
		l.Data[i] = value
	default:
		l.Data = append(l.Data, value)
		vm.replaceNames(l, append(append([]string(nil), names...), name))
	}
	if s, ok := value.(Shareable); ok {
		s.MarkNonTemporary()
	}
	return l, nil
}

// replaceNames installs a fresh names vector on l.
func (vm *VM) replaceNames(l *List, names []string) {
	attributesFor(l).Set(AttrNames, NewStringVector(names...))
}
