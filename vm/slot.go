package vm

import "errors"

// Reserved pseudo-slot names.
const (
	// SlotS3Class yields the class hierarchy of the object.
	SlotS3Class = ".S3Class"
	// SlotData is the data part of a model object, handled by the
	// ModelDelegate.
	SlotData = ".Data"
)

// nullSlot stands in for Null in an attribute table, so that a slot set to
// Null stays declared.
const nullSlot = Str("\x01NULL\x01")

func isReservedSlot(name string) bool {
	return name == SlotS3Class || name == SlotData
}

// slotPermitted reports whether obj@name is allowed at all. Model objects
// allow every name. Other objects allow only the reserved names, and only
// when not reached through the `@` operator.
func slotPermitted(obj Value, name string, viaOperator bool) bool {
	if isModel(obj) {
		return true
	}
	return !viaOperator && isReservedSlot(name)
}

// ---------------------------------------------------------------------------
// Slot sites
// ---------------------------------------------------------------------------

// slotPos is the cached position of a slot name in an attribute table of a
// given layout version.
type slotPos struct {
	version uint32
	index   int
}

// SlotSite is an `@` access in the evaluated program. It caches the
// position of its name per attribute table.
type SlotSite struct {
	Name        string
	ViaOperator bool

	vm    *VM
	cache SiteCache[*Attributes, slotPos]
}

// NewSlotSite creates a slot access site for name.
func (vm *VM) NewSlotSite(name string, viaOperator bool) *SlotSite {
	s := &SlotSite{Name: name, ViaOperator: viaOperator, vm: vm}
	s.cache.Limit = vm.Options.MaxSiteEntries
	vm.register(s)
	return s
}

// Get returns obj@name.
func (s *SlotSite) Get(obj Value) (Value, error) {
	if !slotPermitted(obj, s.Name, s.ViaOperator) {
		return nil, slotAccessDenied(s.Name, obj)
	}
	if isReservedSlot(s.Name) {
		return s.vm.reservedSlot(obj, s.Name)
	}
	a, ok := obj.(Attributable)
	if !ok {
		return nil, slotUnknownType(s.Name, obj)
	}
	attrs := a.Attributes()
	if attrs != nil {
		if pos, ok := s.cache.Lookup(attrs); ok && pos.version == attrs.Version() {
			s.cache.Hit()
			return fromSlot(attrs.ValueAt(pos.index)), nil
		}
	}
	s.cache.Miss()

	i := attrs.Index(s.Name)
	if i < 0 {
		return nil, slotMiss(s.Name, obj)
	}
	before := s.cache.State
	if after := s.cache.Update(attrs, slotPos{version: attrs.Version(), index: i}); after != before {
		log.Debugf("slot site %q: %s -> %s", s.Name, before, after)
	}
	return fromSlot(attrs.ValueAt(i)), nil
}

// stat implements site.
func (s *SlotSite) stat() SiteStat {
	return SiteStat{
		Kind:    "slot",
		Name:    s.Name,
		State:   s.cache.State,
		Entries: s.cache.Count,
		Hits:    s.cache.Hits,
		Misses:  s.cache.Misses,
	}
}

// ---------------------------------------------------------------------------
// Uncached operations
// ---------------------------------------------------------------------------

// GetSlot returns obj@name. viaOperator is true for the `@` operator and
// false for the slot() function path.
func (vm *VM) GetSlot(obj Value, name string, viaOperator bool) (Value, error) {
	s := &SlotSite{Name: name, ViaOperator: viaOperator, vm: vm}
	return s.Get(obj)
}

// HasSlot reports whether obj has the named slot. It never fails: any
// error from the model delegate reads as false.
func (vm *VM) HasSlot(obj Value, name string) bool {
	if name == SlotData {
		if vm.Models == nil {
			return false
		}
		_, err := vm.Models.UnwrapDataPart(vm, obj)
		if err != nil {
			if !errors.Is(err, ErrNoDataPart) {
				log.Warningf("data part of %s object: %s", obj.TypeName(), err)
			}
			return false
		}
		return true
	}
	a, ok := obj.(Attributable)
	if !ok {
		return false
	}
	return a.Attributes().Index(name) >= 0
}

// SetSlot stores value as obj@name and returns the updated object. A shared
// object is copied first. The data part is replaced through the model
// delegate.
func (vm *VM) SetSlot(obj Value, name string, value Value) (Value, error) {
	if !slotPermitted(obj, name, false) {
		return nil, slotAccessDenied(name, obj)
	}
	if name == SlotData {
		if vm.Models == nil {
			return nil, noSuchFunction("setDataPart")
		}
		return vm.Models.WrapDataPart(vm, obj, value)
	}
	a, ok := obj.(Attributable)
	if !ok {
		return nil, slotUnknownType(name, obj)
	}
	if sh, ok := obj.(Shareable); ok && sh.ShareState() == Shared {
		a = sh.Copy().(Attributable)
	}
	if value == Null {
		value = nullSlot
	} else if sh, ok := value.(Shareable); ok {
		sh.MarkNonTemporary()
	}
	attributesFor(a).Set(name, value)
	return a, nil
}

// reservedSlot handles .S3Class and .Data.
func (vm *VM) reservedSlot(obj Value, name string) (Value, error) {
	if name == SlotS3Class {
		if a, ok := obj.(Attributable); ok {
			if v, ok := a.Attributes().Get(SlotS3Class); ok {
				return fromSlot(v), nil
			}
		}
		classes := vm.Classes
		if classes == nil {
			classes = ImplicitClassResolver{}
		}
		return NewStringVector(classes.ClassHierarchyOf(obj)...), nil
	}
	if vm.Models == nil {
		return nil, noSuchFunction("getDataPart")
	}
	return vm.Models.UnwrapDataPart(vm, obj)
}

func fromSlot(v Value) Value {
	if v == nullSlot {
		return Null
	}
	return v
}

// slotMiss builds the diagnostic for a name absent from obj's attributes.
func slotMiss(name string, obj Value) error {
	class := ClassAttribute(obj)
	if class == nil {
		return slotUnknownType(name, obj)
	}
	return slotNotInClass(name, class[0])
}
