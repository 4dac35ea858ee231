package vm

import (
	"errors"
	"fmt"
)

// Error kinds raised by the access layer. Every error returned from this
// package wraps exactly one of these; use errors.Is to classify and
// errors.As with *AccessError to read the details.
var (
	ErrUnboundVariable          = errors.New("unbound variable")
	ErrMissingArgument          = errors.New("missing argument")
	ErrNotApplicable            = errors.New("operator not applicable")
	ErrNoSuchSlot               = errors.New("no such slot")
	ErrSlotAccessDenied         = errors.New("slot access denied")
	ErrNoSuchFunction           = errors.New("no such function")
	ErrNoDataPart               = errors.New("no data part")
	ErrNoVariadicContext        = errors.New("no variadic context")
	ErrEmptyVariadicList        = errors.New("empty variadic list")
	ErrIndexOutOfRange          = errors.New("variadic index out of range")
	ErrNonIntegralSequenceIndex = errors.New("non-integral sequence index")
	ErrInvalidSubscriptType     = errors.New("invalid subscript type")
	ErrSubscriptOutOfBounds     = errors.New("subscript out of bounds")
	ErrPromiseRecursion         = errors.New("promise recursion")
)

// SlotMissKind distinguishes the two ways a slot lookup can miss.
type SlotMissKind uint8

const (
	// SlotUnknownType: the object has no class attribute at all.
	SlotUnknownType SlotMissKind = iota + 1
	// SlotNotInClass: the object has a class, but it lacks the slot.
	SlotNotInClass
)

// AccessError is the concrete error type for access failures.
type AccessError struct {
	Kind error
	// Name is the variable, member or slot name involved, if any.
	Name string
	// Index is the 1-based position for variadic errors, 0 otherwise.
	Index int
	// Class is the object's class for slot errors.
	Class string
	// Miss classifies ErrNoSuchSlot errors.
	Miss SlotMissKind

	msg string
}

func (e *AccessError) Error() string { return e.msg }

// Unwrap returns the error kind.
func (e *AccessError) Unwrap() error { return e.Kind }

func newAccessError(kind error, format string, args ...any) *AccessError {
	return &AccessError{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// ---------------------------------------------------------------------------
// Constructors, one per diagnostic
// ---------------------------------------------------------------------------

func unboundVariable(name string) error {
	e := newAccessError(ErrUnboundVariable, "object '%s' not found", name)
	e.Name = name
	return e
}

func unboundFunction(name string) error {
	e := newAccessError(ErrUnboundVariable, "could not find function \"%s\"", name)
	e.Name = name
	return e
}

func missingArgument(name string) error {
	e := newAccessError(ErrMissingArgument, "argument \"%s\" is missing, with no default", name)
	e.Name = name
	return e
}

func dollarOnAtomic() error {
	return newAccessError(ErrNotApplicable, "$ operator is invalid for atomic vectors")
}

func notSubsettable(v Value) error {
	return newAccessError(ErrNotApplicable, "object of type '%s' is not subsettable", v.TypeName())
}

func slotUnknownType(name string, v Value) error {
	e := newAccessError(ErrNoSuchSlot, "cannot get a slot (\"%s\") from an object of type \"%s\"", name, v.TypeName())
	e.Name = name
	e.Miss = SlotUnknownType
	return e
}

func slotNotInClass(name, class string) error {
	e := newAccessError(ErrNoSuchSlot, "no slot of name \"%s\" for this object of class \"%s\"", name, class)
	e.Name = name
	e.Class = class
	e.Miss = SlotNotInClass
	return e
}

func slotAccessDenied(name string, v Value) error {
	class := ClassOf(v)[0]
	e := newAccessError(ErrSlotAccessDenied,
		"no applicable method for `@` applied to an object of class \"%s\" (slot \"%s\")", class, name)
	e.Name = name
	e.Class = class
	return e
}

func noSuchFunction(name string) error {
	e := newAccessError(ErrNoSuchFunction, "could not find function \"%s\"", name)
	e.Name = name
	return e
}

func noVariadicContext(index int) error {
	e := newAccessError(ErrNoVariadicContext, "..%d used in an incorrect context, no ... to look in", index)
	e.Index = index
	return e
}

func emptyVariadicList(index int) error {
	e := newAccessError(ErrEmptyVariadicList, "..%d used in an incorrect context, the ... list is empty", index)
	e.Index = index
	return e
}

func variadicOutOfRange(index int) error {
	e := newAccessError(ErrIndexOutOfRange, "the ... list contains fewer than %d elements", index)
	e.Index = index
	return e
}

func nonIntegralSequence(stride float64) error {
	return newAccessError(ErrNonIntegralSequenceIndex,
		"sequence with non-integral stride %g cannot be used as an index", stride)
}

func invalidSubscriptType(v Value) error {
	return newAccessError(ErrInvalidSubscriptType, "invalid subscript type '%s'", v.TypeName())
}

func subscriptOutOfBounds() error {
	return newAccessError(ErrSubscriptOutOfBounds, "subscript out of bounds")
}

func selectLessThanOne() error {
	return newAccessError(ErrSubscriptOutOfBounds, "attempt to select less than one element")
}

func selectMoreThanOne() error {
	return newAccessError(ErrSubscriptOutOfBounds, "attempt to select more than one element")
}

func promiseRecursion() error {
	return newAccessError(ErrPromiseRecursion,
		"promise already under evaluation: recursive default argument reference or earlier problems?")
}
