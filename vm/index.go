package vm

import "math"

// ---------------------------------------------------------------------------
// Index coercion
// ---------------------------------------------------------------------------

// Index is a subscript in canonical form. The set of implementations is
// closed:
//
//   - AllPositions: a missing subscript, x[]
//   - IntIndex: one integer position; ZeroIndex selects nothing
//   - IntsIndex: several integer positions
//   - SequenceIndex: an ascending or descending run of positions >= 1
//   - LogicalIndex, LogicalsIndex: logical masks
//   - StringIndex, StringsIndex: positions by name
type Index interface {
	isIndex()
}

// AllPositions selects every position.
type AllPositions struct{}

// IntIndex is a single 1-based position. IntNA selects NA.
type IntIndex int32

// ZeroIndex is the canonical empty subscript.
const ZeroIndex IntIndex = 0

// IntsIndex is a vector of 1-based positions.
type IntsIndex []int32

// SequenceIndex is a compact run of positions, all >= 1.
type SequenceIndex struct {
	Start  int32
	Stride int32
	Length int
}

// LogicalIndex is a scalar logical mask.
type LogicalIndex Logical

// LogicalsIndex is a logical mask, recycled over the indexed vector.
type LogicalsIndex []Logical

// StringIndex selects one element by name.
type StringIndex string

// StringsIndex selects elements by name.
type StringsIndex []string

func (AllPositions) isIndex()  {}
func (IntIndex) isIndex()      {}
func (IntsIndex) isIndex()     {}
func (SequenceIndex) isIndex() {}
func (LogicalIndex) isIndex()  {}
func (LogicalsIndex) isIndex() {}
func (StringIndex) isIndex()   {}
func (StringsIndex) isIndex()  {}

// At returns position i of the run.
func (s SequenceIndex) At(i int) int32 { return s.Start + int32(i)*s.Stride }

// CastPosition converts a raw subscript value to canonical form.
//
// Doubles are converted to integers; a double with no exact integer value
// (fractional, out of range, NaN) becomes IntNA. Length-1 vectors become
// scalar indices and empty numeric vectors become ZeroIndex. Integer
// sequences of positive positions stay compact; a sequence starting at 0
// drops the 0 (which selects nothing) and stays compact too. Double
// sequences with a non-integral stride cannot be represented and fail with
// ErrNonIntegralSequenceIndex.
func CastPosition(raw Value) (Index, error) {
	switch r := raw.(type) {
	case Special:
		switch r {
		case Missing:
			return AllPositions{}, nil
		case Null:
			return ZeroIndex, nil
		}
	case Int:
		return IntIndex(r), nil
	case Double:
		return IntIndex(doubleToInt(float64(r))), nil
	case Logical:
		return LogicalIndex(r), nil
	case Str:
		return StringIndex(r), nil

	case *IntVector:
		return castInts(r.Data), nil
	case *DoubleVector:
		ints := make([]int32, len(r.Data))
		for i, d := range r.Data {
			ints[i] = doubleToInt(d)
		}
		return castInts(ints), nil
	case *LogicalVector:
		if len(r.Data) == 1 {
			return LogicalIndex(r.Data[0]), nil
		}
		return LogicalsIndex(r.Data), nil
	case *StringVector:
		if len(r.Data) == 1 {
			return StringIndex(r.Data[0]), nil
		}
		return StringsIndex(r.Data), nil

	case *IntSequence:
		return castSequence(r), nil
	case *DoubleSequence:
		return castDoubleSequence(r)
	}
	return nil, invalidSubscriptType(raw)
}

// doubleToInt converts d to an integer, or IntNA when d has no exact
// integer value.
func doubleToInt(d float64) int32 {
	if Double(d).IsNA() || math.IsNaN(d) {
		return int32(IntNA)
	}
	if d != math.Trunc(d) || d > math.MaxInt32 || d <= math.MinInt32 {
		return int32(IntNA)
	}
	return int32(d)
}

func castInts(data []int32) Index {
	switch len(data) {
	case 0:
		return ZeroIndex
	case 1:
		return IntIndex(data[0])
	}
	return IntsIndex(data)
}

func castSequence(s *IntSequence) Index {
	switch s.Length {
	case 0:
		return ZeroIndex
	case 1:
		return IntIndex(s.Start)
	}
	last := s.At(s.Length - 1)
	if s.Start >= 1 && last >= 1 {
		return SequenceIndex{Start: s.Start, Stride: s.Stride, Length: s.Length}
	}
	if s.Start == 0 && s.Stride > 0 {
		// 0:n selects the same positions as 1:n.
		if s.Length == 2 {
			return IntIndex(s.Stride)
		}
		return SequenceIndex{Start: s.Stride, Stride: s.Stride, Length: s.Length - 1}
	}
	return IntsIndex(s.Materialize().Data)
}

func castDoubleSequence(s *DoubleSequence) (Index, error) {
	if s.Stride != math.Trunc(s.Stride) || math.IsNaN(s.Stride) || math.IsInf(s.Stride, 0) {
		return nil, nonIntegralSequence(s.Stride)
	}
	last := s.At(s.Length - 1)
	if s.Length > 0 && s.Start == math.Trunc(s.Start) && fitsInt32(s.Start) && fitsInt32(last) {
		return castSequence(&IntSequence{Start: int32(s.Start), Stride: int32(s.Stride), Length: s.Length}), nil
	}
	ints := make([]int32, s.Length)
	for i := range ints {
		ints[i] = doubleToInt(s.At(i))
	}
	return castInts(ints), nil
}

func fitsInt32(d float64) bool {
	return d > math.MinInt32 && d <= math.MaxInt32
}

// ---------------------------------------------------------------------------
// Element extraction: x[[i]]
// ---------------------------------------------------------------------------

// ElementAt returns x[[raw]]: a single element selected by a positive
// scalar position or a name. It is narrower than R's [[ on atomic vectors:
// negative positions are never treated as exclusions, and an NA position
// is not answered with NA. Both are ErrSubscriptOutOfBounds there, as are
// positions past the end and unknown names. On a list an NA position or
// unknown name yields Null.
func ElementAt(x Value, raw Value) (Value, error) {
	if x == Null {
		return Null, nil
	}
	idx, err := CastPosition(raw)
	if err != nil {
		return nil, err
	}
	n, ok := lengthOf(x)
	if !ok {
		return nil, notSubsettable(x)
	}
	_, isList := x.(*List)

	var pos int
	switch i := idx.(type) {
	case IntIndex:
		if Int(i).IsNA() {
			if isList {
				return Null, nil
			}
			return nil, subscriptOutOfBounds()
		}
		if i == 0 {
			return nil, selectLessThanOne()
		}
		pos = int(i)
	case LogicalIndex:
		if Logical(i) != LogicalTrue {
			if Logical(i).IsNA() && isList {
				return Null, nil
			}
			return nil, selectLessThanOne()
		}
		pos = 1
	case StringIndex:
		names := elementNames(x)
		pos = 0
		for j, name := range names {
			if name == string(i) {
				pos = j + 1
				break
			}
		}
		if pos == 0 {
			if isList {
				return Null, nil
			}
			return nil, subscriptOutOfBounds()
		}
	case IntsIndex, SequenceIndex, LogicalsIndex, StringsIndex:
		return nil, selectMoreThanOne()
	default:
		return nil, invalidSubscriptType(Missing)
	}

	if pos < 1 || pos > n {
		return nil, subscriptOutOfBounds()
	}
	return elementOf(x, pos-1), nil
}

// lengthOf returns the length of a vector or scalar.
func lengthOf(x Value) (int, bool) {
	switch x := x.(type) {
	case Logical, Int, Double, Str:
		return 1, true
	case Vector:
		return x.Len(), true
	}
	return 0, false
}

func elementNames(x Value) []string {
	v, ok := x.(Vector)
	if !ok {
		return nil
	}
	if names := namesOf(v); names != nil {
		return names.Data
	}
	return nil
}

// elementOf returns the 0-based element i of x as a scalar value.
func elementOf(x Value, i int) Value {
	switch x := x.(type) {
	case Logical, Int, Double, Str:
		return x
	case *LogicalVector:
		return x.Data[i]
	case *IntVector:
		return Int(x.Data[i])
	case *DoubleVector:
		return Double(x.Data[i])
	case *StringVector:
		return Str(x.Data[i])
	case *List:
		return x.Data[i]
	case *IntSequence:
		return Int(x.At(i))
	case *DoubleSequence:
		return Double(x.At(i))
	}
	return Null
}
