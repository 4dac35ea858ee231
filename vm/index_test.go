package vm

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestCastPosition(t *testing.T) {
	tests := []struct {
		name string
		raw  Value
		want Index
	}{
		{"missing", Missing, AllPositions{}},
		{"null", Null, ZeroIndex},
		{"int", Int(4), IntIndex(4)},
		{"integral double", Double(3.0), IntIndex(3)},
		{"fractional double", Double(3.5), IntIndex(IntNA)},
		{"nan", Double(math.NaN()), IntIndex(IntNA)},
		{"na double", DoubleNA, IntIndex(IntNA)},
		{"huge double", Double(1e12), IntIndex(IntNA)},
		{"logical", LogicalTrue, LogicalIndex(LogicalTrue)},
		{"string", Str("a"), StringIndex("a")},
		{"length-1 int vector", NewIntVector(2), IntIndex(2)},
		{"empty int vector", NewIntVector(), ZeroIndex},
		{"empty double vector", NewDoubleVector(), ZeroIndex},
		{"double vector", NewDoubleVector(1, 2.5, 3), IntsIndex{1, int32(IntNA), 3}},
		{"int vector", NewIntVector(1, -2), IntsIndex{1, -2}},
		{"length-1 logical vector", NewLogicalVector(LogicalFalse), LogicalIndex(LogicalFalse)},
		{"logical vector", NewLogicalVector(LogicalTrue, LogicalNA), LogicalsIndex{LogicalTrue, LogicalNA}},
		{"string vector", NewStringVector("a", "b"), StringsIndex{"a", "b"}},
		{"positive sequence", NewIntSequence(2, 5), SequenceIndex{Start: 2, Stride: 1, Length: 4}},
		{"descending sequence", NewIntSequence(5, 2), SequenceIndex{Start: 5, Stride: -1, Length: 4}},
		{"zero-based sequence", NewIntSequence(0, 3), SequenceIndex{Start: 1, Stride: 1, Length: 3}},
		{"zero-one sequence", NewIntSequence(0, 1), IntIndex(1)},
		{"length-1 sequence", NewIntSequence(7, 7), IntIndex(7)},
		{"negative sequence", NewIntSequence(-1, 1), IntsIndex{-1, 0, 1}},
		{"integral double sequence", &DoubleSequence{Start: 1, Stride: 2, Length: 3}, SequenceIndex{Start: 1, Stride: 2, Length: 3}},
		{"fractional start", &DoubleSequence{Start: 0.5, Stride: 1, Length: 2}, IntsIndex{int32(IntNA), int32(IntNA)}},
		{"empty double sequence", &DoubleSequence{Start: 1, Stride: 1, Length: 0}, ZeroIndex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CastPosition(tt.raw)
			if err != nil {
				t.Fatalf("CastPosition: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CastPosition(%s) = %#v, want %#v", Format(tt.raw), got, tt.want)
			}
		})
	}
}

func TestCastPositionErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  Value
		want error
	}{
		{"fractional stride", &DoubleSequence{Start: 1, Stride: 0.5, Length: 3}, ErrNonIntegralSequenceIndex},
		{"nan stride", &DoubleSequence{Start: 1, Stride: math.NaN(), Length: 3}, ErrNonIntegralSequenceIndex},
		{"infinite stride", &DoubleSequence{Start: 1, Stride: math.Inf(1), Length: 3}, ErrNonIntegralSequenceIndex},
		{"list", NewList(Int(1)), ErrInvalidSubscriptType},
		{"function", NewBuiltin("f", func(vm *VM, args []Value) (Value, error) { return Null, nil }), ErrInvalidSubscriptType},
	}
	for _, tt := range tests {
		if _, err := CastPosition(tt.raw); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestSequenceIndexAt(t *testing.T) {
	s := SequenceIndex{Start: 3, Stride: 3, Length: 4}
	for i, want := range []int32{3, 6, 9, 12} {
		if got := s.At(i); got != want {
			t.Errorf("At(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestElementAt(t *testing.T) {
	ints := NewIntVector(10, 20, 30)
	ints.SetAttributes(NewAttributes())
	ints.Attributes().Set(AttrNames, NewStringVector("a", "b", "c"))
	list := NewRecord([]string{"x", "y"}, []Value{Str("one"), Str("two")})

	tests := []struct {
		name    string
		x       Value
		raw     Value
		want    Value
		wantErr error
	}{
		{"int position", ints, Int(2), Int(20), nil},
		{"double position", ints, Double(3), Int(30), nil},
		{"name", ints, Str("a"), Int(10), nil},
		{"true", ints, LogicalTrue, Int(10), nil},
		{"list position", list, Int(2), Str("two"), nil},
		{"list name", list, Str("x"), Str("one"), nil},
		{"sequence element", NewIntSequence(4, 6), Int(3), Int(6), nil},
		{"scalar", Double(1.5), Int(1), Double(1.5), nil},
		{"null", Null, Int(5), Null, nil},

		{"na on list", list, Double(2.5), Null, nil},
		{"unknown name on list", list, Str("zz"), Null, nil},
		{"na logical on list", list, LogicalNA, Null, nil},

		{"past end", ints, Int(4), nil, ErrSubscriptOutOfBounds},
		{"negative", ints, Int(-1), nil, ErrSubscriptOutOfBounds},
		{"na on vector", ints, Double(1.5), nil, ErrSubscriptOutOfBounds},
		{"int na on vector", ints, IntNA, nil, ErrSubscriptOutOfBounds},
		{"negative on pair", NewIntVector(1, 2), Int(-1), nil, ErrSubscriptOutOfBounds},
		{"unknown name", ints, Str("zz"), nil, ErrSubscriptOutOfBounds},
		{"zero", ints, Int(0), nil, ErrSubscriptOutOfBounds},
		{"null index", ints, Null, nil, ErrSubscriptOutOfBounds},
		{"false", ints, LogicalFalse, nil, ErrSubscriptOutOfBounds},
		{"several", ints, NewIntVector(1, 2), nil, ErrSubscriptOutOfBounds},
		{"missing index", ints, Missing, nil, ErrInvalidSubscriptType},
		{"non-vector", &External{}, Int(1), nil, ErrNotApplicable},
	}
	for _, tt := range tests {
		got, err := ElementAt(tt.x, tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %v, %v; want %v", tt.name, got, err, tt.want)
		}
	}
}

func TestElementAtMessages(t *testing.T) {
	x := NewIntVector(1, 2)
	_, err := ElementAt(x, Int(0))
	if err == nil || err.Error() != "attempt to select less than one element" {
		t.Errorf("[[0]] = %v", err)
	}
	_, err = ElementAt(x, NewIntVector(1, 2))
	if err == nil || err.Error() != "attempt to select more than one element" {
		t.Errorf("[[1:2]] = %v", err)
	}
	_, err = ElementAt(x, Int(9))
	if err == nil || err.Error() != "subscript out of bounds" {
		t.Errorf("[[9]] = %v", err)
	}
}
