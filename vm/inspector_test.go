package vm

import (
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null, "NULL"},
		{Missing, "<missing>"},
		{Unbound, "<unbound>"},
		{LogicalTrue, "TRUE"},
		{LogicalNA, "NA"},
		{Int(-3), "-3"},
		{IntNA, "NA"},
		{Double(2.5), "2.5"},
		{DoubleNA, "NA"},
		{Str("a\"b"), `"a\"b"`},
		{NewIntVector(1, 2), "c(1, 2)"},
		{NewStringVector("x"), `c("x")`},
		{NewList(Int(1), Null), "list(1, NULL)"},
		{NewIntSequence(3, 1), "3:1"},
		{&IntSequence{Start: 1, Stride: 2, Length: 3}, "seq(1, by=2, length=3)"},
		{&DoubleSequence{Start: 0.5, Stride: 1, Length: 2}, "seq(0.5, by=1, length=2)"},
		{NewBuiltin("sum", nil), "<closure sum()>"},
		{NewVarArgs([]Value{Int(1)}, nil), "<... length 1>"},
		{NewS4Object("Point"), `<S4 object of class "Point">`},
		{NewForcedPromise(Int(1)), "<promise: 1>"},
	}
	for _, tt := range tests {
		if got := Format(tt.v); got != tt.want {
			t.Errorf("Format(%T) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestFormatTruncatesLongVectors(t *testing.T) {
	data := make([]int32, MaxElementPreview+5)
	got := Format(NewIntVector(data...))
	if !strings.HasSuffix(got, ", ...)") {
		t.Errorf("Format = %q, want a truncated rendering", got)
	}
}

func TestInspectVector(t *testing.T) {
	in := NewInspector(NewVM())
	data := make([]float64, 25)
	r := in.Inspect(NewDoubleVector(data...))

	if r.Type != "double" || r.ClassName != "numeric" {
		t.Errorf("type/class = %q/%q", r.Type, r.ClassName)
	}
	if r.Size != 25 {
		t.Errorf("Size = %d, want 25", r.Size)
	}
	if len(r.Elements) != MaxElementPreview {
		t.Errorf("previewed %d elements, want %d", len(r.Elements), MaxElementPreview)
	}
}

func TestInspectRecord(t *testing.T) {
	in := NewInspector(NewVM())
	rec := NewRecord([]string{"a", ""}, []Value{Int(1), NewList(Str("x"))})

	r := in.Inspect(rec)
	if len(r.Bindings) != 1 || r.Bindings[0].Name != "a" || r.Bindings[0].Kind != KindInteger {
		t.Fatalf("bindings = %+v", r.Bindings)
	}
	if len(r.Elements) != 1 || r.Elements[0].Type != "list" {
		t.Fatalf("elements = %+v", r.Elements)
	}

	// At depth 0 nested values are summarized only.
	shallow := in.InspectDepth(rec, 0)
	if len(shallow.Bindings) != 0 || len(shallow.Elements) != 0 {
		t.Error("depth 0 expanded members")
	}
}

func TestInspectPromiseDoesNotForce(t *testing.T) {
	vm := NewVM()
	in := NewInspector(vm)
	expr := &constExpr{v: Int(1)}
	p := vm.NewPromise(expr, vm.Global)

	r := in.Inspect(p)
	if r.Value != "<promise>" || len(r.Elements) != 0 {
		t.Errorf("unforced promise = %+v", r)
	}
	if expr.evals != 0 {
		t.Error("inspection forced the promise")
	}

	if _, err := vm.Force(p); err != nil {
		t.Fatal(err)
	}
	r = in.Inspect(p)
	if len(r.Elements) != 1 || r.Elements[0].Value != "1" {
		t.Errorf("forced promise = %+v", r)
	}
}

func TestInspectActivation(t *testing.T) {
	vm := NewVM()
	in := NewInspector(vm)
	mustWrite(t, vm, vm.Global, "g", Str("top"))
	act := newChild(vm, vm.Global, "f")
	mustWrite(t, vm, act, "n", Int(2))
	mustWrite(t, vm, act, "d", Double(0.5))

	r := in.InspectActivation(act, 2)
	if r.Type != "activation" || r.ClassName != "f" {
		t.Errorf("type/class = %q/%q", r.Type, r.ClassName)
	}
	if r.Size != 2 {
		t.Fatalf("Size = %d, want 2", r.Size)
	}
	if r.Bindings[0].Name != "n" || r.Bindings[0].Kind != KindInteger {
		t.Errorf("first binding = %+v", r.Bindings[0])
	}
	if r.Bindings[1].Name != "d" || r.Bindings[1].Kind != KindFloat {
		t.Errorf("second binding = %+v", r.Bindings[1])
	}
	if len(r.Elements) != 1 || r.Elements[0].ClassName != "R_GlobalEnv" {
		t.Fatalf("enclosing chain = %+v", r.Elements)
	}

	out := r.PrettyPrint()
	for _, want := range []string{"activation", "n:", "d:", "R_GlobalEnv", "g:"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrettyPrint missing %q:\n%s", want, out)
		}
	}
	if s := r.String(); !strings.Contains(s, "n (integer): 2") {
		t.Errorf("String = %q", s)
	}
}
