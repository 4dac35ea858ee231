package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Inspector provides debugging inspection of values and activations.
// Inspection never forces promises or calls active bindings.
type Inspector struct {
	vm *VM
}

// InspectionResult contains structured information about an inspected value.
type InspectionResult struct {
	Type      string              // typeof() of the value, or "activation"
	Value     string              // Short printable rendering
	ClassName string              // Class attribute, or implicit class
	Bindings  []BindingInfo       // For activations and records: named members
	Size      int                 // For vectors: length
	Elements  []*InspectionResult // For vectors: preview of elements (limited)
}

// BindingInfo is one named member of an inspected activation or record.
type BindingInfo struct {
	Name  string
	Kind  SlotKind
	Value *InspectionResult
}

// MaxElementPreview is the maximum number of vector elements to preview.
const MaxElementPreview = 10

// DefaultMaxDepth is the default recursion depth for inspection.
const DefaultMaxDepth = 3

// NewInspector creates a new Inspector attached to the given VM.
func NewInspector(vm *VM) *Inspector {
	return &Inspector{vm: vm}
}

// Inspect inspects a value with the default maximum depth.
func (i *Inspector) Inspect(v Value) *InspectionResult {
	return i.InspectDepth(v, DefaultMaxDepth)
}

// InspectDepth inspects a value with a specified maximum recursion depth.
// When depth reaches 0, nested values are shown as summaries only.
func (i *Inspector) InspectDepth(v Value, depth int) *InspectionResult {
	if v == nil {
		return &InspectionResult{Type: "unset", Value: "<unset>"}
	}
	result := &InspectionResult{
		Type:      v.TypeName(),
		Value:     Format(v),
		ClassName: strings.Join(ClassOf(v), "/"),
	}

	switch v := v.(type) {
	case *List:
		result.Size = v.Len()
		if depth <= 0 {
			return result
		}
		var names []string
		if nv := namesOf(v); nv != nil {
			names = nv.Data
		}
		for idx, e := range v.Data {
			if idx >= MaxElementPreview {
				break
			}
			if idx < len(names) && names[idx] != "" {
				result.Bindings = append(result.Bindings, BindingInfo{
					Name: names[idx], Kind: KindOf(e), Value: i.InspectDepth(e, depth-1),
				})
				continue
			}
			result.Elements = append(result.Elements, i.InspectDepth(e, depth-1))
		}

	case Vector:
		result.Size = v.Len()
		for idx := 0; idx < v.Len() && idx < MaxElementPreview; idx++ {
			e := elementOf(v, idx)
			result.Elements = append(result.Elements, &InspectionResult{Type: e.TypeName(), Value: Format(e)})
		}

	case *Promise:
		if v.IsForced() && depth > 0 {
			result.Elements = []*InspectionResult{i.InspectDepth(v.Value(), depth-1)}
		}
	}
	return result
}

// InspectActivation inspects the bindings of act. With depth > 1 the
// enclosing chain is included as nested results.
func (i *Inspector) InspectActivation(act *Activation, depth int) *InspectionResult {
	result := &InspectionResult{
		Type:      "activation",
		Value:     fmt.Sprintf("<activation %d>", act.ID),
		ClassName: act.Shape().Name,
	}
	b := act.Bindings
	for _, name := range b.Names() {
		h, _ := b.Find(name)
		result.Bindings = append(result.Bindings, BindingInfo{
			Name:  name,
			Kind:  b.shape.Kind(int(h)),
			Value: i.InspectDepth(b.Get(h), depth-1),
		})
	}
	result.Size = len(result.Bindings)
	if depth > 1 && i.vm != nil {
		if enc := i.vm.enclosing(act); enc != nil {
			result.Elements = []*InspectionResult{i.InspectActivation(enc, depth-1)}
		}
	}
	return result
}

// Format returns a short printable rendering of v.
func Format(v Value) string {
	switch v := v.(type) {
	case Special:
		switch v {
		case Null:
			return "NULL"
		case Missing:
			return "<missing>"
		}
		return "<unbound>"
	case Logical:
		switch v {
		case LogicalTrue:
			return "TRUE"
		case LogicalFalse:
			return "FALSE"
		}
		return "NA"
	case Int:
		if v.IsNA() {
			return "NA"
		}
		return strconv.Itoa(int(v))
	case Double:
		if v.IsNA() {
			return "NA"
		}
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case Str:
		return strconv.Quote(string(v))
	case *IntSequence:
		if v.Stride == 1 || v.Stride == -1 {
			return fmt.Sprintf("%d:%d", v.Start, v.At(v.Length-1))
		}
		return fmt.Sprintf("seq(%d, by=%d, length=%d)", v.Start, v.Stride, v.Length)
	case *DoubleSequence:
		return fmt.Sprintf("seq(%g, by=%g, length=%d)", v.Start, v.Stride, v.Length)
	case Vector:
		parts := make([]string, 0, MaxElementPreview)
		for i := 0; i < v.Len() && i < MaxElementPreview; i++ {
			parts = append(parts, Format(elementOf(v, i)))
		}
		if v.Len() > MaxElementPreview {
			parts = append(parts, "...")
		}
		if _, ok := v.(*List); ok {
			return "list(" + strings.Join(parts, ", ") + ")"
		}
		return "c(" + strings.Join(parts, ", ") + ")"
	case *Function:
		if v.Builtin != nil {
			return fmt.Sprintf("<builtin %s>", v.Name)
		}
		return fmt.Sprintf("<closure %s(%s)>", v.Name, strings.Join(v.Formals, ", "))
	case *Promise:
		if v.IsForced() {
			return "<promise: " + Format(v.Value()) + ">"
		}
		return "<promise>"
	case *ActiveBinding:
		return "<active binding>"
	case *VarArgs:
		return fmt.Sprintf("<... length %d>", v.Len())
	case *S4Object:
		return fmt.Sprintf("<S4 object of class %q>", ClassOf(v)[0])
	case *External:
		return "<external>"
	}
	return "<?>"
}

// String returns a single-level representation of the inspection result.
func (r *InspectionResult) String() string {
	return r.stringWithIndent(0)
}

// stringWithIndent creates a string representation with the given indentation.
func (r *InspectionResult) stringWithIndent(indent int) string {
	var sb strings.Builder
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString(r.Type)
	sb.WriteString(": ")
	sb.WriteString(r.Value)
	sb.WriteString("\n")

	if r.ClassName != "" && r.ClassName != r.Type {
		sb.WriteString(prefix)
		sb.WriteString("  class: ")
		sb.WriteString(r.ClassName)
		sb.WriteString("\n")
	}

	if len(r.Bindings) > 0 {
		sb.WriteString(prefix)
		sb.WriteString("  bindings:\n")
		for _, b := range r.Bindings {
			sb.WriteString(prefix)
			sb.WriteString("    ")
			sb.WriteString(b.Name)
			sb.WriteString(" (")
			sb.WriteString(b.Kind.String())
			sb.WriteString("): ")
			if b.Value != nil {
				sb.WriteString(b.Value.Value)
			} else {
				sb.WriteString("<nil>")
			}
			sb.WriteString("\n")
		}
	}

	if len(r.Elements) > 0 {
		sb.WriteString(prefix)
		sb.WriteString(fmt.Sprintf("  elements (showing %d of %d):\n", len(r.Elements), r.Size))
		for idx, elem := range r.Elements {
			sb.WriteString(prefix)
			sb.WriteString(fmt.Sprintf("    [%d]: ", idx+1))
			if elem != nil {
				sb.WriteString(elem.Value)
			} else {
				sb.WriteString("<nil>")
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// PrettyPrint returns a detailed multi-line representation with full nesting.
func (r *InspectionResult) PrettyPrint() string {
	return r.prettyPrintWithIndent(0)
}

// prettyPrintWithIndent creates a detailed representation with nesting.
func (r *InspectionResult) prettyPrintWithIndent(indent int) string {
	var sb strings.Builder
	prefix := strings.Repeat("  ", indent)

	sb.WriteString(prefix)
	sb.WriteString(r.Type)
	sb.WriteString(": ")
	sb.WriteString(r.Value)
	sb.WriteString("\n")

	if r.ClassName != "" && r.ClassName != r.Type {
		sb.WriteString(prefix)
		sb.WriteString("  class: ")
		sb.WriteString(r.ClassName)
		sb.WriteString("\n")
	}

	if len(r.Bindings) > 0 {
		sb.WriteString(prefix)
		sb.WriteString("  bindings:\n")
		for _, b := range r.Bindings {
			sb.WriteString(prefix)
			sb.WriteString("    ")
			sb.WriteString(b.Name)
			sb.WriteString(":\n")
			if b.Value != nil {
				sb.WriteString(b.Value.prettyPrintWithIndent(indent + 3))
			} else {
				sb.WriteString(prefix)
				sb.WriteString("      <nil>\n")
			}
		}
	}

	if len(r.Elements) > 0 {
		sb.WriteString(prefix)
		sb.WriteString(fmt.Sprintf("  elements (showing %d of %d):\n", len(r.Elements), r.Size))
		for idx, elem := range r.Elements {
			sb.WriteString(prefix)
			sb.WriteString(fmt.Sprintf("    [%d]:\n", idx+1))
			if elem != nil {
				sb.WriteString(elem.prettyPrintWithIndent(indent + 3))
			} else {
				sb.WriteString(prefix)
				sb.WriteString("      <nil>\n")
			}
		}
	}

	return sb.String()
}
