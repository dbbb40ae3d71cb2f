// Package types implements the Compiscript type algebra: a small closed set
// of primitive, array, class and function types with assignability and
// equality-compatibility rules. It mirrors the tagged-interface style of
// the teacher's pkg/ctypes (Type interface + one struct per variant, marker
// methods, a structural Equal), adapted from C's struct/pointer/array types
// to Compiscript's primitive/array/class/function types.
package types

// Type is the interface implemented by every Compiscript type variant.
type Type interface {
	implType()
	// Name returns the canonical string form used in error messages and in
	// the serialized symbol tree (§4.2): primitives by name, arrays as
	// "T[]", functions as "(T1,...,Tn) -> R", classes by their class name.
	Name() string
}

// Integer is the 4-byte signed integer primitive.
type Integer struct{}

// String is the Compiscript string primitive.
type String struct{}

// Boolean is the Compiscript boolean primitive.
type Boolean struct{}

// Null is the type of the literal `null`; it is assignable to any class or
// array type and equality-compatible with anything.
type Null struct{}

// Array is a homogeneous array of Elem.
type Array struct {
	Elem Type
}

// Class names a declared class by its identifier. Two Class values with the
// same Name are the same type; fields/methods live on the symbol, not here.
type Class struct {
	ClassName string
}

// Function is the type of a function or method value: an ordered parameter
// type list plus a return type.
type Function struct {
	Params []Type
	Ret    Type
}

func (Integer) implType()  {}
func (String) implType()   {}
func (Boolean) implType()  {}
func (Null) implType()     {}
func (Array) implType()    {}
func (Class) implType()    {}
func (Function) implType() {}

func (Integer) Name() string { return "integer" }
func (String) Name() string  { return "string" }
func (Boolean) Name() string { return "boolean" }
func (Null) Name() string    { return "null" }

func (a Array) Name() string {
	if a.Elem == nil {
		return "null[]"
	}
	return a.Elem.Name() + "[]"
}

func (c Class) Name() string { return c.ClassName }

func (f Function) Name() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.Name()
	}
	s += ") -> "
	if f.Ret == nil {
		s += "null"
	} else {
		s += f.Ret.Name()
	}
	return s
}

// singletons for callers that don't need fresh allocations.
var (
	INTEGER Type = Integer{}
	STRING  Type = String{}
	BOOLEAN Type = Boolean{}
	NULL    Type = Null{}
)

// Equal reports structural equality by name, matching the source's
// `Type.is_same` (name comparison) generalized to structural recursion for
// Array/Function so that e.g. integer[][] compares correctly against itself.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch ta := a.(type) {
	case Array:
		tb, ok := b.(Array)
		return ok && Equal(ta.Elem, tb.Elem)
	case Function:
		tb, ok := b.(Function)
		if !ok || len(ta.Params) != len(tb.Params) || !Equal(ta.Ret, tb.Ret) {
			return false
		}
		for i := range ta.Params {
			if !Equal(ta.Params[i], tb.Params[i]) {
				return false
			}
		}
		return true
	default:
		return a.Name() == b.Name()
	}
}

// Assignable reports whether a value of type src may be stored into a
// location of type dst without a cast (§4.1): name equality, or src is Null
// and dst is an Array or Class.
func Assignable(src, dst Type) bool {
	if src == nil || dst == nil {
		return false
	}
	if Equal(src, dst) {
		return true
	}
	if _, isNull := src.(Null); isNull {
		switch dst.(type) {
		case Array, Class:
			return true
		}
	}
	return false
}

// EqCompatible reports whether a and b may be compared with == or !=: name
// equality, or either side is Null.
func EqCompatible(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}
	if _, ok := a.(Null); ok {
		return true
	}
	if _, ok := b.(Null); ok {
		return true
	}
	return Equal(a, b)
}

// SizeOf returns the byte size used for offset/layout arithmetic (§4.1):
// 4 bytes for integer/boolean, 8 bytes for string/array/class/function.
func SizeOf(t Type) int {
	switch t.(type) {
	case Integer, Boolean:
		return 4
	default:
		return 8
	}
}

// FromText parses a base type name plus a count of trailing "[]" array
// dimensions into a Type, e.g. FromText("integer", 2) -> integer[][].
func FromText(name string, dims int) Type {
	var base Type
	switch name {
	case "integer":
		base = Integer{}
	case "string":
		base = String{}
	case "boolean":
		base = Boolean{}
	case "null":
		base = Null{}
	default:
		base = Class{ClassName: name}
	}
	for i := 0; i < dims; i++ {
		base = Array{Elem: base}
	}
	return base
}
