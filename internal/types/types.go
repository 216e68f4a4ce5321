// Package types implements the ToyCComp type system: the four primitives
// (void, char, int, long) plus derived pointer and array types, and the
// combination/assignment rules the parser applies while building the AST.
package types

import "fmt"

// Kind identifies a primitive base type. Pointer and array types do not get
// their own Kind; they are represented by PointerLevel/ArrayLen on top of a
// Base primitive.
type Kind int

const (
	Invalid Kind = iota
	Void
	Char
	Int
	Long
)

func (k Kind) String() string {
	switch k {
	case Void:
		return "void"
	case Char:
		return "char"
	case Int:
		return "int"
	case Long:
		return "long"
	default:
		return "<invalid>"
	}
}

// Type is {name, bit-width, pointer-level, array-length, base-type} per the
// data model. Primitive types are singletons; pointer/array types are
// allocated fresh by PointerOf/ArrayOf and carry a Base back to the
// primitive they're built on.
type Type struct {
	Kind         Kind
	Width        int // 0, 8, 32, or 64; always 64 for PointerLevel > 0
	PointerLevel int
	ArrayLen     int // 0 for non-arrays
	Base         *Type
}

// Primitive singletons. Never mutated, never freed; every Type built on top
// of one of these keeps a Base pointer back to it.
var (
	VoidType = &Type{Kind: Void, Width: 0}
	CharType = &Type{Kind: Char, Width: 8}
	IntType  = &Type{Kind: Int, Width: 32}
	LongType = &Type{Kind: Long, Width: 64}
)

// Primitive looks up a primitive singleton by keyword spelling. ok is false
// for anything else (the caller owns reporting "not a type").
func Primitive(name string) (t *Type, ok bool) {
	switch name {
	case "void":
		return VoidType, true
	case "char":
		return CharType, true
	case "int":
		return IntType, true
	case "long":
		return LongType, true
	default:
		return nil, false
	}
}

// IsPrimitive reports whether t is one of the four singletons (pointer-level
// zero, not an array).
func (t *Type) IsPrimitive() bool {
	return t != nil && t.PointerLevel == 0 && t.ArrayLen == 0
}

// IsPointer reports whether t has at least one level of pointer indirection,
// including arrays (an array of T has pointer-level = 1+pointer-level(T)).
func (t *Type) IsPointer() bool {
	return t != nil && t.PointerLevel > 0
}

// IsVoid reports whether t is exactly the void primitive.
func (t *Type) IsVoid() bool {
	return t != nil && t.Kind == Void && t.PointerLevel == 0
}

// basePrimitive returns the primitive a derived type is ultimately built on.
func (t *Type) basePrimitive() *Type {
	if t.IsPrimitive() {
		return t
	}
	return t.Base
}

// PointerOf returns a freshly allocated pointer-to-t, width 64, one level
// deeper than t.
func PointerOf(t *Type) *Type {
	base := t
	if !t.IsPrimitive() {
		base = t.basePrimitive()
	}
	return &Type{
		Kind:         base.Kind,
		Width:        64,
		PointerLevel: t.PointerLevel + 1,
		Base:         base,
	}
}

// ArrayOf returns a freshly allocated array-of-t with the given element
// count. An array of T has pointer-level = 1+pointer-level(T), mirroring a
// pointer to the first element, and carries its own ArrayLen.
func ArrayOf(t *Type, length int) *Type {
	arr := PointerOf(t)
	arr.ArrayLen = length
	return arr
}

// Deref peels k pointer levels off t. Fatal (reported by the caller) if that
// would go negative; callers should check the returned ok.
func Deref(t *Type, k int) (result *Type, ok bool) {
	level := t.PointerLevel - k
	if level < 0 {
		return nil, false
	}
	if level == 0 {
		base := t.basePrimitive()
		return base, true
	}
	return &Type{
		Kind:         t.basePrimitive().Kind,
		Width:        64,
		PointerLevel: level,
		Base:         t.basePrimitive(),
	}, true
}

// ElemType returns the type of one element of an array/pointer type t, i.e.
// Deref(t, 1). Used to desugar array indexing and pointer OFFSET_SCALE.
func (t *Type) ElemType() *Type {
	e, ok := Deref(t, 1)
	if !ok {
		return nil
	}
	return e
}

// ElemSizeBytes returns the size in bytes of one element reached by
// dereferencing t once: 8 for pointer-to-pointer, otherwise base.Width/8.
func (t *Type) ElemSizeBytes() int {
	if t.PointerLevel > 1 {
		return 8
	}
	return t.basePrimitive().Width / 8
}

// Equal reports structural equality: same primitive kind, same pointer
// level, same array length.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.basePrimitive().Kind == other.basePrimitive().Kind &&
		t.PointerLevel == other.PointerLevel &&
		t.ArrayLen == other.ArrayLen
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	s := t.basePrimitive().Kind.String()
	for i := 0; i < t.PointerLevel; i++ {
		s += "*"
	}
	if t.ArrayLen > 0 {
		s = fmt.Sprintf("%s[%d]", s, t.ArrayLen)
	}
	return s
}

// UnifyExpr implements §4.2: equal types pass through unchanged; void in
// either operand is fatal (ok=false); otherwise the result is the wider of
// the two primitive bit-widths. Pointer-combining rules live in the parser's
// additive routine, not here.
func UnifyExpr(left, right *Type) (result *Type, ok bool) {
	if left.IsVoid() || right.IsVoid() {
		return nil, false
	}
	if left.Equal(right) {
		return left, true
	}
	if left.Width >= right.Width {
		return left, true
	}
	return right, true
}

// CheckAssign implements §4.2's assignment compatibility rules.
func CheckAssign(target, value *Type) (ok bool) {
	if target.IsVoid() || value.IsVoid() {
		return false
	}
	if target.PointerLevel != value.PointerLevel {
		// long <-> pointer is tolerated in both directions.
		if target.PointerLevel == 0 && target.Kind == Long && value.PointerLevel > 0 {
			return true
		}
		if value.PointerLevel == 0 && value.Kind == Long && target.PointerLevel > 0 {
			return true
		}
		return false
	}
	if target.PointerLevel > 0 {
		return target.basePrimitive().Kind == value.basePrimitive().Kind
	}
	if value.Width > target.Width {
		return false
	}
	return true
}

// LiteralType implements the integer-literal typing boundary from §4.3 and
// §8: values in [0,256) are char, values >= 256 are int. Signed literals are
// not representable in source and are never produced here.
func LiteralType(value int64) *Type {
	if value >= 0 && value < 256 {
		return CharType
	}
	return IntType
}
