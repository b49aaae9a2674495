package ir

import (
	"fmt"
	"strings"
)

// TypeNode is the closed set of type expressions. Nodes are immutable once
// constructed; the constructors below enforce the structural invariants
// (unions and intersections have at least two members, nullable wrapping is
// idempotent).
type TypeNode interface {
	typeNode()
	// Equal is structural equality.
	Equal(TypeNode) bool
	// ReferencedSymbols returns every type name mentioned anywhere in the
	// node, including inside generic arguments and function signatures.
	ReferencedSymbols() []string
	fmt.Stringer
}

// SimpleType is a bare type name such as String or User.
type SimpleType struct {
	Name string
}

// GenericType is an applied type constructor such as Array<String>.
type GenericType struct {
	Base string
	Args []TypeNode
}

// UnionType is a choice of at least two alternatives, A | B.
type UnionType struct {
	Members []TypeNode
}

// IntersectionType requires all members at once, A & B.
type IntersectionType struct {
	Members []TypeNode
}

// NullableType admits nil in addition to the inner type, T?.
type NullableType struct {
	Inner TypeNode
}

// FunctionType is (T1, T2) -> R.
type FunctionType struct {
	Params []TypeNode
	Return TypeNode
}

// TupleType is a fixed-length heterogeneous sequence, [T1, T2].
type TupleType struct {
	Elems []TypeNode
}

// LiteralType is a singleton type denoted by a literal, such as 42 or
// "admin". Value holds the literal's source text.
type LiteralType struct {
	Value string
}

func (SimpleType) typeNode()       {}
func (GenericType) typeNode()      {}
func (UnionType) typeNode()        {}
func (IntersectionType) typeNode() {}
func (NullableType) typeNode()     {}
func (FunctionType) typeNode()     {}
func (TupleType) typeNode()        {}
func (LiteralType) typeNode()      {}

// NewUnion builds a union, collapsing a single member to the member itself.
func NewUnion(members []TypeNode) TypeNode {
	if len(members) == 1 {
		return members[0]
	}
	return UnionType{Members: members}
}

// NewIntersection builds an intersection with the same collapsing rule.
func NewIntersection(members []TypeNode) TypeNode {
	if len(members) == 1 {
		return members[0]
	}
	return IntersectionType{Members: members}
}

// NewNullable wraps t, leaving an already-nullable type untouched.
func NewNullable(t TypeNode) TypeNode {
	if _, ok := t.(NullableType); ok {
		return t
	}
	return NullableType{Inner: t}
}

func (t SimpleType) Equal(o TypeNode) bool {
	ot, ok := o.(SimpleType)
	return ok && t.Name == ot.Name
}

func (t GenericType) Equal(o TypeNode) bool {
	ot, ok := o.(GenericType)
	if !ok || t.Base != ot.Base || len(t.Args) != len(ot.Args) {
		return false
	}
	for i, a := range t.Args {
		if !a.Equal(ot.Args[i]) {
			return false
		}
	}
	return true
}

func typesEqual(a, b []TypeNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t UnionType) Equal(o TypeNode) bool {
	ot, ok := o.(UnionType)
	return ok && typesEqual(t.Members, ot.Members)
}

func (t IntersectionType) Equal(o TypeNode) bool {
	ot, ok := o.(IntersectionType)
	return ok && typesEqual(t.Members, ot.Members)
}

func (t NullableType) Equal(o TypeNode) bool {
	ot, ok := o.(NullableType)
	return ok && t.Inner.Equal(ot.Inner)
}

func (t FunctionType) Equal(o TypeNode) bool {
	ot, ok := o.(FunctionType)
	return ok && typesEqual(t.Params, ot.Params) && t.Return.Equal(ot.Return)
}

func (t TupleType) Equal(o TypeNode) bool {
	ot, ok := o.(TupleType)
	return ok && typesEqual(t.Elems, ot.Elems)
}

func (t LiteralType) Equal(o TypeNode) bool {
	ot, ok := o.(LiteralType)
	return ok && t.Value == ot.Value
}

func (t SimpleType) ReferencedSymbols() []string {
	return []string{t.Name}
}

func (t GenericType) ReferencedSymbols() []string {
	syms := []string{t.Base}
	for _, a := range t.Args {
		syms = append(syms, a.ReferencedSymbols()...)
	}
	return syms
}

func referencedIn(nodes []TypeNode) []string {
	var syms []string
	for _, n := range nodes {
		syms = append(syms, n.ReferencedSymbols()...)
	}
	return syms
}

func (t UnionType) ReferencedSymbols() []string        { return referencedIn(t.Members) }
func (t IntersectionType) ReferencedSymbols() []string { return referencedIn(t.Members) }
func (t NullableType) ReferencedSymbols() []string     { return t.Inner.ReferencedSymbols() }

func (t FunctionType) ReferencedSymbols() []string {
	return append(referencedIn(t.Params), t.Return.ReferencedSymbols()...)
}

func (t TupleType) ReferencedSymbols() []string { return referencedIn(t.Elems) }

func (t LiteralType) ReferencedSymbols() []string { return nil }

// String renders the node in TRB type syntax. Parsing the result yields an
// equal node, up to the single-member collapsing rule.
func (t SimpleType) String() string { return t.Name }

func (t GenericType) String() string {
	return fmt.Sprintf("%s<%s>", t.Base, joinTypes(t.Args, ", "))
}

func (t UnionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		switch m.(type) {
		// a bare function's return type would swallow the rest of the chain
		case FunctionType:
			parts[i] = "(" + m.String() + ")"
		default:
			parts[i] = m.String()
		}
	}
	return strings.Join(parts, " | ")
}

func (t IntersectionType) String() string {
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		switch m.(type) {
		// unions bind looser than intersections; functions swallow the chain
		case UnionType, FunctionType:
			parts[i] = "(" + m.String() + ")"
		default:
			parts[i] = m.String()
		}
	}
	return strings.Join(parts, " & ")
}

func (t NullableType) String() string {
	switch t.Inner.(type) {
	case UnionType, IntersectionType, FunctionType:
		return "(" + t.Inner.String() + ")?"
	default:
		return t.Inner.String() + "?"
	}
}

func (t FunctionType) String() string {
	return fmt.Sprintf("(%s) -> %s", joinTypes(t.Params, ", "), t.Return)
}

func (t TupleType) String() string {
	return "[" + joinTypes(t.Elems, ", ") + "]"
}

func (t LiteralType) String() string { return t.Value }

func joinTypes(nodes []TypeNode, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
