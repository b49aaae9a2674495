package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trb-lang/trb/pkg/ir"
)

func TestSubtypeHierarchy(t *testing.T) {
	assert.True(t, SubtypeOf("Integer", "Integer"))
	assert.True(t, SubtypeOf("Integer", "Numeric"))
	assert.True(t, SubtypeOf("Integer", "Object"))
	assert.True(t, SubtypeOf("Float", "Numeric"))
	assert.True(t, SubtypeOf("Array", "Enumerable"))
	assert.False(t, SubtypeOf("String", "Numeric"))
	assert.False(t, SubtypeOf("Numeric", "Integer"))

	// nil is compatible with everything
	for _, sup := range []string{"Integer", "String", "User", "Object"} {
		assert.True(t, SubtypeOf("nil", sup))
	}
}

func TestFresherNamesArePerPrefix(t *testing.T) {
	f := NewFresher()
	assert.Equal(t, "x$1", f.Fresh("x").Name)
	assert.Equal(t, "x$2", f.Fresh("x").Name)
	assert.Equal(t, "y$1", f.Fresh("y").Name)
}

func TestUnifyEquality(t *testing.T) {
	x := Var{Name: "x$1"}
	sol := NewSolver().Solve([]Constraint{
		TypeEqual{Left: x, Right: Concrete{Name: "Integer"}},
	})
	require.Empty(t, sol.Errors)
	assert.Equal(t, Concrete{Name: "Integer"}, sol.Subs.Resolve(x))
}

func TestUnifyThroughGenerics(t *testing.T) {
	x := Var{Name: "x$1"}
	sol := NewSolver().Solve([]Constraint{
		TypeEqual{
			Left:  App{Base: "Array", Args: []Type{x}},
			Right: App{Base: "Array", Args: []Type{Concrete{Name: "String"}}},
		},
	})
	require.Empty(t, sol.Errors)
	assert.Equal(t, Concrete{Name: "String"}, sol.Subs.Resolve(x))
}

func TestUnifyTransitive(t *testing.T) {
	x := Var{Name: "x$1"}
	y := Var{Name: "y$1"}
	sol := NewSolver().Solve([]Constraint{
		TypeEqual{Left: x, Right: y},
		TypeEqual{Left: y, Right: Concrete{Name: "Float"}},
	})
	require.Empty(t, sol.Errors)
	assert.Equal(t, Concrete{Name: "Float"}, sol.Subs.Resolve(x))
	assert.Equal(t, Concrete{Name: "Float"}, sol.Subs.Resolve(y))
}

func TestUnifyMismatchCollected(t *testing.T) {
	sol := NewSolver().Solve([]Constraint{
		TypeEqual{Left: Concrete{Name: "Integer"}, Right: Concrete{Name: "String"}},
		TypeEqual{Left: Concrete{Name: "Float"}, Right: Concrete{Name: "Symbol"}},
	})
	// both failures come back in one pass
	assert.Len(t, sol.Errors, 2)
}

func TestOccursCheckRejectsInfiniteTypes(t *testing.T) {
	x := Var{Name: "x$1"}
	sol := NewSolver().Solve([]Constraint{
		TypeEqual{Left: x, Right: App{Base: "Array", Args: []Type{x}}},
	})
	require.Len(t, sol.Errors, 1)
	assert.Contains(t, sol.Errors[0], "occurs check")
}

func TestOccursCheckIsFullyRecursive(t *testing.T) {
	// x deep inside nested generic arguments still triggers the check
	x := Var{Name: "x$1"}
	nested := App{Base: "Hash", Args: []Type{
		Concrete{Name: "String"},
		App{Base: "Array", Args: []Type{x}},
	}}
	assert.Contains(t, nested.FreeVars(), "x$1")

	sol := NewSolver().Solve([]Constraint{
		TypeEqual{Left: x, Right: nested},
	})
	require.Len(t, sol.Errors, 1)
	assert.Contains(t, sol.Errors[0], "occurs check")
}

func TestSubtypeConstraintBindsVariables(t *testing.T) {
	x := Var{Name: "x$1"}
	sol := NewSolver().Solve([]Constraint{
		Subtype{Sub: x, Sup: Concrete{Name: "Numeric"}},
	})
	require.Empty(t, sol.Errors)
	assert.Equal(t, Concrete{Name: "Numeric"}, sol.Subs.Resolve(x))
}

func TestSubtypeConstraintFailure(t *testing.T) {
	sol := NewSolver().Solve([]Constraint{
		Subtype{Sub: Concrete{Name: "String"}, Sup: Concrete{Name: "Numeric"}},
	})
	require.Len(t, sol.Errors, 1)
	assert.Contains(t, sol.Errors[0], "String is not a subtype of Numeric")
}

func TestUnboundVariablesDefaultToObject(t *testing.T) {
	x := Var{Name: "x$1"}
	sol := NewSolver().Solve([]Constraint{
		Subtype{Sub: x, Sup: Var{Name: "y$1"}},
	})
	// x was bound to y, y stayed free, both resolve to Object
	assert.Equal(t, Concrete{Name: "Object"}, sol.Subs.Resolve(x))
}

func TestHasPropertyChecks(t *testing.T) {
	sol := NewSolver().Solve([]Constraint{
		HasProperty{Type: Concrete{Name: "String"}, Property: "length", PropertyType: Concrete{Name: "Integer"}},
	})
	assert.Empty(t, sol.Errors)

	sol = NewSolver().Solve([]Constraint{
		HasProperty{Type: Concrete{Name: "String"}, Property: "wings", PropertyType: Concrete{Name: "Integer"}},
	})
	require.Len(t, sol.Errors, 1)
	assert.Contains(t, sol.Errors[0], "no property wings")
}

func TestFromIRAndBack(t *testing.T) {
	node := ir.GenericType{Base: "Array", Args: []ir.TypeNode{ir.SimpleType{Name: "User"}}}
	flat := FromIR(node)
	assert.Equal(t, App{Base: "Array", Args: []Type{Concrete{Name: "User"}}}, flat)
	assert.Equal(t, node, ToIR(flat))

	// structure the solver does not reason about flattens to its rendering
	union := ir.UnionType{Members: []ir.TypeNode{ir.SimpleType{Name: "A"}, ir.SimpleType{Name: "B"}}}
	assert.Equal(t, Concrete{Name: "A | B"}, FromIR(union))
}

func TestConjunctionFeedsSAT(t *testing.T) {
	cs := []Constraint{
		Subtype{Sub: Concrete{Name: "Integer"}, Sup: Concrete{Name: "Numeric"}},
		TypeEqual{Left: Var{Name: "x$1"}, Right: Concrete{Name: "Integer"}},
	}
	f := Conjunction(cs)
	assert.Contains(t, f.String(), "Integer <: Numeric")
	assert.Contains(t, f.String(), "x$1 = Integer")
}
