package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trb-lang/trb/pkg/ir"
)

func TestInferArithmeticParams(t *testing.T) {
	// def add(a, b) = a + b  -- both params and the return become Numeric
	m := &ir.MethodDef{
		Name:   "add",
		Params: []ir.Param{{Name: "a"}, {Name: "b"}},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.BinaryOp{Op: "+", Left: ir.Ident{Name: "a"}, Right: ir.Ident{Name: "b"}}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed(), "errors: %v", result.Errors)
	assert.Equal(t, ir.SimpleType{Name: "Numeric"}, result.Params[0].Type)
	assert.Equal(t, ir.SimpleType{Name: "Numeric"}, result.Params[1].Type)
	assert.Equal(t, ir.SimpleType{Name: "Numeric"}, result.Return)
}

func TestInferLiteralReturn(t *testing.T) {
	m := &ir.MethodDef{
		Name: "greeting",
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.StringLit{Value: "hi"}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed())
	assert.Equal(t, ir.SimpleType{Name: "String"}, result.Return)
}

func TestInferComparisonYieldsBoolean(t *testing.T) {
	m := &ir.MethodDef{
		Name:   "adult",
		Params: []ir.Param{{Name: "age", Type: ir.SimpleType{Name: "Integer"}}},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.BinaryOp{Op: ">=", Left: ir.Ident{Name: "age"}, Right: ir.IntLit{Value: 18}}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed())
	assert.Equal(t, ir.SimpleType{Name: "Boolean"}, result.Return)
}

func TestInferBuiltinMethodTable(t *testing.T) {
	m := &ir.MethodDef{
		Name:   "describe",
		Params: []ir.Param{{Name: "x"}},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.Call{Recv: ir.Ident{Name: "x"}, Method: "to_s"}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed())
	assert.Equal(t, ir.SimpleType{Name: "String"}, result.Return)
	// the receiver was never constrained, so it defaults
	assert.Equal(t, ir.SimpleType{Name: "Object"}, result.Params[0].Type)
}

func TestInferArrayLiteral(t *testing.T) {
	m := &ir.MethodDef{
		Name: "nums",
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.ArrayLit{Elems: []ir.Expr{
				ir.IntLit{Value: 1}, ir.IntLit{Value: 2},
			}}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed(), "errors: %v", result.Errors)
	assert.Equal(t,
		ir.GenericType{Base: "Array", Args: []ir.TypeNode{ir.SimpleType{Name: "Integer"}}},
		result.Return)
}

func TestInferImplicitLastExpressionReturn(t *testing.T) {
	m := &ir.MethodDef{
		Name:   "double",
		Params: []ir.Param{{Name: "n", Type: ir.SimpleType{Name: "Integer"}}},
		Body: []ir.Stmt{
			ir.ExprStmt{E: ir.BinaryOp{Op: "*", Left: ir.Ident{Name: "n"}, Right: ir.IntLit{Value: 2}}},
		},
	}
	result := InferMethod(m)
	require.False(t, result.Failed())
	assert.Equal(t, ir.SimpleType{Name: "Numeric"}, result.Return)
}

func TestInferAnnotatedAssignmentMismatch(t *testing.T) {
	// s: String = 1  must fail the subtype check
	m := &ir.MethodDef{
		Name: "bad",
		Body: []ir.Stmt{
			ir.AssignStmt{Name: "s", Type: ir.SimpleType{Name: "String"}, Value: ir.IntLit{Value: 1}},
		},
	}
	result := InferMethod(m)
	require.True(t, result.Failed())
	assert.Contains(t, result.Errors[0], "not a subtype")
}

func TestInferReturnAgainstAnnotation(t *testing.T) {
	m := &ir.MethodDef{
		Name:   "id",
		Return: ir.SimpleType{Name: "String"},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.IntLit{Value: 7}},
		},
	}
	result := InferMethod(m)
	require.True(t, result.Failed())
	assert.Contains(t, result.Errors[0], "Integer is not a subtype of String")
}

func TestInferenceIdempotence(t *testing.T) {
	m := &ir.MethodDef{
		Name:   "add",
		Params: []ir.Param{{Name: "a"}, {Name: "b"}},
		Body: []ir.Stmt{
			ir.ReturnStmt{Value: ir.BinaryOp{Op: "+", Left: ir.Ident{Name: "a"}, Right: ir.Ident{Name: "b"}}},
		},
	}
	first := InferMethod(m)
	require.False(t, first.Failed())
	assert.Positive(t, first.FreshVars)
	assert.Positive(t, first.Constraints)

	// feed the inferred signature back in
	first.Annotate()
	second := InferMethod(m)
	require.False(t, second.Failed())

	// identical signature, zero new constraints or variables
	assert.Equal(t, first.Params, second.Params)
	assert.True(t, first.Return.Equal(second.Return))
	assert.Zero(t, second.Constraints)
	assert.Zero(t, second.FreshVars)
}

func TestInferProgramCoversClassMethods(t *testing.T) {
	p := &ir.Program{Decls: []ir.Decl{
		&ir.ClassDecl{
			Name: "Calc",
			Methods: []*ir.MethodDef{
				{Name: "one", Body: []ir.Stmt{ir.ReturnStmt{Value: ir.IntLit{Value: 1}}}},
			},
		},
		&ir.MethodDef{Name: "two", Body: []ir.Stmt{ir.ReturnStmt{Value: ir.IntLit{Value: 2}}}},
	}}
	results := InferProgram(p)
	require.Len(t, results, 2)
	assert.Equal(t, "one", results[0].Method.Name)
	assert.Equal(t, "two", results[1].Method.Name)
}
