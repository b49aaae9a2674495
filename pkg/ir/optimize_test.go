package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func methodProgram(body ...Stmt) (*Program, *MethodDef) {
	m := &MethodDef{Name: "m", Body: body}
	return &Program{Decls: []Decl{m}}, m
}

func TestDeadCodeAfterReturn(t *testing.T) {
	p, m := methodProgram(
		AssignStmt{Name: "x", Value: IntLit{Value: 1}},
		ReturnStmt{Value: Ident{Name: "x"}},
		ExprStmt{E: Call{Method: "log"}},
		ExprStmt{E: Call{Method: "more"}},
	)
	changes := DeadCodePass{}.Run(p)
	assert.Equal(t, 2, changes)
	require.Len(t, m.Body, 2)
	_, isReturn := m.Body[1].(ReturnStmt)
	assert.True(t, isReturn)
}

func TestConstantFolding(t *testing.T) {
	p, m := methodProgram(
		ReturnStmt{Value: BinaryOp{
			Op:    "+",
			Left:  BinaryOp{Op: "*", Left: IntLit{Value: 2}, Right: IntLit{Value: 3}},
			Right: IntLit{Value: 4},
		}},
	)
	changes := ConstantFoldPass{}.Run(p)
	assert.Equal(t, 2, changes)
	assert.Equal(t, ReturnStmt{Value: IntLit{Value: 10}}, m.Body[0])
}

func TestConstantFoldingLeavesDivisionByZero(t *testing.T) {
	p, m := methodProgram(
		ReturnStmt{Value: BinaryOp{Op: "/", Left: IntLit{Value: 1}, Right: IntLit{Value: 0}}},
	)
	changes := ConstantFoldPass{}.Run(p)
	assert.Equal(t, 0, changes)
	assert.Equal(t,
		ReturnStmt{Value: BinaryOp{Op: "/", Left: IntLit{Value: 1}, Right: IntLit{Value: 0}}},
		m.Body[0])
}

func TestConstantFoldingStringsAndBools(t *testing.T) {
	p, m := methodProgram(
		AssignStmt{Name: "s", Value: BinaryOp{Op: "+", Left: StringLit{Value: "a"}, Right: StringLit{Value: "b"}}},
		AssignStmt{Name: "b", Value: BinaryOp{Op: "&&", Left: BoolLit{Value: true}, Right: BoolLit{Value: false}}},
	)
	changes := ConstantFoldPass{}.Run(p)
	assert.Equal(t, 2, changes)
	assert.Equal(t, StringLit{Value: "ab"}, m.Body[0].(AssignStmt).Value)
	assert.Equal(t, BoolLit{Value: false}, m.Body[1].(AssignStmt).Value)
}

func TestAnnotationCleanup(t *testing.T) {
	p, m := methodProgram(
		AssignStmt{Name: "n", Type: SimpleType{Name: "Integer"}, Value: IntLit{Value: 1}},
		// a non-literal initializer stays annotated
		AssignStmt{Name: "x", Type: SimpleType{Name: "Integer"}, Value: Ident{Name: "n"}},
		// a mismatched annotation is never touched
		AssignStmt{Name: "w", Type: SimpleType{Name: "Numeric"}, Value: IntLit{Value: 2}},
	)
	changes := AnnotationCleanupPass{}.Run(p)
	assert.Equal(t, 1, changes)
	assert.Nil(t, m.Body[0].(AssignStmt).Type)
	assert.NotNil(t, m.Body[1].(AssignStmt).Type)
	assert.NotNil(t, m.Body[2].(AssignStmt).Type)
}

func TestUnusedAliasRemoval(t *testing.T) {
	used := &TypeAliasDecl{Name: "Id", Definition: SimpleType{Name: "Integer"}}
	viaAlias := &TypeAliasDecl{Name: "Raw", Definition: SimpleType{Name: "String"}}
	chained := &TypeAliasDecl{Name: "Name", Definition: SimpleType{Name: "Raw"}}
	unused := &TypeAliasDecl{Name: "Orphan", Definition: SimpleType{Name: "Float"}}
	method := &MethodDef{
		Name:   "find",
		Params: []Param{{Name: "id", Type: SimpleType{Name: "Id"}}},
		Return: SimpleType{Name: "Name"},
	}
	p := &Program{Decls: []Decl{used, viaAlias, chained, unused, method}}

	changes := UnusedAliasPass{}.Run(p)
	assert.Equal(t, 1, changes)

	names := make([]string, 0, len(p.Decls))
	for _, d := range p.Decls {
		names = append(names, d.DeclName())
	}
	// Raw stays: it is reachable through Name
	assert.Equal(t, []string{"Id", "Raw", "Name", "find"}, names)
}

func TestOptimizerReachesFixedPoint(t *testing.T) {
	p, m := methodProgram(
		ReturnStmt{Value: BinaryOp{Op: "+", Left: IntLit{Value: 1}, Right: IntLit{Value: 2}}},
		ExprStmt{E: Call{Method: "dead"}},
	)
	opt := NewOptimizer()
	total := opt.Optimize(p)
	assert.Equal(t, 2, total)
	assert.Equal(t, []Stmt{ReturnStmt{Value: IntLit{Value: 3}}}, m.Body)

	// a second run is a no-op
	assert.Equal(t, 0, opt.Optimize(p))
}
