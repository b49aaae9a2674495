// Package infer produces method signatures for unannotated TRB methods by
// walking method bodies, emitting type constraints, and asking the
// constraint solver for a substitution. Inference failures are attached to
// the result, never thrown; the caller decides whether they are fatal.
package infer

import (
	"fmt"

	"github.com/trb-lang/trb/pkg/constraint"
	"github.com/trb-lang/trb/pkg/ir"
)

// builtinReturns maps well-known method names to their return types.
var builtinReturns = map[string]string{
	"to_s":     "String",
	"to_i":     "Integer",
	"to_f":     "Float",
	"to_sym":   "Symbol",
	"length":   "Integer",
	"size":     "Integer",
	"count":    "Integer",
	"upcase":   "String",
	"downcase": "String",
	"strip":    "String",
	"abs":      "Numeric",
	"empty":    "Boolean",
	"include":  "Boolean",
}

var arithmeticOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
}

var booleanOps = map[string]bool{
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true,
}

// Result is one method's inference outcome.
type Result struct {
	Method *ir.MethodDef
	Params []ir.Param
	Return ir.TypeNode
	Errors []string
	// Constraints and FreshVars count what this run generated. A method
	// that is already fully annotated generates zero of both.
	Constraints int
	FreshVars   int
}

// Failed reports whether inference produced any errors.
func (r Result) Failed() bool { return len(r.Errors) > 0 }

// Annotate writes the inferred signature back into the method, so a later
// inference run (or the RBS renderer) sees a fully annotated method.
func (r Result) Annotate() {
	r.Method.Params = r.Params
	r.Method.Return = r.Return
}

// engine is the per-method inference state: a local environment, the
// constraint batch, and eagerly collected errors for relations already
// fully concrete at emission time.
type engine struct {
	fresher     *constraint.Fresher
	env         map[string]constraint.Type
	constraints []constraint.Constraint
	errors      []string
	freshCount  int
}

// InferMethod infers (or re-checks) one method's signature.
func InferMethod(m *ir.MethodDef) Result {
	e := &engine{
		fresher: constraint.NewFresher(),
		env:     map[string]constraint.Type{},
	}

	params := make([]constraint.Type, len(m.Params))
	for i, p := range m.Params {
		if p.Type != nil {
			params[i] = constraint.FromIR(p.Type)
		} else {
			params[i] = e.fresh(p.Name)
		}
		e.env[p.Name] = params[i]
	}

	var ret constraint.Type
	if m.Return != nil {
		ret = constraint.FromIR(m.Return)
	} else {
		ret = e.fresh("return")
	}

	e.walkBody(m.Body, ret)

	sol := constraint.NewSolver().Solve(e.constraints)

	result := Result{
		Method:      m,
		Errors:      append(e.errors, sol.Errors...),
		Constraints: len(e.constraints),
		FreshVars:   e.freshCount,
	}
	result.Params = make([]ir.Param, len(m.Params))
	for i, p := range m.Params {
		result.Params[i] = ir.Param{Name: p.Name, Type: constraint.ToIR(sol.Subs.Resolve(params[i]))}
	}
	result.Return = constraint.ToIR(sol.Subs.Resolve(ret))
	return result
}

// InferProgram infers every method in the program, top-level and inside
// classes, in declaration order.
func InferProgram(p *ir.Program) []Result {
	var results []Result
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ir.MethodDef:
			results = append(results, InferMethod(d))
		case *ir.ClassDecl:
			for _, m := range d.Methods {
				results = append(results, InferMethod(m))
			}
		}
	}
	return results
}

func (e *engine) fresh(prefix string) constraint.Var {
	e.freshCount++
	return e.fresher.Fresh(prefix)
}

func (e *engine) walkBody(body []ir.Stmt, ret constraint.Type) {
	var lastExpr constraint.Type
	explicitReturn := false
	for i, s := range body {
		switch s := s.(type) {
		case ir.ExprStmt:
			t := e.inferExpr(s.E)
			if i == len(body)-1 {
				lastExpr = t
			}
		case ir.AssignStmt:
			t := e.inferExpr(s.Value)
			if s.Type != nil {
				declared := constraint.FromIR(s.Type)
				e.constrainSubtype(t, declared)
				e.env[s.Name] = declared
			} else {
				e.env[s.Name] = t
			}
		case ir.ReturnStmt:
			var t constraint.Type = constraint.Concrete{Name: "nil"}
			if s.Value != nil {
				t = e.inferExpr(s.Value)
			}
			e.constrainSubtype(t, ret)
			if i == len(body)-1 {
				explicitReturn = true
			}
		}
	}
	// implicit last-expression return, treated like an explicit one
	if !explicitReturn && lastExpr != nil {
		e.constrainSubtype(lastExpr, ret)
	}
}

func (e *engine) inferExpr(expr ir.Expr) constraint.Type {
	switch expr := expr.(type) {
	case ir.IntLit:
		return constraint.Concrete{Name: "Integer"}
	case ir.FloatLit:
		return constraint.Concrete{Name: "Float"}
	case ir.StringLit:
		return constraint.Concrete{Name: "String"}
	case ir.BoolLit:
		return constraint.Concrete{Name: "Boolean"}
	case ir.NilLit:
		return constraint.Concrete{Name: "nil"}
	case ir.SymbolLit:
		return constraint.Concrete{Name: "Symbol"}
	case ir.Ident:
		if t, ok := e.env[expr.Name]; ok {
			return t
		}
		// unseen name: assume anything, but remember the assumption
		t := e.fresh(expr.Name)
		e.env[expr.Name] = t
		return t
	case ir.BinaryOp:
		l := e.inferExpr(expr.Left)
		r := e.inferExpr(expr.Right)
		if arithmeticOps[expr.Op] {
			numeric := constraint.Concrete{Name: "Numeric"}
			e.constrainSubtype(l, numeric)
			e.constrainSubtype(r, numeric)
			return numeric
		}
		if booleanOps[expr.Op] {
			return constraint.Concrete{Name: "Boolean"}
		}
		e.errors = append(e.errors, fmt.Sprintf("unknown operator %s", expr.Op))
		return e.fresh("op")
	case ir.Call:
		if expr.Recv != nil {
			e.inferExpr(expr.Recv)
		}
		for _, a := range expr.Args {
			e.inferExpr(a)
		}
		if name, ok := builtinReturns[expr.Method]; ok {
			return constraint.Concrete{Name: name}
		}
		return e.fresh(expr.Method)
	case ir.ArrayLit:
		elem := e.fresh("elem")
		for _, el := range expr.Elems {
			e.constrainSubtype(e.inferExpr(el), elem)
		}
		return constraint.App{Base: "Array", Args: []constraint.Type{elem}}
	default:
		return e.fresh("expr")
	}
}

// constrainSubtype emits a subtype constraint, except when both sides are
// already concrete: those are checked on the spot, so re-running inference
// over a fully annotated method generates no constraints at all.
func (e *engine) constrainSubtype(sub, sup constraint.Type) {
	if isConcrete(sub) && isConcrete(sup) {
		if !constraint.SubtypeOf(concreteName(sub), concreteName(sup)) {
			e.errors = append(e.errors, fmt.Sprintf("%s is not a subtype of %s", sub, sup))
		}
		return
	}
	e.constraints = append(e.constraints, constraint.Subtype{Sub: sub, Sup: sup})
}

func isConcrete(t constraint.Type) bool {
	return len(t.FreeVars()) == 0
}

func concreteName(t constraint.Type) string {
	switch t := t.(type) {
	case constraint.Concrete:
		return t.Name
	case constraint.App:
		return t.Base
	default:
		return t.String()
	}
}
