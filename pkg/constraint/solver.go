package constraint

import (
	"fmt"
	"slices"
)

// TypeHierarchy is the fixed nominal hierarchy subtype checks run against.
// Each entry names its direct supertype; chains end at Object.
var TypeHierarchy = map[string]string{
	"Integer":    "Numeric",
	"Float":      "Numeric",
	"Numeric":    "Object",
	"String":     "Object",
	"Boolean":    "Object",
	"Symbol":     "Object",
	"Array":      "Enumerable",
	"Hash":       "Enumerable",
	"Enumerable": "Object",
}

// propertyTable lists the built-in properties checkable by HasProperty.
var propertyTable = map[string]map[string]Type{
	"String": {
		"length": Concrete{Name: "Integer"},
	},
	"Array": {
		"length": Concrete{Name: "Integer"},
		"first":  Concrete{Name: "Object"},
	},
}

// SubtypeOf reports whether sub is assignable where sup is expected:
// reflexivity, Object as top, nil as bottom, or (transitive) membership in
// the fixed hierarchy.
func SubtypeOf(sub, sup string) bool {
	if sub == sup || sup == "Object" || sub == "nil" {
		return true
	}
	for cur := sub; ; {
		parent, ok := TypeHierarchy[cur]
		if !ok {
			return false
		}
		if parent == sup {
			return true
		}
		cur = parent
	}
}

// Solution is the outcome of one solving session. Errors are collected,
// never raised: the caller decides severity.
type Solution struct {
	Subs   Subs
	Errors []string
}

// Solver discharges a batch of constraints. A Solver is single-session;
// construct a new one per method inference.
type Solver struct{}

func NewSolver() *Solver { return &Solver{} }

// Solve runs the three phases in order: unification of equality
// constraints, best-effort subtype checking, then defaulting of anything
// still unbound. Every error is collected in one pass.
func (s *Solver) Solve(constraints []Constraint) Solution {
	sol := Solution{Subs: Subs{}}

	// phase (a): unification worklist
	var rest []Constraint
	for _, c := range constraints {
		if eq, ok := c.(TypeEqual); ok {
			if err := unify(eq.Left.Apply(sol.Subs), eq.Right.Apply(sol.Subs), sol.Subs); err != nil {
				sol.Errors = append(sol.Errors, err.Error())
			}
			continue
		}
		rest = append(rest, c)
	}

	// phase (b): subtype and property checks over the substituted forms
	for _, c := range rest {
		switch c := c.(type) {
		case Subtype:
			s.checkSubtype(c, &sol)
		case HasProperty:
			s.checkProperty(c, &sol)
		}
	}

	// phase (c): default every variable left unbound
	for _, name := range SortedVars(constraints) {
		if _, bound := sol.Subs[name]; !bound {
			bind(name, Concrete{Name: "Object"}, sol.Subs)
		}
	}
	return sol
}

func (s *Solver) checkSubtype(c Subtype, sol *Solution) {
	sub := deepApply(c.Sub, sol.Subs)
	sup := deepApply(c.Sup, sol.Subs)

	// an unbound side is propagated, not checked: a variable below picks
	// up the bound as its type, a variable above picks up the subject
	if v, ok := sub.(Var); ok {
		if _, isVar := sup.(Var); !isVar {
			bind(v.Name, sup, sol.Subs)
		}
		return
	}
	if v, ok := sup.(Var); ok {
		bind(v.Name, sub, sol.Subs)
		return
	}

	if !SubtypeOf(typeName(sub), typeName(sup)) {
		sol.Errors = append(sol.Errors, fmt.Sprintf("%s is not a subtype of %s", sub, sup))
	}
}

func (s *Solver) checkProperty(c HasProperty, sol *Solution) {
	t := deepApply(c.Type, sol.Subs)
	if _, ok := t.(Var); ok {
		// still unknown; defaulting will handle the variable
		return
	}
	props, ok := propertyTable[typeName(t)]
	if !ok {
		sol.Errors = append(sol.Errors, fmt.Sprintf("type %s has no checkable properties", t))
		return
	}
	want, ok := props[c.Property]
	if !ok {
		sol.Errors = append(sol.Errors, fmt.Sprintf("type %s has no property %s", t, c.Property))
		return
	}
	if err := unify(c.PropertyType.Apply(sol.Subs), want, sol.Subs); err != nil {
		sol.Errors = append(sol.Errors, err.Error())
	}
}

// unify makes both sides syntactically equal, extending subs. The occurs
// check runs before every variable binding; FreeVars recurses through
// applied-constructor arguments, so T = Array<T> is rejected.
func unify(a, b Type, subs Subs) error {
	a = deepApply(a, subs)
	b = deepApply(b, subs)

	if av, ok := a.(Var); ok {
		return bindChecked(av, b, subs)
	}
	if bv, ok := b.(Var); ok {
		return bindChecked(bv, a, subs)
	}

	switch a := a.(type) {
	case Concrete:
		if bc, ok := b.(Concrete); ok && a.Name == bc.Name {
			return nil
		}
	case App:
		if ba, ok := b.(App); ok && a.Base == ba.Base && len(a.Args) == len(ba.Args) {
			for i := range a.Args {
				if err := unify(a.Args[i], ba.Args[i], subs); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return fmt.Errorf("cannot unify %s with %s", a, b)
}

func bindChecked(v Var, t Type, subs Subs) error {
	if tv, ok := t.(Var); ok && tv.Name == v.Name {
		return nil
	}
	if slices.Contains(t.FreeVars(), v.Name) {
		return fmt.Errorf("occurs check failed: %s occurs in %s", v.Name, t)
	}
	bind(v.Name, t, subs)
	return nil
}

// bind records name -> t and re-applies the new mapping to every existing
// binding, keeping the substitution idempotent.
func bind(name string, t Type, subs Subs) {
	single := Subs{name: t}
	for k, v := range subs {
		subs[k] = v.Apply(single)
	}
	subs[name] = t
}

// deepApply resolves t through subs until fixpoint.
func deepApply(t Type, subs Subs) Type {
	for range len(subs) + 1 {
		next := t.Apply(subs)
		if next.Equal(t) {
			return t
		}
		t = next
	}
	return t
}

func typeName(t Type) string {
	switch t := t.(type) {
	case Concrete:
		return t.Name
	case App:
		return t.Base
	default:
		return t.String()
	}
}
