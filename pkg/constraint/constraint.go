// Package constraint provides the type constraints emitted during
// inference and the solver that discharges them: equality constraints are
// unified into a substitution, subtype constraints are checked against a
// fixed hierarchy, and whatever remains unbound defaults to Object.
package constraint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trb-lang/trb/pkg/ir"
	"github.com/trb-lang/trb/pkg/sat"
)

// Type is the solver's view of a type: a variable, a concrete name, or an
// applied constructor. Richer IR structure (unions, tuples, functions) is
// flattened to a concrete rendering on the way in; the solver's job is
// propagation, not a full type theory.
type Type interface {
	// Apply substitutes bound variables.
	Apply(Subs) Type
	// FreeVars returns every variable name occurring anywhere in the
	// type, including inside applied-constructor arguments. The occurs
	// check depends on this being fully recursive.
	FreeVars() []string
	Equal(Type) bool
	fmt.Stringer
}

// Var is a type variable. Names are unique per inference session.
type Var struct {
	Name string
	// Bound, when non-nil, is an upper bound the variable must satisfy.
	Bound Type
}

// Concrete is a known type name such as Integer.
type Concrete struct {
	Name string
}

// App is an applied type constructor such as Array<T>.
type App struct {
	Base string
	Args []Type
}

func (v Var) Apply(s Subs) Type {
	if t, ok := s[v.Name]; ok {
		return t
	}
	return v
}

func (v Var) FreeVars() []string { return []string{v.Name} }

func (v Var) Equal(o Type) bool {
	ov, ok := o.(Var)
	return ok && v.Name == ov.Name
}

func (v Var) String() string { return v.Name }

func (c Concrete) Apply(Subs) Type    { return c }
func (c Concrete) FreeVars() []string { return nil }

func (c Concrete) Equal(o Type) bool {
	oc, ok := o.(Concrete)
	return ok && c.Name == oc.Name
}

func (c Concrete) String() string { return c.Name }

func (a App) Apply(s Subs) Type {
	args := make([]Type, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.Apply(s)
	}
	return App{Base: a.Base, Args: args}
}

func (a App) FreeVars() []string {
	var names []string
	for _, arg := range a.Args {
		names = append(names, arg.FreeVars()...)
	}
	return names
}

func (a App) Equal(o Type) bool {
	oa, ok := o.(App)
	if !ok || a.Base != oa.Base || len(a.Args) != len(oa.Args) {
		return false
	}
	for i := range a.Args {
		if !a.Args[i].Equal(oa.Args[i]) {
			return false
		}
	}
	return true
}

func (a App) String() string {
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.String()
	}
	return a.Base + "<" + strings.Join(args, ", ") + ">"
}

// Subs maps variable names to types. The session-unique naming of variables
// is what makes a flat name-keyed map safe (no aliasing between sessions).
type Subs map[string]Type

// Resolve applies s to t repeatedly until no bound variable remains at the
// surface, then defaults any leftover variable to Object.
func (s Subs) Resolve(t Type) Type {
	for i := 0; i < len(s)+1; i++ {
		next := t.Apply(s)
		if next.Equal(t) {
			break
		}
		t = next
	}
	return defaultVars(t)
}

func defaultVars(t Type) Type {
	switch t := t.(type) {
	case Var:
		return Concrete{Name: "Object"}
	case App:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = defaultVars(a)
		}
		return App{Base: t.Base, Args: args}
	default:
		return t
	}
}

// Fresher hands out session-unique type variables. Each human-readable
// prefix gets its own monotonic counter, so variables read like "x$1".
type Fresher struct {
	counts map[string]int
}

func NewFresher() *Fresher {
	return &Fresher{counts: map[string]int{}}
}

// Fresh returns a new variable named after prefix.
func (f *Fresher) Fresh(prefix string) Var {
	f.counts[prefix]++
	return Var{Name: fmt.Sprintf("%s$%d", prefix, f.counts[prefix])}
}

// Constraint is the closed set of type constraints.
type Constraint interface {
	constraint()
	// Prop names the constraint as a propositional atom, so batches of
	// constraints can be handed to the sat package as formulas.
	Prop() sat.Var
	fmt.Stringer
}

// TypeEqual requires both sides to unify.
type TypeEqual struct {
	Left, Right Type
}

// Subtype requires Sub to be assignable where Sup is expected.
type Subtype struct {
	Sub, Sup Type
}

// HasProperty requires the type to expose a property of the given type.
type HasProperty struct {
	Type         Type
	Property     string
	PropertyType Type
}

func (TypeEqual) constraint()   {}
func (Subtype) constraint()     {}
func (HasProperty) constraint() {}

func (c TypeEqual) String() string { return fmt.Sprintf("%s = %s", c.Left, c.Right) }
func (c Subtype) String() string   { return fmt.Sprintf("%s <: %s", c.Sub, c.Sup) }
func (c HasProperty) String() string {
	return fmt.Sprintf("%s has %s: %s", c.Type, c.Property, c.PropertyType)
}

func (c TypeEqual) Prop() sat.Var   { return sat.Var{Name: c.String()} }
func (c Subtype) Prop() sat.Var     { return sat.Var{Name: c.String()} }
func (c HasProperty) Prop() sat.Var { return sat.Var{Name: c.String()} }

// Conjunction folds a batch of constraints into one propositional formula,
// each constraint as its atom. Consumers that only need yes/no consistency
// can run the result through sat.SolveFormula.
func Conjunction(cs []Constraint) sat.Formula {
	if len(cs) == 0 {
		return sat.BoolConst{Value: true}
	}
	var f sat.Formula = cs[0].Prop()
	for _, c := range cs[1:] {
		f = sat.Conj(f, c.Prop())
	}
	return f
}

// FromIR flattens an IR type node to the solver's representation. Simple
// names and generics keep their structure; everything else participates as
// an opaque concrete type named by its rendering.
func FromIR(t ir.TypeNode) Type {
	switch t := t.(type) {
	case ir.SimpleType:
		return Concrete{Name: t.Name}
	case ir.GenericType:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = FromIR(a)
		}
		return App{Base: t.Base, Args: args}
	default:
		return Concrete{Name: t.String()}
	}
}

// ToIR converts a solved type back into an IR node.
func ToIR(t Type) ir.TypeNode {
	switch t := t.(type) {
	case Concrete:
		return ir.SimpleType{Name: t.Name}
	case App:
		args := make([]ir.TypeNode, len(t.Args))
		for i, a := range t.Args {
			args[i] = ToIR(a)
		}
		return ir.GenericType{Base: t.Base, Args: args}
	case Var:
		return ir.SimpleType{Name: "Object"}
	default:
		return ir.SimpleType{Name: "Object"}
	}
}

// SortedVars lists every variable mentioned by the constraints, sorted, for
// deterministic defaulting and error output.
func SortedVars(cs []Constraint) []string {
	set := map[string]bool{}
	add := func(t Type) {
		for _, v := range t.FreeVars() {
			set[v] = true
		}
	}
	for _, c := range cs {
		switch c := c.(type) {
		case TypeEqual:
			add(c.Left)
			add(c.Right)
		case Subtype:
			add(c.Sub)
			add(c.Sup)
		case HasProperty:
			add(c.Type)
			add(c.PropertyType)
		}
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
