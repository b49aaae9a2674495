// Package sat provides propositional formulas with CNF conversion and a
// DPLL satisfiability solver. Formulas are immutable value objects; the
// combinators build new formulas rather than mutating. The solver is a
// teaching-quality backtracking engine, not an industrial one.
package sat

import (
	"fmt"
	"sort"
	"strings"
)

// Formula is the closed set of propositional formulas.
type Formula interface {
	formula()
	fmt.Stringer
}

// BoolConst is the constant true or false.
type BoolConst struct {
	Value bool
}

// Var is a named propositional variable.
type Var struct {
	Name string
}

// Not negates a formula.
type Not struct {
	F Formula
}

// And is conjunction.
type And struct {
	L, R Formula
}

// Or is disjunction.
type Or struct {
	L, R Formula
}

// Implies is material implication.
type Implies struct {
	L, R Formula
}

// Iff is the biconditional.
type Iff struct {
	L, R Formula
}

func (BoolConst) formula() {}
func (Var) formula()       {}
func (Not) formula()       {}
func (And) formula()       {}
func (Or) formula()        {}
func (Implies) formula()   {}
func (Iff) formula()       {}

func (f BoolConst) String() string {
	if f.Value {
		return "true"
	}
	return "false"
}

func (f Var) String() string     { return f.Name }
func (f Not) String() string     { return "!" + f.F.String() }
func (f And) String() string     { return "(" + f.L.String() + " & " + f.R.String() + ")" }
func (f Or) String() string      { return "(" + f.L.String() + " | " + f.R.String() + ")" }
func (f Implies) String() string { return "(" + f.L.String() + " -> " + f.R.String() + ")" }
func (f Iff) String() string     { return "(" + f.L.String() + " <-> " + f.R.String() + ")" }

// Conj, Disj and Neg are the formula-building operators.
func Conj(l, r Formula) Formula { return And{l, r} }
func Disj(l, r Formula) Formula { return Or{l, r} }
func Neg(f Formula) Formula     { return Not{f} }

// Equal is structural equality, used by Simplify's idempotence rule.
func Equal(a, b Formula) bool {
	switch a := a.(type) {
	case BoolConst:
		b, ok := b.(BoolConst)
		return ok && a.Value == b.Value
	case Var:
		b, ok := b.(Var)
		return ok && a.Name == b.Name
	case Not:
		b, ok := b.(Not)
		return ok && Equal(a.F, b.F)
	case And:
		b, ok := b.(And)
		return ok && Equal(a.L, b.L) && Equal(a.R, b.R)
	case Or:
		b, ok := b.(Or)
		return ok && Equal(a.L, b.L) && Equal(a.R, b.R)
	case Implies:
		b, ok := b.(Implies)
		return ok && Equal(a.L, b.L) && Equal(a.R, b.R)
	case Iff:
		b, ok := b.(Iff)
		return ok && Equal(a.L, b.L) && Equal(a.R, b.R)
	}
	return false
}

// Simplify performs constant propagation, double-negation elimination and
// idempotence reduction. It does not normalize beyond that.
func Simplify(f Formula) Formula {
	switch f := f.(type) {
	case Not:
		inner := Simplify(f.F)
		if c, ok := inner.(BoolConst); ok {
			return BoolConst{!c.Value}
		}
		if n, ok := inner.(Not); ok {
			return n.F
		}
		return Not{inner}
	case And:
		l, r := Simplify(f.L), Simplify(f.R)
		if c, ok := l.(BoolConst); ok {
			if !c.Value {
				return BoolConst{false}
			}
			return r
		}
		if c, ok := r.(BoolConst); ok {
			if !c.Value {
				return BoolConst{false}
			}
			return l
		}
		if Equal(l, r) {
			return l
		}
		return And{l, r}
	case Or:
		l, r := Simplify(f.L), Simplify(f.R)
		if c, ok := l.(BoolConst); ok {
			if c.Value {
				return BoolConst{true}
			}
			return r
		}
		if c, ok := r.(BoolConst); ok {
			if c.Value {
				return BoolConst{true}
			}
			return l
		}
		if Equal(l, r) {
			return l
		}
		return Or{l, r}
	case Implies:
		return Simplify(Or{Not{f.L}, f.R})
	case Iff:
		return Simplify(And{Or{Not{f.L}, f.R}, Or{Not{f.R}, f.L}})
	default:
		return f
	}
}

// Clause is a disjunction of signed literals; "!x" denotes the negation
// of variable x.
type Clause []string

// CNF converts a formula to conjunctive normal form: implications and
// biconditionals are rewritten via their classical equivalences, negations
// are pushed to the literals, then ORs are distributed over ANDs.
func CNF(f Formula) []Clause {
	nnf := toNNF(elim(f), false)
	return distribute(nnf)
}

// elim rewrites Implies and Iff into and/or/not form.
func elim(f Formula) Formula {
	switch f := f.(type) {
	case Not:
		return Not{elim(f.F)}
	case And:
		return And{elim(f.L), elim(f.R)}
	case Or:
		return Or{elim(f.L), elim(f.R)}
	case Implies:
		return Or{Not{elim(f.L)}, elim(f.R)}
	case Iff:
		l, r := elim(f.L), elim(f.R)
		return And{Or{Not{l}, r}, Or{Not{r}, l}}
	default:
		return f
	}
}

// toNNF pushes negation down to variables and constants.
func toNNF(f Formula, negated bool) Formula {
	switch f := f.(type) {
	case BoolConst:
		if negated {
			return BoolConst{!f.Value}
		}
		return f
	case Var:
		if negated {
			return Not{f}
		}
		return f
	case Not:
		return toNNF(f.F, !negated)
	case And:
		if negated {
			return Or{toNNF(f.L, true), toNNF(f.R, true)}
		}
		return And{toNNF(f.L, false), toNNF(f.R, false)}
	case Or:
		if negated {
			return And{toNNF(f.L, true), toNNF(f.R, true)}
		}
		return Or{toNNF(f.L, false), toNNF(f.R, false)}
	default:
		// Implies/Iff eliminated before this point
		panic(fmt.Sprintf("sat: toNNF on non-NNF connective %T", f))
	}
}

// distribute turns an NNF formula into clause lists, distributing OR over
// AND. Constants collapse: a true clause disappears, a false literal
// disappears from its clause, and an unsatisfiable formula yields the empty
// clause.
func distribute(f Formula) []Clause {
	switch f := f.(type) {
	case BoolConst:
		if f.Value {
			return nil
		}
		return []Clause{{}}
	case Var:
		return []Clause{{f.Name}}
	case Not:
		v, ok := f.F.(Var)
		if !ok {
			panic("sat: distribute on non-literal negation")
		}
		return []Clause{{"!" + v.Name}}
	case And:
		return append(distribute(f.L), distribute(f.R)...)
	case Or:
		ls := distribute(f.L)
		rs := distribute(f.R)
		if ls == nil {
			return nil // true | anything
		}
		if rs == nil {
			return nil
		}
		var out []Clause
		for _, lc := range ls {
			for _, rc := range rs {
				merged := make(Clause, 0, len(lc)+len(rc))
				merged = append(merged, lc...)
				merged = append(merged, rc...)
				out = append(out, dedupe(merged))
			}
		}
		return out
	default:
		panic(fmt.Sprintf("sat: distribute on connective %T", f))
	}
}

func dedupe(c Clause) Clause {
	seen := make(map[string]bool, len(c))
	out := c[:0]
	for _, lit := range c {
		if !seen[lit] {
			seen[lit] = true
			out = append(out, lit)
		}
	}
	return out
}

// Variables lists the distinct variable names in f, sorted.
func Variables(f Formula) []string {
	set := map[string]bool{}
	var walk func(Formula)
	walk = func(f Formula) {
		switch f := f.(type) {
		case Var:
			set[f.Name] = true
		case Not:
			walk(f.F)
		case And:
			walk(f.L)
			walk(f.R)
		case Or:
			walk(f.L)
			walk(f.R)
		case Implies:
			walk(f.L)
			walk(f.R)
		case Iff:
			walk(f.L)
			walk(f.R)
		}
	}
	walk(f)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Eval evaluates f under an assignment. Unassigned variables read false.
func Eval(f Formula, assignment map[string]bool) bool {
	switch f := f.(type) {
	case BoolConst:
		return f.Value
	case Var:
		return assignment[f.Name]
	case Not:
		return !Eval(f.F, assignment)
	case And:
		return Eval(f.L, assignment) && Eval(f.R, assignment)
	case Or:
		return Eval(f.L, assignment) || Eval(f.R, assignment)
	case Implies:
		return !Eval(f.L, assignment) || Eval(f.R, assignment)
	case Iff:
		return Eval(f.L, assignment) == Eval(f.R, assignment)
	}
	return false
}

func (c Clause) String() string {
	return "(" + strings.Join(c, " | ") + ")"
}
