package sat

// Assignment maps variable names to truth values. A nil Assignment from
// Solve means UNSAT.
type Assignment map[string]bool

// Solve runs DPLL over a clause list: unit propagation until fixpoint, then
// branch on the variable with the highest occurrence count. The clause set
// strictly shrinks on every recursive call, which is what guarantees
// termination. Returns nil for UNSAT.
func Solve(clauses []Clause) Assignment {
	return dpll(clauses, Assignment{})
}

// SolveFormula converts f to CNF and solves it.
func SolveFormula(f Formula) Assignment {
	return Solve(CNF(f))
}

func dpll(clauses []Clause, assignment Assignment) Assignment {
	clauses, assignment, ok := propagate(clauses, assignment)
	if !ok {
		return nil
	}
	if len(clauses) == 0 {
		return assignment
	}

	v := pickVariable(clauses)
	for _, value := range []bool{true, false} {
		branch := assignment.clone()
		branch[v] = value
		if result := dpll(assign(clauses, v, value), branch); result != nil {
			return result
		}
	}
	return nil
}

// propagate repeatedly forces singleton clauses. It returns the reduced
// clause list, the extended assignment, and false once an empty clause
// appears (conflict).
func propagate(clauses []Clause, assignment Assignment) ([]Clause, Assignment, bool) {
	assignment = assignment.clone()
	for {
		var unit string
		found := false
		for _, cl := range clauses {
			if len(cl) == 0 {
				return nil, nil, false
			}
			if len(cl) == 1 {
				unit = cl[0]
				found = true
				break
			}
		}
		if !found {
			return clauses, assignment, true
		}
		name, value := literal(unit)
		assignment[name] = value
		clauses = assign(clauses, name, value)
	}
}

// assign substitutes a value for a variable: satisfied clauses are removed,
// and the opposite literal is removed from the clauses containing it.
func assign(clauses []Clause, name string, value bool) []Clause {
	satisfied := name
	falsified := "!" + name
	if !value {
		satisfied, falsified = falsified, satisfied
	}

	var out []Clause
	for _, cl := range clauses {
		keep := true
		var reduced Clause
		for _, lit := range cl {
			if lit == satisfied {
				keep = false
				break
			}
			if lit != falsified {
				reduced = append(reduced, lit)
			}
		}
		if keep {
			out = append(out, reduced)
		}
	}
	return out
}

// pickVariable returns the variable occurring in the most clauses.
func pickVariable(clauses []Clause) string {
	counts := map[string]int{}
	for _, cl := range clauses {
		for _, lit := range cl {
			name, _ := literal(lit)
			counts[name]++
		}
	}
	best := ""
	for name, n := range counts {
		if best == "" || n > counts[best] || (n == counts[best] && name < best) {
			best = name
		}
	}
	return best
}

func literal(lit string) (name string, value bool) {
	if len(lit) > 0 && lit[0] == '!' {
		return lit[1:], false
	}
	return lit, true
}

func (a Assignment) clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Satisfies reports whether every clause contains at least one literal made
// true by the assignment.
func Satisfies(clauses []Clause, a Assignment) bool {
	for _, cl := range clauses {
		ok := false
		for _, lit := range cl {
			name, want := literal(lit)
			if a[name] == want {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}
