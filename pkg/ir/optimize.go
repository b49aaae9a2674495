package ir

// Pass is one rewrite over a program. Run reports how many changes it made
// so the optimizer can detect a fixed point.
type Pass interface {
	Name() string
	Run(*Program) int
}

// Optimizer runs its passes repeatedly until a full sweep makes no changes
// or MaxIterations is reached.
type Optimizer struct {
	Passes        []Pass
	MaxIterations int
}

// NewOptimizer returns an optimizer with the standard pass set.
func NewOptimizer() *Optimizer {
	return &Optimizer{
		Passes: []Pass{
			DeadCodePass{},
			ConstantFoldPass{},
			AnnotationCleanupPass{},
			UnusedAliasPass{},
		},
		MaxIterations: 10,
	}
}

// Optimize rewrites p in place and returns the total change count.
func (o *Optimizer) Optimize(p *Program) int {
	maxIter := o.MaxIterations
	if maxIter <= 0 {
		maxIter = 10
	}
	total := 0
	for i := 0; i < maxIter; i++ {
		sweep := 0
		for _, pass := range o.Passes {
			sweep += pass.Run(p)
		}
		total += sweep
		if sweep == 0 {
			break
		}
	}
	return total
}

// DeadCodePass removes statements after an unconditional return.
type DeadCodePass struct{}

func (DeadCodePass) Name() string { return "dead-code" }

func (DeadCodePass) Run(p *Program) int {
	changes := 0
	forEachMethod(p, func(m *MethodDef) {
		for i, s := range m.Body {
			if _, ok := s.(ReturnStmt); ok && i < len(m.Body)-1 {
				changes += len(m.Body) - i - 1
				m.Body = m.Body[:i+1]
				break
			}
		}
	})
	return changes
}

// ConstantFoldPass evaluates binary operations over two literal operands.
// Division and modulo by a literal zero are left unfolded so the error
// surfaces at runtime where the programmer wrote it.
type ConstantFoldPass struct{}

func (ConstantFoldPass) Name() string { return "constant-fold" }

func (ConstantFoldPass) Run(p *Program) int {
	changes := 0
	forEachMethod(p, func(m *MethodDef) {
		for i, s := range m.Body {
			m.Body[i] = foldStmt(s, &changes)
		}
	})
	return changes
}

func foldStmt(s Stmt, changes *int) Stmt {
	switch s := s.(type) {
	case ExprStmt:
		return ExprStmt{E: foldExpr(s.E, changes)}
	case AssignStmt:
		s.Value = foldExpr(s.Value, changes)
		return s
	case ReturnStmt:
		if s.Value != nil {
			s.Value = foldExpr(s.Value, changes)
		}
		return s
	default:
		return s
	}
}

func foldExpr(e Expr, changes *int) Expr {
	switch e := e.(type) {
	case BinaryOp:
		e.Left = foldExpr(e.Left, changes)
		e.Right = foldExpr(e.Right, changes)
		if folded, ok := foldBinary(e); ok {
			*changes++
			return folded
		}
		return e
	case Call:
		if e.Recv != nil {
			e.Recv = foldExpr(e.Recv, changes)
		}
		for i, a := range e.Args {
			e.Args[i] = foldExpr(a, changes)
		}
		return e
	case ArrayLit:
		for i, el := range e.Elems {
			e.Elems[i] = foldExpr(el, changes)
		}
		return e
	default:
		return e
	}
}

func foldBinary(e BinaryOp) (Expr, bool) {
	if l, ok := e.Left.(IntLit); ok {
		if r, ok := e.Right.(IntLit); ok {
			switch e.Op {
			case "+":
				return IntLit{l.Value + r.Value}, true
			case "-":
				return IntLit{l.Value - r.Value}, true
			case "*":
				return IntLit{l.Value * r.Value}, true
			case "/":
				if r.Value == 0 {
					return nil, false
				}
				return IntLit{l.Value / r.Value}, true
			case "%":
				if r.Value == 0 {
					return nil, false
				}
				return IntLit{l.Value % r.Value}, true
			}
		}
	}
	if l, ok := e.Left.(FloatLit); ok {
		if r, ok := e.Right.(FloatLit); ok {
			switch e.Op {
			case "+":
				return FloatLit{l.Value + r.Value}, true
			case "-":
				return FloatLit{l.Value - r.Value}, true
			case "*":
				return FloatLit{l.Value * r.Value}, true
			case "/":
				if r.Value == 0 {
					return nil, false
				}
				return FloatLit{l.Value / r.Value}, true
			}
		}
	}
	if l, ok := e.Left.(StringLit); ok {
		if r, ok := e.Right.(StringLit); ok && e.Op == "+" {
			return StringLit{l.Value + r.Value}, true
		}
	}
	if l, ok := e.Left.(BoolLit); ok {
		if r, ok := e.Right.(BoolLit); ok {
			switch e.Op {
			case "&&":
				return BoolLit{l.Value && r.Value}, true
			case "||":
				return BoolLit{l.Value || r.Value}, true
			}
		}
	}
	return nil, false
}

// AnnotationCleanupPass drops local annotations that restate what the
// initializer already pins down. It is deliberately conservative: only
// annotations exactly matching a literal initializer's type are removed.
type AnnotationCleanupPass struct{}

func (AnnotationCleanupPass) Name() string { return "annotation-cleanup" }

func (AnnotationCleanupPass) Run(p *Program) int {
	changes := 0
	forEachMethod(p, func(m *MethodDef) {
		for i, s := range m.Body {
			assign, ok := s.(AssignStmt)
			if !ok || assign.Type == nil {
				continue
			}
			lit := literalTypeOf(assign.Value)
			if lit != "" && assign.Type.Equal(SimpleType{Name: lit}) {
				assign.Type = nil
				m.Body[i] = assign
				changes++
			}
		}
	})
	return changes
}

func literalTypeOf(e Expr) string {
	switch e.(type) {
	case IntLit:
		return "Integer"
	case FloatLit:
		return "Float"
	case StringLit:
		return "String"
	case BoolLit:
		return "Boolean"
	case SymbolLit:
		return "Symbol"
	default:
		return ""
	}
}

// UnusedAliasPass removes type aliases that no param, return, interface
// member, annotation or reachable alias references. Reachability is a
// closure: an alias referenced only by another live alias stays.
type UnusedAliasPass struct{}

func (UnusedAliasPass) Name() string { return "unused-alias" }

func (UnusedAliasPass) Run(p *Program) int {
	aliases := map[string]*TypeAliasDecl{}
	for _, d := range p.Decls {
		if a, ok := d.(*TypeAliasDecl); ok {
			aliases[a.Name] = a
		}
	}
	if len(aliases) == 0 {
		return 0
	}

	// roots: every symbol referenced outside alias definitions
	var roots []string
	forEachMethod(p, func(m *MethodDef) {
		for _, param := range m.Params {
			if param.Type != nil {
				roots = append(roots, param.Type.ReferencedSymbols()...)
			}
		}
		if m.Return != nil {
			roots = append(roots, m.Return.ReferencedSymbols()...)
		}
		for _, s := range m.Body {
			if assign, ok := s.(AssignStmt); ok && assign.Type != nil {
				roots = append(roots, assign.Type.ReferencedSymbols()...)
			}
		}
	})
	for _, d := range p.Decls {
		if iface, ok := d.(*InterfaceDecl); ok {
			for _, mem := range iface.Members {
				for _, param := range mem.Params {
					if param.Type != nil {
						roots = append(roots, param.Type.ReferencedSymbols()...)
					}
				}
				if mem.Return != nil {
					roots = append(roots, mem.Return.ReferencedSymbols()...)
				}
			}
		}
	}

	live := map[string]bool{}
	var mark func(name string)
	mark = func(name string) {
		if live[name] {
			return
		}
		a, ok := aliases[name]
		if !ok {
			return
		}
		live[name] = true
		for _, ref := range a.Definition.ReferencedSymbols() {
			mark(ref)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	changes := 0
	kept := p.Decls[:0]
	for _, d := range p.Decls {
		if a, ok := d.(*TypeAliasDecl); ok && !live[a.Name] {
			changes++
			continue
		}
		kept = append(kept, d)
	}
	p.Decls = kept
	return changes
}

func forEachMethod(p *Program, f func(*MethodDef)) {
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *MethodDef:
			f(d)
		case *ClassDecl:
			for _, m := range d.Methods {
				f(m)
			}
		}
	}
}
