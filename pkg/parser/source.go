package parser

import (
	"regexp"
	"strconv"
	"strings"

	c "github.com/trb-lang/trb/pkg/combinator"
	"github.com/trb-lang/trb/pkg/ir"
)

// The front end is a tokenizer-free regex pass: each source line is matched
// against a small set of declaration shapes, and type positions are carried
// through as raw strings for the Builder to parse. Method-body expressions
// get a real grammar below; everything else is line-shaped.

var (
	aliasRe   = regexp.MustCompile(`^type\s+(\w+)\s*=\s*(.+)$`)
	ifaceRe   = regexp.MustCompile(`^interface\s+(\w+)(?:<([^>]+)>)?\s*$`)
	classRe   = regexp.MustCompile(`^class\s+(\w+)(?:<([^>]+)>)?(?:\s+<\s+(\w+))?\s*$`)
	defRe     = regexp.MustCompile(`^def\s+(\w+)(?:<([^>]+)>)?\s*(?:\(([^)]*)\))?\s*(?:->\s*(.+))?$`)
	endRe     = regexp.MustCompile(`^end\s*$`)
	commentRe = regexp.MustCompile(`^#`)
	returnRe  = regexp.MustCompile(`^return(?:\s+(.+))?$`)
	assignRe  = regexp.MustCompile(`^(\w+)(?:\s*:\s*(.+?))?\s*=\s*([^=].*)$`)
)

// Scanner turns TRB source text into raw declaration records.
type Scanner struct {
	exprs *exprGrammar
}

func NewScanner() *Scanner {
	return &Scanner{exprs: newExprGrammar()}
}

// Scan processes one file. Unrecognized lines and malformed expressions
// become diagnostics; scanning always produces a (possibly partial) record.
func (sc *Scanner) Scan(path, src string) (RawProgram, []ir.Diagnostic) {
	raw := RawProgram{Path: path}
	var diags []ir.Diagnostic

	lines := strings.Split(src, "\n")
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		lineNo := i + 1
		switch {
		case line == "" || commentRe.MatchString(line):
			i++
		case aliasRe.MatchString(line):
			m := aliasRe.FindStringSubmatch(line)
			raw.Aliases = append(raw.Aliases, RawAlias{Name: m[1], Definition: strings.TrimSpace(m[2]), Line: lineNo})
			i++
		case ifaceRe.MatchString(line):
			m := ifaceRe.FindStringSubmatch(line)
			iface := RawInterface{Name: m[1], TypeParams: splitNames(m[2]), Line: lineNo}
			i++
			for i < len(lines) {
				inner := strings.TrimSpace(lines[i])
				if endRe.MatchString(inner) {
					i++
					break
				}
				if dm := defRe.FindStringSubmatch(inner); dm != nil {
					iface.Members = append(iface.Members, RawInterfaceMember{
						Name:   dm[1],
						Params: parseRawParams(dm[3]),
						Return: strings.TrimSpace(dm[4]),
					})
				} else if inner != "" && !commentRe.MatchString(inner) {
					diags = append(diags, unrecognized(path, i+1, inner))
				}
				i++
			}
			raw.Interfaces = append(raw.Interfaces, iface)
		case classRe.MatchString(line):
			m := classRe.FindStringSubmatch(line)
			cls := RawClass{Name: m[1], TypeParams: splitNames(m[2]), SuperClass: m[3], Line: lineNo}
			i++
			for i < len(lines) {
				inner := strings.TrimSpace(lines[i])
				if endRe.MatchString(inner) {
					i++
					break
				}
				if defRe.MatchString(inner) {
					method, next, ds := sc.scanMethod(path, lines, i)
					cls.Methods = append(cls.Methods, method)
					diags = append(diags, ds...)
					i = next
				} else {
					if inner != "" && !commentRe.MatchString(inner) {
						diags = append(diags, unrecognized(path, i+1, inner))
					}
					i++
				}
			}
			raw.Classes = append(raw.Classes, cls)
		case defRe.MatchString(line):
			method, next, ds := sc.scanMethod(path, lines, i)
			raw.Methods = append(raw.Methods, method)
			diags = append(diags, ds...)
			i = next
		default:
			diags = append(diags, unrecognized(path, lineNo, line))
			i++
		}
	}
	return raw, diags
}

func (sc *Scanner) scanMethod(path string, lines []string, start int) (RawMethod, int, []ir.Diagnostic) {
	m := defRe.FindStringSubmatch(strings.TrimSpace(lines[start]))
	method := RawMethod{
		Name:       m[1],
		TypeParams: splitNames(m[2]),
		Params:     parseRawParams(m[3]),
		Return:     strings.TrimSpace(m[4]),
		Line:       start + 1,
	}
	var diags []ir.Diagnostic
	i := start + 1
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		lineNo := i + 1
		if endRe.MatchString(line) {
			i++
			break
		}
		if line == "" || commentRe.MatchString(line) {
			i++
			continue
		}
		stmt, err := sc.parseStmt(line)
		if err != nil {
			diags = append(diags, ir.Diagnostic{
				Message:  err.Error(),
				Path:     path,
				Line:     lineNo,
				Severity: ir.SeverityError,
			})
		} else {
			method.Body = append(method.Body, stmt)
		}
		i++
	}
	return method, i, diags
}

func (sc *Scanner) parseStmt(line string) (ir.Stmt, error) {
	if m := returnRe.FindStringSubmatch(line); m != nil {
		if strings.TrimSpace(m[1]) == "" {
			return ir.ReturnStmt{}, nil
		}
		e, err := sc.exprs.Parse(m[1])
		if err != nil {
			return nil, err
		}
		return ir.ReturnStmt{Value: e}, nil
	}
	if m := assignRe.FindStringSubmatch(line); m != nil {
		e, err := sc.exprs.Parse(m[3])
		if err != nil {
			return nil, err
		}
		stmt := ir.AssignStmt{Name: m[1], Value: e}
		if ann := strings.TrimSpace(m[2]); ann != "" {
			t, err := ParseType(ann)
			if err != nil {
				return nil, err
			}
			stmt.Type = t
		}
		return stmt, nil
	}
	e, err := sc.exprs.Parse(line)
	if err != nil {
		return nil, err
	}
	return ir.ExprStmt{E: e}, nil
}

func unrecognized(path string, line int, text string) ir.Diagnostic {
	return ir.Diagnostic{
		Message:  "unrecognized declaration: " + text,
		Path:     path,
		Line:     line,
		Severity: ir.SeverityError,
	}
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		names = append(names, strings.TrimSpace(p))
	}
	return names
}

// parseRawParams splits a parameter list on top-level commas, keeping
// commas inside generic arguments, tuples and function types intact.
func parseRawParams(s string) []RawParam {
	var params []RawParam
	for _, part := range splitTop(s, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, typ, ok := strings.Cut(part, ":"); ok {
			params = append(params, RawParam{Name: strings.TrimSpace(name), Type: strings.TrimSpace(typ)})
		} else {
			params = append(params, RawParam{Name: part})
		}
	}
	return params
}

func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// exprGrammar parses method-body expressions: literals, identifiers, infix
// operators with three precedence levels, method calls and array literals.
type exprGrammar struct {
	expr c.Parser[ir.Expr]
}

func newExprGrammar() *exprGrammar {
	g := &exprGrammar{}
	expr := c.Lazy(func() c.Parser[ir.Expr] { return g.expr })

	tok := func(lit string) c.Parser[string] { return c.Lexeme(c.String(lit)) }
	ident := c.Lexeme(c.Regexp(`[a-zA-Z_][a-zA-Z0-9_]*`))

	literal := c.Lexeme(c.Choice(
		c.Map(c.Regexp(`-?[0-9]+\.[0-9]+`), func(s string) ir.Expr {
			v, _ := strconv.ParseFloat(s, 64)
			return ir.FloatLit{Value: v}
		}),
		c.Map(c.Regexp(`-?[0-9]+`), func(s string) ir.Expr {
			v, _ := strconv.ParseInt(s, 10, 64)
			return ir.IntLit{Value: v}
		}),
		c.Map(c.Regexp(`"(?:[^"\\]|\\.)*"`), func(s string) ir.Expr {
			v, _ := strconv.Unquote(s)
			return ir.StringLit{Value: v}
		}),
		c.Map(c.Regexp(`true\b`), func(string) ir.Expr { return ir.BoolLit{Value: true} }),
		c.Map(c.Regexp(`false\b`), func(string) ir.Expr { return ir.BoolLit{Value: false} }),
		c.Map(c.Regexp(`nil\b`), func(string) ir.Expr { return ir.NilLit{} }),
		c.Map(c.Regexp(`:[a-zA-Z_][a-zA-Z0-9_]*`), func(s string) ir.Expr {
			return ir.SymbolLit{Name: s[1:]}
		}),
	))

	array := c.Map(
		c.Between(tok("["), c.SepBy(expr, tok(",")), tok("]")),
		func(elems []ir.Expr) ir.Expr { return ir.ArrayLit{Elems: elems} },
	)

	callArgs := c.Between(tok("("), c.SepBy(expr, tok(",")), tok(")"))

	identOrCall := c.FlatMap(ident, func(name string) c.Parser[ir.Expr] {
		return c.Map(c.Optional(callArgs), func(m c.Maybe[[]ir.Expr]) ir.Expr {
			if m.Present {
				return ir.Call{Method: name, Args: m.Value}
			}
			return ir.Ident{Name: name}
		})
	})

	primary := c.Choice(
		literal,
		array,
		c.Between(tok("("), expr, tok(")")),
		identOrCall,
	)

	// postfix method chains: recv.method or recv.method(args)
	postfix := c.FlatMap(primary, func(recv ir.Expr) c.Parser[ir.Expr] {
		link := c.FlatMap(c.SkipThen(tok("."), ident), func(name string) c.Parser[c.Pair[string, []ir.Expr]] {
			return c.Map(c.Optional(callArgs), func(m c.Maybe[[]ir.Expr]) c.Pair[string, []ir.Expr] {
				return c.Pair[string, []ir.Expr]{First: name, Second: m.Value}
			})
		})
		return c.Map(c.Many(link), func(links []c.Pair[string, []ir.Expr]) ir.Expr {
			out := recv
			for _, l := range links {
				out = ir.Call{Recv: out, Method: l.First, Args: l.Second}
			}
			return out
		})
	})

	binary := func(operand c.Parser[ir.Expr], ops ...string) c.Parser[ir.Expr] {
		opAlts := make([]c.Parser[string], len(ops))
		for i, op := range ops {
			opAlts[i] = tok(op)
		}
		opParser := c.Choice(opAlts...)
		return c.FlatMap(operand, func(first ir.Expr) c.Parser[ir.Expr] {
			tail := c.Seq(opParser, operand)
			return c.Map(c.Many(tail), func(rest []c.Pair[string, ir.Expr]) ir.Expr {
				out := first
				for _, r := range rest {
					out = ir.BinaryOp{Op: r.First, Left: out, Right: r.Second}
				}
				return out
			})
		})
	}

	mul := binary(postfix, "*", "/", "%")
	add := binary(mul, "+", "-")
	// multi-byte operators before their single-byte prefixes
	cmp := binary(add, "==", "!=", "<=", ">=", "<", ">", "&&", "||")

	g.expr = cmp
	return g
}

// Parse parses one complete expression.
func (g *exprGrammar) Parse(input string) (ir.Expr, error) {
	r := c.Exact(g.expr, strings.TrimSpace(input))
	if !r.Ok() {
		return nil, r.Err
	}
	return r.Value, nil
}
