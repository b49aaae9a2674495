// Package parser turns TRB type syntax and raw declaration records into IR.
// The type grammar is built from the combinator package; precedence from
// tightest to loosest is function/tuple/parenthesized/generic-or-simple,
// then the `?` nullable suffix, then `&` chains, then `|` chains.
package parser

import (
	c "github.com/trb-lang/trb/pkg/combinator"
	"github.com/trb-lang/trb/pkg/ir"
)

// Grammar is a type-expression parser, built once per parsing session.
type Grammar struct {
	typeExpr c.Parser[ir.TypeNode]
}

// NewGrammar constructs the grammar. The top-level rule is forward-declared
// through a Lazy wrapper so atoms can recurse into it (generic arguments,
// tuple elements, function signatures all contain full type expressions).
func NewGrammar() *Grammar {
	g := &Grammar{}
	typeExpr := c.Lazy(func() c.Parser[ir.TypeNode] { return g.typeExpr })

	tok := func(lit string) c.Parser[string] { return c.Lexeme(c.String(lit)) }
	ident := c.Lexeme(c.Regexp(`[A-Za-z_][A-Za-z0-9_]*`))

	literal := c.Label(c.Lexeme(c.Map(
		c.Choice(
			c.Regexp(`"(?:[^"\\]|\\.)*"`),
			c.Regexp(`-?[0-9]+(?:\.[0-9]+)?`),
			c.Regexp(`(?:true|false)\b`),
		),
		func(v string) ir.TypeNode { return ir.LiteralType{Value: v} },
	)), "expected a literal type")

	genericOrSimple := c.FlatMap(ident, func(name string) c.Parser[ir.TypeNode] {
		args := c.Between(tok("<"), c.SepBy1(typeExpr, tok(",")), tok(">"))
		return c.Map(c.Optional(args), func(m c.Maybe[[]ir.TypeNode]) ir.TypeNode {
			if m.Present {
				return ir.GenericType{Base: name, Args: m.Value}
			}
			return ir.SimpleType{Name: name}
		})
	})

	paren := c.Between(tok("("), typeExpr, tok(")"))

	function := c.FlatMap(
		c.Between(tok("("), c.SepBy(typeExpr, tok(",")), tok(")")),
		func(params []ir.TypeNode) c.Parser[ir.TypeNode] {
			return c.Map(c.SkipThen(tok("->"), typeExpr), func(ret ir.TypeNode) ir.TypeNode {
				return ir.FunctionType{Params: params, Return: ret}
			})
		},
	)

	tuple := c.Map(
		c.Between(tok("["), c.SepBy1(typeExpr, tok(",")), tok("]")),
		func(elems []ir.TypeNode) ir.TypeNode { return ir.TupleType{Elems: elems} },
	)

	// function before paren: "(A) -> B" must not stop at "(A)"
	atom := c.Choice(function, tuple, paren, literal, genericOrSimple)

	// at most one `?`; a second suffix is a syntax error, left for the
	// caller's trailing-input check to reject
	postfix := c.FlatMap(atom, func(t ir.TypeNode) c.Parser[ir.TypeNode] {
		return c.Map(c.Optional(tok("?")), func(m c.Maybe[string]) ir.TypeNode {
			if m.Present {
				return ir.NewNullable(t)
			}
			return t
		})
	})

	intersection := c.Map(c.SepBy1(postfix, tok("&")), ir.NewIntersection)
	union := c.Map(c.SepBy1(intersection, tok("|")), ir.NewUnion)

	g.typeExpr = c.Label(union, "expected a type expression")
	return g
}

// Parse parses a complete type expression. Failures keep the furthest byte
// offset reached, for later translation to line/column diagnostics.
func (g *Grammar) Parse(input string) (ir.TypeNode, error) {
	lead := 0
	for lead < len(input) && (input[lead] == ' ' || input[lead] == '\t') {
		lead++
	}
	r := c.Exact(g.typeExpr, input[lead:])
	if !r.Ok() {
		return nil, &c.Failure{Message: r.Err.Message, Pos: r.Err.Pos + lead}
	}
	return r.Value, nil
}

// ParseType parses input with a fresh grammar. Callers parsing many
// expressions should construct a Grammar once and reuse it.
func ParseType(input string) (ir.TypeNode, error) {
	return NewGrammar().Parse(input)
}
