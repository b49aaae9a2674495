package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// RubyGen renders a program as plain Ruby. The target runtime has no type
// layer, so type aliases and interfaces are erased: they survive only as
// comments, and parameter/return annotations are dropped.
type RubyGen struct {
	sb     strings.Builder
	indent int
}

// GenerateRuby renders the whole program.
func GenerateRuby(p *Program) string {
	g := &RubyGen{}
	Walk(p, g)
	return g.sb.String()
}

func (g *RubyGen) line(format string, args ...any) {
	g.sb.WriteString(strings.Repeat("  ", g.indent))
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteByte('\n')
}

func (g *RubyGen) VisitTypeAlias(d *TypeAliasDecl) {
	g.line("# type %s = %s", d.Name, d.Definition)
}

func (g *RubyGen) VisitInterface(d *InterfaceDecl) {
	g.line("# interface %s", d.Name)
	for _, m := range d.Members {
		g.line("#   %s%s: %s", m.Name, rubyParamComment(m.Params), m.Return)
	}
}

func rubyParamComment(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		if p.Type != nil {
			parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
		} else {
			parts[i] = p.Name
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (g *RubyGen) VisitClass(d *ClassDecl) {
	if d.SuperClass != "" {
		g.line("class %s < %s", d.Name, d.SuperClass)
	} else {
		g.line("class %s", d.Name)
	}
	g.indent++
	for _, m := range d.Methods {
		m.Accept(g)
	}
	g.indent--
	g.line("end")
}

func (g *RubyGen) VisitMethod(d *MethodDef) {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = strcase.ToSnake(p.Name)
	}
	if len(names) > 0 {
		g.line("def %s(%s)", strcase.ToSnake(d.Name), strings.Join(names, ", "))
	} else {
		g.line("def %s", strcase.ToSnake(d.Name))
	}
	g.indent++
	for _, s := range d.Body {
		g.stmt(s)
	}
	g.indent--
	g.line("end")
}

func (g *RubyGen) stmt(s Stmt) {
	switch s := s.(type) {
	case ExprStmt:
		g.line("%s", RubyExpr(s.E))
	case AssignStmt:
		g.line("%s = %s", strcase.ToSnake(s.Name), RubyExpr(s.Value))
	case ReturnStmt:
		if s.Value == nil {
			g.line("return")
		} else {
			g.line("return %s", RubyExpr(s.Value))
		}
	}
}

// RubyExpr renders one expression in Ruby syntax.
func RubyExpr(e Expr) string {
	switch e := e.(type) {
	case IntLit:
		return strconv.FormatInt(e.Value, 10)
	case FloatLit:
		return strconv.FormatFloat(e.Value, 'g', -1, 64)
	case StringLit:
		return strconv.Quote(e.Value)
	case BoolLit:
		return strconv.FormatBool(e.Value)
	case NilLit:
		return "nil"
	case SymbolLit:
		return ":" + e.Name
	case Ident:
		return strcase.ToSnake(e.Name)
	case BinaryOp:
		return fmt.Sprintf("%s %s %s", RubyExpr(e.Left), e.Op, RubyExpr(e.Right))
	case Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = RubyExpr(a)
		}
		call := strcase.ToSnake(e.Method)
		if len(args) > 0 {
			call += "(" + strings.Join(args, ", ") + ")"
		}
		if e.Recv != nil {
			return RubyExpr(e.Recv) + "." + call
		}
		return call
	case ArrayLit:
		elems := make([]string, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = RubyExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return ""
	}
}
