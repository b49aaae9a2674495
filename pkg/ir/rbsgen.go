package ir

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
)

// RBSGen renders a program as an RBS signature file. Unlike the Ruby
// renderer, the type layer survives: aliases become `type` lines,
// interfaces become `interface _Name` blocks, and methods get full
// signatures (inferred or annotated).
type RBSGen struct {
	sb     strings.Builder
	indent int
}

// GenerateRBS renders the whole program.
func GenerateRBS(p *Program) string {
	g := &RBSGen{}
	Walk(p, g)
	return g.sb.String()
}

func (g *RBSGen) line(format string, args ...any) {
	g.sb.WriteString(strings.Repeat("  ", g.indent))
	fmt.Fprintf(&g.sb, format, args...)
	g.sb.WriteByte('\n')
}

func (g *RBSGen) VisitTypeAlias(d *TypeAliasDecl) {
	g.line("type %s = %s", strcase.ToSnake(d.Name), RBSType(d.Definition))
}

func (g *RBSGen) VisitInterface(d *InterfaceDecl) {
	name := "_" + strcase.ToCamel(d.Name)
	if len(d.TypeParams) > 0 {
		name += "[" + strings.Join(d.TypeParams, ", ") + "]"
	}
	g.line("interface %s", name)
	g.indent++
	for _, m := range d.Members {
		g.line("def %s: %s", strcase.ToSnake(m.Name), rbsSignature(m.Params, m.Return))
	}
	g.indent--
	g.line("end")
}

func (g *RBSGen) VisitClass(d *ClassDecl) {
	header := strcase.ToCamel(d.Name)
	if len(d.TypeParams) > 0 {
		header += "[" + strings.Join(d.TypeParams, ", ") + "]"
	}
	if d.SuperClass != "" {
		g.line("class %s < %s", header, d.SuperClass)
	} else {
		g.line("class %s", header)
	}
	g.indent++
	for _, m := range d.Methods {
		m.Accept(g)
	}
	g.indent--
	g.line("end")
}

func (g *RBSGen) VisitMethod(d *MethodDef) {
	g.line("def %s: %s", strcase.ToSnake(d.Name), rbsSignature(d.Params, d.Return))
}

func rbsSignature(params []Param, ret TypeNode) string {
	parts := make([]string, len(params))
	for i, p := range params {
		t := "untyped"
		if p.Type != nil {
			t = RBSType(p.Type)
		}
		parts[i] = fmt.Sprintf("%s %s", t, strcase.ToSnake(p.Name))
	}
	r := "untyped"
	if ret != nil {
		r = RBSType(ret)
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), r)
}

// RBSType renders a type node in RBS syntax: generics use brackets, unions
// and intersections keep their operators, nullable is the `?` suffix,
// function types become proc types.
func RBSType(t TypeNode) string {
	switch t := t.(type) {
	case SimpleType:
		return rbsName(t.Name)
	case GenericType:
		args := make([]string, len(t.Args))
		for i, a := range t.Args {
			args[i] = RBSType(a)
		}
		return rbsName(t.Base) + "[" + strings.Join(args, ", ") + "]"
	case UnionType:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = RBSType(m)
		}
		return strings.Join(parts, " | ")
	case IntersectionType:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			if _, ok := m.(UnionType); ok {
				parts[i] = "(" + RBSType(m) + ")"
			} else {
				parts[i] = RBSType(m)
			}
		}
		return strings.Join(parts, " & ")
	case NullableType:
		switch t.Inner.(type) {
		case UnionType, IntersectionType, FunctionType:
			return "(" + RBSType(t.Inner) + ")?"
		default:
			return RBSType(t.Inner) + "?"
		}
	case FunctionType:
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			params[i] = RBSType(p)
		}
		return fmt.Sprintf("^(%s) -> %s", strings.Join(params, ", "), RBSType(t.Return))
	case TupleType:
		elems := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = RBSType(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case LiteralType:
		return t.Value
	default:
		return "untyped"
	}
}

// rbsName maps TRB builtin names onto their RBS spellings.
func rbsName(name string) string {
	switch name {
	case "Boolean":
		return "bool"
	case "void":
		return "void"
	case "nil":
		return "nil"
	default:
		return name
	}
}
