package parser

import (
	"github.com/trb-lang/trb/pkg/combinator"
	"github.com/trb-lang/trb/pkg/ir"
)

// Raw declaration records, as produced by the regex front end. Type
// positions hold unparsed type strings; the Builder parses each through
// the grammar.

type RawParam struct {
	Name string
	Type string // empty when unannotated
}

type RawMethod struct {
	Name       string
	Params     []RawParam
	Return     string // empty when unannotated
	TypeParams []string
	Body       []ir.Stmt
	Line       int
}

type RawAlias struct {
	Name       string
	Definition string
	Line       int
}

type RawInterfaceMember struct {
	Name   string
	Params []RawParam
	Return string
}

type RawInterface struct {
	Name       string
	TypeParams []string
	Members    []RawInterfaceMember
	Line       int
}

type RawClass struct {
	Name       string
	SuperClass string
	TypeParams []string
	Methods    []RawMethod
	Line       int
}

type RawProgram struct {
	Path       string
	Aliases    []RawAlias
	Interfaces []RawInterface
	Classes    []RawClass
	Methods    []RawMethod
}

// Builder converts raw records into IR, parsing every embedded type string
// through one shared grammar. A malformed type string is fatal only to that
// one annotation: it becomes an untyped placeholder (nil) and a diagnostic,
// never an aborted file.
type Builder struct {
	grammar *Grammar
	diags   []ir.Diagnostic
	path    string
}

func NewBuilder() *Builder {
	return &Builder{grammar: NewGrammar()}
}

// Build assembles a program. The returned diagnostics carry the byte offset
// of each type parse failure, already scoped to the record's line.
func (b *Builder) Build(raw RawProgram) (*ir.Program, []ir.Diagnostic) {
	b.diags = nil
	b.path = raw.Path

	prog := &ir.Program{Path: raw.Path}
	for _, a := range raw.Aliases {
		prog.Decls = append(prog.Decls, &ir.TypeAliasDecl{
			Name:       a.Name,
			Definition: b.parseType(a.Definition, a.Line),
			Loc:        &ir.SourceLocation{Path: raw.Path, Line: a.Line},
		})
	}
	for _, i := range raw.Interfaces {
		decl := &ir.InterfaceDecl{
			Name:       i.Name,
			TypeParams: i.TypeParams,
			Loc:        &ir.SourceLocation{Path: raw.Path, Line: i.Line},
		}
		for _, m := range i.Members {
			decl.Members = append(decl.Members, ir.InterfaceMember{
				Name:   m.Name,
				Params: b.params(m.Params, i.Line),
				Return: b.parseOptionalType(m.Return, i.Line),
			})
		}
		prog.Decls = append(prog.Decls, decl)
	}
	for _, cls := range raw.Classes {
		decl := &ir.ClassDecl{
			Name:       cls.Name,
			SuperClass: cls.SuperClass,
			TypeParams: cls.TypeParams,
			Loc:        &ir.SourceLocation{Path: raw.Path, Line: cls.Line},
		}
		for _, m := range cls.Methods {
			decl.Methods = append(decl.Methods, b.method(m))
		}
		prog.Decls = append(prog.Decls, decl)
	}
	for _, m := range raw.Methods {
		prog.Decls = append(prog.Decls, b.method(m))
	}
	return prog, b.diags
}

func (b *Builder) method(m RawMethod) *ir.MethodDef {
	return &ir.MethodDef{
		Name:       m.Name,
		Params:     b.params(m.Params, m.Line),
		Return:     b.parseOptionalType(m.Return, m.Line),
		TypeParams: m.TypeParams,
		Body:       m.Body,
		Loc:        &ir.SourceLocation{Path: b.path, Line: m.Line},
	}
}

func (b *Builder) params(raw []RawParam, line int) []ir.Param {
	params := make([]ir.Param, len(raw))
	for i, p := range raw {
		params[i] = ir.Param{Name: p.Name, Type: b.parseOptionalType(p.Type, line)}
	}
	return params
}

func (b *Builder) parseOptionalType(src string, line int) ir.TypeNode {
	if src == "" {
		return nil
	}
	return b.parseType(src, line)
}

func (b *Builder) parseType(src string, line int) ir.TypeNode {
	t, err := b.grammar.Parse(src)
	if err != nil {
		col := 1
		if f, ok := err.(*combinator.Failure); ok {
			col = f.Pos + 1
		}
		b.diags = append(b.diags, ir.Diagnostic{
			Message:  err.Error(),
			Path:     b.path,
			Line:     line,
			Col:      col,
			Actual:   src,
			Severity: ir.SeverityError,
		})
		return nil
	}
	return t
}
