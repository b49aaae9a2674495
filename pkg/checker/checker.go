// Package checker maintains the cross-file registry of global type,
// interface and function names sourced from many IR programs, and validates
// that every type reference resolves to a built-in or a registered
// definition. Findings are data, not exceptions: a full report over all
// files comes back from one pass.
package checker

import (
	"fmt"
	"sort"

	"github.com/trb-lang/trb/pkg/ir"
)

// Builtins is the fixed set of names that resolve without registration.
var Builtins = map[string]bool{
	"String": true, "Integer": true, "Float": true, "Boolean": true,
	"Array": true, "Hash": true, "Symbol": true, "void": true,
	"nil": true, "Object": true, "Numeric": true, "Enumerable": true,
}

// Kind classifies a registry entry.
type Kind string

const (
	KindType      Kind = "type"
	KindInterface Kind = "interface"
	KindFunction  Kind = "function"
)

// Entry is one authoritative global definition.
type Entry struct {
	Name string
	File string
	Kind Kind
	Decl ir.Decl
}

// duplicate retains both file identities of a name defined twice, for
// diagnostics. The first writer stays authoritative. Both fields hold the
// same path when one file defines the name twice.
type duplicate struct {
	Name       string
	FirstFile  string
	SecondFile string
}

// Checker is one compilation session's registry. Construct one per
// session; it is never shared across concurrent sessions.
type Checker struct {
	registry   map[string]Entry
	duplicates []duplicate
	files      map[string]*ir.Program
	order      []string
}

func New() *Checker {
	return &Checker{
		registry: map[string]Entry{},
		files:    map[string]*ir.Program{},
	}
}

// RegisterFile records the program as path's current contribution and
// re-derives the registry. Calling it again for the same path replaces that
// file's contribution, which is what the incremental compiler relies on
// after a recompile.
func (c *Checker) RegisterFile(path string, p *ir.Program) {
	if _, seen := c.files[path]; !seen {
		c.order = append(c.order, path)
	}
	c.files[path] = p
	c.rebuild()
}

// rebuild re-derives the registry and the duplicate records from every
// registered file, in registration order. Deriving instead of storing means
// a recompile of either file keeps the duplicate warning alive, and a file
// that stops defining a name un-shadows the next writer.
func (c *Checker) rebuild() {
	c.registry = map[string]Entry{}
	c.duplicates = nil
	for _, path := range c.order {
		for _, d := range c.files[path].Decls {
			var kind Kind
			switch d.(type) {
			case *ir.TypeAliasDecl, *ir.ClassDecl:
				kind = KindType
			case *ir.InterfaceDecl:
				kind = KindInterface
			case *ir.MethodDef:
				kind = KindFunction
			}
			name := d.DeclName()
			if existing, ok := c.registry[name]; ok {
				// first writer wins; remember both files for the report
				c.duplicates = append(c.duplicates, duplicate{
					Name:       name,
					FirstFile:  existing.File,
					SecondFile: path,
				})
				continue
			}
			c.registry[name] = Entry{Name: name, File: path, Kind: kind, Decl: d}
		}
	}
}

// FindDefinition resolves a global name to its authoritative entry.
func (c *Checker) FindDefinition(name string) (Entry, bool) {
	e, ok := c.registry[name]
	return e, ok
}

// CheckAll runs the global pass: duplicate-definition warnings, an
// unresolved-reference scan over every alias definition, and the
// interface-implementation check.
func (c *Checker) CheckAll() []ir.Diagnostic {
	var diags []ir.Diagnostic

	for _, d := range c.duplicates {
		message := fmt.Sprintf("%s is defined in both %s and %s; the definition in %s wins",
			d.Name, d.FirstFile, d.SecondFile, d.FirstFile)
		if d.FirstFile == d.SecondFile {
			message = fmt.Sprintf("%s is defined twice in %s; the first definition wins",
				d.Name, d.FirstFile)
		}
		diags = append(diags, ir.Diagnostic{
			Message:  message,
			Path:     d.SecondFile,
			Severity: ir.SeverityWarning,
		})
	}

	for _, path := range c.order {
		p := c.files[path]
		for _, d := range p.Decls {
			alias, ok := d.(*ir.TypeAliasDecl)
			if !ok || alias.Definition == nil {
				continue
			}
			diags = append(diags, c.unresolvedRefs(path, alias.Loc, alias.Definition, nil)...)
		}
	}

	diags = append(diags, c.checkInterfaceImplementations()...)
	return diags
}

// CheckFile validates one file's method parameter and return types against
// the builtin-or-registry rule, independent of the global pass. Declared
// type parameters count as locally resolvable.
func (c *Checker) CheckFile(path string, p *ir.Program) []ir.Diagnostic {
	var diags []ir.Diagnostic
	check := func(loc *ir.SourceLocation, t ir.TypeNode, typeParams []string) {
		if t == nil {
			return
		}
		local := map[string]bool{}
		for _, tp := range typeParams {
			local[tp] = true
		}
		diags = append(diags, c.unresolvedRefs(path, loc, t, local)...)
	}
	for _, d := range p.Decls {
		switch d := d.(type) {
		case *ir.MethodDef:
			for _, param := range d.Params {
				check(d.Loc, param.Type, d.TypeParams)
			}
			check(d.Loc, d.Return, d.TypeParams)
		case *ir.ClassDecl:
			for _, m := range d.Methods {
				scope := append(append([]string{}, d.TypeParams...), m.TypeParams...)
				for _, param := range m.Params {
					check(m.Loc, param.Type, scope)
				}
				check(m.Loc, m.Return, scope)
			}
		case *ir.InterfaceDecl:
			for _, m := range d.Members {
				for _, param := range m.Params {
					check(d.Loc, param.Type, d.TypeParams)
				}
				check(d.Loc, m.Return, d.TypeParams)
			}
		}
	}
	return diags
}

// unresolvedRefs walks every name the type references, recursing through
// generic, union, intersection, nullable, function and tuple structure.
func (c *Checker) unresolvedRefs(path string, loc *ir.SourceLocation, t ir.TypeNode, local map[string]bool) []ir.Diagnostic {
	var diags []ir.Diagnostic
	seen := map[string]bool{}
	refs := t.ReferencedSymbols()
	sort.Strings(refs)
	for _, name := range refs {
		if seen[name] || Builtins[name] || local[name] {
			continue
		}
		seen[name] = true
		if _, ok := c.registry[name]; ok {
			continue
		}
		d := ir.Diagnostic{
			Message:    fmt.Sprintf("unresolved type reference: %s", name),
			Path:       path,
			Expected:   "a built-in or registered type",
			Actual:     name,
			Suggestion: fmt.Sprintf("define %s or import the file that defines it", name),
			Severity:   ir.SeverityError,
		}
		if loc != nil {
			d.Line = loc.Line
			d.Col = loc.Col
		}
		diags = append(diags, d)
	}
	return diags
}

// checkInterfaceImplementations is the class/interface conformance pass.
// Nothing is checked yet; the hook exists so the global pass ordering is
// already right when conformance rules land.
func (c *Checker) checkInterfaceImplementations() []ir.Diagnostic {
	return nil
}
