// Package ir defines the typed intermediate representation shared by the
// parser, the inference engine, the cross-file checker and the renderers:
// type nodes, declarations, method-body statements and expressions, and a
// visitor protocol for folding programs back into text.
package ir

// SourceLocation is a non-owning annotation pointing back into the source.
type SourceLocation struct {
	Path string
	Line int
	Col  int
}

// Program owns an ordered list of declarations parsed from one file.
type Program struct {
	Path  string
	Decls []Decl
}

// Decl is the closed set of top-level declarations.
type Decl interface {
	decl()
	DeclName() string
	Accept(Visitor)
}

// TypeAliasDecl is `type Name = Definition`.
type TypeAliasDecl struct {
	Name       string
	Definition TypeNode
	Loc        *SourceLocation
}

// InterfaceMember is a method signature inside an interface.
type InterfaceMember struct {
	Name   string
	Params []Param
	Return TypeNode
}

// InterfaceDecl declares a structural interface.
type InterfaceDecl struct {
	Name       string
	TypeParams []string
	Members    []InterfaceMember
	Loc        *SourceLocation
}

// ClassDecl declares a class with an optional superclass.
type ClassDecl struct {
	Name       string
	SuperClass string
	TypeParams []string
	Methods    []*MethodDef
	Loc        *SourceLocation
}

// Param is a method parameter; Type is nil when unannotated.
type Param struct {
	Name string
	Type TypeNode
}

// MethodDef defines a method. Return is nil when the annotation is absent
// and inference should supply one.
type MethodDef struct {
	Name       string
	Params     []Param
	Return     TypeNode
	TypeParams []string
	Body       []Stmt
	Loc        *SourceLocation
}

func (*TypeAliasDecl) decl() {}
func (*InterfaceDecl) decl() {}
func (*ClassDecl) decl()     {}
func (*MethodDef) decl()     {}

func (d *TypeAliasDecl) DeclName() string { return d.Name }
func (d *InterfaceDecl) DeclName() string { return d.Name }
func (d *ClassDecl) DeclName() string     { return d.Name }
func (d *MethodDef) DeclName() string     { return d.Name }

// Stmt is the closed set of method-body statements.
type Stmt interface {
	stmt()
}

// ExprStmt evaluates an expression for effect.
type ExprStmt struct {
	E Expr
}

// AssignStmt is `name = value`, optionally annotated `name: Type = value`.
type AssignStmt struct {
	Name  string
	Type  TypeNode
	Value Expr
}

// ReturnStmt is `return value`; Value may be nil for a bare return.
type ReturnStmt struct {
	Value Expr
}

func (ExprStmt) stmt()   {}
func (AssignStmt) stmt() {}
func (ReturnStmt) stmt() {}

// Expr is the closed set of method-body expressions.
type Expr interface {
	expr()
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Value float64
}

// StringLit is a string literal; Value is unquoted.
type StringLit struct {
	Value string
}

// BoolLit is true or false.
type BoolLit struct {
	Value bool
}

// NilLit is the nil literal.
type NilLit struct{}

// SymbolLit is a Ruby-style symbol, :name.
type SymbolLit struct {
	Name string
}

// Ident references a variable or parameter.
type Ident struct {
	Name string
}

// BinaryOp applies an infix operator.
type BinaryOp struct {
	Op    string
	Left  Expr
	Right Expr
}

// Call invokes a method, with an optional receiver.
type Call struct {
	Recv   Expr
	Method string
	Args   []Expr
}

// ArrayLit is [e1, e2, ...].
type ArrayLit struct {
	Elems []Expr
}

func (IntLit) expr()    {}
func (FloatLit) expr()  {}
func (StringLit) expr() {}
func (BoolLit) expr()   {}
func (NilLit) expr()    {}
func (SymbolLit) expr() {}
func (Ident) expr()     {}
func (BinaryOp) expr()  {}
func (Call) expr()      {}
func (ArrayLit) expr()  {}

// Visitor folds declarations. The renderers in this package implement it;
// external consumers (emitters, the language server) may too.
type Visitor interface {
	VisitTypeAlias(*TypeAliasDecl)
	VisitInterface(*InterfaceDecl)
	VisitClass(*ClassDecl)
	VisitMethod(*MethodDef)
}

func (d *TypeAliasDecl) Accept(v Visitor) { v.VisitTypeAlias(d) }
func (d *InterfaceDecl) Accept(v Visitor) { v.VisitInterface(d) }
func (d *ClassDecl) Accept(v Visitor)     { v.VisitClass(d) }
func (d *MethodDef) Accept(v Visitor)     { v.VisitMethod(d) }

// Walk feeds every declaration in the program to v in order.
func Walk(p *Program, v Visitor) {
	for _, d := range p.Decls {
		d.Accept(v)
	}
}
