package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trb-lang/trb/pkg/ir"
)

func aliasProgram(path, name string, def ir.TypeNode) *ir.Program {
	return &ir.Program{Path: path, Decls: []ir.Decl{
		&ir.TypeAliasDecl{Name: name, Definition: def},
	}}
}

func TestRegisterAndFind(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Integer"}))

	entry, ok := c.FindDefinition("Id")
	require.True(t, ok)
	assert.Equal(t, "a.trb", entry.File)
	assert.Equal(t, KindType, entry.Kind)

	_, ok = c.FindDefinition("Missing")
	assert.False(t, ok)
}

func TestDuplicateDefinitionWarnsAndFirstWriterWins(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Integer"}))
	c.RegisterFile("b.trb", aliasProgram("b.trb", "Id", ir.SimpleType{Name: "String"}))

	// the first registration stays authoritative
	entry, ok := c.FindDefinition("Id")
	require.True(t, ok)
	assert.Equal(t, "a.trb", entry.File)

	diags := c.CheckAll()
	require.Len(t, diags, 1)
	assert.Equal(t, ir.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "a.trb")
	assert.Contains(t, diags[0].Message, "b.trb")
	assert.Contains(t, diags[0].Message, "the definition in a.trb wins")
	assert.False(t, ir.HasErrors(diags))
}

func TestUnresolvedReferenceInAlias(t *testing.T) {
	c := New()
	c.RegisterFile("pair.trb", aliasProgram("pair.trb", "Pair",
		ir.GenericType{Base: "Hash", Args: []ir.TypeNode{
			ir.SimpleType{Name: "String"},
			ir.SimpleType{Name: "NotDefined"},
		}}))

	diags := c.CheckAll()
	require.Len(t, diags, 1)
	assert.Equal(t, ir.SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "NotDefined")
	assert.Equal(t, "NotDefined", diags[0].Actual)
	assert.NotEmpty(t, diags[0].Suggestion)
}

func TestAliasMayReferenceOtherRegisteredAlias(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Integer"}))
	c.RegisterFile("b.trb", aliasProgram("b.trb", "Ids",
		ir.GenericType{Base: "Array", Args: []ir.TypeNode{ir.SimpleType{Name: "Id"}}}))

	assert.Empty(t, c.CheckAll())
}

func TestReRegisterReplacesFileContribution(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Integer"}))
	c.RegisterFile("b.trb", aliasProgram("b.trb", "Id", ir.SimpleType{Name: "String"}))

	// recompile a.trb without the Id definition: b.trb is next in
	// registration order, so its definition stops being shadowed
	c.RegisterFile("a.trb", &ir.Program{Path: "a.trb"})

	entry, ok := c.FindDefinition("Id")
	require.True(t, ok)
	assert.Equal(t, "b.trb", entry.File)
	assert.Empty(t, c.CheckAll())
}

func TestRecompileWinnerKeepsDuplicateWarning(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Integer"}))
	c.RegisterFile("b.trb", aliasProgram("b.trb", "Id", ir.SimpleType{Name: "String"}))
	require.Len(t, c.CheckAll(), 1)

	// recompiling the winning file must not silence the warning while
	// b.trb's definition stays shadowed
	c.RegisterFile("a.trb", aliasProgram("a.trb", "Id", ir.SimpleType{Name: "Float"}))

	entry, ok := c.FindDefinition("Id")
	require.True(t, ok)
	assert.Equal(t, "a.trb", entry.File)

	diags := c.CheckAll()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "a.trb")
	assert.Contains(t, diags[0].Message, "b.trb")
}

func TestDuplicateWithinOneFile(t *testing.T) {
	c := New()
	c.RegisterFile("a.trb", &ir.Program{Path: "a.trb", Decls: []ir.Decl{
		&ir.TypeAliasDecl{Name: "Id", Definition: ir.SimpleType{Name: "Integer"}},
		&ir.TypeAliasDecl{Name: "Id", Definition: ir.SimpleType{Name: "String"}},
	}})

	diags := c.CheckAll()
	require.Len(t, diags, 1)
	assert.Equal(t, ir.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "Id is defined twice in a.trb")
	assert.NotContains(t, diags[0].Message, "both")
}

func TestCheckFileMethodSignatures(t *testing.T) {
	c := New()
	p := &ir.Program{Path: "m.trb", Decls: []ir.Decl{
		&ir.MethodDef{
			Name:   "lookup",
			Params: []ir.Param{{Name: "key", Type: ir.SimpleType{Name: "Key"}}},
			Return: ir.SimpleType{Name: "String"},
		},
	}}

	diags := c.CheckFile("m.trb", p)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Key")

	// once Key is registered the same file checks clean
	c.RegisterFile("key.trb", aliasProgram("key.trb", "Key", ir.SimpleType{Name: "String"}))
	assert.Empty(t, c.CheckFile("m.trb", p))
}

func TestCheckFileTypeParamsAreLocal(t *testing.T) {
	c := New()
	p := &ir.Program{Path: "box.trb", Decls: []ir.Decl{
		&ir.ClassDecl{
			Name:       "Box",
			TypeParams: []string{"T"},
			Methods: []*ir.MethodDef{
				{
					Name:   "get",
					Return: ir.SimpleType{Name: "T"},
				},
			},
		},
	}}
	assert.Empty(t, c.CheckFile("box.trb", p))
}

func TestCheckFileInterfaceMembers(t *testing.T) {
	c := New()
	p := &ir.Program{Path: "i.trb", Decls: []ir.Decl{
		&ir.InterfaceDecl{
			Name: "Printable",
			Members: []ir.InterfaceMember{
				{Name: "print", Params: []ir.Param{{Name: "out", Type: ir.SimpleType{Name: "Sink"}}}},
			},
		},
	}}
	diags := c.CheckFile("i.trb", p)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Sink")
}

func TestUnresolvedReportedOncePerType(t *testing.T) {
	c := New()
	c.RegisterFile("twice.trb", aliasProgram("twice.trb", "Both",
		ir.UnionType{Members: []ir.TypeNode{
			ir.SimpleType{Name: "Ghost"},
			ir.GenericType{Base: "Array", Args: []ir.TypeNode{ir.SimpleType{Name: "Ghost"}}},
		}}))

	diags := c.CheckAll()
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "Ghost")
}
