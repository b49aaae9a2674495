package combinator

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	p := String("let")

	r := Run(p, "let x")
	require.True(t, r.Ok())
	assert.Equal(t, "let", r.Value)
	assert.Equal(t, 3, r.Next.Pos)

	r = Run(p, "fn x")
	require.False(t, r.Ok())
	assert.Equal(t, 0, r.Err.Pos)
}

func TestRegexp(t *testing.T) {
	ident := Regexp(`[A-Za-z_][A-Za-z0-9_]*`)

	r := Run(ident, "foo123 bar")
	require.True(t, r.Ok())
	assert.Equal(t, "foo123", r.Value)

	// anchored: must match at the current position
	r = Run(ident, " foo")
	assert.False(t, r.Ok())
}

func TestSeqAndSkips(t *testing.T) {
	p := Seq(String("a"), String("b"))
	r := Run(p, "ab")
	require.True(t, r.Ok())
	assert.Equal(t, Pair[string, string]{"a", "b"}, r.Value)

	keep := SkipThen(String("("), String("x"))
	r2 := Run(keep, "(x")
	require.True(t, r2.Ok())
	assert.Equal(t, "x", r2.Value)

	keep2 := ThenSkip(String("x"), String(")"))
	r3 := Run(keep2, "x)")
	require.True(t, r3.Ok())
	assert.Equal(t, "x", r3.Value)
}

func TestChoiceReportsFurthestFailure(t *testing.T) {
	// "ab" advances one byte before failing; "c" fails immediately.
	p := Choice(
		Map(Seq(String("a"), String("b")), func(Pair[string, string]) string { return "ab" }),
		String("c"),
	)

	r := Run(p, "ax")
	require.False(t, r.Ok())
	assert.Equal(t, 1, r.Err.Pos)
	assert.Contains(t, r.Err.Message, `"b"`)
}

func TestManyStopsOnZeroLengthMatch(t *testing.T) {
	empty := String("")
	r := Run(Many(empty), "aaa")
	require.True(t, r.Ok())
	assert.Empty(t, r.Value)
	assert.Equal(t, 0, r.Next.Pos)
}

func TestMany1(t *testing.T) {
	digits := Many1(Regexp(`[0-9]`))

	r := Run(digits, "123x")
	require.True(t, r.Ok())
	assert.Equal(t, []string{"1", "2", "3"}, r.Value)

	r = Run(digits, "x")
	assert.False(t, r.Ok())
}

func TestOptional(t *testing.T) {
	p := Optional(String("?"))

	r := Run(p, "?rest")
	require.True(t, r.Ok())
	assert.True(t, r.Value.Present)

	r = Run(p, "rest")
	require.True(t, r.Ok())
	assert.False(t, r.Value.Present)
	assert.Equal(t, 0, r.Next.Pos)
}

func TestSepBy1LeavesTrailingSeparator(t *testing.T) {
	p := SepBy1(Regexp(`[a-z]+`), String(","))

	r := Run(p, "a,b,c")
	require.True(t, r.Ok())
	assert.Equal(t, []string{"a", "b", "c"}, r.Value)

	// trailing separator stays unconsumed
	r = Run(p, "a,b,")
	require.True(t, r.Ok())
	assert.Equal(t, []string{"a", "b"}, r.Value)
	assert.Equal(t, 3, r.Next.Pos)
}

func TestBetween(t *testing.T) {
	p := Between(String("["), Regexp(`[0-9]+`), String("]"))
	r := Run(p, "[42]")
	require.True(t, r.Ok())
	assert.Equal(t, "42", r.Value)
}

func TestLabel(t *testing.T) {
	p := Label(Regexp(`[0-9]+`), "expected a number")
	r := Run(p, "abc")
	require.False(t, r.Ok())
	assert.Equal(t, "expected a number", r.Err.Message)
}

func TestLazyRecursion(t *testing.T) {
	// nesting = "()" | "(" nesting ")", counting depth
	var nesting Parser[int]
	nesting = Lazy(func() Parser[int] {
		return Choice(
			Map(String("()"), func(string) int { return 1 }),
			Map(Between(String("("), nesting, String(")")), func(n int) int { return n + 1 }),
		)
	})

	r := Run(nesting, "(((())))")
	require.True(t, r.Ok())
	assert.Equal(t, 4, r.Value)
}

func TestFlatMap(t *testing.T) {
	// parse a count, then that many "x"s
	count := Map(Regexp(`[0-9]`), func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	})
	p := FlatMap(count, func(n int) Parser[string] {
		return String(strings.Repeat("x", n))
	})

	r := Run(p, "3xxx")
	require.True(t, r.Ok())
	assert.Equal(t, "xxx", r.Value)

	r = Run(p, "3xx")
	assert.False(t, r.Ok())
}

func TestExact(t *testing.T) {
	p := Regexp(`[a-z]+`)

	r := Exact(p, "abc")
	assert.True(t, r.Ok())

	r = Exact(p, "abc123")
	require.False(t, r.Ok())
	assert.Equal(t, 3, r.Err.Pos)
}

func TestLexeme(t *testing.T) {
	p := Seq(Lexeme(String("a")), String("b"))
	r := Run(p, "a   b")
	require.True(t, r.Ok())
	assert.Equal(t, 5, r.Next.Pos)
}
