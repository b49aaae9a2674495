// Package combinator provides generic parser combinators for building
// recursive-descent parsers without a generated grammar. A parser is a pure
// function from an input state to a result; combinators compose parsers into
// new parsers. No combinator performs I/O or mutates its input.
package combinator

import (
	"fmt"
	"regexp"
	"strings"
)

// State is an immutable cursor into the input string.
type State struct {
	Input string
	Pos   int
}

// Rest returns the unconsumed portion of the input.
func (s State) Rest() string {
	if s.Pos >= len(s.Input) {
		return ""
	}
	return s.Input[s.Pos:]
}

// Advance returns a new state moved forward by n bytes.
func (s State) Advance(n int) State {
	return State{Input: s.Input, Pos: s.Pos + n}
}

// Failure describes a parse failure at a byte offset. Pos is the furthest
// position the failing parser reached, which Choice uses to report the most
// informative alternative.
type Failure struct {
	Message string
	Pos     int
}

func (f *Failure) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", f.Pos, f.Message)
}

// Result holds either a parsed value and the next state, or a failure.
type Result[T any] struct {
	Value T
	Next  State
	Err   *Failure
}

// Ok reports whether the parse succeeded.
func (r Result[T]) Ok() bool {
	return r.Err == nil
}

// Parser consumes input starting at a state and produces a Result.
type Parser[T any] func(State) Result[T]

func success[T any](v T, next State) Result[T] {
	return Result[T]{Value: v, Next: next}
}

func failure[T any](msg string, pos int) Result[T] {
	return Result[T]{Err: &Failure{Message: msg, Pos: pos}}
}

// Run applies the parser to input from the beginning.
func Run[T any](p Parser[T], input string) Result[T] {
	return p(State{Input: input})
}

// Exact is like Run but additionally requires the parser to consume the
// entire input.
func Exact[T any](p Parser[T], input string) Result[T] {
	r := Run(p, input)
	if !r.Ok() {
		return r
	}
	if r.Next.Pos != len(input) {
		return failure[T](fmt.Sprintf("unexpected trailing input %q", r.Next.Rest()), r.Next.Pos)
	}
	return r
}

// String matches a literal string.
func String(lit string) Parser[string] {
	return func(s State) Result[string] {
		if strings.HasPrefix(s.Rest(), lit) {
			return success(lit, s.Advance(len(lit)))
		}
		return failure[string](fmt.Sprintf("expected %q", lit), s.Pos)
	}
}

// Regexp matches a regular expression anchored at the current position. The
// pattern is compiled once, at construction.
func Regexp(pattern string) Parser[string] {
	re := regexp.MustCompile(`^(?:` + pattern + `)`)
	return func(s State) Result[string] {
		m := re.FindString(s.Rest())
		if m == "" {
			return failure[string](fmt.Sprintf("expected pattern %s", pattern), s.Pos)
		}
		return success(m, s.Advance(len(m)))
	}
}

// TakeWhile1 consumes one or more bytes satisfying pred. The desc string
// names the expected class in failure messages.
func TakeWhile1(desc string, pred func(byte) bool) Parser[string] {
	return func(s State) Result[string] {
		rest := s.Rest()
		n := 0
		for n < len(rest) && pred(rest[n]) {
			n++
		}
		if n == 0 {
			return failure[string]("expected "+desc, s.Pos)
		}
		return success(rest[:n], s.Advance(n))
	}
}

// Pair is the product of two sequenced parse values.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Seq runs a then b, pairing both results.
func Seq[A, B any](a Parser[A], b Parser[B]) Parser[Pair[A, B]] {
	return func(s State) Result[Pair[A, B]] {
		ra := a(s)
		if !ra.Ok() {
			return failure[Pair[A, B]](ra.Err.Message, ra.Err.Pos)
		}
		rb := b(ra.Next)
		if !rb.Ok() {
			return failure[Pair[A, B]](rb.Err.Message, rb.Err.Pos)
		}
		return success(Pair[A, B]{ra.Value, rb.Value}, rb.Next)
	}
}

// SkipThen runs a then b, keeping only b's value.
func SkipThen[A, B any](a Parser[A], b Parser[B]) Parser[B] {
	return func(s State) Result[B] {
		ra := a(s)
		if !ra.Ok() {
			return failure[B](ra.Err.Message, ra.Err.Pos)
		}
		return b(ra.Next)
	}
}

// ThenSkip runs a then b, keeping only a's value.
func ThenSkip[A, B any](a Parser[A], b Parser[B]) Parser[A] {
	return func(s State) Result[A] {
		ra := a(s)
		if !ra.Ok() {
			return ra
		}
		rb := b(ra.Next)
		if !rb.Ok() {
			return failure[A](rb.Err.Message, rb.Err.Pos)
		}
		return success(ra.Value, rb.Next)
	}
}

// Choice tries each alternative in order and returns the first success.
// On total failure it propagates the failure that advanced furthest.
func Choice[T any](alts ...Parser[T]) Parser[T] {
	return func(s State) Result[T] {
		var furthest *Failure
		for _, alt := range alts {
			r := alt(s)
			if r.Ok() {
				return r
			}
			if furthest == nil || r.Err.Pos > furthest.Pos {
				furthest = r.Err
			}
		}
		if furthest == nil {
			return failure[T]("no alternatives", s.Pos)
		}
		return Result[T]{Err: furthest}
	}
}

// Map transforms a successful parse value with a pure function.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(s State) Result[B] {
		r := p(s)
		if !r.Ok() {
			return failure[B](r.Err.Message, r.Err.Pos)
		}
		return success(f(r.Value), r.Next)
	}
}

// FlatMap feeds a successful parse value into a function producing the next
// parser, which continues from where the first left off.
func FlatMap[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(s State) Result[B] {
		r := p(s)
		if !r.Ok() {
			return failure[B](r.Err.Message, r.Err.Pos)
		}
		return f(r.Value)(r.Next)
	}
}

// Many applies p zero or more times, collecting values. Iteration stops on
// the first failure, or if p succeeds without consuming input, which would
// otherwise loop forever.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(s State) Result[[]T] {
		var vals []T
		cur := s
		for {
			r := p(cur)
			if !r.Ok() {
				return success(vals, cur)
			}
			if r.Next.Pos == cur.Pos {
				// zero-length match; stop rather than spin
				return success(vals, cur)
			}
			vals = append(vals, r.Value)
			cur = r.Next
		}
	}
}

// Many1 is Many requiring at least one match.
func Many1[T any](p Parser[T]) Parser[[]T] {
	return func(s State) Result[[]T] {
		first := p(s)
		if !first.Ok() {
			return failure[[]T](first.Err.Message, first.Err.Pos)
		}
		rest := Many(p)(first.Next)
		return success(append([]T{first.Value}, rest.Value...), rest.Next)
	}
}

// Optional applies p, succeeding with ok=false when p fails without
// consuming input.
func Optional[T any](p Parser[T]) Parser[Maybe[T]] {
	return func(s State) Result[Maybe[T]] {
		r := p(s)
		if !r.Ok() {
			return success(Maybe[T]{}, s)
		}
		return success(Maybe[T]{Value: r.Value, Present: true}, r.Next)
	}
}

// Maybe is an optional parse value.
type Maybe[T any] struct {
	Value   T
	Present bool
}

// SepBy parses zero or more p separated by sep.
func SepBy[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s State) Result[[]T] {
		r := SepBy1(p, sep)(s)
		if !r.Ok() {
			return success[[]T](nil, s)
		}
		return r
	}
}

// SepBy1 parses one or more p separated by sep.
func SepBy1[T, S any](p Parser[T], sep Parser[S]) Parser[[]T] {
	return func(s State) Result[[]T] {
		first := p(s)
		if !first.Ok() {
			return failure[[]T](first.Err.Message, first.Err.Pos)
		}
		vals := []T{first.Value}
		cur := first.Next
		for {
			rs := sep(cur)
			if !rs.Ok() {
				return success(vals, cur)
			}
			rv := p(rs.Next)
			if !rv.Ok() {
				// separator without a following element is not part
				// of the list; leave it unconsumed
				return success(vals, cur)
			}
			vals = append(vals, rv.Value)
			cur = rv.Next
		}
	}
}

// Between parses open, then p, then close, keeping p's value.
func Between[O, T, C any](open Parser[O], p Parser[T], close Parser[C]) Parser[T] {
	return ThenSkip(SkipThen(open, p), close)
}

// Label overrides p's failure message for diagnostics, keeping the furthest
// position intact.
func Label[T any](p Parser[T], msg string) Parser[T] {
	return func(s State) Result[T] {
		r := p(s)
		if !r.Ok() {
			return failure[T](msg, r.Err.Pos)
		}
		return r
	}
}

// Lazy defers construction of a parser until first use, breaking the
// initialization cycle recursive grammars need. The constructor runs once.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	var p Parser[T]
	return func(s State) Result[T] {
		if p == nil {
			p = build()
		}
		return p(s)
	}
}

// Lexeme wraps p to consume trailing spaces and tabs.
func Lexeme[T any](p Parser[T]) Parser[T] {
	ws := func(b byte) bool { return b == ' ' || b == '\t' }
	return func(s State) Result[T] {
		r := p(s)
		if !r.Ok() {
			return r
		}
		rest := r.Next.Rest()
		n := 0
		for n < len(rest) && ws(rest[n]) {
			n++
		}
		return success(r.Value, r.Next.Advance(n))
	}
}
