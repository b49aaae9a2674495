package checker

import (
	"fmt"

	"github.com/trb-lang/trb/pkg/ir"
)

// AliasRegistry tracks type aliases for one session and expands them on
// demand. Failure kinds are distinct error types so callers can match with
// errors.As; nothing here panics.
type AliasRegistry struct {
	aliases map[string]ir.TypeNode
}

// DuplicateAliasError reports a name registered twice.
type DuplicateAliasError struct {
	Name string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("type alias %s is already defined", e.Name)
}

// CircularAliasError reports an alias that expands through itself.
type CircularAliasError struct {
	Name  string
	Chain []string
}

func (e *CircularAliasError) Error() string {
	return fmt.Sprintf("type alias %s is circular (chain: %v)", e.Name, e.Chain)
}

// UndefinedAliasError reports a lookup of an unregistered alias.
type UndefinedAliasError struct {
	Name string
}

func (e *UndefinedAliasError) Error() string {
	return fmt.Sprintf("type alias %s is not defined", e.Name)
}

func NewAliasRegistry() *AliasRegistry {
	return &AliasRegistry{aliases: map[string]ir.TypeNode{}}
}

// Register records an alias definition.
func (r *AliasRegistry) Register(name string, def ir.TypeNode) error {
	if _, ok := r.aliases[name]; ok {
		return &DuplicateAliasError{Name: name}
	}
	r.aliases[name] = def
	return nil
}

// Lookup returns the unexpanded definition.
func (r *AliasRegistry) Lookup(name string) (ir.TypeNode, error) {
	def, ok := r.aliases[name]
	if !ok {
		return nil, &UndefinedAliasError{Name: name}
	}
	return def, nil
}

// Expand resolves an alias to its full definition, chasing alias-to-alias
// references and rejecting cycles.
func (r *AliasRegistry) Expand(name string) (ir.TypeNode, error) {
	return r.expand(name, []string{})
}

func (r *AliasRegistry) expand(name string, chain []string) (ir.TypeNode, error) {
	for _, prev := range chain {
		if prev == name {
			return nil, &CircularAliasError{Name: name, Chain: append(chain, name)}
		}
	}
	def, ok := r.aliases[name]
	if !ok {
		return nil, &UndefinedAliasError{Name: name}
	}
	return r.expandNode(def, append(chain, name))
}

func (r *AliasRegistry) expandNode(t ir.TypeNode, chain []string) (ir.TypeNode, error) {
	switch t := t.(type) {
	case ir.SimpleType:
		if _, ok := r.aliases[t.Name]; ok {
			return r.expand(t.Name, chain)
		}
		return t, nil
	case ir.GenericType:
		args := make([]ir.TypeNode, len(t.Args))
		for i, a := range t.Args {
			expanded, err := r.expandNode(a, chain)
			if err != nil {
				return nil, err
			}
			args[i] = expanded
		}
		return ir.GenericType{Base: t.Base, Args: args}, nil
	case ir.UnionType:
		members, err := r.expandAll(t.Members, chain)
		if err != nil {
			return nil, err
		}
		return ir.NewUnion(members), nil
	case ir.IntersectionType:
		members, err := r.expandAll(t.Members, chain)
		if err != nil {
			return nil, err
		}
		return ir.NewIntersection(members), nil
	case ir.NullableType:
		inner, err := r.expandNode(t.Inner, chain)
		if err != nil {
			return nil, err
		}
		return ir.NewNullable(inner), nil
	case ir.FunctionType:
		params, err := r.expandAll(t.Params, chain)
		if err != nil {
			return nil, err
		}
		ret, err := r.expandNode(t.Return, chain)
		if err != nil {
			return nil, err
		}
		return ir.FunctionType{Params: params, Return: ret}, nil
	case ir.TupleType:
		elems, err := r.expandAll(t.Elems, chain)
		if err != nil {
			return nil, err
		}
		return ir.TupleType{Elems: elems}, nil
	default:
		return t, nil
	}
}

func (r *AliasRegistry) expandAll(nodes []ir.TypeNode, chain []string) ([]ir.TypeNode, error) {
	out := make([]ir.TypeNode, len(nodes))
	for i, n := range nodes {
		expanded, err := r.expandNode(n, chain)
		if err != nil {
			return nil, err
		}
		out[i] = expanded
	}
	return out, nil
}
