package program

import (
	"fmt"

	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/samber/lo"
)

type directiveFunc func(s *Session, args []types.Term) error

var directives = map[string]directiveFunc{
	"op/3":              (*Session).op,
	"set_prolog_flag/2": (*Session).setPrologFlag,
}

// execute runs the directives the reader depends on. handled is false for
// goals that are left to the program.
func (s *Session) execute(goal types.Term) (handled bool, err error) {
	c, ok := goal.(*types.Compound)
	if !ok {
		return false, nil
	}

	if c.Functor.Name == "," && len(c.Args) == 2 {
		for _, g := range c.Args {
			h, err := s.execute(g)
			if err != nil {
				return true, err
			}
			handled = handled || h
		}
		return handled, nil
	}

	f, ok := directives[fmt.Sprintf("%s/%d", c.Functor.Name, len(c.Args))]
	if !ok {
		return false, nil
	}
	return true, f(s, c.Args)
}

func (s *Session) op(args []types.Term) error {
	priority, ok := args[0].(types.Integer)
	if !ok {
		return newArgumentError("integer", args[0])
	}
	specifier, ok := args[1].(types.Atom)
	if !ok {
		return newArgumentError("atom", args[1])
	}
	names, err := operatorNames(args[2])
	if err != nil {
		return err
	}
	return s.Operators.Define(int(priority), types.Specifier(specifier.Name), names...)
}

func operatorNames(t types.Term) ([]string, error) {
	if a, ok := t.(types.Atom); ok {
		return []string{a.Name}, nil
	}

	elems, tail := types.ListElements(t)
	switch tail.(type) {
	case types.EmptyList:
	case *types.Variable:
		return nil, newArgumentError("list", tail)
	default:
		return nil, newArgumentError("list", t)
	}
	atoms := lo.FilterMap(elems, func(elem types.Term, _ int) (types.Atom, bool) {
		a, ok := elem.(types.Atom)
		return a, ok
	})
	if len(atoms) != len(elems) {
		return nil, newArgumentError("list", t)
	}
	return lo.Map(atoms, func(a types.Atom, _ int) string {
		return a.Name
	}), nil
}

func (s *Session) setPrologFlag(args []types.Term) error {
	name, ok := args[0].(types.Atom)
	if !ok {
		return newArgumentError("atom", args[0])
	}
	return s.Flags.Set(name.Name, args[1])
}

func newArgumentError(expected string, culprit types.Term) *types.Error {
	if _, ok := culprit.(*types.Variable); ok {
		return &types.Error{
			Tag: types.InstantiationErrorTag,
			Err: fmt.Errorf("argument is not sufficiently instantiated"),
		}
	}
	return &types.Error{
		Tag:   types.TypeErrorTag,
		Err:   fmt.Errorf("expected %s, got %s", expected, culprit),
		Extra: map[string]any{"type": expected, "culprit": culprit.String()},
	}
}
