package reader

import (
	"strings"

	"github.com/karupanerura/prolog-reader/internal/types"
)

type VariableName struct {
	Name     string
	Variable *types.Variable
}

// variableMap issues variable identities for one sentence. Every named
// variable maps to one identity; each "_" is a new one.
type variableMap struct {
	vars   map[string]*types.Variable
	order  []string
	counts map[string]int
}

func newVariableMap() *variableMap {
	return &variableMap{
		vars:   map[string]*types.Variable{},
		counts: map[string]int{},
	}
}

func (m *variableMap) lookup(name string) *types.Variable {
	m.counts[name]++
	if v, ok := m.vars[name]; ok {
		return v
	}

	v := types.NewVariable(name)
	m.vars[name] = v
	m.order = append(m.order, name)
	return v
}

func (m *variableMap) anonymous() *types.Variable {
	return types.NewVariable("_")
}

func (m *variableMap) names() []VariableName {
	names := make([]VariableName, 0, len(m.order))
	for _, name := range m.order {
		names = append(names, VariableName{Name: name, Variable: m.vars[name]})
	}
	return names
}

// singletons lists the variables seen once, except those starting with "_".
func (m *variableMap) singletons() []VariableName {
	var names []VariableName
	for _, name := range m.order {
		if m.counts[name] == 1 && !strings.HasPrefix(name, "_") {
			names = append(names, VariableName{Name: name, Variable: m.vars[name]})
		}
	}
	return names
}
