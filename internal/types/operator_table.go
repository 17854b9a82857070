package types

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

const MaxPriority = 1200

type Specifier string

const (
	XF  Specifier = "xf"
	YF  Specifier = "yf"
	FX  Specifier = "fx"
	FY  Specifier = "fy"
	XFX Specifier = "xfx"
	XFY Specifier = "xfy"
	YFX Specifier = "yfx"
)

type Fixity int

const (
	Prefix Fixity = iota
	Infix
	Postfix
)

func ParseSpecifier(s string) (Specifier, bool) {
	switch spec := Specifier(s); spec {
	case XF, YF, FX, FY, XFX, XFY, YFX:
		return spec, true
	default:
		return "", false
	}
}

func (s Specifier) Fixity() Fixity {
	switch s {
	case FX, FY:
		return Prefix
	case XF, YF:
		return Postfix
	default:
		return Infix
	}
}

type Operator struct {
	Name      string    `json:"name"`
	Priority  int       `json:"priority"`
	Specifier Specifier `json:"specifier"`
}

// ArgumentPriorities returns the maximum priorities of the left and right
// arguments. The missing side of a prefix or postfix operator is -1.
func (op Operator) ArgumentPriorities() (left, right int) {
	p := op.Priority
	switch op.Specifier {
	case FX:
		return -1, p - 1
	case FY:
		return -1, p
	case XF:
		return p - 1, -1
	case YF:
		return p, -1
	case XFX:
		return p - 1, p - 1
	case XFY:
		return p - 1, p
	default: // YFX
		return p, p - 1
	}
}

// OperatorTable holds operator definitions. Lookups fall back to Parent, so a
// session can layer its own definitions over a shared read-only table.
// Prefix definitions and infix/postfix definitions live in separate slots.
type OperatorTable struct {
	Prefix   map[string]Operator
	Infix    map[string]Operator
	ReadOnly bool
	Parent   *OperatorTable
}

func NewOperatorTable() *OperatorTable {
	return &OperatorTable{
		Prefix: map[string]Operator{},
		Infix:  map[string]Operator{},
	}
}

// Derive returns an empty writable table layered over t.
func (t *OperatorTable) Derive() *OperatorTable {
	derived := NewOperatorTable()
	derived.Parent = t
	return derived
}

func (t *OperatorTable) LookupPrefix(name string) (Operator, bool) {
	return t.lookup(name, func(t *OperatorTable) map[string]Operator { return t.Prefix })
}

func (t *OperatorTable) LookupInfixPostfix(name string) (Operator, bool) {
	return t.lookup(name, func(t *OperatorTable) map[string]Operator { return t.Infix })
}

func (t *OperatorTable) lookup(name string, slot func(*OperatorTable) map[string]Operator) (Operator, bool) {
	for st := t; st != nil; st = st.Parent {
		if op, ok := slot(st)[name]; ok {
			// priority 0 shadows a parent definition
			return op, op.Priority != 0
		}
	}
	return Operator{}, false
}

// Define implements op/3 for each of names.
func (t *OperatorTable) Define(priority int, specifier Specifier, names ...string) error {
	if priority < 0 || priority > MaxPriority {
		return &Error{
			Tag:   DomainErrorTag,
			Err:   fmt.Errorf("operator priority out of range: %d", priority),
			Extra: map[string]any{"domain": "operator_priority", "culprit": priority},
		}
	}
	if _, ok := ParseSpecifier(string(specifier)); !ok {
		return &Error{
			Tag:   DomainErrorTag,
			Err:   fmt.Errorf("invalid operator specifier: %s", specifier),
			Extra: map[string]any{"domain": "operator_specifier", "culprit": string(specifier)},
		}
	}
	if t.ReadOnly {
		return newOperatorPermissionError("modify", "read only operator table")
	}

	for _, name := range names {
		if err := t.checkDefinable(priority, specifier, name); err != nil {
			return err
		}
	}
	for _, name := range names {
		op := Operator{Name: name, Priority: priority, Specifier: specifier}
		if specifier.Fixity() == Prefix {
			t.Prefix[name] = op
			continue
		}
		if current, ok := t.LookupInfixPostfix(name); priority == 0 && ok && current.Specifier.Fixity() != specifier.Fixity() {
			// op(0, xf, =) leaves the infix = alone
			continue
		}
		t.Infix[name] = op
	}
	return nil
}

func (t *OperatorTable) checkDefinable(priority int, specifier Specifier, name string) error {
	switch name {
	case ",":
		return newOperatorPermissionError("modify", name)
	case "[]", "{}":
		return newOperatorPermissionError("create", name)
	case "|":
		if priority != 0 && (specifier.Fixity() != Infix || priority < 1001) {
			return newOperatorPermissionError("create", name)
		}
	}

	if priority == 0 || specifier.Fixity() == Prefix {
		return nil
	}
	if current, ok := t.LookupInfixPostfix(name); ok && current.Specifier.Fixity() != specifier.Fixity() {
		// an atom cannot be both infix and postfix
		return newOperatorPermissionError("create", name)
	}
	return nil
}

func newOperatorPermissionError(action, culprit string) *Error {
	return &Error{
		Tag:   PermissionErrorTag,
		Err:   fmt.Errorf("cannot %s operator %q", action, culprit),
		Extra: map[string]any{"action": action, "type": "operator", "culprit": culprit},
	}
}

// Operators returns the effective definitions ordered by priority and name.
func (t *OperatorTable) Operators() []Operator {
	prefix := map[string]Operator{}
	infix := map[string]Operator{}
	t.collect(prefix, infix)

	ops := append(lo.Values(prefix), lo.Values(infix)...)
	ops = lo.Filter(ops, func(op Operator, _ int) bool {
		return op.Priority != 0
	})
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Priority != ops[j].Priority {
			return ops[i].Priority > ops[j].Priority
		}
		if ops[i].Name != ops[j].Name {
			return ops[i].Name < ops[j].Name
		}
		return ops[i].Specifier < ops[j].Specifier
	})
	return ops
}

func (t *OperatorTable) collect(prefix, infix map[string]Operator) {
	if t.Parent != nil {
		t.Parent.collect(prefix, infix)
	}
	for name, op := range t.Prefix {
		prefix[name] = op
	}
	for name, op := range t.Infix {
		infix[name] = op
	}
}
