package defaults

import (
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/samber/lo"
)

var builtinOperators = []types.Operator{
	{Name: ":-", Priority: 1200, Specifier: types.XFX},
	{Name: "-->", Priority: 1200, Specifier: types.XFX},
	{Name: ":-", Priority: 1200, Specifier: types.FX},
	{Name: "?-", Priority: 1200, Specifier: types.FX},

	{Name: "dynamic", Priority: 1150, Specifier: types.FX},
	{Name: "discontiguous", Priority: 1150, Specifier: types.FX},
	{Name: "initialization", Priority: 1150, Specifier: types.FX},
	{Name: "meta_predicate", Priority: 1150, Specifier: types.FX},
	{Name: "module_transparent", Priority: 1150, Specifier: types.FX},
	{Name: "multifile", Priority: 1150, Specifier: types.FX},
	{Name: "public", Priority: 1150, Specifier: types.FX},
	{Name: "thread_local", Priority: 1150, Specifier: types.FX},
	{Name: "table", Priority: 1150, Specifier: types.FX},

	{Name: ";", Priority: 1100, Specifier: types.XFY},
	{Name: "|", Priority: 1100, Specifier: types.XFY},
	{Name: "->", Priority: 1050, Specifier: types.XFY},
	{Name: "*->", Priority: 1050, Specifier: types.XFY},
	{Name: ",", Priority: 1000, Specifier: types.XFY},
	{Name: "\\+", Priority: 900, Specifier: types.FY},

	{Name: "=", Priority: 700, Specifier: types.XFX},
	{Name: "\\=", Priority: 700, Specifier: types.XFX},
	{Name: "==", Priority: 700, Specifier: types.XFX},
	{Name: "\\==", Priority: 700, Specifier: types.XFX},
	{Name: "@<", Priority: 700, Specifier: types.XFX},
	{Name: "@>", Priority: 700, Specifier: types.XFX},
	{Name: "@=<", Priority: 700, Specifier: types.XFX},
	{Name: "@>=", Priority: 700, Specifier: types.XFX},
	{Name: "=..", Priority: 700, Specifier: types.XFX},
	{Name: "is", Priority: 700, Specifier: types.XFX},
	{Name: "=:=", Priority: 700, Specifier: types.XFX},
	{Name: "=\\=", Priority: 700, Specifier: types.XFX},
	{Name: "<", Priority: 700, Specifier: types.XFX},
	{Name: ">", Priority: 700, Specifier: types.XFX},
	{Name: "=<", Priority: 700, Specifier: types.XFX},
	{Name: ">=", Priority: 700, Specifier: types.XFX},
	{Name: ">:<", Priority: 700, Specifier: types.XFX},
	{Name: ":<", Priority: 700, Specifier: types.XFX},
	{Name: "as", Priority: 700, Specifier: types.XFX},

	{Name: "+", Priority: 500, Specifier: types.YFX},
	{Name: "-", Priority: 500, Specifier: types.YFX},
	{Name: "/\\", Priority: 500, Specifier: types.YFX},
	{Name: "\\/", Priority: 500, Specifier: types.YFX},
	{Name: "xor", Priority: 500, Specifier: types.YFX},
	{Name: "?", Priority: 500, Specifier: types.FX},

	{Name: "*", Priority: 400, Specifier: types.YFX},
	{Name: "/", Priority: 400, Specifier: types.YFX},
	{Name: "//", Priority: 400, Specifier: types.YFX},
	{Name: "rdiv", Priority: 400, Specifier: types.YFX},
	{Name: "<<", Priority: 400, Specifier: types.YFX},
	{Name: ">>", Priority: 400, Specifier: types.YFX},
	{Name: "mod", Priority: 400, Specifier: types.YFX},
	{Name: "rem", Priority: 400, Specifier: types.YFX},
	{Name: "div", Priority: 400, Specifier: types.YFX},
	{Name: "divmod", Priority: 400, Specifier: types.YFX},

	{Name: "**", Priority: 200, Specifier: types.XFX},
	{Name: "^", Priority: 200, Specifier: types.XFY},
	{Name: ":", Priority: 200, Specifier: types.XFY},
	{Name: "-", Priority: 200, Specifier: types.FY},
	{Name: "+", Priority: 200, Specifier: types.FY},
	{Name: "\\", Priority: 200, Specifier: types.FY},

	{Name: "$", Priority: 1, Specifier: types.FX},
}

func operatorsOf(fixity func(types.Fixity) bool) map[string]types.Operator {
	ops := lo.Filter(builtinOperators, func(op types.Operator, _ int) bool {
		return fixity(op.Specifier.Fixity())
	})
	return lo.KeyBy(ops, func(op types.Operator) string {
		return op.Name
	})
}

// DefaultOperatorTable is the operator table every session starts from.
// It is read only; sessions define their operators in a derived table.
var DefaultOperatorTable = &types.OperatorTable{
	Prefix: operatorsOf(func(f types.Fixity) bool {
		return f == types.Prefix
	}),
	Infix: operatorsOf(func(f types.Fixity) bool {
		return f != types.Prefix
	}),
	ReadOnly: true,
}

// NewSessionOperatorTable returns a writable table over DefaultOperatorTable.
func NewSessionOperatorTable() *types.OperatorTable {
	return DefaultOperatorTable.Derive()
}
