package types

import (
	"github.com/samber/lo"
)

// ToJSONValue projects a term onto plain values suitable for JSON encoding.
func ToJSONValue(t Term) any {
	switch v := t.(type) {
	case Atom:
		return map[string]any{"atom": v.Name}
	case Integer:
		return int64(v)
	case BigInteger:
		return map[string]any{"integer": v.Value.String()}
	case Float:
		return float64(v)
	case String:
		return map[string]any{"string": string(v)}
	case *Variable:
		return map[string]any{"var": v.String()}
	case *Compound:
		return map[string]any{
			"functor": v.Functor.Name,
			"args":    lo.Map(v.Args, func(arg Term, _ int) any { return ToJSONValue(arg) }),
		}
	case *Cons, EmptyList:
		elems, tail := ListElements(v)
		o := map[string]any{
			"list": lo.Map(elems, func(elem Term, _ int) any { return ToJSONValue(elem) }),
		}
		if _, isNil := tail.(EmptyList); !isNil {
			o["tail"] = ToJSONValue(tail)
		}
		return o
	default:
		return nil
	}
}
