package types_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/prolog-reader/internal/types"
)

func TestTermString(t *testing.T) {
	t.Parallel()

	x := types.NewVariable("X")
	for _, tt := range []struct {
		term     types.Term
		expected string
	}{
		{term: types.NewAtom("foo"), expected: "foo"},
		{term: types.NewAtom("Foo"), expected: "'Foo'"},
		{term: types.NewAtom("hello world"), expected: "'hello world'"},
		{term: types.NewAtom(""), expected: "''"},
		{term: types.NewAtom("[]"), expected: "'[]'"},
		{term: types.NewAtom("{}"), expected: "{}"},
		{term: types.NewAtom(","), expected: "','"},
		{term: types.NewAtom("|"), expected: "'|'"},
		{term: types.NewAtom("."), expected: "'.'"},
		{term: types.NewAtom("!"), expected: "!"},
		{term: types.NewAtom(";"), expected: ";"},
		{term: types.NewAtom(":-"), expected: ":-"},
		{term: types.NewAtom("/*"), expected: "'/*'"},
		{term: types.NewAtom("it's"), expected: `'it\'s'`},
		{term: types.NewAtom("a\nb"), expected: `'a\nb'`},
		{term: types.NewAtom("ĉu"), expected: "ĉu"},
		{term: types.Integer(-3), expected: "-3"},
		{term: types.Float(1), expected: "1.0"},
		{term: types.Float(1.5e300), expected: "1.5e+300"},
		{term: types.Float(1e100), expected: "1.0e+100"},
		{term: types.Float(math.Inf(1)), expected: "1.0Inf"},
		{term: types.String("say \"hi\""), expected: `"say \"hi\""`},
		{term: x, expected: "X"},
		{term: types.Nil, expected: "[]"},
		{term: types.NewList([]types.Term{types.Integer(1), types.Integer(2)}, types.Nil), expected: "[1,2]"},
		{term: types.NewList([]types.Term{types.Integer(1)}, x), expected: "[1|X]"},
		{term: types.NewBraces(types.NewAtom("a")), expected: "{a}"},
		{term: types.NewCompound(types.NewAtom("-"), types.Integer(1)), expected: "-(1)"},
		{term: types.NewCompound(types.NewAtom(","), types.NewAtom("a"), types.NewAtom("b")), expected: "','(a,b)"},
	} {
		if diff := cmp.Diff(tt.expected, tt.term.String()); diff != "" {
			t.Errorf("%#v (-expected, +got):\n%s", tt.term, diff)
		}
	}
}

func TestAnonymousVariableString(t *testing.T) {
	t.Parallel()

	a, b := types.NewVariable("_"), types.NewVariable("_")
	if a.String() == b.String() {
		t.Errorf("anonymous variables share the name %s", a)
	}
	if a.Equal(b) {
		t.Error("anonymous variables share an identity")
	}
}

func TestParseInteger(t *testing.T) {
	t.Parallel()

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	for _, tt := range []struct {
		text     string
		base     int
		expected types.Term
	}{
		{text: "42", base: 10, expected: types.Integer(42)},
		{text: "1_000_000", base: 10, expected: types.Integer(1000000)},
		{text: "ff", base: 16, expected: types.Integer(255)},
		{text: "777", base: 8, expected: types.Integer(511)},
		{text: "1010", base: 2, expected: types.Integer(10)},
		{text: "123456789012345678901234567890", base: 10, expected: types.BigInteger{Value: huge}},
	} {
		got, err := types.ParseInteger(tt.text, tt.base)
		if err != nil {
			t.Errorf("ParseInteger(%q, %d): %v", tt.text, tt.base, err)
			continue
		}
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("ParseInteger(%q, %d) (-expected, +got):\n%s", tt.text, tt.base, diff)
		}
	}

	if _, err := types.ParseInteger("12z", 10); err == nil {
		t.Error("expect an error for 12z")
	}
}

func TestNegate(t *testing.T) {
	t.Parallel()

	minInt := new(big.Int).Neg(new(big.Int).SetUint64(1 << 63))
	for _, tt := range []struct {
		term     types.Term
		expected types.Term
		ok       bool
	}{
		{term: types.Integer(1), expected: types.Integer(-1), ok: true},
		{term: types.Float(2.5), expected: types.Float(-2.5), ok: true},
		{term: types.BigInteger{Value: new(big.Int).SetUint64(1 << 63)}, expected: types.Integer(math.MinInt64), ok: true},
		{term: types.Integer(math.MinInt64), expected: types.BigInteger{Value: new(big.Int).Neg(minInt)}, ok: true},
		{term: types.NewAtom("a")},
	} {
		got, ok := types.Negate(tt.term)
		if ok != tt.ok {
			t.Errorf("Negate(%s): expect ok=%v but got %v", tt.term, tt.ok, ok)
		}
		if diff := cmp.Diff(tt.expected, got); diff != "" {
			t.Errorf("Negate(%s) (-expected, +got):\n%s", tt.term, diff)
		}
	}
}

func TestToJSONValue(t *testing.T) {
	t.Parallel()

	term := types.NewCompound(types.NewAtom("f"),
		types.NewAtom("a"),
		types.Integer(1),
		types.String("s"),
		types.NewList([]types.Term{types.Float(0.5)}, types.NewAtom("t")),
		types.Nil,
	)
	expected := map[string]any{
		"functor": "f",
		"args": []any{
			map[string]any{"atom": "a"},
			int64(1),
			map[string]any{"string": "s"},
			map[string]any{"list": []any{0.5}, "tail": map[string]any{"atom": "t"}},
			map[string]any{"list": []any{}},
		},
	}
	if diff := cmp.Diff(expected, types.ToJSONValue(term)); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}
