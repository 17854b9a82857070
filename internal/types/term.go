package types

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
	"unicode/utf8"
)

// Term is a node of a parsed term tree. String returns the canonical
// (operator-free) form of the term.
type Term interface {
	fmt.Stringer
	isTerm()
}

type Atom struct {
	Name string

	// Quoted records that the atom was written between single quotes. It
	// does not take part in equality.
	Quoted bool
}

type Integer int64

type BigInteger struct {
	Value *big.Int
}

type Float float64

type String string

type Variable struct {
	Name string
	ID   uint64
}

type Compound struct {
	Functor Atom
	Args    []Term
}

type Cons struct {
	Head Term
	Tail Term
}

type EmptyList struct{}

func (Atom) isTerm()       {}
func (Integer) isTerm()    {}
func (BigInteger) isTerm() {}
func (Float) isTerm()      {}
func (String) isTerm()     {}
func (*Variable) isTerm()  {}
func (*Compound) isTerm()  {}
func (*Cons) isTerm()      {}
func (EmptyList) isTerm()  {}

// Nil is the empty list. It is a distinct constant, not the atom '[]'.
var Nil = EmptyList{}

// EmptyBraces is the atom {}.
var EmptyBraces = Atom{Name: "{}"}

func NewAtom(name string) Atom {
	return Atom{Name: name}
}

func NewQuotedAtom(name string) Atom {
	return Atom{Name: name, Quoted: true}
}

func (a Atom) Equal(other Atom) bool {
	return a.Name == other.Name
}

var variableSequence uint64

// NewVariable issues a fresh variable identity.
func NewVariable(name string) *Variable {
	return &Variable{Name: name, ID: atomic.AddUint64(&variableSequence, 1)}
}

func NewCompound(functor Atom, args ...Term) *Compound {
	return &Compound{Functor: functor, Args: args}
}

func NewCons(head, tail Term) *Cons {
	return &Cons{Head: head, Tail: tail}
}

// NewList builds a list of elems terminated by tail.
func NewList(elems []Term, tail Term) Term {
	list := tail
	for i := len(elems) - 1; i >= 0; i-- {
		list = NewCons(elems[i], list)
	}
	return list
}

// NewBraces wraps t as {}(t).
func NewBraces(t Term) *Compound {
	return NewCompound(EmptyBraces, t)
}

// ParseInteger converts digits written in the given base to an integer term.
// Digit group separators ('_') are ignored.
func ParseInteger(text string, base int) (Term, error) {
	digits := strings.ReplaceAll(text, "_", "")
	if v, err := strconv.ParseInt(digits, base, 64); err == nil {
		return Integer(v), nil
	}

	v, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q in base %d", text, base)
	}
	return BigInteger{Value: v}, nil
}

// ParseFloat converts a decimal float literal to a float term.
func ParseFloat(text string) (Float, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q: %w", text, err)
	}
	return Float(v), nil
}

// Negate returns the negation of a numeric term. ok is false for other terms.
func Negate(t Term) (Term, bool) {
	switch v := t.(type) {
	case Integer:
		if v == math.MinInt64 {
			return BigInteger{Value: new(big.Int).Neg(big.NewInt(int64(v)))}, true
		}
		return -v, true
	case BigInteger:
		n := new(big.Int).Neg(v.Value)
		if n.IsInt64() {
			return Integer(n.Int64()), true
		}
		return BigInteger{Value: n}, true
	case Float:
		return -v, true
	default:
		return nil, false
	}
}

func (i BigInteger) Equal(other BigInteger) bool {
	return i.Value.Cmp(other.Value) == 0
}

func (v *Variable) Equal(other *Variable) bool {
	return v.ID == other.ID
}

func (a Atom) String() string {
	if atomNeedsQuote(a.Name) {
		return quoteText(a.Name, '\'')
	}
	return a.Name
}

func (i Integer) String() string {
	return strconv.FormatInt(int64(i), 10)
}

func (i BigInteger) String() string {
	return i.Value.String()
}

func (f Float) String() string {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return "1.0Inf"
	case math.IsInf(v, -1):
		return "-1.0Inf"
	case math.IsNaN(v):
		return "1.5NaN"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexByte(s, 'e'); i != -1 {
		return s[:i] + ".0" + s[i:]
	}
	return s + ".0"
}

func (s String) String() string {
	return quoteText(string(s), '"')
}

func (v *Variable) String() string {
	if v.Name == "" || v.Name == "_" {
		return "_G" + strconv.FormatUint(v.ID, 10)
	}
	return v.Name
}

func (c *Compound) String() string {
	var b strings.Builder
	if c.Functor.Name == "{}" && len(c.Args) == 1 {
		b.WriteByte('{')
		b.WriteString(c.Args[0].String())
		b.WriteByte('}')
		return b.String()
	}

	b.WriteString(c.Functor.String())
	b.WriteByte('(')
	for i, arg := range c.Args {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(arg.String())
	}
	b.WriteByte(')')
	return b.String()
}

func (c *Cons) String() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(c.Head.String())

	t := c.Tail
	for {
		next, ok := t.(*Cons)
		if !ok {
			break
		}
		b.WriteByte(',')
		b.WriteString(next.Head.String())
		t = next.Tail
	}
	if _, isNil := t.(EmptyList); !isNil {
		b.WriteByte('|')
		b.WriteString(t.String())
	}
	b.WriteByte(']')
	return b.String()
}

func (EmptyList) String() string {
	return "[]"
}

// ListElements returns the elements of a list and its tail (Nil for proper lists).
func ListElements(t Term) ([]Term, Term) {
	var elems []Term
	for {
		c, ok := t.(*Cons)
		if !ok {
			return elems, t
		}
		elems = append(elems, c.Head)
		t = c.Tail
	}
}

const graphicChars = `#$&*+-./:<=>?@^~\`

func IsGraphicChar(r rune) bool {
	if r < utf8.RuneSelf {
		return strings.ContainsRune(graphicChars, r)
	}
	return unicode.IsSymbol(r) || unicode.IsPunct(r)
}

func IsAlphaNumeric(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func atomNeedsQuote(name string) bool {
	switch name {
	case "":
		return true
	case "{}", "!", ";":
		return false
	case ",", "|", "[]", ".":
		return true
	}

	first, _ := utf8.DecodeRuneInString(name)
	switch {
	case unicode.IsLower(first):
		for _, r := range name {
			if !IsAlphaNumeric(r) {
				return true
			}
		}
		return false
	case IsGraphicChar(first):
		for _, r := range name {
			if !IsGraphicChar(r) {
				return true
			}
		}
		// a leading "/*" would start a comment
		return strings.HasPrefix(name, "/*")
	default:
		return true
	}
}

func quoteText(s string, quote byte) string {
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote), '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\v':
			b.WriteString(`\v`)
		case 0:
			b.WriteString(`\0\`)
		default:
			if unicode.IsControl(r) {
				fmt.Fprintf(&b, `\x%x\`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte(quote)
	return b.String()
}
