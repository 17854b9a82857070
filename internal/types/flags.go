package types

import (
	"fmt"
	"unicode/utf8"
)

// QuoteKind selects the term a quoted text literal is read as.
type QuoteKind string

const (
	CodesQuoteKind  QuoteKind = "codes"
	CharsQuoteKind  QuoteKind = "chars"
	AtomQuoteKind   QuoteKind = "atom"
	StringQuoteKind QuoteKind = "string"
)

// Flags are the prolog flags consulted by the reader.
type Flags struct {
	CharEscapes      bool      `json:"char_escapes" mapstructure:"char_escapes"`
	DoubleQuotes     QuoteKind `json:"double_quotes" mapstructure:"double_quotes"`
	BackQuotes       QuoteKind `json:"back_quotes" mapstructure:"back_quotes"`
	FullStopOptional bool      `json:"full_stop_optional" mapstructure:"full_stop_optional"`
	KeepComments     bool      `json:"keep_comments" mapstructure:"keep_comments"`
}

func DefaultFlags() Flags {
	return Flags{
		CharEscapes:  true,
		DoubleQuotes: StringQuoteKind,
		BackQuotes:   CodesQuoteKind,
	}
}

func (f *Flags) Validate() error {
	switch f.DoubleQuotes {
	case CodesQuoteKind, CharsQuoteKind, AtomQuoteKind, StringQuoteKind:
	default:
		return newFlagValueError("double_quotes", string(f.DoubleQuotes))
	}
	switch f.BackQuotes {
	case CodesQuoteKind, CharsQuoteKind, StringQuoteKind:
	default:
		return newFlagValueError("back_quotes", string(f.BackQuotes))
	}
	return nil
}

// Set implements set_prolog_flag/2 for the flags the reader knows about.
func (f *Flags) Set(name string, value Term) error {
	v, ok := value.(Atom)
	if !ok {
		return &Error{
			Tag:   TypeErrorTag,
			Err:   fmt.Errorf("flag value must be an atom: %s", value),
			Extra: map[string]any{"type": "atom", "culprit": value.String()},
		}
	}

	next := *f
	switch name {
	case "double_quotes":
		next.DoubleQuotes = QuoteKind(v.Name)
	case "back_quotes":
		next.BackQuotes = QuoteKind(v.Name)
	case "char_escapes":
		b, err := parseBoolFlag(name, v.Name)
		if err != nil {
			return err
		}
		next.CharEscapes = b
	default:
		return &Error{
			Tag:   DomainErrorTag,
			Err:   fmt.Errorf("unknown prolog flag: %s", name),
			Extra: map[string]any{"domain": "prolog_flag", "culprit": name},
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*f = next
	return nil
}

func parseBoolFlag(name, value string) (bool, error) {
	switch value {
	case "true", "on":
		return true, nil
	case "false", "off":
		return false, nil
	default:
		return false, newFlagValueError(name, value)
	}
}

func newFlagValueError(name, value string) *Error {
	return &Error{
		Tag:   DomainErrorTag,
		Err:   fmt.Errorf("invalid value for flag %s: %q", name, value),
		Extra: map[string]any{"domain": "flag_value", "culprit": name + "+" + value},
	}
}

// TextTerm converts the content of a quoted literal to the term selected by kind.
func TextTerm(kind QuoteKind, text string) Term {
	switch kind {
	case AtomQuoteKind:
		return NewAtom(text)
	case StringQuoteKind:
		return String(text)
	case CharsQuoteKind:
		elems := make([]Term, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			elems = append(elems, NewAtom(string(r)))
		}
		return NewList(elems, Nil)
	default:
		elems := make([]Term, 0, utf8.RuneCountInString(text))
		for _, r := range text {
			elems = append(elems, Integer(r))
		}
		return NewList(elems, Nil)
	}
}
