package reader_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/prolog-reader/internal/reader"
	"github.com/karupanerura/prolog-reader/internal/types"
)

type tokenSummary struct {
	Kind       reader.TokenKind
	Text       string
	Functional bool
}

func tokenize(t *testing.T, source string, flags types.Flags) []tokenSummary {
	t.Helper()

	tokenizer := reader.NewTokenizer(reader.NewLineReader(strings.NewReader(source)), &flags)
	var tokens []tokenSummary
	for {
		tok, err := tokenizer.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind == reader.EOFToken {
			return tokens
		}
		tokens = append(tokens, tokenSummary{Kind: tok.Kind, Text: tok.Text, Functional: tok.Functional})
	}
}

func TestTokenizer(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source   string
		flags    func(*types.Flags)
		expected []tokenSummary
	}{
		{
			source: "foo(X, _, _Y) :- [1|T].",
			expected: []tokenSummary{
				{Kind: reader.AtomToken, Text: "foo", Functional: true},
				{Kind: reader.OpenParenToken, Text: "("},
				{Kind: reader.VariableToken, Text: "X"},
				{Kind: reader.CommaToken, Text: ","},
				{Kind: reader.AnonymousVariableToken, Text: "_"},
				{Kind: reader.CommaToken, Text: ","},
				{Kind: reader.VariableToken, Text: "_Y"},
				{Kind: reader.CloseParenToken, Text: ")"},
				{Kind: reader.AtomToken, Text: ":-"},
				{Kind: reader.OpenBracketToken, Text: "["},
				{Kind: reader.IntegerToken, Text: "1"},
				{Kind: reader.BarToken, Text: "|"},
				{Kind: reader.VariableToken, Text: "T"},
				{Kind: reader.CloseBracketToken, Text: "]"},
				{Kind: reader.EndToken, Text: "."},
			},
		},
		{
			source: "foo (a) 'q'(b) 'r' (c).",
			expected: []tokenSummary{
				{Kind: reader.AtomToken, Text: "foo"},
				{Kind: reader.OpenParenToken, Text: "("},
				{Kind: reader.AtomToken, Text: "a"},
				{Kind: reader.CloseParenToken, Text: ")"},
				{Kind: reader.QuotedAtomToken, Text: "q", Functional: true},
				{Kind: reader.OpenParenToken, Text: "("},
				{Kind: reader.AtomToken, Text: "b"},
				{Kind: reader.CloseParenToken, Text: ")"},
				{Kind: reader.QuotedAtomToken, Text: "r"},
				{Kind: reader.OpenParenToken, Text: "("},
				{Kind: reader.AtomToken, Text: "c"},
				{Kind: reader.CloseParenToken, Text: ")"},
				{Kind: reader.EndToken, Text: "."},
			},
		},
		{
			source: "X = \"a\\tb\", Y = `c`, Z = 0'x.",
			expected: []tokenSummary{
				{Kind: reader.VariableToken, Text: "X"},
				{Kind: reader.AtomToken, Text: "="},
				{Kind: reader.DoubleQuotedToken, Text: "a\tb"},
				{Kind: reader.CommaToken, Text: ","},
				{Kind: reader.VariableToken, Text: "Y"},
				{Kind: reader.AtomToken, Text: "="},
				{Kind: reader.BackquotedToken, Text: "c"},
				{Kind: reader.CommaToken, Text: ","},
				{Kind: reader.VariableToken, Text: "Z"},
				{Kind: reader.AtomToken, Text: "="},
				{Kind: reader.CharCodeToken, Text: "x"},
				{Kind: reader.EndToken, Text: "."},
			},
		},
		{
			source: "0x1f 0o17 0b101 1_000 1.5e 2.0E+3 12.",
			expected: []tokenSummary{
				{Kind: reader.IntegerToken, Text: "1f"},
				{Kind: reader.IntegerToken, Text: "17"},
				{Kind: reader.IntegerToken, Text: "101"},
				{Kind: reader.IntegerToken, Text: "1_000"},
				{Kind: reader.FloatToken, Text: "1.5"},
				{Kind: reader.AtomToken, Text: "e"},
				{Kind: reader.FloatToken, Text: "2.0E+3"},
				{Kind: reader.IntegerToken, Text: "12"},
				{Kind: reader.EndToken, Text: "."},
			},
		},
		{
			source: "a.b. c.\n'.'. .(",
			expected: []tokenSummary{
				{Kind: reader.AtomToken, Text: "a"},
				{Kind: reader.AtomToken, Text: "."},
				{Kind: reader.AtomToken, Text: "b"},
				{Kind: reader.EndToken, Text: "."},
				{Kind: reader.AtomToken, Text: "c"},
				{Kind: reader.EndToken, Text: "."},
				{Kind: reader.QuotedAtomToken, Text: "."},
				{Kind: reader.EndToken, Text: "."},
				{Kind: reader.AtomToken, Text: ".", Functional: true},
				{Kind: reader.OpenParenToken, Text: "("},
			},
		},
		{
			source: "=.. =.\n@@@.%c\n+/*c*/-",
			expected: []tokenSummary{
				{Kind: reader.AtomToken, Text: "=.."},
				{Kind: reader.AtomToken, Text: "="},
				{Kind: reader.EndToken, Text: "."},
				{Kind: reader.AtomToken, Text: "@@@"},
				{Kind: reader.EndToken, Text: "."},
				{Kind: reader.AtomToken, Text: "+"},
				{Kind: reader.AtomToken, Text: "-"},
			},
		},
		{
			source: "% line\na /* block\n spans */ b",
			flags:  func(f *types.Flags) { f.KeepComments = true },
			expected: []tokenSummary{
				{Kind: reader.CommentToken, Text: "% line"},
				{Kind: reader.AtomToken, Text: "a"},
				{Kind: reader.CommentToken, Text: "/* block\n spans */"},
				{Kind: reader.AtomToken, Text: "b"},
			},
		},
		{
			source: "! ; [] {} ,",
			expected: []tokenSummary{
				{Kind: reader.AtomToken, Text: "!"},
				{Kind: reader.AtomToken, Text: ";"},
				{Kind: reader.OpenBracketToken, Text: "["},
				{Kind: reader.CloseBracketToken, Text: "]"},
				{Kind: reader.OpenBraceToken, Text: "{"},
				{Kind: reader.CloseBraceToken, Text: "}"},
				{Kind: reader.CommaToken, Text: ","},
			},
		},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			flags := types.DefaultFlags()
			if tt.flags != nil {
				tt.flags(&flags)
			}
			if diff := cmp.Diff(tt.expected, tokenize(t, tt.source, flags)); diff != "" {
				t.Errorf("(-expected, +got):\n%s", diff)
			}
		})
	}
}

func TestTokenizerPosition(t *testing.T) {
	t.Parallel()

	flags := types.DefaultFlags()
	tokenizer := reader.NewTokenizer(reader.NewLineReader(strings.NewReader("foo(\n  'bär', baz)")), &flags)

	type position struct {
		Text         string
		Line, Column int
		LayoutBefore bool
	}
	var got []position
	for {
		tok, err := tokenizer.Next()
		if err != nil {
			t.Fatal(err)
		}
		if tok.Kind == reader.EOFToken {
			break
		}
		got = append(got, position{Text: tok.Text, Line: tok.Line, Column: tok.Column, LayoutBefore: tok.LayoutBefore})
	}

	expected := []position{
		{Text: "foo", Line: 1, Column: 1},
		{Text: "(", Line: 1, Column: 4},
		{Text: "bär", Line: 2, Column: 3, LayoutBefore: true},
		{Text: ",", Line: 2, Column: 8},
		{Text: "baz", Line: 2, Column: 10, LayoutBefore: true},
		{Text: ")", Line: 2, Column: 13},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}

func TestTokenizerError(t *testing.T) {
	t.Parallel()

	flags := types.DefaultFlags()
	tokenizer := reader.NewTokenizer(reader.NewLineReader(strings.NewReader("ok 'never\nclosed")), &flags)

	tok, err := tokenizer.Next()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Text != "ok" {
		t.Fatalf("unexpected token: %+v", tok)
	}

	_, err = tokenizer.Next()
	class, ok := types.SyntaxErrorClassOf(err)
	if !ok || class != types.StringErrorTag {
		t.Fatalf("expect string_error but got %v", err)
	}

	exception, _ := err.(types.Exception).Exception().(map[string]any)
	if diff := cmp.Diff("'never\nclosed", exception["consumed"]); diff != "" {
		t.Errorf("(-expected, +got):\n%s", diff)
	}
}
