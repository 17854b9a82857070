package reader

type TokenKind int

const (
	EOFToken TokenKind = iota
	AtomToken
	QuotedAtomToken
	VariableToken
	AnonymousVariableToken
	IntegerToken
	FloatToken
	CharCodeToken
	BackquotedToken
	DoubleQuotedToken
	OpenParenToken
	OpenBracketToken
	OpenBraceToken
	CloseParenToken
	CloseBracketToken
	CloseBraceToken
	CommaToken
	BarToken
	EndToken
	CommentToken
)

var tokenKindNames = [...]string{
	EOFToken:               "end of file",
	AtomToken:              "atom",
	QuotedAtomToken:        "quoted atom",
	VariableToken:          "variable",
	AnonymousVariableToken: "anonymous variable",
	IntegerToken:           "integer",
	FloatToken:             "float",
	CharCodeToken:          "character code",
	BackquotedToken:        "back quoted text",
	DoubleQuotedToken:      "double quoted text",
	OpenParenToken:         "`(`",
	OpenBracketToken:       "`[`",
	OpenBraceToken:         "`{`",
	CloseParenToken:        "`)`",
	CloseBracketToken:      "`]`",
	CloseBraceToken:        "`}`",
	CommaToken:             "`,`",
	BarToken:               "`|`",
	EndToken:               "end of clause",
	CommentToken:           "comment",
}

func (k TokenKind) String() string {
	if 0 <= int(k) && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit. Text is the matched text; for quoted tokens it
// is the content with escapes already resolved, for integers the digits
// without base prefix.
type Token struct {
	Kind TokenKind
	Text string
	Base int

	// LayoutBefore is set when whitespace or a comment precedes the token.
	LayoutBefore bool

	// Functional is set on name tokens directly followed by "(".
	Functional bool

	Line   int
	Column int

	begin Mark
}

func (t Token) isName() bool {
	switch t.Kind {
	case AtomToken, QuotedAtomToken, CommaToken, BarToken:
		return true
	default:
		return false
	}
}

func (t Token) describe() string {
	switch t.Kind {
	case EOFToken, EndToken, OpenParenToken, OpenBracketToken, OpenBraceToken,
		CloseParenToken, CloseBracketToken, CloseBraceToken, CommaToken, BarToken:
		return t.Kind.String()
	default:
		return t.Kind.String() + " `" + t.Text + "`"
	}
}
