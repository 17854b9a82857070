package reader

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/karupanerura/prolog-reader/internal/types"
)

type lexerStateKind int

const (
	coreLexState lexerStateKind = iota
	quotedLexState
	lineCommentLexState
	blockCommentLexState
	finishedLexState
)

type lexerState struct {
	kind lexerStateKind

	// quoted literals
	quote rune
	once  bool

	token Token
}

type lexer struct {
	src    *Source
	flags  *types.Flags
	state  lexerState
	buf    []Token
	begin  Mark
	layout bool
	text   strings.Builder

	// exhausted reports that the last error was raised at the end of the
	// input inside a quoted literal or block comment
	exhausted bool
}

func newLexer(src *Source, flags *types.Flags) *lexer {
	return &lexer{src: src, flags: flags}
}

// push returns a token to the stream; the next consume yields it again.
func (l *lexer) push(t Token) {
	l.buf = append(l.buf, t)
}

func (l *lexer) consume() (Token, error) {
	if len(l.buf) != 0 {
		tok := l.buf[len(l.buf)-1]
		l.buf = l.buf[:len(l.buf)-1]
		return tok, nil
	}

	l.state = lexerState{kind: coreLexState}
	l.layout = false
	l.exhausted = false
	for {
		var err error
		switch l.state.kind {
		case coreLexState:
			err = l.lexCore()
		case quotedLexState:
			err = l.lexQuoted()
		case lineCommentLexState:
			err = l.lexLineComment()
		case blockCommentLexState:
			err = l.lexBlockComment()
		case finishedLexState:
			tok := l.state.token
			tok.LayoutBefore = l.layout
			tok.begin = l.begin
			tok.Line, tok.Column = l.src.Position(l.begin)
			return tok, nil
		}
		if err != nil {
			return Token{}, err
		}
	}
}

func (l *lexer) finish(tok Token) {
	l.state = lexerState{kind: finishedLexState, token: tok}
}

func (l *lexer) lexCore() error {
	r, ok, err := l.src.Peek()
	if err != nil {
		return err
	}
	l.begin = l.src.Mark()
	if !ok {
		l.finish(Token{Kind: EOFToken})
		return nil
	}

	rest := l.src.rest()
	if n := matchLayout(rest); n > 0 {
		l.src.advance(n)
		l.layout = true
		return nil
	}

	switch {
	case r == '%':
		l.text.Reset()
		l.state = lexerState{kind: lineCommentLexState}
		return nil

	case strings.HasPrefix(rest, "/*"):
		l.src.advance(2)
		l.text.Reset()
		l.text.WriteString("/*")
		l.state = lexerState{kind: blockCommentLexState}
		return nil
	}

	if n := matchName(rest); n > 0 {
		return l.finishName(AtomToken, rest[:n], n)
	}
	if n := matchGraphic(rest); n > 0 {
		if rest[:n] == "." {
			return l.finishDot()
		}
		if n > 1 && rest[n-1] == '.' && rest[n-2] != '.' && endsClause(rest[n:]) {
			// "@@@." ends the clause after the atom @@@
			n--
		}
		return l.finishName(AtomToken, rest[:n], n)
	}
	switch r {
	case '!', ';':
		return l.finishName(AtomToken, rest[:1], 1)
	case ',':
		return l.finishPunct(CommaToken, rest[:1])
	case '|':
		return l.finishPunct(BarToken, rest[:1])
	}

	if strings.HasPrefix(rest, "0'") {
		l.src.advance(2)
		l.text.Reset()
		l.state = lexerState{kind: quotedLexState, quote: '\'', once: true}
		return nil
	}
	if n, digits, base := matchBasedInteger(rest); n > 0 {
		l.src.advance(n)
		l.finish(Token{Kind: IntegerToken, Text: rest[digits:n], Base: base})
		return nil
	}
	if n := matchFloat(rest); n > 0 {
		l.src.advance(n)
		l.finish(Token{Kind: FloatToken, Text: rest[:n]})
		return nil
	}
	if n := matchDigits(rest, isDecimalDigit); n > 0 {
		l.src.advance(n)
		l.finish(Token{Kind: IntegerToken, Text: rest[:n], Base: 10})
		return nil
	}
	if n := matchVariable(rest); n > 0 {
		l.src.advance(n)
		if n == 1 && r == '_' {
			l.finish(Token{Kind: AnonymousVariableToken, Text: "_"})
		} else {
			l.finish(Token{Kind: VariableToken, Text: rest[:n]})
		}
		return nil
	}

	switch r {
	case '\'', '"', '`':
		l.src.advance(1)
		l.text.Reset()
		l.state = lexerState{kind: quotedLexState, quote: r}
		return nil
	case '(':
		return l.finishPunct(OpenParenToken, "(")
	case ')':
		return l.finishPunct(CloseParenToken, ")")
	case '[':
		return l.finishPunct(OpenBracketToken, "[")
	case ']':
		return l.finishPunct(CloseBracketToken, "]")
	case '{':
		return l.finishPunct(OpenBraceToken, "{")
	case '}':
		return l.finishPunct(CloseBraceToken, "}")
	}

	return l.errorf(types.TokenErrorTag, "illegal character %q", r)
}

func (l *lexer) finishPunct(kind TokenKind, text string) error {
	l.src.advance(len(text))
	l.finish(Token{Kind: kind, Text: text})
	return nil
}

// finishName completes a name token and records whether "(" follows it
// without layout.
func (l *lexer) finishName(kind TokenKind, text string, n int) error {
	l.src.advance(n)
	r, ok, err := l.src.Peek()
	if err != nil {
		return err
	}
	l.finish(Token{Kind: kind, Text: text, Functional: ok && r == '('})
	return nil
}

// finishDot distinguishes the end token ("." followed by layout, a line
// comment or the end of the stream) from the atom '.'.
func (l *lexer) finishDot() error {
	l.src.advance(1)
	r, ok, err := l.src.Peek()
	if err != nil {
		return err
	}
	if !ok || unicode.IsSpace(r) || r == '%' {
		l.finish(Token{Kind: EndToken, Text: "."})
		return nil
	}
	l.finish(Token{Kind: AtomToken, Text: ".", Functional: r == '('})
	return nil
}

func (l *lexer) lexLineComment() error {
	rest := l.src.rest()
	l.src.advance(len(rest))
	return l.finishComment(strings.TrimRight(rest, "\r\n"))
}

func (l *lexer) lexBlockComment() error {
	ok, err := l.src.fill()
	if err != nil {
		return err
	}
	if !ok {
		l.exhausted = true
		return l.errorf(types.CommentErrorTag, "unterminated block comment")
	}

	rest := l.src.rest()
	if i := strings.Index(rest, "*/"); i != -1 {
		l.text.WriteString(rest[:i+2])
		l.src.advance(i + 2)
		return l.finishComment(l.text.String())
	}
	l.text.WriteString(rest)
	l.src.advance(len(rest))
	return nil
}

func (l *lexer) finishComment(text string) error {
	if l.flags.KeepComments {
		l.finish(Token{Kind: CommentToken, Text: text})
		return nil
	}
	l.layout = true
	l.state = lexerState{kind: coreLexState}
	return nil
}

func (l *lexer) lexQuoted() error {
	ok, err := l.src.fill()
	if err != nil {
		return err
	}
	if !ok {
		l.exhausted = true
		if l.state.once {
			return l.errorf(types.TokenErrorTag, "unexpected end of file in character code")
		}
		return l.errorf(types.StringErrorTag, "unterminated quoted literal")
	}

	rest := l.src.rest()
	q := l.state.quote
	r, size := utf8.DecodeRuneInString(rest)
	switch {
	case r == q:
		if strings.HasPrefix(rest[size:], string(q)) {
			l.text.WriteRune(q)
			l.src.advance(2 * size)
			return l.acceptedOne()
		}
		l.src.advance(size)
		if l.state.once {
			l.text.WriteRune(q)
		}
		return l.finishQuoted()

	case r == '\\' && l.flags.CharEscapes:
		return l.lexEscape(rest)

	case l.state.once:
		l.text.WriteRune(r)
		l.src.advance(size)
		return l.finishQuoted()

	default:
		n := matchQuotedRun(rest, q, l.flags.CharEscapes)
		l.text.WriteString(rest[:n])
		l.src.advance(n)
		return nil
	}
}

// acceptedOne ends a character code literal after its single character.
func (l *lexer) acceptedOne() error {
	if l.state.once {
		return l.finishQuoted()
	}
	return nil
}

var controlEscapes = map[byte]rune{
	'a': '\a',
	'b': '\b',
	'r': '\r',
	'f': '\f',
	't': '\t',
	'n': '\n',
	'v': '\v',
}

func (l *lexer) lexEscape(rest string) error {
	if len(rest) < 2 {
		return l.errorf(types.StringErrorTag, "undefined escape sequence")
	}

	switch c := rest[1]; {
	case c == '\n':
		l.src.advance(2)
		return nil

	case strings.HasPrefix(rest[1:], "\r\n"):
		l.src.advance(3)
		return nil

	case c == '\\' || c == '\'' || c == '"' || c == '`':
		l.text.WriteByte(c)
		l.src.advance(2)
		return l.acceptedOne()

	case controlEscapes[c] != 0:
		l.text.WriteRune(controlEscapes[c])
		l.src.advance(2)
		return l.acceptedOne()

	case c == 'x':
		return l.lexNumericEscape(rest, 2, 16, isHexDigit)

	case isOctalDigit(rune(c)):
		return l.lexNumericEscape(rest, 1, 8, isOctalDigit)

	default:
		return l.errorf(types.StringErrorTag, "undefined escape sequence \\%c", c)
	}
}

// lexNumericEscape reads \xHH..\ and \OOO..\ escapes; digits starts after the
// escape introducer.
func (l *lexer) lexNumericEscape(rest string, digits, base int, isDigit func(rune) bool) error {
	n := matchWhile(rest[digits:], isDigit)
	end := digits + n
	if n == 0 || end >= len(rest) || rest[end] != '\\' {
		return l.errorf(types.StringErrorTag, "malformed numeric escape sequence %q", rest[:end])
	}

	code, err := strconv.ParseInt(rest[digits:end], base, 32)
	if err != nil || !utf8.ValidRune(rune(code)) {
		return l.errorf(types.StringErrorTag, "invalid character code in escape sequence %q", rest[:end+1])
	}
	l.text.WriteRune(rune(code))
	l.src.advance(end + 1)
	return l.acceptedOne()
}

func (l *lexer) finishQuoted() error {
	tok := Token{Text: l.text.String()}
	switch {
	case l.state.once:
		tok.Kind = CharCodeToken
	case l.state.quote == '"':
		tok.Kind = DoubleQuotedToken
	case l.state.quote == '`':
		tok.Kind = BackquotedToken
	default:
		tok.Kind = QuotedAtomToken
		r, ok, err := l.src.Peek()
		if err != nil {
			return err
		}
		tok.Functional = ok && r == '('
	}
	l.finish(tok)
	return nil
}

// errorf rewinds the source to the start of the failed token and returns a
// syntax error carrying the text consumed so far.
func (l *lexer) errorf(class types.ErrorTag, format string, args ...any) error {
	consumed := l.src.Text(l.begin)
	l.src.Seek(l.begin)
	line, column := l.src.Position(l.begin)
	err := types.NewSyntaxError(class, l.src.LineText(l.begin), line, column, format, args...)
	err.Extra["consumed"] = consumed
	return err
}

// skipSentence drops input up to and including the next end token, so that
// reading can continue after a syntax error. An unterminated quoted literal
// or block comment takes the rest of the input with it.
func (l *lexer) skipSentence() error {
	l.buf = nil
	for {
		tok, err := l.consume()
		if types.IsSyntaxError(err) {
			if l.exhausted {
				l.src.skipAll()
			} else {
				l.src.skipRune()
			}
			continue
		} else if err != nil {
			return err
		}

		switch tok.Kind {
		case EndToken, EOFToken:
			return nil
		}
	}
}
