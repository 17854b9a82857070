package reader

import (
	"io"
	"log"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/k0kubun/pp"
	"github.com/karupanerura/prolog-reader/internal/types"
	"github.com/samber/lo"
)

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("PROLOG_READER_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

// OperatorLookup resolves operator definitions. It is consulted on every
// lookup, so definitions changed between sentences apply to the next one.
type OperatorLookup interface {
	LookupPrefix(name string) (types.Operator, bool)
	LookupInfixPostfix(name string) (types.Operator, bool)
}

var bracketPairMap = map[TokenKind]TokenKind{
	OpenParenToken:   CloseParenToken,
	OpenBracketToken: CloseBracketToken,
	OpenBraceToken:   CloseBraceToken,
}

var bracketReversePairMap = lo.Invert(bracketPairMap)

type parser struct {
	lex      *lexer
	ops      OperatorLookup
	flags    *types.Flags
	vars     *variableMap
	comments []Comment
	last     Token
	line     int
	debug    bool
}

func (p *parser) next() (Token, error) {
	for {
		tok, err := p.lex.consume()
		if err != nil {
			return Token{}, err
		}
		if tok.Kind == CommentToken {
			p.comments = append(p.comments, Comment{Text: tok.Text, Line: tok.Line})
			continue
		}
		if p.line == 0 {
			p.line = tok.Line
		}

		p.last = tok
		if p.debug {
			log.Println("token: ", tok.describe())
		}
		return tok, nil
	}
}

func (p *parser) pushBack(tok Token) {
	p.lex.push(tok)
}

func (p *parser) readSentence() (*Sentence, error) {
	p.vars = newVariableMap()
	p.comments = nil
	p.line = 0
	p.last = Token{Kind: CommentToken}

	r := p.newExprRead(EndToken, true, false)
	t, err := r.read()
	if err != nil {
		return nil, err
	}

	return &Sentence{
		Term:       t,
		Variables:  p.vars.names(),
		Singletons: p.vars.singletons(),
		Comments:   p.comments,
		Line:       p.line,
	}, nil
}

func (p *parser) readGroup() (types.Term, error) {
	return p.newExprRead(CloseParenToken, false, false).read()
}

// readArguments reads "(" args ")" after a functional name token.
func (p *parser) readArguments() ([]types.Term, error) {
	open, err := p.next()
	if err != nil {
		return nil, err
	}
	if open.Kind != OpenParenToken {
		panic("reader: functional name not followed by `(`")
	}

	r := p.newExprRead(CloseParenToken, false, false)
	r.separated = true
	t, err := r.read()
	if err != nil {
		return nil, err
	}
	return append(r.args, t), nil
}

func (p *parser) readList() (types.Term, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == CloseBracketToken {
		return types.Nil, nil
	}
	p.pushBack(tok)

	r := p.newExprRead(CloseBracketToken, false, true)
	r.separated = true
	t, err := r.read()
	if err != nil {
		return nil, err
	}

	if r.tailAt < 0 {
		return types.NewList(append(r.args, t), types.Nil), nil
	}
	return types.NewList(r.args, t), nil
}

func (p *parser) readBraces() (types.Term, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind == CloseBraceToken {
		return types.EmptyBraces, nil
	}
	p.pushBack(tok)

	t, err := p.newExprRead(CloseBraceToken, false, false).read()
	if err != nil {
		return nil, err
	}
	return types.NewBraces(t), nil
}

func (p *parser) number(tok Token) (types.Term, error) {
	var (
		t   types.Term
		err error
	)
	switch tok.Kind {
	case IntegerToken:
		t, err = types.ParseInteger(tok.Text, tok.Base)
	case FloatToken:
		t, err = types.ParseFloat(tok.Text)
	case CharCodeToken:
		r, _ := utf8.DecodeRuneInString(tok.Text)
		t = types.Integer(r)
	}
	if err != nil {
		return nil, p.syntaxError(tok, types.TokenErrorTag, "%v", err)
	}
	return t, nil
}

// foldNumber reads a numeric literal directly following a sign, yielding the
// signed number. ok is false when no such literal follows.
func (p *parser) foldNumber(sign string) (t types.Term, ok bool, err error) {
	tok, err := p.next()
	if err != nil {
		return nil, false, err
	}

	switch tok.Kind {
	case IntegerToken, FloatToken, CharCodeToken:
		if tok.LayoutBefore {
			break
		}
		t, err := p.number(tok)
		if err != nil {
			return nil, false, err
		}
		if sign == "-" {
			t, _ = types.Negate(t)
		}
		return t, true, nil
	}

	p.pushBack(tok)
	return nil, false, nil
}

func (p *parser) syntaxError(tok Token, class types.ErrorTag, format string, args ...any) error {
	return types.NewSyntaxError(class, p.lex.src.LineText(tok.begin), tok.Line, tok.Column, format, args...)
}

type readState int

const (
	argOrPrefixState readState = iota
	operatorState
)

type frameKind int

const (
	terminalFrame frameKind = iota
	prefixFrame
	infixFrame
)

type operatorFrame struct {
	kind frameKind
	op   types.Operator
	atom types.Atom
	tok  Token
}

type operand struct {
	term     types.Term
	priority int
}

// pendingOperator classifies the operator waiting for an argument while the
// reader is in argOrPrefixState.
type pendingOperator int

const (
	noPendingOperator pendingOperator = iota
	pendingPrefixOperator
	pendingInfixOperator
)

// exprRead reads one (sub-)expression up to its terminal token with an
// operand stack and an operator stack seeded with a terminal frame.
type exprRead struct {
	p         *parser
	terminal  TokenKind
	topLevel  bool
	inList    bool
	state     readState
	operands  []operand
	operators []operatorFrame

	// separated reads treat a bare comma as an argument separator; args
	// holds the arguments completed so far
	separated bool
	args      []types.Term

	// tailAt is the number of list elements read before `|`, or -1
	tailAt int
}

func (p *parser) newExprRead(terminal TokenKind, topLevel, inList bool) *exprRead {
	return &exprRead{
		p:         p,
		terminal:  terminal,
		topLevel:  topLevel,
		inList:    inList,
		operators: []operatorFrame{{kind: terminalFrame}},
		tailAt:    -1,
	}
}

func (r *exprRead) read() (types.Term, error) {
	for {
		tok, err := r.p.next()
		if err != nil {
			return nil, err
		}

		var done bool
		switch r.state {
		case argOrPrefixState:
			done, err = r.argOrPrefix(tok)
		case operatorState:
			done, err = r.operator(tok)
		}
		if err != nil {
			return nil, err
		}
		if done {
			return r.operands[0].term, nil
		}
	}
}

func (r *exprRead) top() operatorFrame {
	return r.operators[len(r.operators)-1]
}

func (r *exprRead) popOperator() operatorFrame {
	frame := r.top()
	r.operators = r.operators[:len(r.operators)-1]
	return frame
}

func (r *exprRead) popOperand() operand {
	o := r.operands[len(r.operands)-1]
	r.operands = r.operands[:len(r.operands)-1]
	return o
}

func (r *exprRead) pushOperand(t types.Term, priority int) {
	r.operands = append(r.operands, operand{term: t, priority: priority})
	r.state = operatorState
}

func (r *exprRead) empty() bool {
	return r.state == argOrPrefixState && len(r.operands) == 0 && len(r.operators) == 1
}

func (r *exprRead) pending() pendingOperator {
	switch r.top().kind {
	case prefixFrame:
		return pendingPrefixOperator
	case infixFrame:
		return pendingInfixOperator
	default:
		return noPendingOperator
	}
}

func (r *exprRead) isTerminal(tok Token) bool {
	if tok.Kind == r.terminal {
		return true
	}
	return r.topLevel && r.p.flags.FullStopOptional && tok.Kind == EOFToken && !r.empty()
}

func (r *exprRead) argOrPrefix(tok Token) (bool, error) {
	if r.isTerminal(tok) {
		return r.closeAtArgument(tok)
	}

	switch tok.Kind {
	case EOFToken, EndToken:
		return false, r.unexpectedEnd(tok)

	case CloseParenToken, CloseBracketToken, CloseBraceToken, CommaToken, BarToken:
		if r.pending() == pendingPrefixOperator {
			r.prefixToAtom()
			return r.operator(tok)
		}
		return false, r.p.syntaxError(tok, types.ExpectedArgumentErrorTag, "argument expected, got %s", tok.describe())

	case IntegerToken, FloatToken, CharCodeToken:
		t, err := r.p.number(tok)
		if err != nil {
			return false, err
		}
		r.pushOperand(t, 0)

	case VariableToken:
		r.pushOperand(r.p.vars.lookup(tok.Text), 0)

	case AnonymousVariableToken:
		r.pushOperand(r.p.vars.anonymous(), 0)

	case DoubleQuotedToken:
		r.pushOperand(types.TextTerm(r.p.flags.DoubleQuotes, tok.Text), 0)

	case BackquotedToken:
		r.pushOperand(types.TextTerm(r.p.flags.BackQuotes, tok.Text), 0)

	case OpenParenToken:
		t, err := r.p.readGroup()
		if err != nil {
			return false, err
		}
		r.pushOperand(t, 0)

	case OpenBracketToken:
		t, err := r.p.readList()
		if err != nil {
			return false, err
		}
		r.pushOperand(t, 0)

	case OpenBraceToken:
		t, err := r.p.readBraces()
		if err != nil {
			return false, err
		}
		r.pushOperand(t, 0)

	case AtomToken, QuotedAtomToken:
		return false, r.name(tok)

	default:
		panic("reader: unexpected token kind " + tok.Kind.String())
	}
	return false, nil
}

func atomOf(tok Token) types.Atom {
	if tok.Kind == QuotedAtomToken {
		return types.NewQuotedAtom(tok.Text)
	}
	return types.NewAtom(tok.Text)
}

// name handles a name token where an argument or a prefix operator may start.
func (r *exprRead) name(tok Token) error {
	atom := atomOf(tok)
	if tok.Functional {
		args, err := r.p.readArguments()
		if err != nil {
			return err
		}
		r.pushOperand(types.NewCompound(atom, args...), 0)
		return nil
	}

	infix, hasInfix := r.p.ops.LookupInfixPostfix(atom.Name)
	var (
		prefix    types.Operator
		hasPrefix bool
	)
	if tok.Kind == AtomToken {
		prefix, hasPrefix = r.p.ops.LookupPrefix(atom.Name)
	}

	if !hasPrefix {
		if hasInfix && r.pending() == pendingPrefixOperator {
			// "- = x": the pending prefix operator is the left operand
			r.prefixToAtom()
			return r.infixOrPostfix(tok, infix)
		}
		r.pushOperand(atom, 0)
		return nil
	}

	if atom.Name == "-" || atom.Name == "+" {
		t, ok, err := r.p.foldNumber(atom.Name)
		if err != nil {
			return err
		}
		if ok {
			r.pushOperand(t, 0)
			return nil
		}
	}

	if hasInfix && r.pending() == pendingPrefixOperator {
		// when the pending prefix operator cannot take this one as its
		// argument, the pending one is an atom and this one is infix
		if _, right := r.top().op.ArgumentPriorities(); prefix.Priority > right {
			r.prefixToAtom()
			return r.infixOrPostfix(tok, infix)
		}
	}

	r.operators = append(r.operators, operatorFrame{kind: prefixFrame, op: prefix, atom: atom, tok: tok})
	return nil
}

// prefixToAtom turns the pending prefix operator into a plain atom operand.
func (r *exprRead) prefixToAtom() {
	frame := r.popOperator()
	r.pushOperand(frame.atom, 0)
}

// closeAtArgument handles the terminal token while an argument is expected.
func (r *exprRead) closeAtArgument(tok Token) (bool, error) {
	switch r.pending() {
	case pendingPrefixOperator:
		if r.topLevel && len(r.operands) == 0 && len(r.operators) == 2 {
			return false, r.p.syntaxError(tok, types.ExpectedSentenceErrorTag, "unexpected %s after prefix operator %s", tok.describe(), r.top().atom)
		}
		r.prefixToAtom()
		return r.operator(tok)

	case pendingInfixOperator:
		return false, r.p.syntaxError(tok, types.ExpectedArgumentErrorTag, "argument expected after %s, got %s", r.top().atom, tok.describe())

	case noPendingOperator:
		if r.topLevel {
			return false, r.p.syntaxError(tok, types.ExpectedSentenceErrorTag, "unexpected %s, expected a term", tok.describe())
		}
		return false, r.p.syntaxError(tok, types.ExpectedArgumentErrorTag, "argument expected, got %s", tok.describe())

	default:
		panic("reader: unknown pending operator")
	}
}

func (r *exprRead) operator(tok Token) (bool, error) {
	if r.isTerminal(tok) {
		return true, r.finish()
	}

	switch {
	case tok.Kind == CommaToken && r.separated:
		if r.tailAt >= 0 {
			return false, r.p.syntaxError(tok, types.FunctorOrOperatorErrorTag, "malformed list: more than one term after `|`")
		}
		return false, r.separate()

	case tok.Kind == BarToken && r.inList:
		if r.tailAt >= 0 {
			return false, r.p.syntaxError(tok, types.FunctorOrOperatorErrorTag, "malformed list: misplaced `|`")
		}
		if err := r.separate(); err != nil {
			return false, err
		}
		r.tailAt = len(r.args)
		return false, nil

	case tok.isName():
		op, ok := r.p.ops.LookupInfixPostfix(tok.Text)
		if tok.Kind == QuotedAtomToken && (tok.Text == "," || tok.Text == "|") {
			ok = false
		}
		if !ok {
			return false, r.p.syntaxError(tok, types.ExpectedOperatorErrorTag, "operator expected, got %s", tok.describe())
		}
		return false, r.infixOrPostfix(tok, op)

	case tok.Kind == EOFToken || tok.Kind == EndToken:
		return false, r.unexpectedEnd(tok)

	case tok.Kind == CloseParenToken || tok.Kind == CloseBracketToken || tok.Kind == CloseBraceToken:
		open := Token{Kind: bracketReversePairMap[tok.Kind]}
		return false, r.p.syntaxError(tok, types.ExpectedOperatorErrorTag, "unexpected %s without matching %s", tok.describe(), open.describe())

	default:
		return false, r.p.syntaxError(tok, types.ExpectedOperatorErrorTag, "operator expected, got %s", tok.describe())
	}
}

func (r *exprRead) unexpectedEnd(tok Token) error {
	if !r.topLevel {
		return r.p.syntaxError(tok, types.EndOfFileErrorTag, "unexpected %s, expected %s", tok.describe(), r.terminal)
	}
	if tok.Kind == EOFToken && r.empty() {
		return io.EOF
	}
	return r.p.syntaxError(tok, types.EndOfFileErrorTag, "unexpected %s, expected %s", tok.describe(), r.terminal)
}

func (r *exprRead) infixOrPostfix(tok Token, op types.Operator) error {
	left, _ := op.ArgumentPriorities()
	for {
		top := r.top()
		if top.kind == terminalFrame {
			break
		}
		if top.op.Priority > left {
			if top.kind == infixFrame && top.op.Priority == op.Priority && top.op.Specifier == types.XFX && op.Specifier == types.XFX {
				return r.p.syntaxError(tok, types.FunctorOrOperatorErrorTag, "operator priority clash: %s and %s are both xfx at priority %d", top.atom, atomOf(tok), op.Priority)
			}
			break
		}
		if err := r.reduce(); err != nil {
			return err
		}
	}

	atom := atomOf(tok)
	if op.Specifier.Fixity() == types.Postfix {
		arg := r.popOperand()
		if arg.priority > left {
			return r.p.syntaxError(tok, types.FunctorOrOperatorErrorTag, "operator priority clash at %s", atom)
		}
		r.pushOperand(types.NewCompound(atom, arg.term), op.Priority)
		return nil
	}

	r.operators = append(r.operators, operatorFrame{kind: infixFrame, op: op, atom: atom, tok: tok})
	r.state = argOrPrefixState
	return nil
}

func (r *exprRead) reduce() error {
	frame := r.popOperator()
	leftMax, rightMax := frame.op.ArgumentPriorities()

	switch frame.kind {
	case prefixFrame:
		arg := r.popOperand()
		if arg.priority > rightMax {
			return r.p.syntaxError(frame.tok, types.FunctorOrOperatorErrorTag, "operator priority clash at %s", frame.atom)
		}
		r.operands = append(r.operands, operand{term: types.NewCompound(frame.atom, arg.term), priority: frame.op.Priority})

	case infixFrame:
		right := r.popOperand()
		left := r.popOperand()
		if left.priority > leftMax || right.priority > rightMax {
			return r.p.syntaxError(frame.tok, types.FunctorOrOperatorErrorTag, "operator priority clash at %s", frame.atom)
		}
		r.operands = append(r.operands, operand{term: types.NewCompound(frame.atom, left.term, right.term), priority: frame.op.Priority})

	default:
		panic("reader: reduce on the terminal frame")
	}
	return nil
}

// finish reduces the remaining operators once the terminal token is seen.
func (r *exprRead) finish() error {
	for r.top().kind != terminalFrame {
		if err := r.reduce(); err != nil {
			return err
		}
	}
	r.popOperator()

	if len(r.operands) != 1 {
		panic("reader: operand stack must hold exactly one term, got " + strconv.Itoa(len(r.operands)))
	}
	if r.p.debug {
		pp.Println(r.operands[0].term)
		log.Println("read: ", r.operands[0].term)
	}
	return nil
}

// separate completes the current argument of a separated read: every
// pending operator is reduced, so no operator takes in the next argument.
func (r *exprRead) separate() error {
	for r.top().kind != terminalFrame {
		if err := r.reduce(); err != nil {
			return err
		}
	}
	r.args = append(r.args, r.popOperand().term)
	r.state = argOrPrefixState
	return nil
}
