package reader

import (
	"errors"
	"io"
	"strings"

	"github.com/karupanerura/prolog-reader/internal/types"
)

type Comment struct {
	Text string
	Line int
}

// Sentence is one term read up to its end token.
type Sentence struct {
	Term       types.Term
	Variables  []VariableName
	Singletons []VariableName
	Comments   []Comment
	Line       int
}

// Reader reads the sentences of one source. The operator table and the flags
// are consulted on every token, so changes made between two calls of Next
// apply to the second sentence.
type Reader struct {
	src    *Source
	p      *parser
	resync bool
}

func New(lr LineReader, ops OperatorLookup, flags *types.Flags) *Reader {
	src := NewSource(lr)
	return &Reader{
		src: src,
		p: &parser{
			lex:   newLexer(src, flags),
			ops:   ops,
			flags: flags,
			debug: parserDebugLog,
		},
	}
}

func NewFromString(s string, ops OperatorLookup, flags *types.Flags) *Reader {
	return New(NewLineReader(strings.NewReader(s)), ops, flags)
}

// Next reads the next sentence. It returns io.EOF when the source holds no
// more sentences. After a syntax error the rest of the failed sentence is
// skipped, so Next can be called again.
func (r *Reader) Next() (*Sentence, error) {
	if r.resync {
		r.resync = false
		if err := r.p.lex.skipSentence(); err != nil {
			return nil, err
		}
	}
	r.src.Release()

	s, err := r.p.readSentence()
	if types.IsSyntaxError(err) {
		switch r.p.last.Kind {
		case EndToken, EOFToken:
		default:
			r.resync = true
		}
		r.p.lex.buf = nil
	}
	return s, err
}

// ReadTerm reads a single sentence from source. The source must hold
// exactly one sentence.
func ReadTerm(source string, ops OperatorLookup, flags types.Flags) (types.Term, error) {
	return readTerm(source, ops, flags, parserDebugLog)
}

// ReadTermWithDebugOutput is ReadTerm with reader tracing enabled.
func ReadTermWithDebugOutput(source string, ops OperatorLookup, flags types.Flags) (types.Term, error) {
	return readTerm(source, ops, flags, true)
}

func readTerm(source string, ops OperatorLookup, flags types.Flags, debug bool) (types.Term, error) {
	r := NewFromString(source, ops, &flags)
	r.p.debug = debug

	s, err := r.Next()
	if errors.Is(err, io.EOF) {
		return nil, types.NewSyntaxError(types.ExpectedSentenceErrorTag, "", 1, 1, "no sentence in input")
	} else if err != nil {
		return nil, err
	}

	tok, err := r.p.next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != EOFToken {
		return nil, r.p.syntaxError(tok, types.ExpectedSentenceErrorTag, "unexpected %s after the sentence", tok.describe())
	}
	return s.Term, nil
}

// Tokenizer exposes the token stream of a source. Comment tokens are only
// produced when the KeepComments flag is set.
type Tokenizer struct {
	lex *lexer
}

func NewTokenizer(lr LineReader, flags *types.Flags) *Tokenizer {
	return &Tokenizer{lex: newLexer(NewSource(lr), flags)}
}

// Next returns the next token; the EOFToken is returned repeatedly at the end
// of the source.
func (t *Tokenizer) Next() (Token, error) {
	t.lex.src.Release()
	return t.lex.consume()
}
