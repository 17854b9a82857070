package program

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/karupanerura/prolog-reader/internal/reader"
	"github.com/karupanerura/prolog-reader/internal/types"
)

// Session holds the operator table and the flags shared by the sentences of
// the programs it consults. Directives change them for the sentences that
// follow.
type Session struct {
	Operators *types.OperatorTable
	Flags     *types.Flags
}

// NewSession starts a session whose operator definitions are layered over
// ops; ops itself is never modified.
func NewSession(ops *types.OperatorTable, flags types.Flags) *Session {
	return &Session{
		Operators: ops.Derive(),
		Flags:     &flags,
	}
}

// Result is the outcome of a consult. Syntax errors and failed directives do
// not stop the consult; they are collected in Errors.
type Result struct {
	Clauses    []*reader.Sentence
	Directives []*reader.Sentence
	Errors     []error
}

// Reader returns a reader that reads in this session's operator table and
// flags.
func (s *Session) Reader(lr reader.LineReader) *reader.Reader {
	return reader.New(lr, s.Operators, s.Flags)
}

// Apply executes sentence when it is a directive this session handles, and
// reports whether it was.
func (s *Session) Apply(sentence *reader.Sentence) (bool, error) {
	goal, ok := directiveGoal(sentence.Term)
	if !ok {
		return false, nil
	}

	handled, err := s.execute(goal)
	if err != nil {
		return handled, &types.Error{
			Tag:   types.DirectiveErrorTag,
			Err:   err,
			Extra: map[string]any{"directive": sentence.Term.String(), "line_number": sentence.Line},
		}
	}
	return handled, nil
}

func (s *Session) Consult(lr reader.LineReader) (*Result, error) {
	r := s.Reader(lr)

	result := &Result{}
	for {
		sentence, err := r.Next()
		if errors.Is(err, io.EOF) {
			return result, nil
		} else if types.IsSyntaxError(err) {
			result.Errors = append(result.Errors, err)
			continue
		} else if err != nil {
			return nil, fmt.Errorf("reader.Next: %w", err)
		}

		handled, err := s.Apply(sentence)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
		if handled {
			result.Directives = append(result.Directives, sentence)
		} else {
			result.Clauses = append(result.Clauses, sentence)
		}
	}
}

func (s *Session) ConsultString(text string) (*Result, error) {
	return s.Consult(reader.NewLineReader(strings.NewReader(text)))
}

func directiveGoal(t types.Term) (types.Term, bool) {
	c, ok := t.(*types.Compound)
	if !ok || len(c.Args) != 1 || c.Functor.Name != ":-" {
		return nil, false
	}
	return c.Args[0], true
}
