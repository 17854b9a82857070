package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type ErrorTag string

const (
	SyntaxErrorTag        ErrorTag = "SyntaxError"
	SystemErrorTag        ErrorTag = "SystemError"
	PermissionErrorTag    ErrorTag = "PermissionError"
	DomainErrorTag        ErrorTag = "DomainError"
	TypeErrorTag          ErrorTag = "TypeError"
	InstantiationErrorTag ErrorTag = "InstantiationError"
	DirectiveErrorTag     ErrorTag = "DirectiveError"
)

// syntax error classes
const (
	TokenErrorTag             ErrorTag = "token_error"
	StringErrorTag            ErrorTag = "string_error"
	CommentErrorTag           ErrorTag = "comment_error"
	EndOfFileErrorTag         ErrorTag = "end_of_file_error"
	FunctorOrOperatorErrorTag ErrorTag = "functor_or_operator_error"
	ExpectedOperatorErrorTag  ErrorTag = "expected_operator_error"
	ExpectedArgumentErrorTag  ErrorTag = "expected_argument_error"
	ExpectedSentenceErrorTag  ErrorTag = "expected_sentence_error"
)

type Exception interface {
	error
	Exception() any
}

type Error struct {
	Tag   ErrorTag
	Err   error
	Extra map[string]any
}

var _ Exception = (*Error)(nil)

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Tag)
	}

	var b strings.Builder
	b.WriteString(string(e.Tag))
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Exception() any {
	var tags []any
	extra := map[string]any{}
	for err := error(e); err != nil; err = errors.Unwrap(err) {
		if e, ok := err.(*Error); ok {
			tags = append(tags, e.Tag)
			extra = lo.Assign(e.Extra, extra)
		}
	}

	o := map[string]any{
		"tags":    tags,
		"message": e.Error(),
	}
	if len(extra) != 0 {
		o = lo.Assign(o, extra)
	}
	return o
}

// NewSyntaxError builds a syntax error of the given class. line is the text of
// the offending source line, used for diagnostics only.
func NewSyntaxError(class ErrorTag, line string, lineNumber, column int, format string, args ...any) *Error {
	return &Error{
		Tag: SyntaxErrorTag,
		Err: &Error{
			Tag: class,
			Err: fmt.Errorf(format, args...),
		},
		Extra: map[string]any{
			"line":        strings.TrimRight(line, "\r\n"),
			"line_number": lineNumber,
			"column":      column,
		},
	}
}

// NewSystemError wraps an I/O failure of the character source.
func NewSystemError(err error) *Error {
	return &Error{Tag: SystemErrorTag, Err: err}
}

// IsSyntaxError reports whether err is (or wraps) a syntax error.
func IsSyntaxError(err error) bool {
	_, ok := SyntaxErrorClassOf(err)
	return ok
}

// SyntaxErrorClassOf returns the class tag (e.g. TokenErrorTag) of a syntax error.
func SyntaxErrorClassOf(err error) (ErrorTag, bool) {
	var e *Error
	if !errors.As(err, &e) || e.Tag != SyntaxErrorTag {
		return "", false
	}

	var class *Error
	if !errors.As(e.Err, &class) {
		return "", false
	}
	return class.Tag, true
}

// ErrorLine returns the offending line text attached to a syntax error.
func ErrorLine(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	line, _ := e.Extra["line"].(string)
	return line
}
