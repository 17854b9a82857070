package reader

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/karupanerura/prolog-reader/internal/types"
)

// LineReader is a line oriented character source. Lines keep their line
// terminator; only the last line of a stream may lack one. ReadLine returns
// io.EOF when the stream is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

type bufferedLineReader struct {
	r *bufio.Reader
}

// NewLineReader adapts an io.Reader to a LineReader.
func NewLineReader(r io.Reader) LineReader {
	return &bufferedLineReader{r: bufio.NewReader(r)}
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return line, nil
	}
	return line, err
}

// Mark is a repositionable cursor into a Source.
type Mark struct {
	line int
	col  int
}

// Source buffers the lines pulled from a LineReader so that the cursor can
// be moved back to any Mark taken since the last Release.
type Source struct {
	lr    LineReader
	lines []string
	base  int // absolute index of lines[0]
	line  int // absolute index of the cursor line
	col   int // byte offset in the cursor line
	eof   bool
}

func NewSource(lr LineReader) *Source {
	return &Source{lr: lr}
}

func (s *Source) Mark() Mark {
	return Mark{line: s.line, col: s.col}
}

func (s *Source) Seek(m Mark) {
	if m.line < s.base {
		panic("reader: seek to a released mark")
	}
	s.line = m.line
	s.col = m.col
}

// fill makes the cursor point at an unread character, pulling lines as
// needed. It returns false at the end of the stream.
func (s *Source) fill() (bool, error) {
	for {
		i := s.line - s.base
		if i < len(s.lines) {
			if s.col < len(s.lines[i]) {
				return true, nil
			}
			if i+1 == len(s.lines) {
				if ok, err := s.pull(); !ok || err != nil {
					return false, err
				}
			}
			s.line++
			s.col = 0
			continue
		}

		if ok, err := s.pull(); !ok || err != nil {
			return false, err
		}
	}
}

func (s *Source) pull() (bool, error) {
	if s.eof {
		return false, nil
	}

	line, err := s.lr.ReadLine()
	if errors.Is(err, io.EOF) {
		s.eof = true
		return false, nil
	} else if err != nil {
		return false, types.NewSystemError(err)
	}
	s.lines = append(s.lines, line)
	return true, nil
}

// Peek returns the next character without consuming it.
func (s *Source) Peek() (rune, bool, error) {
	ok, err := s.fill()
	if !ok || err != nil {
		return 0, false, err
	}
	r, _ := utf8.DecodeRuneInString(s.rest())
	return r, true, nil
}

// rest returns the unread part of the cursor line. Call fill first.
func (s *Source) rest() string {
	i := s.line - s.base
	if i >= len(s.lines) {
		return ""
	}
	return s.lines[i][s.col:]
}

// advance consumes n bytes of the cursor line.
func (s *Source) advance(n int) {
	s.col += n
}

// skipRune drops one character; used to get past input that failed to lex.
func (s *Source) skipRune() {
	if ok, _ := s.fill(); ok {
		_, n := utf8.DecodeRuneInString(s.rest())
		s.advance(n)
	}
}

// skipAll drops the rest of the input.
func (s *Source) skipAll() {
	for {
		if ok, _ := s.fill(); !ok {
			return
		}
		s.advance(len(s.rest()))
	}
}

// Text returns the text between m and the cursor.
func (s *Source) Text(m Mark) string {
	var b strings.Builder
	for l := m.line; l <= s.line && l-s.base < len(s.lines); l++ {
		line := s.lines[l-s.base]
		from, to := 0, len(line)
		if l == m.line {
			from = m.col
		}
		if l == s.line {
			to = s.col
		}
		if from < to {
			b.WriteString(line[from:to])
		}
	}
	return b.String()
}

// LineText returns the text of the line m points into.
func (s *Source) LineText(m Mark) string {
	if i := m.line - s.base; 0 <= i && i < len(s.lines) {
		return s.lines[i]
	}
	return ""
}

// Position returns the 1-based line and column of m.
func (s *Source) Position(m Mark) (line, column int) {
	column = 1
	if i := m.line - s.base; 0 <= i && i < len(s.lines) {
		text := s.lines[i]
		if m.col <= len(text) {
			column = utf8.RuneCountInString(text[:m.col]) + 1
		}
	}
	return m.line + 1, column
}

// Release forgets the lines before the cursor line. Marks taken before a
// Release cannot be used with Seek afterwards.
func (s *Source) Release() {
	if n := s.line - s.base; n > 0 && n <= len(s.lines) {
		s.lines = append([]string(nil), s.lines[n:]...)
		s.base = s.line
	}
}
