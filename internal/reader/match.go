package reader

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/karupanerura/prolog-reader/internal/types"
)

// The match functions return the length in bytes of the longest prefix of s
// in their lexical class, or 0.

func matchWhile(s string, pred func(rune) bool) int {
	for i, r := range s {
		if !pred(r) {
			return i
		}
	}
	return len(s)
}

func matchLayout(s string) int {
	return matchWhile(s, unicode.IsSpace)
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) && !unicode.IsUpper(r)
}

func isVariableStart(r rune) bool {
	return r == '_' || unicode.IsUpper(r)
}

func matchName(s string) int {
	if r, n := utf8.DecodeRuneInString(s); n == 0 || !isNameStart(r) {
		return 0
	}
	return matchWhile(s, types.IsAlphaNumeric)
}

func matchVariable(s string) int {
	if r, n := utf8.DecodeRuneInString(s); n == 0 || !isVariableStart(r) {
		return 0
	}
	return matchWhile(s, types.IsAlphaNumeric)
}

// matchGraphic stops before "/*" so that a comment can follow a graphic atom.
func matchGraphic(s string) int {
	for i, r := range s {
		if !types.IsGraphicChar(r) || strings.HasPrefix(s[i:], "/*") {
			return i
		}
	}
	return len(s)
}

func isDecimalDigit(r rune) bool { return '0' <= r && r <= '9' }
func isOctalDigit(r rune) bool   { return '0' <= r && r <= '7' }
func isBinaryDigit(r rune) bool  { return r == '0' || r == '1' }

func isHexDigit(r rune) bool {
	return isDecimalDigit(r) || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}

// matchDigits matches digit groups separated by single underscores, as in
// 1_000_000.
func matchDigits(s string, isDigit func(rune) bool) int {
	n := 0
	for n < len(s) {
		group := matchWhile(s[n:], isDigit)
		if group == 0 {
			break
		}
		n += group
		if n+1 < len(s) && s[n] == '_' && isDigit(rune(s[n+1])) {
			n++
			continue
		}
		break
	}
	return n
}

var integerPrefixes = []struct {
	prefix  string
	base    int
	isDigit func(rune) bool
}{
	{"0x", 16, isHexDigit},
	{"0o", 8, isOctalDigit},
	{"0b", 2, isBinaryDigit},
}

// matchBasedInteger matches 0x, 0o and 0b integers. digits is the offset of
// the first digit.
func matchBasedInteger(s string) (n, digits, base int) {
	for _, p := range integerPrefixes {
		if !strings.HasPrefix(s, p.prefix) {
			continue
		}
		if m := matchDigits(s[len(p.prefix):], p.isDigit); m > 0 {
			return len(p.prefix) + m, len(p.prefix), p.base
		}
	}
	return 0, 0, 0
}

// matchFloat matches digits "." digits with an optional signed exponent.
func matchFloat(s string) int {
	n := matchDigits(s, isDecimalDigit)
	if n == 0 || n+1 >= len(s) || s[n] != '.' {
		return 0
	}
	fraction := matchDigits(s[n+1:], isDecimalDigit)
	if fraction == 0 {
		return 0
	}
	n += 1 + fraction

	if n < len(s) && (s[n] == 'e' || s[n] == 'E') {
		e := n + 1
		if e < len(s) && (s[e] == '+' || s[e] == '-') {
			e++
		}
		if exp := matchWhile(s[e:], isDecimalDigit); exp > 0 {
			n = e + exp
		}
	}
	return n
}

// matchQuotedRun matches characters that need no special handling inside a
// literal closed by quote.
func matchQuotedRun(s string, quote rune, escapes bool) int {
	return matchWhile(s, func(r rune) bool {
		return r != quote && !(escapes && r == '\\')
	})
}

// endsClause reports whether s, the text following a ".", makes that "." an
// end token.
func endsClause(s string) bool {
	r, n := utf8.DecodeRuneInString(s)
	return n == 0 || unicode.IsSpace(r) || r == '%'
}
