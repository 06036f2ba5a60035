// Package minifier strips comments and insignificant whitespace from CSS
// in a single forward pass, without building a parse tree.
package minifier

import (
	"fmt"
	"io"
)

// scanner holds the state of one minification. It is never shared.
type scanner struct {
	src []byte
	out []byte

	inString      bool
	stringQuote   byte
	stringEscaped bool

	inComment bool

	inURLUnquoted bool
	urlEscaped    bool

	pendingSpace bool
	lastOut      byte
}

// Minify returns input with comments removed and whitespace collapsed
// wherever CSS grammar guarantees it is insignificant.
func Minify(input string) string {
	return string(MinifyBytes([]byte(input)))
}

// MinifyBytes is Minify for byte slices. The result never aliases src.
func MinifyBytes(src []byte) []byte {
	s := &scanner{
		src: src,
		out: make([]byte, 0, len(src)),
	}
	s.run()
	return s.out
}

// Copy reads all of r, minifies it and writes the result to w.
func Copy(w io.Writer, r io.Reader) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read css: %w", err)
	}
	if _, err := w.Write(MinifyBytes(src)); err != nil {
		return fmt.Errorf("failed to write css: %w", err)
	}
	return nil
}

func (s *scanner) run() {
	n := len(s.src)

	for i := 0; i < n; i++ {
		c := s.src[i]

		if !s.inString && !s.inURLUnquoted && i+1 < n {
			next := s.src[i+1]

			if !s.inComment && c == '/' && next == '*' {
				// A comment separates tokens exactly like whitespace does
				s.inComment = true
				s.pendingSpace = true
				i++
				continue
			}

			if s.inComment && c == '*' && next == '/' {
				s.inComment = false
				i++
				continue
			}
		}

		switch {
		case s.inComment:
			continue

		case s.inString:
			s.emit(c)
			if s.stringEscaped {
				s.stringEscaped = false
			} else if c == '\\' {
				s.stringEscaped = true
			} else if c == s.stringQuote {
				s.inString = false
			}

		case s.inURLUnquoted:
			i = s.urlChar(i)

		case c == '"' || c == '\'':
			s.flush(c)
			s.emit(c)
			s.inString = true
			s.stringQuote = c
			s.stringEscaped = false

		case isURLStart(s.src, i):
			i = s.urlStart(i)

		case isWhitespace(c):
			s.pendingSpace = true

		default:
			s.flush(c)
			if c == '(' && s.followsURLKeyword() {
				// url and its paren were split by a comment
				i = s.urlArgument(i)
				continue
			}
			s.emit(c)
		}
	}

	s.trimTrailingSpaces()
}

// urlStart copies `url` and any whitespace before the paren, then hands
// the paren to urlArgument. It returns the index of the last consumed byte.
func (s *scanner) urlStart(i int) int {
	n := len(s.src)

	s.flush(s.src[i])

	j := i + 3
	for j < n && isWhitespace(s.src[j]) {
		j++
	}
	// src[j] is the opening paren, guaranteed by isURLStart
	s.out = append(s.out, s.src[i:j]...)
	return s.urlArgument(j)
}

// urlArgument emits the opening paren at src[i], drops the whitespace after
// it and enters unquoted url mode unless the argument is a string. It
// returns the index of the last consumed byte.
func (s *scanner) urlArgument(i int) int {
	n := len(s.src)

	s.emit('(')

	k := i + 1
	for k < n && isWhitespace(s.src[k]) {
		k++
	}

	if k < n && (s.src[k] == '"' || s.src[k] == '\'') {
		return k - 1
	}

	s.inURLUnquoted = true
	s.urlEscaped = false
	return k - 1
}

// followsURLKeyword reports whether the output ends with `url`, optionally
// followed by one space, that is not the tail of a longer identifier.
func (s *scanner) followsURLKeyword() bool {
	out := s.out
	if n := len(out); n > 0 && out[n-1] == ' ' {
		out = out[:n-1]
	}

	n := len(out)
	if n < 3 {
		return false
	}
	if lower(out[n-3]) != 'u' || lower(out[n-2]) != 'r' || lower(out[n-1]) != 'l' {
		return false
	}
	return n == 3 || !isIdentChar(out[n-4])
}

// urlChar handles one byte inside an unquoted url argument and returns the
// index of the last consumed byte.
func (s *scanner) urlChar(i int) int {
	c := s.src[i]

	if s.urlEscaped {
		s.emit(c)
		s.urlEscaped = false
		return i
	}

	if isWhitespace(c) {
		j := i
		for j < len(s.src) && isWhitespace(s.src[j]) {
			j++
		}
		if j < len(s.src) && s.src[j] == ')' {
			return j - 1
		}
		s.out = append(s.out, s.src[i:j]...)
		s.lastOut = s.src[j-1]
		return j - 1
	}

	s.emit(c)
	switch c {
	case '\\':
		s.urlEscaped = true
	case ')':
		s.inURLUnquoted = false
		s.urlEscaped = false
	}
	return i
}

func (s *scanner) emit(c byte) {
	s.out = append(s.out, c)
	s.lastOut = c
}

// flush turns a pending space into a literal one unless the neighbouring
// tokens make it insignificant.
func (s *scanner) flush(next byte) {
	if !s.pendingSpace {
		return
	}
	s.pendingSpace = false

	if len(s.out) == 0 {
		return
	}
	if s.lastOut == '{' || s.lastOut == ';' || s.lastOut == ',' {
		return
	}
	if isSafePunctuation(next) {
		return
	}
	if s.lastOut == ' ' {
		return
	}

	s.emit(' ')
}

func (s *scanner) trimTrailingSpaces() {
	n := len(s.out)
	for n > 0 && s.out[n-1] == ' ' {
		n--
	}
	s.out = s.out[:n]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f'
}

// isSafePunctuation reports whether whitespace next to c is never
// significant in CSS.
func isSafePunctuation(c byte) bool {
	return c == '{' || c == '}' || c == ';' || c == ','
}

func isIdentChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-'
}

// isURLStart reports whether src[i:] begins a url( function: the letters
// u, r, l in any case, optional whitespace, then an opening paren. A match
// preceded by an identifier character is part of a longer name.
func isURLStart(src []byte, i int) bool {
	if i > 0 && isIdentChar(src[i-1]) {
		return false
	}
	if i+3 >= len(src) {
		return false
	}
	if lower(src[i]) != 'u' || lower(src[i+1]) != 'r' || lower(src[i+2]) != 'l' {
		return false
	}

	j := i + 3
	for j < len(src) && isWhitespace(src[j]) {
		j++
	}
	return j < len(src) && src[j] == '('
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
