// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asmtext implements a minimal line-oriented text notation for
// the bytecode instruction set: a scanner/tokenizer, an assembler
// producing a code.Program, and a pretty-printer rendering a
// code.Program (or a compiled block listing) back to the same text.
package asmtext

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
)

// Scanner tokenizes the text assembly notation: whitespace-separated
// mnemonics optionally followed by a decimal integer immediate, one
// instruction per line. Comments and indentation are cosmetic.
type Scanner struct {
	file  string
	inBuf *bytes.Buffer

	ch  rune
	eof bool

	offset int
	Line   int
	Column int

	Errors []error
}

// NewScanner opens path and prepares it for scanning.
func NewScanner(path string) *Scanner {
	var s Scanner
	s.file = path

	buf, err := ioutil.ReadFile(path)
	if err != nil {
		s.raise(err)
		return &s
	}
	return newScanner(path, buf)
}

// NewScannerFromBytes scans src directly, without touching the
// filesystem; file is used only to label diagnostics.
func NewScannerFromBytes(file string, src []byte) *Scanner {
	return newScanner(file, src)
}

func newScanner(file string, src []byte) *Scanner {
	s := &Scanner{
		file:  file,
		inBuf: bytes.NewBuffer(src),
		Line:  1,
		Column: 1,
	}
	return s
}

const (
	eofRune = -1
	errRune = -2
)

func (s *Scanner) peek() rune {
	if s.eof {
		return eofRune
	}
	r, _, err := s.inBuf.ReadRune()
	defer s.inBuf.UnreadRune()

	switch {
	case err == io.EOF:
		return eofRune
	case err != nil:
		s.raise(err)
		return errRune
	}
	return r
}

func (s *Scanner) next() rune {
	if s.eof {
		return eofRune
	}
	r, n, err := s.inBuf.ReadRune()
	switch {
	case err == io.EOF:
		s.eof = true
		s.ch = eofRune
		s.offset += n
		s.Column++
		return eofRune
	case err != nil:
		s.raise(err)
		return errRune
	}

	if r == '\n' {
		s.Column = 0
		s.Line++
	}
	s.offset += n
	s.Column++
	s.ch = r
	return r
}

func (s *Scanner) match(r rune) bool {
	if s.peek() == r {
		s.next()
		return true
	}
	return false
}

func (s *Scanner) matchIf(f func(rune) bool) bool {
	if f(s.peek()) {
		s.next()
		return true
	}
	return false
}

// Next returns the following token, skipping whitespace and comments.
// At end of input it returns a Token of Kind EOF forever after.
func (s *Scanner) Next() *Token {
	for s.matchIf(isSpace) {
	}

	tok := &Token{Line: s.Line, Column: s.Column}

	if s.peek() == eofRune {
		tok.Kind = EOF
		return tok
	}

	if s.match('#') {
		s.scanLineComment()
		return s.Next()
	}

	if s.matchIf(isDigitStart) {
		s.scanInt(tok)
		return tok
	}

	if s.matchIf(isIdentStart) {
		s.scanMnemonic(tok)
		return tok
	}

	s.errorf("unexpected character %q", safeRune(s.peek()))
	s.next()
	return s.Next()
}

func (s *Scanner) scanLineComment() {
	for !s.eof && s.ch != '\n' {
		s.next()
	}
}

func (s *Scanner) scanInt(tok *Token) {
	text := string(s.ch)
	for s.matchIf(isDigit) {
		text += string(s.ch)
	}

	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		s.errorf("malformed integer literal %q", text)
	}

	tok.Kind = INT
	tok.Text = text
	tok.Value = int32(v)
}

func (s *Scanner) scanMnemonic(tok *Token) {
	text := string(s.ch)
	for s.matchIf(isIdentPart) {
		text += string(s.ch)
	}

	tok.Text = text
	kind, ok := mnemonicKindOf[text]
	if !ok {
		s.errorf("unknown mnemonic %q", text)
		return
	}
	tok.Kind = kind
}

const (
	scanErrPrefix = "asmtext: "
)

func (s *Scanner) errorf(format string, args ...interface{}) {
	prefix := fmt.Sprintf("%s%s:%d:%d: ", scanErrPrefix, s.file, s.Line, s.Column)
	s.Errors = append(s.Errors, fmt.Errorf(prefix+format, args...))
}

func (s *Scanner) raise(err error) {
	s.Errors = append(s.Errors, fmt.Errorf("%s%s: %w", scanErrPrefix, s.file, err))
}

func safeRune(r rune) string {
	switch r {
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	default:
		return string(r)
	}
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isDigitStart(r rune) bool { return isDigit(r) || r == '-' }

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '.' || r == '_'
}
