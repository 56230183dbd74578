// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asmtext

import "fmt"

// Token is one lexical unit of the text assembly notation: a mnemonic,
// an integer literal, or the end-of-input marker.
type Token struct {
	Kind   TokenKind
	Text   string
	Value  int32 // valid when Kind == INT
	Line   int
	Column int
}

func (t *Token) String() string {
	if t.Kind == EOF {
		return "<EOF>"
	}
	return fmt.Sprintf("<%s %q>", t.Kind, t.Text)
}

// TokenKind names a lexical class. The mnemonic kinds mirror the
// opcode package one-for-one; INT covers integer immediates (block and
// loop take no signature literal).
type TokenKind int

const (
	EOF TokenKind = iota
	INT

	I32_CONST
	I32_ADD
	LOCAL_GET
	LOCAL_SET
	LOCAL_TEE
	BLOCK
	LOOP
	END
	BR
	BR_IF
)

var mnemonicKindOf = map[string]TokenKind{
	"i32.const":  I32_CONST,
	"i32.add":    I32_ADD,
	"local.get":  LOCAL_GET,
	"local.set":  LOCAL_SET,
	"local.tee":  LOCAL_TEE,
	"block":      BLOCK,
	"loop":       LOOP,
	"end":        END,
	"br":         BR,
	"br_if":      BR_IF,
}

var tokenStrings = map[TokenKind]string{
	EOF:       "EOF",
	INT:       "INT",
	I32_CONST: "i32.const",
	I32_ADD:   "i32.add",
	LOCAL_GET: "local.get",
	LOCAL_SET: "local.set",
	LOCAL_TEE: "local.tee",
	BLOCK:     "block",
	LOOP:      "loop",
	END:       "end",
	BR:        "br",
	BR_IF:     "br_if",
}

func (k TokenKind) String() string {
	if s, ok := tokenStrings[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// hasImm reports whether a mnemonic of this kind is always followed
// by an integer immediate in the text notation. block and loop carry
// no signature token: the assembler always emits code.BlockTypeEmpty
// for them (the instruction set has no typed block results).
func (k TokenKind) hasImm() bool {
	switch k {
	case I32_CONST, LOCAL_GET, LOCAL_SET, LOCAL_TEE, BR, BR_IF:
		return true
	default:
		return false
	}
}
