// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package opcode defines the byte-coded identities, names, and stack
// arities of the handful of instructions the machine package dispatches
// on, in the style of wagon's wasm/operators table.
package opcode

import "fmt"

// Op describes a single opcode: its byte encoding, its mnemonic, and how
// many operands it pops/pushes. Arity is descriptive only; the machine
// package's handlers are the actual source of truth for stack effects.
type Op struct {
	Code    byte
	Name    string
	Args    int
	Returns int
}

// IsValid reports whether op was produced by New for a recognised byte.
func (op Op) IsValid() bool {
	_, ok := byCode[op.Code]
	return ok && op.Name != ""
}

func (op Op) String() string { return op.Name }

func newOp(code byte, name string, args, returns int) Op {
	op := Op{Code: code, Name: name, Args: args, Returns: returns}
	byCode[code] = op
	return op
}

var byCode = map[byte]Op{}

// Opcode bytes. Values are chosen in the neighbourhood of the
// corresponding WebAssembly opcodes this prototype's instruction set is
// modeled on, but this is a standalone table, not a WASM decoder.
var (
	Block    = newOp(0x02, "block", 0, 0)
	Loop     = newOp(0x03, "loop", 0, 0)
	End      = newOp(0x0b, "end", 0, 0)
	Br       = newOp(0x0c, "br", 0, 0)
	BrIf     = newOp(0x0d, "br_if", 1, 0)
	I32Const = newOp(0x41, "i32.const", 0, 1)
	I32Add   = newOp(0x6a, "i32.add", 2, 1)
	LocalGet = newOp(0x20, "local.get", 0, 1)
	LocalSet = newOp(0x21, "local.set", 1, 0)
	LocalTee = newOp(0x22, "local.tee", 1, 1)
)

// New looks up the Op registered for code. An unrecognised byte returns a
// zero-Name Op and a non-nil error; its IsValid is false.
func New(code byte) (Op, error) {
	op, ok := byCode[code]
	if !ok {
		return Op{Code: code}, fmt.Errorf("opcode: unknown opcode 0x%02x", code)
	}
	return op, nil
}

// HasBlockType reports whether op is followed by a BlockType immediate.
func (op Op) HasBlockType() bool {
	return op.Code == Block.Code || op.Code == Loop.Code
}

// HasI32Imm reports whether op is followed by a signed 32-bit immediate.
func (op Op) HasI32Imm() bool {
	switch op.Code {
	case I32Const.Code, LocalGet.Code, LocalSet.Code, LocalTee.Code, Br.Code, BrIf.Code:
		return true
	default:
		return false
	}
}
