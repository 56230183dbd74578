// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package code describes the in-memory bytecode stream consumed by the
// machine package: a flat sequence of opcodes and their inline immediates,
// plus a cursor for scanning it.
package code

import "fmt"

// ValueType represents the type of a value on the operand stack. The
// prototype instruction set only produces and consumes i32 values, but the
// type is kept distinct from a bare bool so a future opcode addition does
// not require touching every call site that compares types.
type ValueType int8

const ValueTypeI32 ValueType = -0x01

func (t ValueType) String() string {
	if t == ValueTypeI32 {
		return "i32"
	}
	return fmt.Sprintf("<unknown value_type %d>", int8(t))
}

// BlockType represents the signature of a structured block. The instruction
// set here carries no typed block results, so in practice this is always
// BlockTypeEmpty. It is carried in the code stream and passed to
// StartBlock/StartLoop; no control frame stores it.
type BlockType int8

const BlockTypeEmpty BlockType = -0x40

func (b BlockType) String() string {
	if b == BlockTypeEmpty {
		return "<empty block>"
	}
	return fmt.Sprintf("<block type %d>", int8(b))
}
