// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import (
	"reflect"
	"testing"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
)

func prog(entries ...code.Entry) *code.Program {
	return &code.Program{Entries: entries}
}

func op(o opcode.Op) code.Entry { return code.Op(o) }
func imm(v int32) code.Entry    { return code.I32Imm(v) }
func bt() code.Entry            { return code.BlockTypeImm(code.BlockTypeEmpty) }

func TestPartitionSkipsBlockBody(t *testing.T) {
	// block (i32.const 1) (br 0) (i32.const 2) end
	p := prog(
		op(opcode.Block), bt(),
		op(opcode.I32Const), imm(1),
		op(opcode.Br), imm(0),
		op(opcode.I32Const), imm(2),
		op(opcode.End),
	)

	part, err := New(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantConts := []Continuation{{IP: 0}, {IP: 6}, {IP: 9}}
	if !reflect.DeepEqual(part.Continuations, wantConts) {
		t.Fatalf("continuations = %+v, want %+v", part.Continuations, wantConts)
	}

	wantBlocks := []ContBlock{
		{IP: 0, BrTgt: 2},
		{IP: 6, BrTgt: 0},
		{IP: 9, BrTgt: 0},
	}
	if !reflect.DeepEqual(part.Blocks, wantBlocks) {
		t.Fatalf("blocks = %+v, want %+v", part.Blocks, wantBlocks)
	}
}

// TestPartitionSumScenario checks the partitioner's output against the
// repository's canonical "sum 5 down to 0" program.
func TestPartitionSumScenario(t *testing.T) {
	p := sumScenario()

	part, err := New(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantConts := []Continuation{
		{IP: 0}, {IP: 12}, {IP: 15}, {IP: 23}, {IP: 41}, {IP: 42}, {IP: 44},
	}
	if !reflect.DeepEqual(part.Continuations, wantConts) {
		t.Fatalf("continuations = %+v, want %+v", part.Continuations, wantConts)
	}

	wantBlocks := []ContBlock{
		{IP: 0, BrTgt: 2},
		{IP: 12, BrTgt: 0},
		{IP: 15, BrTgt: 0},
		{IP: 23, BrTgt: 3},
		{IP: 41, BrTgt: 0},
		{IP: 42, BrTgt: 0},
		{IP: 44, BrTgt: 0},
	}
	if !reflect.DeepEqual(part.Blocks, wantBlocks) {
		t.Fatalf("blocks = %+v, want %+v", part.Blocks, wantBlocks)
	}
}

func sumScenario() *code.Program {
	b := bt()
	return prog(
		op(opcode.I32Const), imm(5),
		op(opcode.Block), b,
		op(opcode.I32Const), imm(-20),
		op(opcode.I32Const), imm(20),
		op(opcode.I32Add),
		op(opcode.I32Add),
		op(opcode.Br), imm(0),
		op(opcode.I32Const), imm(-999),
		op(opcode.End),
		op(opcode.LocalSet), imm(0),
		op(opcode.I32Const), imm(0),
		op(opcode.LocalSet), imm(1),
		op(opcode.Loop), b,
		op(opcode.LocalGet), imm(0),
		op(opcode.LocalGet), imm(1),
		op(opcode.I32Add),
		op(opcode.LocalSet), imm(1),
		op(opcode.LocalGet), imm(0),
		op(opcode.I32Const), imm(-1),
		op(opcode.I32Add),
		op(opcode.LocalSet), imm(0),
		op(opcode.LocalGet), imm(0),
		op(opcode.BrIf), imm(0),
		op(opcode.End),
		op(opcode.LocalGet), imm(1),
	)
}
