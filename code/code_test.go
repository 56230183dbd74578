// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code

import (
	"errors"
	"testing"

	"github.com/mkhan45/cbd-sketch/opcode"
)

func TestCursorReadsEntriesInOrder(t *testing.T) {
	p := &Program{Entries: []Entry{
		Op(opcode.I32Const), I32Imm(5),
		Op(opcode.LocalSet), I32Imm(0),
		Op(opcode.End),
	}}
	c := NewCursor(p)

	op, err := c.ReadOp()
	if err != nil || op.Code != opcode.I32Const.Code {
		t.Fatalf("ReadOp = %v, %v", op, err)
	}
	v, err := c.ReadImmI32()
	if err != nil || v != 5 {
		t.Fatalf("ReadImmI32 = %d, %v", v, err)
	}
	op, err = c.ReadOp()
	if err != nil || op.Code != opcode.LocalSet.Code {
		t.Fatalf("ReadOp = %v, %v", op, err)
	}
	if _, err := c.ReadImmI32(); err != nil {
		t.Fatalf("ReadImmI32: %v", err)
	}
	op, err = c.ReadOp()
	if err != nil || op.Code != opcode.End.Code {
		t.Fatalf("ReadOp = %v, %v", op, err)
	}
	if !c.Done() {
		t.Fatalf("cursor should be exhausted")
	}
}

func TestCursorReadWrongKindFails(t *testing.T) {
	p := &Program{Entries: []Entry{Op(opcode.I32Const)}}
	c := NewCursor(p)
	if _, err := c.ReadImmI32(); !errors.Is(err, ErrUnexpectedEntry) {
		t.Fatalf("expected ErrUnexpectedEntry, got %v", err)
	}
}

func TestCursorReadPastEndFails(t *testing.T) {
	p := &Program{}
	c := NewCursor(p)
	if _, err := c.ReadOp(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
}

func TestOpAtAndI32At(t *testing.T) {
	p := &Program{Entries: []Entry{Op(opcode.I32Const), I32Imm(42)}}

	op, err := p.OpAt(0)
	if err != nil || op.Code != opcode.I32Const.Code {
		t.Fatalf("OpAt(0) = %v, %v", op, err)
	}
	if _, err := p.OpAt(1); !errors.Is(err, ErrUnexpectedEntry) {
		t.Fatalf("OpAt(1) should fail with ErrUnexpectedEntry, got %v", err)
	}
	v, err := p.I32At(1)
	if err != nil || v != 42 {
		t.Fatalf("I32At(1) = %d, %v", v, err)
	}
	if _, err := p.EntryAt(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("EntryAt(-1) should fail with ErrOutOfRange, got %v", err)
	}
}

func TestNumLocals(t *testing.T) {
	cases := []struct {
		name    string
		entries []Entry
		want    int
	}{
		{"no locals", []Entry{Op(opcode.I32Const), I32Imm(1)}, 0},
		{"single local", []Entry{Op(opcode.LocalSet), I32Imm(0)}, 1},
		{"highest index wins", []Entry{
			Op(opcode.LocalGet), I32Imm(0),
			Op(opcode.LocalSet), I32Imm(3),
			Op(opcode.LocalTee), I32Imm(1),
		}, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &Program{Entries: c.entries}
			if got := p.NumLocals(); got != c.want {
				t.Fatalf("NumLocals() = %d, want %d", got, c.want)
			}
		})
	}
}

func TestValueTypeString(t *testing.T) {
	if ValueTypeI32.String() != "i32" {
		t.Fatalf("ValueTypeI32.String() = %q", ValueTypeI32.String())
	}
}

func TestBlockTypeString(t *testing.T) {
	if BlockTypeEmpty.String() != "<empty block>" {
		t.Fatalf("BlockTypeEmpty.String() = %q", BlockTypeEmpty.String())
	}
}
