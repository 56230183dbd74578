// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package code

import (
	"errors"
	"fmt"

	"github.com/mkhan45/cbd-sketch/opcode"
)

// ErrUnexpectedEntry is returned by the typed readers when the cursor's
// current entry is not the kind the reader expects.
var ErrUnexpectedEntry = errors.New("code: unexpected entry kind")

// ErrOutOfRange is returned when a cursor operation reads past the end of
// the program.
var ErrOutOfRange = errors.New("code: read past end of program")

// kind tags which field of an Entry is meaningful.
type kind uint8

const (
	kindOp kind = iota
	kindI32Imm
	kindBlockType
)

// Entry is a single slot in a Program: either an opcode, or one of the
// inline immediates that opcode consumes. The stream is a contiguous
// ordered sequence; an opcode with immediates is always followed by
// exactly the number of operand entries its opcode requires.
type Entry struct {
	kind kind
	op   opcode.Op
	i32  int32
	bt   BlockType
}

// Op wraps an opcode as a code entry.
func Op(op opcode.Op) Entry { return Entry{kind: kindOp, op: op} }

// I32Imm wraps a signed 32-bit immediate as a code entry.
func I32Imm(v int32) Entry { return Entry{kind: kindI32Imm, i32: v} }

// BlockTypeImm wraps a block-type signature as a code entry.
func BlockTypeImm(bt BlockType) Entry { return Entry{kind: kindBlockType, bt: bt} }

func (e Entry) String() string {
	switch e.kind {
	case kindOp:
		return e.op.Name
	case kindI32Imm:
		return fmt.Sprintf("%d", e.i32)
	case kindBlockType:
		return e.bt.String()
	default:
		return "<invalid entry>"
	}
}

// Program is a decoded instruction stream, ready to be scanned by a Cursor.
type Program struct {
	Entries []Entry
}

// Len returns the number of entries (opcodes and immediates combined).
func (p *Program) Len() int { return len(p.Entries) }

// NumLocals scans the program for the highest local index referenced by a
// local.get/local.set/local.tee and returns one past it, the smallest
// local frame size that can run the program without an out-of-range
// access. Programs that touch no locals report zero.
func (p *Program) NumLocals() int {
	max := -1
	for i := 0; i < len(p.Entries); i++ {
		e := p.Entries[i]
		if e.kind != kindOp {
			continue
		}
		switch e.op.Code {
		case opcode.LocalGet.Code, opcode.LocalSet.Code, opcode.LocalTee.Code:
			if i+1 < len(p.Entries) && p.Entries[i+1].kind == kindI32Imm {
				if idx := int(p.Entries[i+1].i32); idx > max {
					max = idx
				}
			}
		}
	}
	return max + 1
}

// Cursor tracks a read position into a Program. It advances one entry at a
// time and is the only thing interpretations use to walk the code; it never
// mutates the underlying Program.
type Cursor struct {
	Prog *Program
	IP   int
}

// NewCursor returns a cursor positioned at the start of prog.
func NewCursor(prog *Program) *Cursor {
	return &Cursor{Prog: prog, IP: 0}
}

// Done reports whether the cursor has consumed the entire program.
func (c *Cursor) Done() bool {
	return c.IP >= len(c.Prog.Entries)
}

// PeekOp returns the opcode at the cursor without advancing it.
func (c *Cursor) PeekOp() (opcode.Op, error) {
	if c.IP >= len(c.Prog.Entries) {
		return opcode.Op{}, ErrOutOfRange
	}
	e := c.Prog.Entries[c.IP]
	if e.kind != kindOp {
		return opcode.Op{}, ErrUnexpectedEntry
	}
	return e.op, nil
}

// ReadOp reads the opcode at the cursor and advances past it.
func (c *Cursor) ReadOp() (opcode.Op, error) {
	op, err := c.PeekOp()
	if err != nil {
		return op, err
	}
	c.IP++
	return op, nil
}

// ReadImmI32 reads a signed 32-bit immediate at the cursor and advances
// past it. It is a fatal decode error to call this when the current entry
// is not an I32Imm.
func (c *Cursor) ReadImmI32() (int32, error) {
	if c.IP >= len(c.Prog.Entries) {
		return 0, ErrOutOfRange
	}
	e := c.Prog.Entries[c.IP]
	if e.kind != kindI32Imm {
		return 0, ErrUnexpectedEntry
	}
	c.IP++
	return e.i32, nil
}

// ReadBlockType reads a block-type signature at the cursor and advances
// past it.
func (c *Cursor) ReadBlockType() (BlockType, error) {
	if c.IP >= len(c.Prog.Entries) {
		return 0, ErrOutOfRange
	}
	e := c.Prog.Entries[c.IP]
	if e.kind != kindBlockType {
		return 0, ErrUnexpectedEntry
	}
	c.IP++
	return e.bt, nil
}

// EntryAt returns the raw entry at index ip without moving any cursor. The
// block partitioner uses this to inspect the entry two positions behind a
// continuation boundary when classifying its terminator (see partition
// package).
func (p *Program) EntryAt(ip int) (Entry, error) {
	if ip < 0 || ip >= len(p.Entries) {
		return Entry{}, ErrOutOfRange
	}
	return p.Entries[ip], nil
}

// OpAt returns the opcode at index ip, failing if that slot is not an
// opcode entry.
func (p *Program) OpAt(ip int) (opcode.Op, error) {
	e, err := p.EntryAt(ip)
	if err != nil {
		return opcode.Op{}, err
	}
	if e.kind != kindOp {
		return opcode.Op{}, ErrUnexpectedEntry
	}
	return e.op, nil
}

// I32At returns the int32 immediate at index ip, failing if that slot is
// not an I32Imm entry.
func (p *Program) I32At(ip int) (int32, error) {
	e, err := p.EntryAt(ip)
	if err != nil {
		return 0, err
	}
	if e.kind != kindI32Imm {
		return 0, ErrUnexpectedEntry
	}
	return e.i32, nil
}
