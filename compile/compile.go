// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compile implements the abstract compiler: a CBD-style walk over
// a program that, instead of executing it, emits one textual straight-line
// body per continuation block (as cut by the partition package), plus the
// worklist-push statements that turn structured branches into explicit
// successor scheduling.
//
// Unlike eval and validate, the compiler does not go through
// machine.Dispatch: br_if needs two differently-guarded pushes emitted
// from a single pass rather than the shared two-arm balloon handler, so it
// is driven by its own loop instead.
package compile

import (
	"fmt"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
	"github.com/mkhan45/cbd-sketch/partition"
)

// Block is the emitted body of one continuation block: an ordered list of
// statements operating on a symbolic variable namespace, plus the
// worklist-push statements that schedule this block's successors. It
// always begins with a merge of its incoming state sentinel.
type Block struct {
	Lines []string
}

// Compiler holds the state threaded through a single compile pass:
// the cursor into the program being compiled, the partition naming its
// continuation blocks, which block current output is appended to, and the
// monotonic symbolic-variable counter.
type Compiler struct {
	prog *code.Program
	cur  *code.Cursor
	part *partition.Partition

	curBlock int
	blocks   []Block
	nextVar  int
}

// Compile compiles prog against its already-computed partition part,
// returning one Block per continuation block in part.
func Compile(prog *code.Program, part *partition.Partition) ([]Block, error) {
	c := &Compiler{
		prog:   prog,
		cur:    code.NewCursor(prog),
		part:   part,
		blocks: make([]Block, len(part.Blocks)),
	}
	for i := range c.blocks {
		c.blocks[i].Lines = append(c.blocks[i].Lines, fmt.Sprintf("state_%d.merge(interp)", i))
	}

	for !c.cur.Done() {
		op, err := c.cur.ReadOp()
		if err != nil {
			return nil, err
		}
		if err := c.step(op); err != nil {
			return nil, fmt.Errorf("compile: ip=%d op=%s: %w", c.cur.IP-1, op.Name, err)
		}
	}
	return c.blocks, nil
}

func (c *Compiler) step(op opcode.Op) error {
	switch op.Code {
	case opcode.I32Const.Code:
		v, err := c.cur.ReadImmI32()
		if err != nil {
			return err
		}
		c.pushImm(v)

	case opcode.I32Add.Code:
		b := c.pop()
		a := c.pop()
		c.push(c.add(a, b))

	case opcode.LocalSet.Code:
		idx, err := c.cur.ReadImmI32()
		if err != nil {
			return err
		}
		c.setLocal(idx, c.pop())

	case opcode.LocalGet.Code:
		idx, err := c.cur.ReadImmI32()
		if err != nil {
			return err
		}
		c.push(c.getLocal(idx))

	case opcode.LocalTee.Code:
		idx, err := c.cur.ReadImmI32()
		if err != nil {
			return err
		}
		v := c.pop()
		c.push(v)
		c.setLocal(idx, v)

	case opcode.Block.Code:
		if _, err := c.cur.ReadBlockType(); err != nil {
			return err
		}
		c.emit("start_block()")

	case opcode.Loop.Code:
		if _, err := c.cur.ReadBlockType(); err != nil {
			return err
		}
		c.emit(fmt.Sprintf("worklist.push(%d)", c.curBlock+1))
		c.curBlock++
		c.emit("start_loop()")

	case opcode.End.Code:
		c.emit("end()")
		c.emit(fmt.Sprintf("worklist.push(%d)", c.curBlock+1))
		c.curBlock++

	case opcode.Br.Code:
		if _, err := c.cur.ReadImmI32(); err != nil {
			return err
		}
		tgt := c.part.Blocks[c.curBlock].BrTgt
		c.emit(fmt.Sprintf("worklist.push(%d)", tgt))
		c.curBlock++

	case opcode.BrIf.Code:
		if _, err := c.cur.ReadImmI32(); err != nil {
			return err
		}
		cond := c.eqz(c.pop())
		fallthruTgt := c.curBlock + 1
		branchTgt := c.part.Blocks[c.curBlock].BrTgt
		c.emit(fmt.Sprintf("if maybe_true(%s) { worklist.push(%d) }", cond, fallthruTgt))
		c.emit(fmt.Sprintf("if maybe_false(%s) { worklist.push(%d) }", cond, branchTgt))
		c.curBlock++

	default:
		return fmt.Errorf("unhandled opcode %s", op.Name)
	}
	return nil
}

func (c *Compiler) newVar() string {
	v := c.nextVar
	c.nextVar++
	return fmt.Sprintf("x%d", v)
}

func (c *Compiler) emit(line string) {
	c.blocks[c.curBlock].Lines = append(c.blocks[c.curBlock].Lines, line)
}

func (c *Compiler) pop() string {
	v := c.newVar()
	c.emit(fmt.Sprintf("%s := pop()", v))
	return v
}

func (c *Compiler) getLocal(idx int32) string {
	v := c.newVar()
	c.emit(fmt.Sprintf("%s := get_local(%d)", v, idx))
	return v
}

func (c *Compiler) push(name string) { c.emit(fmt.Sprintf("push(%s)", name)) }

func (c *Compiler) pushImm(v int32) { c.emit(fmt.Sprintf("push_imm(%d)", v)) }

func (c *Compiler) setLocal(idx int32, name string) {
	c.emit(fmt.Sprintf("set_local(%d, %s)", idx, name))
}

func (c *Compiler) add(a, b string) string {
	v := c.newVar()
	c.emit(fmt.Sprintf("%s := %s + %s", v, a, b))
	return v
}

func (c *Compiler) eqz(v string) string {
	r := c.newVar()
	c.emit(fmt.Sprintf("%s := (%s == 0)", r, v))
	return r
}
