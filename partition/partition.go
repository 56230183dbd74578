// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package partition provides the block partitioner: a single scan that
// cuts a program into continuation blocks at loop/end/br/br_if boundaries
// (block opens a frame but does not cut), so the abstract compiler can
// emit one straight-line body per
// block and a worklist can schedule them.
package partition

import (
	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
)

// frameKind mirrors validate.FrameKind; kept as its own type because the
// partitioner's frames carry a continuation *index* rather than a
// sidetable pointer, and the two packages have no dependency on each
// other: both derive their own view independently from the same code.
type frameKind uint8

const (
	frameFunc frameKind = iota
	frameBlock
	frameLoop
)

type ctlFrame struct {
	kind            frameKind
	continuationIdx int // index into Partition.Continuations; -1 until known
}

// Continuation is a program point at which execution may resume.
type Continuation struct {
	IP int
}

// ContBlock is a straight-line region of code starting at IP and ending
// just before the next continuation. BrTgt is the continuation-block
// index branched to if this block's last real instruction is a br/br_if;
// it is 0 and unused otherwise.
type ContBlock struct {
	IP    int
	BrTgt int
}

// Partition is the result of scanning a program once: its continuations
// and the continuation blocks built from them.
type Partition struct {
	Continuations []Continuation
	Blocks        []ContBlock
}

// Partitioner performs the single-scan partition described in the
// compile package's emission contract.
type Partitioner struct {
	prog *code.Program
	cur  *code.Cursor

	frames   []ctlFrame
	ctlStack []int

	conts    []Continuation
	branches []int // target frame index per encountered br/br_if, in order
}

// New scans prog and returns its partition.
func New(prog *code.Program) (*Partition, error) {
	p := &Partitioner{
		prog: prog,
		cur:  code.NewCursor(prog),
	}
	p.frames = append(p.frames, ctlFrame{kind: frameFunc, continuationIdx: 0})
	p.ctlStack = append(p.ctlStack, 0)
	p.conts = append(p.conts, Continuation{IP: 0})

	if err := p.scan(); err != nil {
		return nil, err
	}

	return p.build(), nil
}

func (p *Partitioner) scan() error {
	for !p.cur.Done() {
		op, err := p.cur.ReadOp()
		if err != nil {
			return err
		}
		switch op.Code {
		case opcode.I32Const.Code, opcode.LocalSet.Code, opcode.LocalGet.Code, opcode.LocalTee.Code:
			if _, err := p.cur.ReadImmI32(); err != nil {
				return err
			}
		case opcode.I32Add.Code:
			// no immediate, no continuation

		case opcode.Block.Code:
			if _, err := p.cur.ReadBlockType(); err != nil {
				return err
			}
			p.frames = append(p.frames, ctlFrame{kind: frameBlock, continuationIdx: -1})
			p.ctlStack = append(p.ctlStack, len(p.frames)-1)

		case opcode.Loop.Code:
			if _, err := p.cur.ReadBlockType(); err != nil {
				return err
			}
			// The loop's continuation is the body entry: branches to it
			// jump back to the top, so it is recorded now, pointing at
			// the continuation about to be appended.
			p.frames = append(p.frames, ctlFrame{kind: frameLoop, continuationIdx: len(p.conts)})
			p.ctlStack = append(p.ctlStack, len(p.frames)-1)
			p.conts = append(p.conts, Continuation{IP: p.cur.IP})

		case opcode.End.Code:
			top := p.ctlStack[len(p.ctlStack)-1]
			p.ctlStack = p.ctlStack[:len(p.ctlStack)-1]
			if p.frames[top].kind == frameBlock {
				p.frames[top].continuationIdx = len(p.conts)
			}
			p.conts = append(p.conts, Continuation{IP: p.cur.IP})

		case opcode.Br.Code, opcode.BrIf.Code:
			depth, err := p.cur.ReadImmI32()
			if err != nil {
				return err
			}
			p.conts = append(p.conts, Continuation{IP: p.cur.IP})
			idx := len(p.ctlStack) - 1 - int(depth)
			if idx < 0 {
				return invalidLabelError(depth)
			}
			p.branches = append(p.branches, p.ctlStack[idx])
		}
	}
	return nil
}

// build zips the continuations into continuation blocks, resolving each
// branch-terminated block's target by inspecting the two entries
// immediately preceding the next continuation (the opcode, then its
// depth immediate). A trailing continuation at len(code) is appended if
// the scan didn't already end on one, so the final block is bounded; the
// last continuation block produced from it is always an unused sentinel.
func (p *Partitioner) build() *Partition {
	if p.conts[len(p.conts)-1].IP != p.prog.Len() {
		p.conts = append(p.conts, Continuation{IP: p.prog.Len()})
	}

	blocks := make([]ContBlock, len(p.conts))
	branchIdx := 0
	for i := 0; i < len(p.conts)-1; i++ {
		blocks[i] = ContBlock{IP: p.conts[i].IP}

		endIP := p.conts[i+1].IP
		if endIP >= 2 {
			if o, err := p.prog.OpAt(endIP - 2); err == nil {
				if o.Code == opcode.Br.Code || o.Code == opcode.BrIf.Code {
					targetFrame := p.branches[branchIdx]
					branchIdx++
					blocks[i].BrTgt = p.frames[targetFrame].continuationIdx
				}
			}
		}
	}
	// Trailing sentinel block: marks the code end, never scheduled for
	// real work.
	blocks[len(blocks)-1] = ContBlock{IP: p.conts[len(p.conts)-1].IP}

	return &Partition{Continuations: p.conts, Blocks: blocks}
}
