// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package validate provides the validating CBD interpretation: it walks a
// program the same way the evaluator does, but over abstract state (stack
// depth and frame structure rather than concrete values), and produces the
// sidetable the evaluator needs to branch in O(1).
package validate

import (
	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/machine"
)

// Validator is the concrete state for the validating interpretation: a
// typed operand stack (depth only, since the prototype has a single value
// type), a locals array, the control-frame machinery, and the sidetable
// metadata accumulated as static branches are encountered.
type Validator struct {
	stack  []code.ValueType
	locals []code.ValueType

	cur *code.Cursor

	frames   []frame // append-only; ctlStack indexes into this
	ctlStack []int

	sidetableMeta []stMeta
}

// NewValidator returns a validator for prog with numLocals locals, all of
// type i32 (the prototype's only value type).
func NewValidator(prog *code.Program, numLocals int) *Validator {
	locals := make([]code.ValueType, numLocals)
	for i := range locals {
		locals[i] = code.ValueTypeI32
	}

	v := &Validator{
		locals: locals,
		cur:    code.NewCursor(prog),
	}

	// The implicit outer Func frame: branches can target it (a br whose
	// depth reaches past every Block/Loop falls off the end of the
	// function), so it needs a real ContinuationIP from the start.
	v.frames = append(v.frames, frame{
		Kind:            FrameFunc,
		ContinuationIP:  len(prog.Entries),
		ContinuationSTP: 0,
	})
	v.ctlStack = append(v.ctlStack, 0)

	// Sentinel sidetable-meta entry at index 0: len(sidetableMeta)-1
	// always names the most recently appended *real* entry while
	// dispatch is in progress, and BuildSidetable drops this one.
	v.sidetableMeta = append(v.sidetableMeta, stMeta{})

	return v
}

func (v *Validator) Cursor() *code.Cursor { return v.cur }

func (v *Validator) Pop() (int32, error) {
	if len(v.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	v.stack = v.stack[:len(v.stack)-1]
	return 0, nil
}

func (v *Validator) PopI() (int32, error) { return v.Pop() }

func (v *Validator) Push(_ int32) { v.stack = append(v.stack, code.ValueTypeI32) }

func (v *Validator) PushI(val int32) { v.Push(val) }

func (v *Validator) PushIImm(val int32) { v.Push(val) }

func (v *Validator) SetLocal(idx uint32, _ int32) error {
	if int(idx) >= len(v.locals) {
		return InvalidLocalIndexError(idx)
	}
	return nil
}

func (v *Validator) GetLocal(idx uint32) (int32, error) {
	if int(idx) >= len(v.locals) {
		return 0, InvalidLocalIndexError(idx)
	}
	return 0, nil
}

func (v *Validator) I32Add(a, b int32) int32 { return 0 }

// I32Eqz returns the universal balloon: the validator has no concrete
// condition value, so it must explore both the fall-through and the
// branch arm of every br_if.
func (v *Validator) I32Eqz(_ int32) machine.Balloon {
	return machine.Maybe{}
}

func (v *Validator) StartBlock(bt code.BlockType) {
	v.frames = append(v.frames, frame{
		Kind:            FrameBlock,
		EntryIP:         v.cur.IP,
		ContinuationSTP: len(v.sidetableMeta) - 1,
	})
	v.ctlStack = append(v.ctlStack, len(v.frames)-1)
	logf("pushed frame %+v at depth %d", v.frames[len(v.frames)-1], len(v.ctlStack)-1)
}

func (v *Validator) StartLoop(bt code.BlockType) {
	v.frames = append(v.frames, frame{
		Kind:            FrameLoop,
		EntryIP:         v.cur.IP,
		ContinuationIP:  v.cur.IP,
		ContinuationSTP: len(v.sidetableMeta) - 1,
	})
	v.ctlStack = append(v.ctlStack, len(v.frames)-1)
	logf("pushed frame %+v at depth %d", v.frames[len(v.frames)-1], len(v.ctlStack)-1)
}

// End pops the innermost control frame. A Block's continuation is only
// known now, at its matching end; a Loop's continuation was already fixed
// at StartLoop time (branches to a loop jump back to its top).
func (v *Validator) End() error {
	if len(v.ctlStack) <= 1 {
		return ErrUnmatchedEnd
	}
	top := v.ctlStack[len(v.ctlStack)-1]
	v.ctlStack = v.ctlStack[:len(v.ctlStack)-1]
	logf("popped frame %+v, %d still open", v.frames[top], len(v.ctlStack)-1)

	if v.frames[top].Kind == FrameBlock {
		v.frames[top].ContinuationIP = v.cur.IP
		v.frames[top].ContinuationSTP = len(v.sidetableMeta) - 1
	}
	return nil
}

// Branch records a static branch targeting the labelIdx-th enclosing
// frame (0 = innermost). The actual deltas are resolved later, once every
// frame's ContinuationIP is final, by BuildSidetable.
func (v *Validator) Branch(labelIdx uint32) error {
	idx := len(v.ctlStack) - 1 - int(labelIdx)
	if idx < 0 {
		return InvalidLabelError(labelIdx)
	}
	logf("branch at ip %d targets frame %+v (label %d)", v.cur.IP, v.frames[v.ctlStack[idx]], labelIdx)
	v.sidetableMeta = append(v.sidetableMeta, stMeta{
		BrIP:        v.cur.IP,
		TargetFrame: v.ctlStack[idx],
	})
	return nil
}

// Fallthru is structural only; no sidetable-meta entry is needed because
// the evaluator's Fallthru simply advances past the corresponding real
// entry appended by the Branch half of a br_if.
func (v *Validator) Fallthru() {}

// STEntry mirrors eval.STEntry; kept as a distinct type here so this
// package has no dependency on eval (only eval depends on validate's
// output shape, never the reverse).
type STEntry struct {
	IPDelta  int
	STPDelta int
}

// BuildSidetable resolves every recorded sidetable-meta entry into a
// concrete (Δip, Δstp) pair, once dispatch has finished and every frame's
// ContinuationIP/ContinuationSTP is known. The sentinel at index 0 is
// dropped: the returned slice has exactly one entry per static br/br_if,
// in program order.
func (v *Validator) BuildSidetable() []STEntry {
	out := make([]STEntry, 0, len(v.sidetableMeta)-1)
	for stp := 1; stp < len(v.sidetableMeta); stp++ {
		meta := v.sidetableMeta[stp]
		target := v.frames[meta.TargetFrame]
		out = append(out, STEntry{
			IPDelta:  target.ContinuationIP - meta.BrIP,
			STPDelta: target.ContinuationSTP - stp,
		})
	}
	return out
}

// Balanced reports whether every Block/Loop opened has a matching End;
// called after dispatch to catch a function body with unterminated
// structured control.
func (v *Validator) Balanced() bool {
	return len(v.ctlStack) == 1
}
