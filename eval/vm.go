// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eval provides the concrete evaluator: a CBD interpretation over
// machine integers that branches in O(1) using a validator-built
// sidetable.
package eval

import (
	"errors"
	"fmt"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/machine"
)

// ErrStackUnderflow is returned when a pop is attempted against an empty
// value stack.
var ErrStackUnderflow = errors.New("eval: stack underflow")

// InvalidLocalIndexError is returned when a local.get/set/tee names a
// local slot out of range for the running function.
type InvalidLocalIndexError uint32

func (e InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("eval: invalid local index: %d", uint32(e))
}

// InvalidSidetableIndexError is returned when a branch consumes a
// sidetable entry beyond what the validator produced; it indicates a
// mismatch between the code a VM is running and the sidetable it was
// built with.
type InvalidSidetableIndexError int

func (e InvalidSidetableIndexError) Error() string {
	return fmt.Sprintf("eval: invalid sidetable index: %d", int(e))
}

// STEntry is one resolved sidetable record: the instruction-pointer and
// sidetable-pointer deltas to apply when a static branch is taken.
type STEntry struct {
	IPDelta  int
	STPDelta int
}

// VM is the direct evaluator: a value stack, a flat locals array, a
// cursor over the running function's code, and the sidetable built by
// the validator for that same code.
type VM struct {
	stack     []int32
	locals    []int32
	cur       *code.Cursor
	sidetable []STEntry
	stp       int
}

// NewVM returns an evaluator ready to run prog, with numLocals locals
// initialised to zero and branching resolved via sidetable (as produced
// by validate.BuildSidetable against the same prog).
func NewVM(prog *code.Program, sidetable []STEntry, numLocals int) *VM {
	return &VM{
		locals:    make([]int32, numLocals),
		cur:       code.NewCursor(prog),
		sidetable: sidetable,
		stp:       -1,
	}
}

// Run dispatches the VM's program to completion.
func (vm *VM) Run() error {
	return machine.Dispatch(vm)
}

// Stack returns the final value stack, bottom first.
func (vm *VM) Stack() []int32 { return append([]int32(nil), vm.stack...) }

// Locals returns the final locals array.
func (vm *VM) Locals() []int32 { return append([]int32(nil), vm.locals...) }

func (vm *VM) Cursor() *code.Cursor { return vm.cur }

func (vm *VM) Pop() (int32, error) {
	if len(vm.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	top := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return top, nil
}

func (vm *VM) PopI() (int32, error) { return vm.Pop() }

func (vm *VM) Push(v int32) { vm.stack = append(vm.stack, v) }

func (vm *VM) PushI(v int32) { vm.Push(v) }

func (vm *VM) PushIImm(v int32) { vm.Push(v) }

func (vm *VM) SetLocal(idx uint32, v int32) error {
	if int(idx) >= len(vm.locals) {
		return InvalidLocalIndexError(idx)
	}
	vm.locals[idx] = v
	return nil
}

func (vm *VM) GetLocal(idx uint32) (int32, error) {
	if int(idx) >= len(vm.locals) {
		return 0, InvalidLocalIndexError(idx)
	}
	return vm.locals[idx], nil
}

func (vm *VM) I32Add(a, b int32) int32 { return a + b }

// I32Eqz returns the two-valued balloon: exactly one of MaybeTrue (value
// is zero, br_if falls through) or MaybeFalse (value is non-zero, br_if
// branches) holds.
func (vm *VM) I32Eqz(v int32) machine.Balloon {
	return machine.Bool(v == 0)
}

// StartBlock and StartLoop are no-ops for the evaluator: all of the
// structure they'd otherwise need is already baked into the sidetable.
func (vm *VM) StartBlock(bt code.BlockType) {}
func (vm *VM) StartLoop(bt code.BlockType)  {}
func (vm *VM) End() error                   { return nil }

// Branch consumes the next sidetable entry and applies both of its
// deltas. The sidetable pointer is pre-incremented so that, by the
// invariant the validator establishes, it always lands on the entry
// belonging to the branch currently being handled.
func (vm *VM) Branch(labelIdx uint32) error {
	vm.stp++
	if vm.stp < 0 || vm.stp >= len(vm.sidetable) {
		return InvalidSidetableIndexError(vm.stp)
	}
	ste := vm.sidetable[vm.stp]
	vm.cur.IP += ste.IPDelta
	vm.stp += ste.STPDelta
	return nil
}

// Fallthru consumes the next sidetable entry without applying its
// deltas: a br_if that falls through still advances stp, keeping later
// branches aligned with their sidetable entries.
func (vm *VM) Fallthru() {
	vm.stp++
}
