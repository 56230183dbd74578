// Package blockvm is the worklist-driven counterpart to eval.VM: instead
// of a single cursor-driven dispatch loop resolving branches through a
// sidetable, it runs prog one continuation block at a time, with each
// block a worklist.BlockFunc that executes its straight-line body against
// a shared stack and locals array and enqueues its successor(s) exactly
// as partition.Partition and compile.Compiler compute them.
package blockvm

import (
	"fmt"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
	"github.com/mkhan45/cbd-sketch/partition"
	"github.com/mkhan45/cbd-sketch/worklist"
)

// ErrStackUnderflow is returned when a pop is attempted against an empty
// value stack, mirroring eval.ErrStackUnderflow for the same condition.
var ErrStackUnderflow = fmt.Errorf("blockvm: stack underflow")

// InvalidLocalIndexError is returned when a local.get/set/tee names a
// local slot out of range for the running function.
type InvalidLocalIndexError int32

func (e InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("blockvm: invalid local index: %d", int32(e))
}

// VM is the state every compiled block function runs against: a value
// stack and a locals array, the same concrete primitives eval.VM uses,
// but shared across block invocations instead of threaded through a
// single cursor.
type VM struct {
	stack  []int32
	locals []int32
}

// NewVM returns a VM with numLocals locals initialised to zero.
func NewVM(numLocals int) *VM {
	return &VM{locals: make([]int32, numLocals)}
}

// Stack returns the final value stack, bottom first.
func (vm *VM) Stack() []int32 { return append([]int32(nil), vm.stack...) }

// Locals returns the final locals array.
func (vm *VM) Locals() []int32 { return append([]int32(nil), vm.locals...) }

func (vm *VM) push(v int32) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() (int32, error) {
	if len(vm.stack) == 0 {
		return 0, ErrStackUnderflow
	}
	top := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return top, nil
}

func (vm *VM) setLocal(idx int32, v int32) error {
	if idx < 0 || int(idx) >= len(vm.locals) {
		return InvalidLocalIndexError(idx)
	}
	vm.locals[idx] = v
	return nil
}

func (vm *VM) getLocal(idx int32) (int32, error) {
	if idx < 0 || int(idx) >= len(vm.locals) {
		return 0, InvalidLocalIndexError(idx)
	}
	return vm.locals[idx], nil
}

// Build turns prog's partitioned continuation blocks into one
// worklist.BlockFunc per block, every one of them closing over vm so they
// share its stack and locals across the whole run. Each function replays
// its block's straight-line body with real push/pop/local primitives,
// then enqueues its successor(s) onto the driver it is handed: block
// i+1 on fallthrough, part.Blocks[i].BrTgt on a taken br, and both
// fallthrough and branch are resolved to exactly one push per br_if since
// vm has a real condition value to test, unlike the validator's or
// compiler's universal balloon.
func Build(prog *code.Program, part *partition.Partition, vm *VM) []worklist.BlockFunc {
	blocks := make([]worklist.BlockFunc, len(part.Blocks))
	for i := range part.Blocks {
		i := i
		blocks[i] = func(d *worklist.Driver) error {
			return vm.runBlock(prog, part, i, d)
		}
	}
	return blocks
}

// runBlock executes continuation block idx's straight-line body and
// enqueues its successor(s) onto d.
func (vm *VM) runBlock(prog *code.Program, part *partition.Partition, idx int, d *worklist.Driver) error {
	start := part.Blocks[idx].IP
	end := prog.Len()
	if idx+1 < len(part.Blocks) {
		end = part.Blocks[idx+1].IP
	}
	if start >= end {
		return nil // trailing sentinel block: marks the code end, schedules nothing
	}

	fallthruTgt := idx + 1
	cur := &code.Cursor{Prog: prog, IP: start}
	for cur.IP < end {
		op, err := cur.ReadOp()
		if err != nil {
			return err
		}
		switch op.Code {
		case opcode.I32Const.Code:
			v, err := cur.ReadImmI32()
			if err != nil {
				return err
			}
			vm.push(v)

		case opcode.I32Add.Code:
			b, err := vm.pop()
			if err != nil {
				return err
			}
			a, err := vm.pop()
			if err != nil {
				return err
			}
			vm.push(a + b)

		case opcode.LocalSet.Code:
			li, err := cur.ReadImmI32()
			if err != nil {
				return err
			}
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if err := vm.setLocal(li, v); err != nil {
				return err
			}

		case opcode.LocalGet.Code:
			li, err := cur.ReadImmI32()
			if err != nil {
				return err
			}
			v, err := vm.getLocal(li)
			if err != nil {
				return err
			}
			vm.push(v)

		case opcode.LocalTee.Code:
			li, err := cur.ReadImmI32()
			if err != nil {
				return err
			}
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.push(v)
			if err := vm.setLocal(li, v); err != nil {
				return err
			}

		case opcode.Block.Code, opcode.Loop.Code:
			// Structural only: the partitioner has already cut the
			// boundary this carries, so running it has no stack effect.
			if _, err := cur.ReadBlockType(); err != nil {
				return err
			}

		case opcode.End.Code:
			// Structural only; falls through to the next block below.

		case opcode.Br.Code:
			if _, err := cur.ReadImmI32(); err != nil {
				return err
			}
			d.Push(part.Blocks[idx].BrTgt)
			return nil

		case opcode.BrIf.Code:
			if _, err := cur.ReadImmI32(); err != nil {
				return err
			}
			v, err := vm.pop()
			if err != nil {
				return err
			}
			if v == 0 {
				d.Push(fallthruTgt)
			} else {
				d.Push(part.Blocks[idx].BrTgt)
			}
			return nil

		default:
			return fmt.Errorf("blockvm: unhandled opcode %s", op.Name)
		}
	}

	d.Push(fallthruTgt)
	return nil
}
