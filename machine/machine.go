// Package machine defines the compile-by-dispatch (CBD) abstraction: one
// opcode handler set, written once against the CBD interface below, reused
// by the concrete interpretations eval.VM and validate.Validator.
// compile.Compiler does not implement CBD and walks the code with its own
// loop. Adding an opcode means extending Dispatch in exactly one place.
package machine

import (
	"fmt"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
)

// Balloon is a tri-interpretation of a Boolean: both MaybeTrue and
// MaybeFalse can hold simultaneously. A concrete evaluator's two-valued
// Bool answers exactly one true; the validator's universal Maybe answers
// both true, so both arms of a br_if get explored.
type Balloon interface {
	MaybeTrue() bool
	MaybeFalse() bool
}

// Bool is the evaluator's two-valued balloon: exactly one of MaybeTrue and
// MaybeFalse holds.
type Bool bool

func (b Bool) MaybeTrue() bool  { return bool(b) }
func (b Bool) MaybeFalse() bool { return !bool(b) }

// Maybe is the universal balloon used by the validator: both arms are
// always live, because it does not know the runtime value of a branch
// condition.
type Maybe struct{}

func (Maybe) MaybeTrue() bool  { return true }
func (Maybe) MaybeFalse() bool { return true }

// CBD is the abstract machine contract every interpretation implements.
// The prototype's instruction set has a single value type (i32), so
// StackVal and LocalVal collapse to plain int32; the part of the contract
// that actually varies per interpretation is CondVal, via the Balloon
// returned from I32Eqz.
type CBD interface {
	Cursor() *code.Cursor

	PopI() (int32, error)
	PushIImm(v int32)
	PushI(v int32)
	Push(v int32)
	Pop() (int32, error)
	SetLocal(idx uint32, v int32) error
	GetLocal(idx uint32) (int32, error)
	I32Add(a, b int32) int32
	I32Eqz(v int32) Balloon

	StartBlock(bt code.BlockType)
	StartLoop(bt code.BlockType)
	End() error
	Branch(labelIdx uint32) error
	Fallthru()
}

// Dispatch drives m's cursor to completion, invoking the one default
// handler per opcode below. It is the single place that knows the mapping
// from opcode to handler; every interpretation gets it for free.
func Dispatch(m CBD) error {
	cur := m.Cursor()
	for !cur.Done() {
		op, err := cur.ReadOp()
		if err != nil {
			return err
		}
		if err := dispatch1(m, op); err != nil {
			return fmt.Errorf("machine: ip=%d op=%s: %w", cur.IP-1, op.Name, err)
		}
	}
	return nil
}

func dispatch1(m CBD, op opcode.Op) error {
	switch op.Code {
	case opcode.I32Const.Code:
		return handleI32Const(m)
	case opcode.I32Add.Code:
		return handleI32Add(m)
	case opcode.LocalSet.Code:
		return handleLocalSet(m)
	case opcode.LocalGet.Code:
		return handleLocalGet(m)
	case opcode.LocalTee.Code:
		return handleLocalTee(m)
	case opcode.Block.Code:
		return handleBlock(m)
	case opcode.Loop.Code:
		return handleLoop(m)
	case opcode.End.Code:
		return m.End()
	case opcode.Br.Code:
		return handleBr(m)
	case opcode.BrIf.Code:
		return handleBrIf(m)
	default:
		return fmt.Errorf("machine: unhandled opcode %s", op.Name)
	}
}

func handleI32Const(m CBD) error {
	v, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	m.PushIImm(v)
	return nil
}

func handleI32Add(m CBD) error {
	b, err := m.PopI()
	if err != nil {
		return err
	}
	a, err := m.PopI()
	if err != nil {
		return err
	}
	m.PushI(m.I32Add(a, b))
	return nil
}

func handleLocalSet(m CBD) error {
	idx, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	return m.SetLocal(uint32(idx), v)
}

func handleLocalGet(m CBD) error {
	idx, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	v, err := m.GetLocal(uint32(idx))
	if err != nil {
		return err
	}
	m.Push(v)
	return nil
}

func handleLocalTee(m CBD) error {
	idx, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	m.Push(v)
	return m.SetLocal(uint32(idx), v)
}

func handleBlock(m CBD) error {
	bt, err := m.Cursor().ReadBlockType()
	if err != nil {
		return err
	}
	m.StartBlock(bt)
	return nil
}

func handleLoop(m CBD) error {
	bt, err := m.Cursor().ReadBlockType()
	if err != nil {
		return err
	}
	m.StartLoop(bt)
	return nil
}

func handleBr(m CBD) error {
	depth, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	return m.Branch(uint32(depth))
}

// handleBrIf is the one handler with two arms: the condition is zero'd
// with I32Eqz (zero means "fall through"), then whichever arm(s) the
// resulting balloon admits are run. A two-valued evaluator runs exactly
// one; the validator's universal balloon runs both, so every static
// successor of a br_if gets visited.
func handleBrIf(m CBD) error {
	depth, err := m.Cursor().ReadImmI32()
	if err != nil {
		return err
	}
	v, err := m.PopI()
	if err != nil {
		return err
	}
	cond := m.I32Eqz(v)

	if cond.MaybeTrue() {
		m.Fallthru()
	}
	if cond.MaybeFalse() {
		if err := m.Branch(uint32(depth)); err != nil {
			return err
		}
	}
	return nil
}
