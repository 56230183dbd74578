// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/opcode"
)

func prog(entries ...code.Entry) *code.Program {
	return &code.Program{Entries: entries}
}

func op(o opcode.Op) code.Entry           { return code.Op(o) }
func imm(v int32) code.Entry              { return code.I32Imm(v) }
func blockType() code.Entry               { return code.BlockTypeImm(code.BlockTypeEmpty) }

func TestValidateStackUnderflow(t *testing.T) {
	p := prog(op(opcode.I32Add))

	_, err := Validate(0, p, 0)
	var verr Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validate.Error, got %v (%T)", err, err)
	}
	if !errors.Is(verr.Err, ErrStackUnderflow) {
		t.Fatalf("expected ErrStackUnderflow, got %v", verr.Err)
	}
}

func TestValidateUnmatchedEnd(t *testing.T) {
	p := prog(op(opcode.End))

	_, err := Validate(0, p, 0)
	var verr Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validate.Error, got %v (%T)", err, err)
	}
	if !errors.Is(verr.Err, ErrUnmatchedEnd) {
		t.Fatalf("expected ErrUnmatchedEnd, got %v", verr.Err)
	}
}

func TestValidateUnbalancedControl(t *testing.T) {
	p := prog(op(opcode.Block), blockType())

	_, err := Validate(0, p, 0)
	var verr Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validate.Error, got %v (%T)", err, err)
	}
	if !errors.Is(verr.Err, ErrUnbalancedControl) {
		t.Fatalf("expected ErrUnbalancedControl, got %v", verr.Err)
	}
}

func TestValidateInvalidLabel(t *testing.T) {
	p := prog(op(opcode.Br), imm(5))

	_, err := Validate(0, p, 0)
	var verr Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validate.Error, got %v (%T)", err, err)
	}
	if !errors.Is(verr.Err, InvalidLabelError(5)) {
		t.Fatalf("expected InvalidLabelError(5), got %v", verr.Err)
	}
}

func TestValidateInvalidLocalIndex(t *testing.T) {
	p := prog(op(opcode.LocalGet), imm(3))

	_, err := Validate(0, p, 2)
	var verr Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected a validate.Error, got %v (%T)", err, err)
	}
	if !errors.Is(verr.Err, InvalidLocalIndexError(3)) {
		t.Fatalf("expected InvalidLocalIndexError(3), got %v", verr.Err)
	}
}

// br 0 jumps straight to the matching end, skipping the rest of the
// block's body.
func TestValidateSkipsBlockBody(t *testing.T) {
	p := prog(
		op(opcode.Block), blockType(),
		op(opcode.I32Const), imm(1),
		op(opcode.Br), imm(0),
		op(opcode.I32Const), imm(2),
		op(opcode.End),
	)

	st, err := Validate(0, p, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []STEntry{{IPDelta: 3, STPDelta: 0}}
	if !reflect.DeepEqual(st, want) {
		t.Fatalf("sidetable = %+v, want %+v", st, want)
	}
}

// TestValidateSumScenario builds the canonical "sum 5 down to 0" program
// and checks the exact sidetable the validator produces for it.
func TestValidateSumScenario(t *testing.T) {
	p := sumScenario()

	st, err := Validate(0, p, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []STEntry{
		{IPDelta: 3, STPDelta: 0},   // br 0 inside the block: skip to its end
		{IPDelta: -18, STPDelta: -1}, // br_if 0 inside the loop: back to its top
	}
	if !reflect.DeepEqual(st, want) {
		t.Fatalf("sidetable = %+v, want %+v", st, want)
	}
}

// sumScenario returns the program from the repository's canonical test
// scenario: two locals, local 0 counting down from 5 to 0, local 1
// accumulating 5+4+3+2+1.
func sumScenario() *code.Program {
	return prog(
		op(opcode.I32Const), imm(5),
		op(opcode.Block), blockType(),
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
		op(opcode.Loop), blockType(),
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
