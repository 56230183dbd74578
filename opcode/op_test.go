// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package opcode

import (
	"testing"
)

func TestNew(t *testing.T) {
	op1, err := New(I32Const.Code)
	if err != nil {
		t.Fatalf("unexpected error from New: %v", err)
	}
	if op1.Name != "i32.const" {
		t.Fatalf("0x41: unexpected Op name. got=%s, want=i32.const", op1.Name)
	}
	if !op1.IsValid() {
		t.Fatalf("0x41: operator %v is invalid (should be valid)", op1)
	}

	op2, err := New(0xff)
	if err == nil {
		t.Fatalf("0xff: expected error while getting Op value")
	}
	if op2.IsValid() {
		t.Fatalf("0xff: operator %v is valid (should be invalid)", op2)
	}
}

func TestImmediateClassification(t *testing.T) {
	if !I32Const.HasI32Imm() {
		t.Fatalf("i32.const should carry an i32 immediate")
	}
	if !Block.HasBlockType() {
		t.Fatalf("block should carry a block type immediate")
	}
	if I32Add.HasI32Imm() || I32Add.HasBlockType() {
		t.Fatalf("i32.add should carry no immediates")
	}
}
