// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/machine"
)

// Validate type-checks prog via the shared CBD dispatch loop and, on
// success, returns the sidetable the evaluator needs to resolve every
// static br/br_if in O(1). funcIndex is only used to annotate a returned
// Error.
func Validate(funcIndex int, prog *code.Program, numLocals int) ([]STEntry, error) {
	v := NewValidator(prog, numLocals)

	if err := machine.Dispatch(v); err != nil {
		return nil, Error{Offset: v.cur.IP, Function: funcIndex, Err: err}
	}
	if !v.Balanced() {
		return nil, Error{Offset: v.cur.IP, Function: funcIndex, Err: ErrUnbalancedControl}
	}

	logf("function %d: %d frames, %d sidetable entries", funcIndex, len(v.frames), len(v.sidetableMeta)-1)

	return v.BuildSidetable(), nil
}
