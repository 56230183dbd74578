// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"errors"
	"fmt"
)

// Error wraps validation errors with information about where in the
// function's bytecode the error was encountered.
type Error struct {
	Offset   int // cursor position when the error was detected: just past the failing opcode and any immediates it read
	Function int // index into the function index space for the offending function
	Err      error
}

func (e Error) Error() string {
	return fmt.Sprintf("error while validating function %d at ip %d: %v", e.Function, e.Offset, e.Err)
}

// ErrStackUnderflow is returned if an instruction consumes a value, but
// there are no values on the stack.
var ErrStackUnderflow = errors.New("validate: stack underflow")

// ErrUnmatchedEnd is returned if an end instruction is encountered with no
// matching block or loop open.
var ErrUnmatchedEnd = errors.New("validate: unmatched end")

// ErrUnbalancedControl is returned if a function body ends with one or
// more block/loop frames still open.
var ErrUnbalancedControl = errors.New("validate: unbalanced control frames at end of function")

// InvalidLabelError is returned if a branch names a nesting depth deeper
// than the control stack at that point.
type InvalidLabelError uint32

func (e InvalidLabelError) Error() string {
	return fmt.Sprintf("invalid nesting depth %d", uint32(e))
}

// InvalidLocalIndexError is returned if a local variable index is
// referenced which does not exist.
type InvalidLocalIndexError uint32

func (e InvalidLocalIndexError) Error() string {
	return fmt.Sprintf("invalid index for local variable %d", uint32(e))
}
