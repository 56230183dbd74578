// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package partition

import "fmt"

// invalidLabelError is returned if a branch names a nesting depth deeper
// than the control stack at that point.
type invalidLabelError int32

func (e invalidLabelError) Error() string {
	return fmt.Sprintf("partition: invalid nesting depth %d", int32(e))
}
