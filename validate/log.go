// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validate

import (
	"fmt"
	"os"
)

// PrintDebugInfo toggles whether logf's tracing reaches stderr; cmd/cbd-run
// and cmd/cbd-dump's -v flag sets it. Unlike a logger built once at
// package init, logf reads this on every call: the CLI only sets it after
// flag.Parse, which runs well after this package's own init, so a logger
// cached at init time would never see a -v passed on the command line.
var PrintDebugInfo = false

func logf(format string, args ...interface{}) {
	if !PrintDebugInfo {
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
