// Copyright 2018 The go-interpreter Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.cbd")
	if err := ioutil.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunSumScenario(t *testing.T) {
	src := `i32.const 5
block
  i32.const -20
  i32.const 20
  i32.add
  i32.add
  br 0
  i32.const -999
end
local.set 0
i32.const 0
local.set 1
loop
  local.get 0
  local.get 1
  i32.add
  local.set 1
  local.get 0
  i32.const -1
  i32.add
  local.set 0
  local.get 0
  br_if 0
end
local.get 1
`
	path := writeTemp(t, src)

	var out bytes.Buffer
	run(&out, path, true)

	got := out.String()
	if !strings.Contains(got, "locals=[0 15]") {
		t.Fatalf("output = %q, want it to mention locals=[0 15]", got)
	}
}

func TestRunSkipValidation(t *testing.T) {
	path := writeTemp(t, "i32.const 7\ni32.const 8\ni32.add\n")

	var out bytes.Buffer
	run(&out, path, false)

	got := out.String()
	if !strings.Contains(got, "stack=[15]") {
		t.Fatalf("output = %q, want it to mention stack=[15]", got)
	}
}

// TestRunWorklistMatchesDirectSum runs the canonical sum scenario through
// -worklist and checks it agrees with run's direct evaluator result.
func TestRunWorklistMatchesDirectSum(t *testing.T) {
	src := `i32.const 5
block
  i32.const -20
  i32.const 20
  i32.add
  i32.add
  br 0
  i32.const -999
end
local.set 0
i32.const 0
local.set 1
loop
  local.get 0
  local.get 1
  i32.add
  local.set 1
  local.get 0
  i32.const -1
  i32.add
  local.set 0
  local.get 0
  br_if 0
end
local.get 1
`
	path := writeTemp(t, src)

	var out bytes.Buffer
	runWorklist(&out, path, 100)

	got := out.String()
	if !strings.Contains(got, "locals=[0 15]") {
		t.Fatalf("output = %q, want it to mention locals=[0 15]", got)
	}
}
