// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mkhan45/cbd-sketch/asmtext"
	"github.com/mkhan45/cbd-sketch/blockvm"
	"github.com/mkhan45/cbd-sketch/eval"
	"github.com/mkhan45/cbd-sketch/partition"
	"github.com/mkhan45/cbd-sketch/validate"
	"github.com/mkhan45/cbd-sketch/worklist"
)

func main() {
	log.SetPrefix("cbd-run: ")
	log.SetFlags(0)

	verbose := flag.Bool("v", false, "enable/disable verbose mode")
	noValidate := flag.Bool("no-validate", false, "skip validation and run directly")
	useWorklist := flag.Bool("worklist", false, "run via the worklist-driven compiled blocks instead of the direct evaluator")
	budget := flag.Int("budget", 0, "step budget for -worklist (0 means unlimited)")

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	validate.PrintDebugInfo = *verbose

	if *useWorklist {
		runWorklist(os.Stdout, flag.Arg(0), *budget)
		return
	}
	run(os.Stdout, flag.Arg(0), !*noValidate)
}

func run(w io.Writer, fname string, doValidate bool) {
	prog, err := asmtext.AssembleFile(fname)
	if err != nil {
		log.Fatalf("could not assemble %s: %v", fname, err)
	}

	numLocals := prog.NumLocals()

	var sidetable []eval.STEntry
	if doValidate {
		ste, err := validate.Validate(0, prog, numLocals)
		if err != nil {
			log.Fatalf("could not validate %s: %v", fname, err)
		}
		sidetable = toEvalSidetable(ste)
	}

	vm := eval.NewVM(prog, sidetable, numLocals)
	if err := vm.Run(); err != nil {
		fmt.Fprintf(w, "stack=%v locals=%v\n", vm.Stack(), vm.Locals())
		log.Fatalf("err=%v", err)
	}

	fmt.Fprintf(w, "stack=%v locals=%v\n", vm.Stack(), vm.Locals())
}

// runWorklist partitions and runs prog through the worklist-driven block
// executor, the round-trip counterpart to run's direct sidetable-based
// evaluator: both must agree on final stack and locals for any input,
// modulo the loop-bound caveat a non-zero -budget exists for.
func runWorklist(w io.Writer, fname string, budget int) {
	prog, err := asmtext.AssembleFile(fname)
	if err != nil {
		log.Fatalf("could not assemble %s: %v", fname, err)
	}

	part, err := partition.New(prog)
	if err != nil {
		log.Fatalf("could not partition %s: %v", fname, err)
	}

	vm := blockvm.NewVM(prog.NumLocals())
	blocks := blockvm.Build(prog, part, vm)

	driver := worklist.NewDriver(budget)
	if err := driver.Run(blocks); err != nil {
		fmt.Fprintf(w, "stack=%v locals=%v\n", vm.Stack(), vm.Locals())
		log.Fatalf("err=%v", err)
	}

	fmt.Fprintf(w, "stack=%v locals=%v\n", vm.Stack(), vm.Locals())
}

func toEvalSidetable(ste []validate.STEntry) []eval.STEntry {
	out := make([]eval.STEntry, len(ste))
	for i, e := range ste {
		out[i] = eval.STEntry{IPDelta: e.IPDelta, STPDelta: e.STPDelta}
	}
	return out
}
