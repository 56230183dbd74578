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
	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/compile"
	"github.com/mkhan45/cbd-sketch/partition"
	"github.com/mkhan45/cbd-sketch/validate"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: cbd-dump [options] file1.cbd [file2.cbd [...]]

ex:
 $> cbd-dump -d ./file1.cbd

options:
`,
		)
		flag.PrintDefaults()
		os.Exit(1)
	}
}

var (
	flagVerbose = flag.Bool("v", false, "enable/disable verbose mode")
	flagDis     = flag.Bool("d", false, "print the re-assembled instruction stream")
	flagBlocks  = flag.Bool("x", false, "partition, compile, and print per-block bodies and the sidetable")
)

func main() {
	log.SetPrefix("cbd-dump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if !*flagDis && !*flagBlocks {
		flag.Usage()
		flag.PrintDefaults()
		log.Printf("at least one of -d or -x must be given")
		os.Exit(1)
	}

	validate.PrintDebugInfo = *flagVerbose

	for i, fname := range flag.Args() {
		if i > 0 {
			fmt.Fprintf(os.Stdout, "\n")
		}
		process(os.Stdout, fname, *flagDis, *flagBlocks)
	}
}

func process(w io.Writer, fname string, dis, blocks bool) {
	prog, err := asmtext.AssembleFile(fname)
	if err != nil {
		log.Fatalf("could not assemble %q: %v", fname, err)
	}

	if dis {
		printDis(w, fname, prog)
	}
	if blocks {
		printBlocks(w, fname, prog)
	}
}

func printDis(w io.Writer, fname string, prog *code.Program) {
	fmt.Fprintf(w, "%s: re-assembled form:\n\n", fname)
	if err := asmtext.Write(w, prog); err != nil {
		log.Fatalf("could not print %q: %v", fname, err)
	}
}

func printBlocks(w io.Writer, fname string, prog *code.Program) {
	part, err := partition.New(prog)
	if err != nil {
		log.Fatalf("could not partition %q: %v", fname, err)
	}

	blocks, err := compile.Compile(prog, part)
	if err != nil {
		log.Fatalf("could not compile %q: %v", fname, err)
	}

	fmt.Fprintf(w, "%s: compiled blocks:\n\n", fname)
	if err := asmtext.WriteBlocks(w, blocks); err != nil {
		log.Fatalf("could not print %q: %v", fname, err)
	}

	ste, err := validate.Validate(0, prog, prog.NumLocals())
	if err != nil {
		log.Fatalf("could not validate %q: %v", fname, err)
	}
	fmt.Fprintf(w, "\nsidetable:\n")
	for i, e := range ste {
		fmt.Fprintf(w, " - [%d] ip_delta=%d stp_delta=%d\n", i, e.IPDelta, e.STPDelta)
	}
}
