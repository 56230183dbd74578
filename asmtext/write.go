// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asmtext

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mkhan45/cbd-sketch/code"
	"github.com/mkhan45/cbd-sketch/compile"
	"github.com/mkhan45/cbd-sketch/opcode"
)

// Assemble scans src and builds a code.Program from it.
func Assemble(src []byte) (*code.Program, error) {
	return assemble(NewScannerFromBytes("<input>", src))
}

// AssembleFile reads and assembles the program at path.
func AssembleFile(path string) (*code.Program, error) {
	s := NewScanner(path)
	if len(s.Errors) > 0 {
		return nil, s.Errors[0]
	}
	return assemble(s)
}

func assemble(s *Scanner) (*code.Program, error) {
	var prog code.Program

	for {
		tok := s.Next()
		if len(s.Errors) > 0 {
			return nil, s.Errors[0]
		}
		if tok.Kind == EOF {
			break
		}

		op, err := opToken(tok)
		if err != nil {
			return nil, err
		}
		prog.Entries = append(prog.Entries, code.Op(op))

		switch tok.Kind {
		case BLOCK, LOOP:
			prog.Entries = append(prog.Entries, code.BlockTypeImm(code.BlockTypeEmpty))
		default:
			if !tok.Kind.hasImm() {
				continue
			}
			imm := s.Next()
			if len(s.Errors) > 0 {
				return nil, s.Errors[0]
			}
			if imm.Kind != INT {
				return nil, fmt.Errorf("asmtext: %s:%d:%d: %s expects an integer immediate", s.file, tok.Line, tok.Column, tok.Text)
			}
			prog.Entries = append(prog.Entries, code.I32Imm(imm.Value))
		}
	}

	return &prog, nil
}

func opToken(tok *Token) (opcode.Op, error) {
	switch tok.Kind {
	case I32_CONST:
		return opcode.I32Const, nil
	case I32_ADD:
		return opcode.I32Add, nil
	case LOCAL_GET:
		return opcode.LocalGet, nil
	case LOCAL_SET:
		return opcode.LocalSet, nil
	case LOCAL_TEE:
		return opcode.LocalTee, nil
	case BLOCK:
		return opcode.Block, nil
	case LOOP:
		return opcode.Loop, nil
	case END:
		return opcode.End, nil
	case BR:
		return opcode.Br, nil
	case BR_IF:
		return opcode.BrIf, nil
	default:
		return opcode.Op{}, fmt.Errorf("asmtext: %q is not an instruction", tok.Text)
	}
}

// Write renders prog back to the text notation Assemble accepts,
// indenting block and loop bodies for readability.
func Write(w io.Writer, prog *code.Program) error {
	bw := bufio.NewWriter(w)
	cur := code.NewCursor(prog)
	depth := 0

	for !cur.Done() {
		op, err := cur.ReadOp()
		if err != nil {
			return err
		}

		if op.Code == opcode.End.Code {
			depth--
		}
		for i := 0; i < depth; i++ {
			bw.WriteString(tab)
		}
		bw.WriteString(op.Name)

		switch op.Code {
		case opcode.Block.Code, opcode.Loop.Code:
			if _, err := cur.ReadBlockType(); err != nil {
				return err
			}
			depth++
		case opcode.I32Const.Code, opcode.LocalGet.Code, opcode.LocalSet.Code,
			opcode.LocalTee.Code, opcode.Br.Code, opcode.BrIf.Code:
			v, err := cur.ReadImmI32()
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, " %d", v)
		}
		bw.WriteString("\n")
	}

	return bw.Flush()
}

const tab = "  "

// WriteBlocks renders an abstract-compiler block listing, one
// block_<i> function per entry, in the same mnemonic-oriented style
// as Write.
func WriteBlocks(w io.Writer, blocks []compile.Block) error {
	bw := bufio.NewWriter(w)
	for i, b := range blocks {
		fmt.Fprintf(bw, "block_%d(interp, worklist):\n", i)
		for _, line := range b.Lines {
			bw.WriteString(tab)
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}
