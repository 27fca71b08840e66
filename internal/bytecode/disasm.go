package bytecode

import (
	"fmt"
	"io"
)

// Disassembler renders a human-readable listing of a compiled Program,
// resolving constant-pool indices to their pooled values.
type Disassembler struct {
	w    io.Writer
	prog *Program
}

// NewDisassembler creates a Disassembler that writes to w.
func NewDisassembler(prog *Program, w io.Writer) *Disassembler {
	return &Disassembler{w: w, prog: prog}
}

// Disassemble prints the constant pools followed by the full instruction
// listing.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.w, "Instructions: %d, Numbers: %d, Strings: %d, Idents: %d, Functions: %d\n\n",
		len(d.prog.Code), len(d.prog.Numbers), len(d.prog.Strings), len(d.prog.Idents), len(d.prog.Functions))

	if len(d.prog.Numbers) > 0 {
		fmt.Fprintf(d.w, "Numbers:\n")
		for i, n := range d.prog.Numbers {
			fmt.Fprintf(d.w, "  [%04d] %s\n", i, formatNumber(n))
		}
	}
	if len(d.prog.Strings) > 0 {
		fmt.Fprintf(d.w, "Strings:\n")
		for i, s := range d.prog.Strings {
			fmt.Fprintf(d.w, "  [%04d] %q\n", i, s)
		}
	}
	if len(d.prog.Idents) > 0 {
		fmt.Fprintf(d.w, "Idents:\n")
		for i, name := range d.prog.Idents {
			fmt.Fprintf(d.w, "  [%04d] %s\n", i, name)
		}
	}
	if len(d.prog.Functions) > 0 {
		fmt.Fprintf(d.w, "Functions:\n")
		for i, fn := range d.prog.Functions {
			fmt.Fprintf(d.w, "  [%04d] %s/%d @%d\n", i, fn.Name, fn.Arity, fn.Entry)
		}
	}

	fmt.Fprintf(d.w, "\nBytecode:\n")
	for offset := range d.prog.Code {
		d.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction prints a single instruction, resolving its arg
// against the pool the opcode draws from, if any.
func (d *Disassembler) DisassembleInstruction(offset int) {
	inst := d.prog.Code[offset]
	fmt.Fprintf(d.w, "%04d %-20s", offset, inst.Op.String())

	switch inst.Op {
	case OpLoadNumber:
		fmt.Fprintf(d.w, " %d ; %s", inst.Arg, formatNumber(d.prog.Numbers[inst.Arg]))
	case OpLoadString:
		fmt.Fprintf(d.w, " %d ; %q", inst.Arg, d.prog.Strings[inst.Arg])
	case OpLoadGlob, OpStoreGlob, OpFuncCall:
		fmt.Fprintf(d.w, " %d ; %s", inst.Arg, d.prog.Idents[inst.Arg])
	case OpFuncDecl:
		fn := d.prog.Functions[inst.Arg]
		fmt.Fprintf(d.w, " %d ; %s/%d@%d", inst.Arg, fn.Name, fn.Arity, fn.Entry)
	case OpJumpAbsolute, OpJumpAbsoluteIfFalse:
		fmt.Fprintf(d.w, " %d", inst.Arg)
	case OpLoadLocal, OpStoreLocal:
		fmt.Fprintf(d.w, " %d", inst.Arg)
	}

	fmt.Fprintln(d.w)
}
