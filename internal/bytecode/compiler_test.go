package bytecode_test

import (
	"testing"

	"github.com/cwbudde/luabc/internal/bytecode"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
)

func compile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	toks, err := lexer.New(src, "").Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.New(toks, src, "").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := bytecode.New(src, "").Compile(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return prog
}

func TestNumberPoolFoldsIntegerAndFloatForm(t *testing.T) {
	prog := compile(t, "a = 1\nb = 1.0\nc = 1")
	if len(prog.Numbers) != 1 {
		t.Fatalf("expected a single pooled number for 1/1.0/1, got %v", prog.Numbers)
	}
}

func TestNumberPoolDoesNotFoldComputedFloats(t *testing.T) {
	// 0.1 and 0.2 are distinct literals; their sum is never interned as a
	// literal, only the two operands are.
	prog := compile(t, "a = 0.1 + 0.2")
	if len(prog.Numbers) != 2 {
		t.Fatalf("expected 2 pooled literals, got %v", prog.Numbers)
	}
}

func TestPoolIndicesAreInsertionOrdered(t *testing.T) {
	prog := compile(t, "x = 1\ny = 2\nz = x")
	if len(prog.Idents) != 3 || prog.Idents[0] != "x" || prog.Idents[1] != "y" || prog.Idents[2] != "z" {
		t.Fatalf("unexpected ident pool order: %v", prog.Idents)
	}
}

func TestProgramEndsWithEnd(t *testing.T) {
	prog := compile(t, "a = 1")
	last := prog.Code[len(prog.Code)-1]
	if last.Op != bytecode.OpEnd {
		t.Fatalf("expected final instruction to be End, got %v", last.Op)
	}
}

func TestJumpTargetsAreValidIndices(t *testing.T) {
	prog := compile(t, `
		i = 1
		while i < 10 do
			i = i + 1
		end
	`)
	for _, inst := range prog.Code {
		if inst.Op == bytecode.OpJumpAbsolute || inst.Op == bytecode.OpJumpAbsoluteIfFalse {
			if inst.Arg < 0 || inst.Arg >= len(prog.Code) {
				t.Fatalf("jump target %d out of range (code has %d instructions)", inst.Arg, len(prog.Code))
			}
		}
	}
}

func TestCompilingSameProgramTwiceIsIdempotent(t *testing.T) {
	src := "a = 1 + 2 * 3\nb = a .. \"x\""
	p1 := compile(t, src)
	p2 := compile(t, src)
	if len(p1.Code) != len(p2.Code) || len(p1.Numbers) != len(p2.Numbers) ||
		len(p1.Strings) != len(p2.Strings) || len(p1.Idents) != len(p2.Idents) {
		t.Fatalf("expected identical pools across recompilation: %+v vs %+v", p1, p2)
	}
	for i := range p1.Code {
		if p1.Code[i] != p2.Code[i] {
			t.Fatalf("instruction %d differs: %+v vs %+v", i, p1.Code[i], p2.Code[i])
		}
	}
}

func TestReturnOutsideFunctionIsCompileError(t *testing.T) {
	toks, err := lexer.New("return 1", "").Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.New(toks, "", "").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := bytecode.New("", "").Compile(stmts); err == nil {
		t.Fatal("expected a compile error for a top-level return")
	}
}

func TestArityMismatchOnKnownFunctionIsCompileError(t *testing.T) {
	toks, err := lexer.New("function f(a, b) return a end\nc = f(1)", "").Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.New(toks, "", "").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if _, err := bytecode.New("", "").Compile(stmts); err == nil {
		t.Fatal("expected a compile error for a wrong argument count")
	}
}
