package bytecode_test

import (
	"os"
	"strings"
	"testing"

	"github.com/cwbudde/luabc/internal/bytecode"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
	"github.com/gkampitakis/go-snaps/snaps"
)

func disassemble(t *testing.T, src string) string {
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
	var sb strings.Builder
	bytecode.NewDisassembler(prog, &sb).Disassemble()
	return sb.String()
}

func TestDisassembleArithmetic(t *testing.T) {
	snaps.MatchSnapshot(t, disassemble(t, "a = 1 + 3 ^ 4 ^ 2"))
}

func TestDisassembleIfElseifElse(t *testing.T) {
	snaps.MatchSnapshot(t, disassemble(t, "if true then c=1 elseif false then c=2 else c=3 end"))
}

func TestDisassembleFunctionAndCall(t *testing.T) {
	snaps.MatchSnapshot(t, disassemble(t, "function add(a, b)\n  return a + b\nend\nc = add(1, 2)"))
}

func TestDisassembleWhileLoop(t *testing.T) {
	snaps.MatchSnapshot(t, disassemble(t, "i=1\nwhile i<10 do\n  i=i+1\nend"))
}

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}
