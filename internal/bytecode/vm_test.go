package bytecode_test

import (
	"testing"

	"github.com/cwbudde/luabc/internal/bytecode"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
)

func run(t *testing.T, src string) map[string]bytecode.Value {
	t.Helper()
	toks, err := lexer.New(src, "").Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	stmts, err := parser.New(toks, src, "").Parse()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	prog, err := bytecode.New("", "").Compile(stmts)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	env, err := bytecode.NewVM(prog, src, "").Run()
	if err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	return env
}

func wantNumber(t *testing.T, env map[string]bytecode.Value, name string, want float64) {
	t.Helper()
	v, ok := env[name]
	if !ok {
		t.Fatalf("missing global %q", name)
	}
	if v.Kind != bytecode.KindNumber || v.Num != want {
		t.Fatalf("%s = %v, want Number(%v)", name, v, want)
	}
}

func TestScenario1SimpleArithmetic(t *testing.T) {
	wantNumber(t, run(t, "a = 1 + 3"), "a", 4)
}

func TestScenario2DivisionAndReassign(t *testing.T) {
	env := run(t, "a = 1 / 2\na, b = 2, a")
	wantNumber(t, env, "a", 2)
	wantNumber(t, env, "b", 0.5)
}

func TestScenario3RightAssociativePower(t *testing.T) {
	wantNumber(t, run(t, "a = 1 + 3 ^ 4 ^ 2"), "a", 43046722)
}

func TestScenario4IfElseifElse(t *testing.T) {
	wantNumber(t, run(t, "if true then c=1 elseif false then c=2 else c=3 end"), "c", 1)
}

func TestScenario5While(t *testing.T) {
	env := run(t, "i=1  d=0  while i<10 do d=d+i  i=i+1 end")
	wantNumber(t, env, "i", 10)
	wantNumber(t, env, "d", 45)
}

func TestScenario6Swap(t *testing.T) {
	env := run(t, "a, b = 1, 2\na, b = b, a")
	wantNumber(t, env, "a", 2)
	wantNumber(t, env, "b", 1)
}

func TestComparisonCompletion(t *testing.T) {
	env := run(t, `
		a = 3 > 2
		b = 2 >= 2
		c = 3 ~= 2
		d = 2 ~= 2
	`)
	if !env["a"].Bool || !env["b"].Bool || !env["c"].Bool || env["d"].Bool {
		t.Fatalf("unexpected comparison results: %+v", env)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	env := run(t, `
		function add(a, b)
			return a + b
		end
		c = add(1, 2)
	`)
	wantNumber(t, env, "c", 3)
}

func TestRecursiveFunction(t *testing.T) {
	env := run(t, `
		function fact(n)
			if n <= 1 then
				return 1
			end
			return n * fact(n - 1)
		end
		r = fact(5)
	`)
	wantNumber(t, env, "r", 120)
}

func TestAssignmentArityPadsWithNil(t *testing.T) {
	env := run(t, "a, b, c = 1")
	wantNumber(t, env, "a", 1)
	if env["b"].Kind != bytecode.KindNil || env["c"].Kind != bytecode.KindNil {
		t.Fatalf("expected b and c to be Nil, got %+v %+v", env["b"], env["c"])
	}
}

func TestAssignmentArityDiscardsExcess(t *testing.T) {
	env := run(t, "a = 1, 2, 3")
	wantNumber(t, env, "a", 1)
}

func TestArithmeticOnNonNumberIsFatal(t *testing.T) {
	toks, _ := lexer.New(`a = "x" + 1`, "").Tokenize()
	stmts, _ := parser.New(toks, "", "").Parse()
	prog, _ := bytecode.New("", "").Compile(stmts)
	if _, err := bytecode.NewVM(prog, "", "").Run(); err == nil {
		t.Fatal("expected a typed runtime error for arithmetic on a string")
	}
}

func TestUndefinedGlobalIsFatal(t *testing.T) {
	toks, _ := lexer.New("a = b + 1", "").Tokenize()
	stmts, _ := parser.New(toks, "", "").Parse()
	prog, _ := bytecode.New("", "").Compile(stmts)
	if _, err := bytecode.NewVM(prog, "", "").Run(); err == nil {
		t.Fatal("expected a fatal error for loading an undefined global")
	}
}

func TestFalsyRule(t *testing.T) {
	env := run(t, `
		if 0 then a = 1 else a = 2 end
		if "" then b = 1 else b = 2 end
		unused, nilflag = 1
		if nilflag then c = 1 else c = 2 end
	`)
	wantNumber(t, env, "a", 1)
	wantNumber(t, env, "b", 1)
	wantNumber(t, env, "c", 2)
}
