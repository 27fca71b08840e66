package lexer_test

import (
	"testing"

	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/token"
)

func kinds(t *testing.T, src string) []token.Kind {
	t.Helper()
	toks, err := lexer.New(src, "").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, src string, want []token.Kind) {
	t.Helper()
	got := kinds(t, src)
	if len(got) != len(want) {
		t.Fatalf("%q: got %d tokens %v, want %d %v", src, len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d = %v, want %v", src, i, got[i], want[i])
		}
	}
}

func TestAnalyzeSample(t *testing.T) {
	src := `
		a = 1

		if a + 1 >= 3.5 and a ^ 3 == 2 then
			print("Hello World!")
		end
	`
	assertKinds(t, src, []token.Kind{
		token.Ident, token.Assign, token.Number,
		token.If, token.Ident, token.Plus, token.Number, token.Ge, token.Number,
		token.And, token.Ident, token.Pow, token.Number, token.Eq, token.Number, token.Then,
		token.Ident, token.Lpar, token.String, token.Rpar,
		token.End, token.Eof,
	})
}

func TestOperatorDisambiguation(t *testing.T) {
	assertKinds(t, "/ // . .. ... = == ~= < <= > >=", []token.Kind{
		token.RealDiv, token.IntDiv, token.Dot, token.Concat, token.Arg,
		token.Assign, token.Eq, token.UnEq,
		token.Lt, token.Le, token.Gt, token.Ge,
		token.Eof,
	})
}

func TestLongString(t *testing.T) {
	toks, err := lexer.New("[===[]==]]===]", "").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[0].Kind != token.String || toks[0].Literal != "]==]" {
		t.Fatalf("got %+v, want String(%q)", toks[0], "]==]")
	}
}

func TestUnterminatedShortStringIsFatal(t *testing.T) {
	if _, err := lexer.New(`"abc`, "").Tokenize(); err == nil {
		t.Fatal("expected a lexical error for an unterminated string literal")
	}
}

func TestUnexpectedCharacterIsFatal(t *testing.T) {
	if _, err := lexer.New("@", "").Tokenize(); err == nil {
		t.Fatal("expected a lexical error for an unrecognized character")
	}
}

func TestKeywordVsIdent(t *testing.T) {
	toks, err := lexer.New("while whilex", "").Tokenize()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if toks[0].Kind != token.While {
		t.Fatalf("expected While, got %v", toks[0].Kind)
	}
	if toks[1].Kind != token.Ident || toks[1].Literal != "whilex" {
		t.Fatalf("expected Ident(whilex), got %+v", toks[1])
	}
}
