package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/luabc/internal/diag"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr string
	lexShowPos  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a source file or expression",
	Long: `Tokenize a program and print the resulting tokens, one per line.

Examples:
  luabc lex script.lua
  luabc lex -e "a = 1 + 2"
  luabc lex --show-pos script.lua`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
}

func runLex(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(lexEvalExpr, args)
	if err != nil {
		return err
	}

	toks, err := lexer.New(src, filename).Tokenize()
	if err != nil {
		if de, ok := err.(*diag.Error); ok {
			fmt.Fprintln(os.Stderr, de.Format())
			return fmt.Errorf("lexing failed")
		}
		return err
	}

	for _, tok := range toks {
		printToken(tok)
		if tok.Kind == token.Eof {
			break
		}
	}
	return nil
}

func printToken(tok token.Token) {
	var line string
	if tok.Literal == "" {
		line = tok.Kind.String()
	} else {
		line = fmt.Sprintf("%s %q", tok.Kind.String(), tok.Literal)
	}
	if lexShowPos {
		line += fmt.Sprintf(" @%s", tok.Pos.String())
	}
	fmt.Println(line)
}
