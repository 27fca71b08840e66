package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/luabc/internal/ast"
	"github.com/cwbudde/luabc/internal/diag"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
	"github.com/spf13/cobra"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a source file or expression and print its statements",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func runParse(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(parseEvalExpr, args)
	if err != nil {
		return err
	}

	toks, err := lexer.New(src, filename).Tokenize()
	if err != nil {
		return reportDiag(err, "lexing")
	}

	stmts, err := parser.New(toks, src, filename).Parse()
	if err != nil {
		return reportDiag(err, "parsing")
	}

	for i, stmt := range stmts {
		fmt.Printf("%d: %s\n", i, describeStmt(stmt))
	}
	return nil
}

func reportDiag(err error, stage string) error {
	if de, ok := err.(*diag.Error); ok {
		fmt.Fprintln(os.Stderr, de.Format())
		return fmt.Errorf("%s failed", stage)
	}
	return err
}

// describeStmt renders a one-line summary of a statement for the parse
// command's debug listing.
func describeStmt(s ast.Stmt) string {
	switch n := s.(type) {
	case ast.Assign:
		return fmt.Sprintf("Assign(%d targets, %d values)", len(n.Targets), len(n.Values))
	case ast.If:
		return fmt.Sprintf("If(%d elseif arm(s))", len(n.ElseifConds))
	case ast.While:
		return "While"
	case ast.FuncDecl:
		return fmt.Sprintf("FuncDecl(%s/%d)", n.Name, len(n.Params))
	case ast.Return:
		return "Return"
	default:
		return fmt.Sprintf("%T", s)
	}
}
