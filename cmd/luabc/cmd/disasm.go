package cmd

import (
	"os"

	"github.com/cwbudde/luabc/internal/bytecode"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
	"github.com/spf13/cobra"
)

var disasmEvalExpr string

var disasmCmd = &cobra.Command{
	Use:   "disasm [file]",
	Short: "Compile a source file or expression and print its bytecode listing",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)

	disasmCmd.Flags().StringVarP(&disasmEvalExpr, "eval", "e", "", "disassemble inline code instead of reading from file")
}

func runDisasm(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(disasmEvalExpr, args)
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

	prog, err := bytecode.New(src, filename).Compile(stmts)
	if err != nil {
		return reportDiag(err, "compiling")
	}

	bytecode.NewDisassembler(prog, os.Stdout).Disassemble()
	return nil
}
