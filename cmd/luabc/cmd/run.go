package cmd

import (
	"fmt"
	"sort"

	"github.com/cwbudde/luabc/internal/bytecode"
	"github.com/cwbudde/luabc/internal/lexer"
	"github.com/cwbudde/luabc/internal/parser"
	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var runEvalExpr string

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a source file or expression",
	Long: `Execute a program from a file or inline expression and print its
final global environment.

Examples:
  luabc run script.lua
  luabc run -e "a = 1 + 2"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
}

func runScript(_ *cobra.Command, args []string) error {
	src, filename, err := readSource(runEvalExpr, args)
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

	env, err := bytecode.NewVM(prog, src, filename).Run()
	if err != nil {
		return reportDiag(err, "running")
	}

	printEnv(env)
	return nil
}

// printEnv prints the final global environment with keys in a stable,
// locale-aware order, so repeated runs produce byte-identical output.
func printEnv(env map[string]bytecode.Value) {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	col := collate.New(language.English)
	sort.Slice(keys, func(i, j int) bool {
		return col.CompareString(keys[i], keys[j]) < 0
	})
	for _, k := range keys {
		fmt.Printf("%s = %s\n", k, env[k].String())
	}
}
