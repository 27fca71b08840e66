package cmd

import (
	"fmt"

	"github.com/cwbudde/luabc/internal/source"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "luabc",
	Short: "A toy Lua-like compiler and bytecode VM",
	Long: `luabc compiles a small Lua-like language to a flat bytecode and
executes it on a stack-based virtual machine.

It supports numbers, strings, booleans, assignment (including
multiple-target assignment), if/elseif/else, while loops, and
functions with recursion.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// readSource resolves the input for a command that accepts either a file
// argument or an inline -e/--eval expression.
func readSource(evalExpr string, args []string) (src, filename string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := source.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return content, args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline code")
}
