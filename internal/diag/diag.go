// Package diag formats fatal lexical, syntactic, compilation, and runtime
// errors with source-line context and a caret pointing at the offending
// column.
package diag

import (
	"fmt"
	"strings"

	"github.com/cwbudde/luabc/internal/token"
)

// Stage identifies which pipeline phase raised an Error.
type Stage string

const (
	Lexical  Stage = "lexical"
	Syntax   Stage = "syntactic"
	Compile  Stage = "compilation"
	Runtime  Stage = "runtime"
)

// Error is a single fatal diagnostic. luabc never accumulates more than one:
// the first stage to fail aborts the pipeline (spec §7).
type Error struct {
	Stage   Stage
	Message string
	Pos     token.Position
	Source  string
	File    string
}

// New builds an Error. source is the full program text, used to render the
// offending line; file may be empty for inline (-e) input.
func New(stage Stage, pos token.Position, source, file, message string, args ...any) *Error {
	return &Error{
		Stage:   stage,
		Message: fmt.Sprintf(message, args...),
		Pos:     pos,
		Source:  source,
		File:    file,
	}
}

func (e *Error) Error() string {
	return e.Format()
}

// Format renders the diagnostic the way the CLI prints it: a header naming
// the stage and position, the offending source line, and a caret under the
// column at fault.
func (e *Error) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s error in %s:%s\n", e.Stage, e.File, e.Pos)
	} else {
		fmt.Fprintf(&sb, "%s error at %s\n", e.Stage, e.Pos)
	}

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(prefix)+col-1))
		sb.WriteString("^\n")
	}

	sb.WriteString(e.Message)
	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
