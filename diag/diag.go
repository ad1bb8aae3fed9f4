// Package diag implements the caret-pointing diagnostic format used by the
// lexer and parser: "<file>:<line>: <source line>\n<indent>^ <message>".
package diag

import (
	"fmt"
	"strings"
)

// Error is a fatal lexical or syntactic diagnostic. It satisfies the error
// interface so it composes with ordinary Go error handling; the CLI layer
// is the one place that turns an Error into a process exit code, keeping
// the tokenizer/parser themselves free of os.Exit calls.
type Error struct {
	File    string
	Line    int
	Column  int
	Source  string // the full offending source line, for the caret render
	Message string
}

func (e *Error) Error() string {
	var b strings.Builder
	prefix := fmt.Sprintf("%s:%d: ", e.File, e.Line)
	fmt.Fprintf(&b, "%s%s\n", prefix, e.Source)
	fmt.Fprintf(&b, "%s^ %s", strings.Repeat(" ", len(prefix)+e.Column), e.Message)
	return b.String()
}

// New builds an Error located at line/column within source, with sourceLine
// already extracted by the caller (the lexer and parser both track the full
// input and can slice out the relevant line).
func New(file string, line, column int, sourceLine, format string, args ...any) *Error {
	return &Error{
		File:    file,
		Line:    line,
		Column:  column,
		Source:  sourceLine,
		Message: fmt.Sprintf(format, args...),
	}
}

// LineAt returns the full line of src containing byte offset pos, without
// its trailing newline.
func LineAt(src string, pos int) string {
	start := strings.LastIndexByte(src[:pos], '\n') + 1
	end := strings.IndexByte(src[pos:], '\n')
	if end < 0 {
		return src[start:]
	}
	return src[start : pos+end]
}

// LineColumn returns the 1-based line number and 0-based column of byte
// offset pos within src.
func LineColumn(src string, pos int) (line, column int) {
	line = 1
	lineStart := 0
	for i := 0; i < pos; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	return line, pos - lineStart
}

// LineByNumber returns the text of the 1-based line number n within src.
// Used by the parser, which locates errors by a token's (Line, Column) pair
// rather than by byte offset.
func LineByNumber(src string, n int) string {
	lines := strings.Split(src, "\n")
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}
