package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"ccfront/lexer"
	"ccfront/parser"
	"ccfront/token"
)

// replCmd reads one declaration/statement/expression at a time and prints
// the resulting AST as JSON — a debugging aid over the front end, not a
// language REPL, since this front end evaluates nothing.
type replCmd struct{}

func (*replCmd) Name() string     { return "repl" }
func (*replCmd) Synopsis() string { return "Interactively parse C fragments and print their AST" }
func (*replCmd) Usage() string {
	return `repl:
  Read one line at a time, parse it as a translation unit, and print the
  resulting AST as JSON. Type 'exit' or press Ctrl-D to quit.
`
}
func (*replCmd) SetFlags(*flag.FlagSet) {}

func (*replCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	rl, err := readline.New("ccfront> ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "repl: %v\n", err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "repl: %v\n", err)
			return subcommands.ExitFailure
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" {
			return subcommands.ExitSuccess
		}

		// Most fragments typed interactively (a bare expression, a
		// dangling statement) aren't valid top-level C on their own; on
		// a parse failure fall back to showing the token stream instead
		// of just an error, so the REPL stays useful below
		// declaration/statement granularity.
		prog, err := parser.Parse("<repl>", line)
		if err != nil {
			toks, terr := lexer.New("<repl>", line).Scan()
			if terr != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			var list []*token.Token
			for t := toks; t != nil && t.Kind != token.EOF; t = t.Next {
				list = append(list, t)
			}
			out, _ := json.MarshalIndent(list, "", "  ")
			fmt.Println(string(out))
			continue
		}
		out, err := json.MarshalIndent(prog, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "repl: encoding AST: %v\n", err)
			continue
		}
		fmt.Println(string(out))
	}
}
