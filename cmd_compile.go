package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ccfront/parser"
)

// compileCmd is the default command: parse one source file end to end and
// print its resulting ast.Program as JSON, exiting 1 on any diagnostic.
type compileCmd struct {
	pretty bool
}

func (*compileCmd) Name() string     { return "compile" }
func (*compileCmd) Synopsis() string { return "Parse a C source file and print its AST as JSON" }
func (*compileCmd) Usage() string {
	return `compile <file.c>:
  Tokenize and parse the given file, printing the typed AST as JSON.
  Exits 0 on success, 1 if any diagnostic was raised.
`
}

func (c *compileCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.pretty, "pretty", true, "indent the JSON output")
}

func (c *compileCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "compile: no input file")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: %v\n", err)
		return subcommands.ExitFailure
	}

	prog, err := parser.Parse(args[0], string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var out []byte
	if c.pretty {
		out, err = json.MarshalIndent(prog, "", "  ")
	} else {
		out, err = json.Marshal(prog)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "compile: encoding AST: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
