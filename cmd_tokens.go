package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"ccfront/lexer"
	"ccfront/token"
)

// tokensCmd dumps the raw token stream as JSON, without parsing it — the
// analyzer-stage equivalent of a standalone tokenizer pass.
type tokensCmd struct{}

func (*tokensCmd) Name() string     { return "tokens" }
func (*tokensCmd) Synopsis() string { return "Tokenize a C source file and print the tokens as JSON" }
func (*tokensCmd) Usage() string {
	return `tokens <file.c>:
  Scan the given file and print its token stream as a JSON array.
`
}
func (*tokensCmd) SetFlags(*flag.FlagSet) {}

func (*tokensCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "tokens: no input file")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokens: %v\n", err)
		return subcommands.ExitFailure
	}

	head, err := lexer.New(args[0], string(data)).Scan()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var list []*token.Token
	for t := head; t != nil && t.Kind != token.EOF; t = t.Next {
		list = append(list, t)
	}

	out, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokens: encoding: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Println(string(out))
	return subcommands.ExitSuccess
}
