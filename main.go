package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(&compileCmd{pretty: true}, "")
	subcommands.Register(&tokensCmd{}, "")
	subcommands.Register(&replCmd{}, "")

	// spec.md §6's CLI contract is "one positional argument, a file path":
	// `ccfront foo.c` should compile foo.c without naming the compile
	// subcommand explicitly. subcommands requires a registered command
	// name as args[0], so splice "compile" in front when the first
	// argument isn't already a known subcommand name.
	if len(os.Args) > 1 && !isKnownCommand(os.Args[1]) {
		os.Args = append([]string{os.Args[0], "compile"}, os.Args[1:]...)
	}

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}

func isKnownCommand(name string) bool {
	switch name {
	case "compile", "tokens", "repl", "help", "flags", "commands":
		return true
	default:
		return false
	}
}
