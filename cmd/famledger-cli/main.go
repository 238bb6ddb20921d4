// Command famledger-cli records and reviews household finances from a terminal.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"famledger/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	commander.Register(&addCmd{}, "records")
	commander.Register(&editCmd{}, "records")
	commander.Register(&deleteCmd{}, "records")
	commander.Register(&monthCmd{}, "reports")
	commander.Register(&categoriesCmd{}, "reports")
	commander.Register(&auditCmd{}, "reports")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
