package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"famledger/internal/core"
	"famledger/internal/services"
)

type deleteCmd struct {
	yes bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "delete a record, or its series" }
func (*deleteCmd) Usage() string {
	return `famledger-cli delete [-y] <record-id>

  Deletes a record. Installments delete their whole series; recurring records delete
  the series from the record's month onward. Asks for confirmation unless -y is given.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one record id is required")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	var confirmer services.Confirmer = services.Confirmed
	if !c.yes {
		confirmer = confirmPrompt(os.Stdin, os.Stdout)
	}

	plan, err := a.ledger.Delete(ctx, f.Arg(0), confirmer)
	if errors.Is(err, core.ErrNotConfirmed) {
		fmt.Println("Nothing deleted.")
		return subcommands.ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted %d record(s).\n", len(plan.Records))
	return subcommands.ExitSuccess
}

// confirmPrompt shows the plan on out and accepts "y" or "yes" read from in.
func confirmPrompt(in io.Reader, out io.Writer) services.ConfirmFunc {
	return func(_ context.Context, plan services.DeletePlan) (bool, error) {
		fmt.Fprintln(out, describePlan(plan))
		printRecords(out, plan.Records)
		fmt.Fprint(out, "Proceed? [y/N] ")

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}

func describePlan(plan services.DeletePlan) string {
	switch plan.Scope {
	case services.ScopeSeries:
		return fmt.Sprintf("This deletes all %d installments of the series.", len(plan.Records))
	case services.ScopeSeriesFrom:
		return fmt.Sprintf("This deletes %d recurring record(s) from %s onward.", len(plan.Records), plan.From)
	default:
		return "This deletes 1 record."
	}
}
