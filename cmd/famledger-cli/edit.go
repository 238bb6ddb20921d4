package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"famledger/internal/core"
)

type editCmd struct {
	amount   string
	date     string
	category string
	note     string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change a single record" }
func (*editCmd) Usage() string {
	return `famledger-cli edit [-a <amount>] [-d <date>] [-c <category>] [-note <text>] <record-id>

  Changes one record. Other records of the same series are left as they are.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "New amount")
	f.StringVar(&c.date, "d", "", "New date, YYYY-MM-DD")
	f.StringVar(&c.category, "c", "", "New category id")
	f.StringVar(&c.note, "note", "", "New note; pass an empty value to clear it")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one record id is required")
		return subcommands.ExitUsageError
	}
	patch, err := c.patch(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	rec, err := a.ledger.Edit(ctx, f.Arg(0), patch)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printRecords(os.Stdout, []core.LedgerRecord{rec})
	return subcommands.ExitSuccess
}

// patch includes only the flags given on the command line.
func (c *editCmd) patch(f *flag.FlagSet) (core.RecordPatch, error) {
	var p core.RecordPatch
	var err error
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "a":
			d, perr := core.ParseAmount(c.amount)
			if perr != nil {
				err = fmt.Errorf("invalid amount %q: %w", c.amount, perr)
				return
			}
			m := core.MoneyFromDecimal(d)
			p.Amount = &m
		case "d":
			d, perr := core.ParseDate(c.date)
			if perr != nil {
				err = fmt.Errorf("invalid date %q: %w", c.date, perr)
				return
			}
			p.TxDate = &d
		case "c":
			id := c.category
			p.CategoryID = &id
		case "note":
			note := c.note
			p.Note = &note
		}
	})
	if err != nil {
		return p, err
	}
	if p.IsEmpty() {
		return p, fmt.Errorf("nothing to change")
	}
	return p, nil
}
