package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"famledger/internal/core"
)

type addCmd struct {
	kind     string
	mode     string
	category string
	date     string
	amount   string
	count    int
	note     string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an income or expense" }
func (*addCmd) Usage() string {
	return `famledger-cli add -k <kind> -c <category> -a <amount> [-m <mode>] [-n <count>] [-d <date>] [-note <text>]

  Records a transaction. With -m installments, -a is the total split over -n months.
  With -m recurring, -a is repeated every month for -n months.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "k", string(core.Expense), "Kind: income or expense")
	f.StringVar(&c.mode, "m", string(core.OneTime), "Mode: one_time, installments or recurring")
	f.StringVar(&c.category, "c", "", "Category id")
	f.StringVar(&c.date, "d", "", "Date of the first record, YYYY-MM-DD (defaults to today)")
	f.StringVar(&c.amount, "a", "", "Amount, e.g. 12.34 or 12,34")
	f.IntVar(&c.count, "n", 0, "Number of installments or months")
	f.StringVar(&c.note, "note", "", "Free-text note")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	in, err := c.intent(a.ledger.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	recs, err := a.ledger.SubmitIntent(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if core.IsValidation(err) {
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}
	printRecords(os.Stdout, recs)
	return subcommands.ExitSuccess
}

// intent builds the transaction intent from the flags. The amount lands in the field
// the chosen mode reads.
func (c *addCmd) intent(today core.Date) (core.TransactionIntent, error) {
	in := core.TransactionIntent{
		Kind:       core.Kind(strings.ToLower(strings.TrimSpace(c.kind))),
		Mode:       core.Mode(strings.ToLower(strings.TrimSpace(c.mode))),
		CategoryID: strings.TrimSpace(c.category),
		Note:       strings.TrimSpace(c.note),
		Date:       today,
	}
	if c.date != "" {
		d, err := core.ParseDate(c.date)
		if err != nil {
			return in, fmt.Errorf("invalid date %q: %w", c.date, err)
		}
		in.Date = d
	}

	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return in, fmt.Errorf("invalid amount %q: %w", c.amount, err)
	}
	switch in.Mode {
	case core.Installments:
		in.TotalAmount, in.InstallmentCount = amount, c.count
	case core.Recurring:
		in.PerMonthAmount, in.MonthCount = amount, c.count
	default:
		in.Amount = amount
	}
	return in, nil
}

func printRecords(w io.Writer, recs []core.LedgerRecord) {
	for _, r := range recs {
		line := fmt.Sprintf("%s  %s  %-7s  %-12s  %10s", r.ID, r.TxDate, r.Kind, r.CategoryID, r.Amount)
		if r.InstallmentTotal > 0 {
			line += fmt.Sprintf("  %d/%d", r.InstallmentNumber, r.InstallmentTotal)
		}
		if r.Note != "" {
			line += "  " + r.Note
		}
		fmt.Fprintln(w, line)
	}
}
