package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"famledger/internal/core"
	"famledger/internal/report"
	"famledger/internal/summary"
)

type monthCmd struct {
	month    string
	category string
	modes    string
	sort     string
	width    int
	raw      bool
}

func (*monthCmd) Name() string     { return "month" }
func (*monthCmd) Synopsis() string { return "display the month summary" }
func (*monthCmd) Usage() string {
	return `famledger-cli month [-p <YYYY-MM>] [-c <category>] [-modes <list>] [-sort near|desc|asc] [-raw]

  Displays the records and totals of a month. Defaults to the current month.
`
}

func (c *monthCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.month, "p", "", "Month to display, YYYY-MM (defaults to the current month)")
	f.StringVar(&c.category, "c", "", "Only show records of this category id")
	f.StringVar(&c.modes, "modes", "", "Only show expenses of these modes, comma separated")
	f.StringVar(&c.sort, "sort", string(summary.SortNear), "Sort order: near, desc or asc")
	f.IntVar(&c.width, "w", 100, "Wrap width of the rendered report")
	f.BoolVar(&c.raw, "raw", false, "Print markdown without terminal styling")
}

func (c *monthCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	view, err := c.view(a.ledger.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	mv, err := a.ledger.MonthView(ctx, view)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	f, err := report.NewFormatter(a.cfg.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	md, err := report.Markdown(mv, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	out, err := report.Render(md, c.width)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}

func (c *monthCmd) view(today core.Date) (summary.ViewState, error) {
	year, month := today.Year(), today.Month()
	if c.month != "" {
		t, err := time.Parse("2006-01", c.month)
		if err != nil {
			return summary.ViewState{}, fmt.Errorf("invalid month %q, want YYYY-MM", c.month)
		}
		year, month = t.Year(), t.Month()
	}
	sort, err := summary.ParseSortMode(c.sort)
	if err != nil {
		return summary.ViewState{}, err
	}
	modes, err := core.ParseModes(c.modes)
	if err != nil {
		return summary.ViewState{}, err
	}
	view := summary.NewViewState(year, month).
		WithCategory(c.category).
		WithModes(modes...).
		WithSort(sort)
	return view, view.Validate()
}
