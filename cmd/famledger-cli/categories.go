package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"famledger/internal/core"
)

type categoriesCmd struct {
	kind string
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list the active categories" }
func (*categoriesCmd) Usage() string {
	return `famledger-cli categories [-k income|expense]

  Lists active categories in display order.
`
}

func (c *categoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "k", "", "Only list categories of this kind")
}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	kind := core.Kind(c.kind)
	if kind != "" && !kind.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: unknown kind %q\n", c.kind)
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	cats, err := a.res.Catalog.ListCategories(ctx, kind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tNAME\tICON")
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", cat.ID, cat.Kind, cat.Name, cat.Icon)
	}
	_ = tw.Flush()
	return subcommands.ExitSuccess
}
