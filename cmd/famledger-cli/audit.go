package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"famledger/internal/cli"
	"famledger/internal/storage"
)

type auditCmd struct {
	limit int
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "show recent ledger changes recorded by the worker" }
func (*auditCmd) Usage() string {
	return `famledger-cli audit [-n <limit>]

  Lists the newest entries of the SQLite audit log written by famledger-worker.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of entries to show")
}

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer repo.Close()

	entries, err := repo.ListAudit(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	printAudit(os.Stdout, entries)
	return subcommands.ExitSuccess
}

func printAudit(w io.Writer, entries []storage.AuditEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tEVENT\tMONTHS\tRECORDS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			e.OccurredAt.Local().Format(time.DateTime), e.EventType,
			strings.Join(e.Months, ","), strings.Join(e.RecordIDs, ","))
	}
	_ = tw.Flush()
}
