package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
)

type exportCmd struct {
	account string
	month   string
	output  string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export transactions as CSV" }
func (*exportCmd) Usage() string {
	return `bgt export [-account <name>] [-month <MM-YYYY>] [-o <path>]

  Writes transactions as CSV in the ledger's own layout, which imports back
  with recomputed balances. Defaults to stdout.
`
}

func (p *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Restrict to one account.")
	f.StringVar(&p.month, "month", "", "Restrict to a calendar month, MM-YYYY.")
	f.StringVar(&p.output, "o", "", "Output file, stdout when empty.")
}

func (p *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	filter := budgeteer.Filter{Owner: owner()}
	if p.account != "" {
		a, err := l.AccountByName(ctx, owner(), p.account)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		filter.AccountIDs = []string{a.ID}
	}
	if p.month != "" {
		m, err := date.ParseMonth(p.month)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		r := m.Range()
		filter.Range = &r
	}

	var w io.Writer = os.Stdout
	if p.output != "" {
		f, err := os.Create(p.output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		defer f.Close()
		w = f
	}
	if err := l.Export(ctx, w, filter); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
