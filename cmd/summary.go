package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tvillard/budgeteer/date"
	"github.com/tvillard/budgeteer/renderer"
)

type summaryCmd struct {
	month string
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show account balances and category totals" }
func (*summaryCmd) Usage() string {
	return `bgt summary [-month <MM-YYYY>]

  Shows every account's balance, the cross-account total, and category totals.
  With -month the category totals cover that calendar month only.
`
}

func (p *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.month, "month", "", "Restrict category totals to a calendar month, MM-YYYY.")
}

func (p *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	var r *date.Range
	if p.month != "" {
		m, err := date.ParseMonth(p.month)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		mr := m.Range()
		r = &mr
	}
	s, err := l.Summarize(ctx, owner(), r)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SummaryMarkdown(s, currency()))
	return subcommands.ExitSuccess
}
