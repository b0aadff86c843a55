package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tvillard/budgeteer/date"
)

type chartCmd struct {
	account string
	month   string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "emit month chart data as JSON" }
func (*chartCmd) Usage() string {
	return `bgt chart [-account <name>] [-month <MM-YYYY>]

  Emits per-category Spent and Income series for one calendar month, as JSON
  ready for a charting front end. Defaults to the current month.
`
}

func (p *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Restrict to one account.")
	f.StringVar(&p.month, "month", "", "Calendar month, MM-YYYY; defaults to the current one.")
}

func (p *chartCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	month := date.MonthOf(date.Today())
	if p.month != "" {
		if month, err = date.ParseMonth(p.month); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
	}
	ids, err := selectedAccounts(ctx, l, p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	chart, err := l.ChartData(ctx, ids, month)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chart); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
