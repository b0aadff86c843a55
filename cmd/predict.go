package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
	"github.com/tvillard/budgeteer/renderer"
)

type predictCmd struct {
	account string
	month   string
	asJSON  bool
}

func (*predictCmd) Name() string     { return "predict" }
func (*predictCmd) Synopsis() string { return "forecast next month's spending per category" }
func (*predictCmd) Usage() string {
	return `bgt predict [-account <name>] [-month <MM-YYYY>] [-json]

  Buckets the trailing four months per category and forecasts the following
  month at the flat mean, unless that month already holds real data, in which
  case the actuals are shown instead.
`
}

func (p *predictCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Restrict to one account.")
	f.StringVar(&p.month, "month", "", "Target month, MM-YYYY; defaults to the current one.")
	f.BoolVar(&p.asJSON, "json", false, "Emit the chart payload as JSON instead of markdown.")
}

func (p *predictCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	target := date.MonthOf(date.Today())
	if p.month != "" {
		if target, err = date.ParseMonth(p.month); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
	}
	ids, err := selectedAccounts(ctx, l, p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	forecast, err := l.Predict(ctx, ids, target)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(forecast); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.ForecastMarkdown(forecast))
	return subcommands.ExitSuccess
}

// selectedAccounts resolves -account into account ids: one id when named,
// every account of the owner otherwise.
func selectedAccounts(ctx context.Context, l *budgeteer.Ledger, name string) ([]string, error) {
	if name != "" {
		a, err := l.AccountByName(ctx, owner(), name)
		if err != nil {
			return nil, err
		}
		return []string{a.ID}, nil
	}
	balances, err := l.Balances(ctx, owner())
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(balances))
	for _, ab := range balances {
		ids = append(ids, ab.Account.ID)
	}
	return ids, nil
}
