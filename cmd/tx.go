package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
	"github.com/tvillard/budgeteer/renderer"
)

type addCmd struct {
	account     string
	dateFlag    string
	description string
	amount      string
	category    string
	recurring   bool
	frequency   string
	due         string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "append a transaction to an account" }
func (*addCmd) Usage() string {
	return `bgt add -account <name> -amount <amount> [-date <date>] [-desc <text>] [-category <name>]
        [-recurring [-freq monthly|yearly] [-due <date>]]

  Appends a transaction. The running balance is derived from the account's
  current tail; on credit accounts a positive amount decreases the balance.
  A recurring transaction doubles as a template that fires again when due.
`
}

func (p *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Account to append to.")
	f.StringVar(&p.dateFlag, "date", "", "Transaction date, defaults to today.")
	f.StringVar(&p.description, "desc", "", "Free-form description.")
	f.StringVar(&p.amount, "amount", "", "Face amount; sign convention is independent of the account kind.")
	f.StringVar(&p.category, "category", "", "Category label.")
	f.BoolVar(&p.recurring, "recurring", false, "Mark the transaction as a recurrence template.")
	f.StringVar(&p.frequency, "freq", "monthly", "Recurrence cadence: monthly or yearly.")
	f.StringVar(&p.due, "due", "", "First due date of the template, defaults to one period after -date.")
}

func (p *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.account == "" || p.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -account and -amount are required.")
		return subcommands.ExitUsageError
	}
	amount, err := decimal.NewFromString(p.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unparsable amount %q\n", p.amount)
		return subcommands.ExitUsageError
	}
	day := date.Today()
	if p.dateFlag != "" {
		if day, err = date.Parse(p.dateFlag); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
	}

	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := l.AccountByName(ctx, owner(), p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	t := &budgeteer.Transaction{
		AccountID:   a.ID,
		Date:        day,
		Description: p.description,
		Amount:      amount,
		Category:    p.category,
	}
	if p.recurring {
		freq, err := budgeteer.ParseFrequency(p.frequency)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return subcommands.ExitUsageError
		}
		t.Recurring = true
		t.Frequency = freq
		due := day
		if p.due != "" {
			if due, err = date.Parse(p.due); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return subcommands.ExitUsageError
			}
		} else if next, ok := budgeteer.NextDue(day, freq); ok {
			due = next
		}
		t.NextDue = &due
	}

	if err := l.Append(ctx, t); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Appended transaction %d to %q, balance %s\n",
		t.ID, a.Name, budgeteer.M(t.Balance, currency()))
	return subcommands.ExitSuccess
}

type rmCmd struct {
	id int64
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete a transaction" }
func (*rmCmd) Usage() string {
	return `bgt rm -id <id>

  Deletes a transaction and recomputes the running balances that followed it.
  Deleting an unknown id is a no-op.
`
}

func (p *rmCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&p.id, "id", 0, "Id of the transaction to delete.")
}

func (p *rmCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.id == 0 {
		fmt.Fprintln(os.Stderr, "Error: -id is required.")
		return subcommands.ExitUsageError
	}
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := l.Remove(ctx, p.id); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted transaction %d\n", p.id)
	return subcommands.ExitSuccess
}

type txCmd struct {
	account  string
	month    string
	category string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions" }
func (*txCmd) Usage() string {
	return `bgt tx [-account <name>] [-month <MM-YYYY>] [-category <name>]

  Lists transactions of the configured owner in (date, id) order.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Restrict to one account.")
	f.StringVar(&p.month, "month", "", "Restrict to a calendar month, MM-YYYY.")
	f.StringVar(&p.category, "category", "", "Restrict to one category.")
}

func (p *txCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	filter := budgeteer.Filter{Owner: owner(), Category: p.category}
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

	txs, err := l.Transactions(ctx, filter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	names, err := accountNames(ctx, l)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.TransactionsMarkdown(txs, names, currency()))
	return subcommands.ExitSuccess
}

// accountNames maps the owner's account ids to display names.
func accountNames(ctx context.Context, l *budgeteer.Ledger) (map[string]string, error) {
	balances, err := l.Balances(ctx, owner())
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(balances))
	for _, ab := range balances {
		names[ab.Account.ID] = ab.Account.Name
	}
	return names, nil
}
