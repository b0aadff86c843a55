package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/renderer"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and their balances" }
func (*accountsCmd) Usage() string {
	return `bgt accounts

  Lists every account of the configured owner with its current balance and
  the cross-account total.
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (p *accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	s, err := l.Summarize(ctx, owner(), nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.SummaryMarkdown(s, currency()))
	return subcommands.ExitSuccess
}

type addAccountCmd struct {
	name    string
	kind    string
	initial string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "create a new account" }
func (*addAccountCmd) Usage() string {
	return `bgt add-account -name <name> [-kind bank|credit|other] [-initial <amount>]

  Creates an account for the configured owner. The initial balance is the
  balance before the first transaction.
`
}

func (p *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Account name, unique per owner.")
	f.StringVar(&p.kind, "kind", "bank", "Account kind: bank, credit or other.")
	f.StringVar(&p.initial, "initial", "0", "Balance before the first transaction.")
}

func (p *addAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required.")
		return subcommands.ExitUsageError
	}
	kind, err := budgeteer.ParseKind(p.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}
	initial, err := decimal.NewFromString(p.initial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: unparsable initial balance %q\n", p.initial)
		return subcommands.ExitUsageError
	}

	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a := budgeteer.NewAccount(p.name, kind, initial, owner())
	if err := l.CreateAccount(ctx, a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Created %s account %q\n", kind, a.Name)
	return subcommands.ExitSuccess
}

type rmAccountCmd struct {
	name string
}

func (*rmAccountCmd) Name() string     { return "rm-account" }
func (*rmAccountCmd) Synopsis() string { return "delete an account and all its transactions" }
func (*rmAccountCmd) Usage() string {
	return `bgt rm-account -name <name>

  Deletes the named account together with every transaction it owns.
`
}

func (p *rmAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Name of the account to delete.")
}

func (p *rmAccountCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.name == "" {
		fmt.Fprintln(os.Stderr, "Error: -name is required.")
		return subcommands.ExitUsageError
	}
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	a, err := l.AccountByName(ctx, owner(), p.name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := l.DeleteAccount(ctx, a.ID); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted account %q and its transactions\n", p.name)
	return subcommands.ExitSuccess
}
