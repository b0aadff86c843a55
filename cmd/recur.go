package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
)

type recurCmd struct {
	now   string
	every time.Duration
}

func (*recurCmd) Name() string     { return "recur" }
func (*recurCmd) Synopsis() string { return "fire due recurring transactions" }
func (*recurCmd) Usage() string {
	return `bgt recur [-now <date>] [-every <duration>]

  Runs a recurrence pass: every template due on or before the given date
  fires one occurrence and advances. The pass is idempotent, running it twice
  fires nothing new. With -every the command keeps running and repeats the
  pass on that interval until interrupted.
`
}

func (p *recurCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.now, "now", "", "Reference date of the pass, defaults to today.")
	f.DurationVar(&p.every, "every", 0, "Repeat interval; a single pass when zero.")
}

func (p *recurCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if p.every == 0 {
		now := date.Today()
		if p.now != "" {
			if now, err = date.Parse(p.now); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				return subcommands.ExitUsageError
			}
		}
		fired, err := l.RunRecurrencePass(ctx, now)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("Fired %d recurring transactions\n", fired)
		return subcommands.ExitSuccess
	}

	if p.now != "" {
		fmt.Fprintln(os.Stderr, "Error: -now and -every cannot be used together.")
		return subcommands.ExitUsageError
	}
	return p.daemon(ctx, l)
}

// daemon repeats the pass on the interval until SIGINT or SIGTERM.
func (p *recurCmd) daemon(ctx context.Context, l *budgeteer.Ledger) subcommands.ExitStatus {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(p.every)
	defer ticker.Stop()

	run := func() {
		fired, err := l.RunRecurrencePass(ctx, date.Today())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if fired > 0 {
			fmt.Printf("Fired %d recurring transactions\n", fired)
		}
	}

	run()
	for {
		select {
		case <-ticker.C:
			run()
		case <-quit:
			return subcommands.ExitSuccess
		case <-ctx.Done():
			return subcommands.ExitSuccess
		}
	}
}
