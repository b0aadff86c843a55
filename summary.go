package budgeteer

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// Summary is the dashboard view of an owner's ledger: every account's tail
// balance, the cross-account total, and category totals over an optional
// date window.
type Summary struct {
	Owner      string
	Range      *date.Range // nil for all time
	Accounts   []AccountBalance
	Total      decimal.Decimal
	Categories map[string]decimal.Decimal
}

// Summarize builds the dashboard view for an owner.
func (l *Ledger) Summarize(ctx context.Context, owner string, r *date.Range) (*Summary, error) {
	balances, err := l.Balances(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	total := decimal.Zero
	for _, ab := range balances {
		total = total.Add(ab.Account.Kind.contribution(ab.Balance))
	}

	txs, err := l.store.Transactions(ctx, Filter{Owner: owner, Range: r})
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	return &Summary{
		Owner:      owner,
		Range:      r,
		Accounts:   balances,
		Total:      total,
		Categories: CategoryTotals(txs),
	}, nil
}
