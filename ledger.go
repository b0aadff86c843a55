// Package budgeteer implements a personal-finance ledger engine: accounts
// holding chains of transactions whose running balances derive from the
// account's prior balance, a recurring-transaction projector, an import
// reconciler for externally sourced rows, and monthly aggregation with a
// naive forecast.
package budgeteer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// Ledger is the engine facade. All mutations go through it so that the
// balance-chain invariant holds after every operation: ordering an account's
// transactions by (date, id) and replaying effective amounts from the initial
// balance reproduces every stored balance.
type Ledger struct {
	store Store
	log   zerolog.Logger
}

// New creates a ledger engine on top of a store.
func New(store Store, log zerolog.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// NextBalance chains one transaction onto a tail balance. Pure function,
// exact decimal arithmetic; every mutation path funnels through it.
func NextBalance(tail, effective decimal.Decimal) decimal.Decimal {
	return tail.Add(effective)
}

// TailBalance returns the balance of the account's most recent transaction in
// (date, id) order, or its initial balance when it has none.
func (l *Ledger) TailBalance(ctx context.Context, a *Account) (decimal.Decimal, error) {
	last, err := l.store.Latest(ctx, a.ID)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("tail of account %q: %w", a.Name, err)
	}
	if last == nil {
		return a.InitialBalance, nil
	}
	return last.Balance, nil
}

// Append inserts a transaction, computing its balance from the account's
// current tail and the kind-adjusted effective amount. When the transaction
// is dated before the tail the chain is no longer append-at-tail: the new row
// is inserted at its (date, id) position and the account's suffix is
// recomputed from there, in the same atomic step.
func (l *Ledger) Append(ctx context.Context, t *Transaction) error {
	a, err := l.store.Account(ctx, t.AccountID)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	tail, err := l.store.Latest(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}

	if tail == nil || !t.Date.Before(tail.Date) {
		base := a.InitialBalance
		if tail != nil {
			base = tail.Balance
		}
		t.Balance = NextBalance(base, a.Kind.Effective(t.Amount))
		return l.store.Insert(ctx, t)
	}

	// Backfilled transaction: its balance and every later one are set by the
	// suffix replay.
	return l.store.Atomically(ctx, func(s Store) error {
		if err := s.Insert(ctx, t); err != nil {
			return err
		}
		return rechainFrom(ctx, s, a, t.Date, t.ID)
	})
}

// Remove deletes a transaction. Deleting a non-tail transaction recomputes
// the balance of every later transaction of the account by replaying
// effective amounts forward from the new predecessor. Deleting an absent id
// is a no-op.
func (l *Ledger) Remove(ctx context.Context, id int64) error {
	t, err := l.store.Transaction(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	a, err := l.store.Account(ctx, t.AccountID)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return l.store.Atomically(ctx, func(s Store) error {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
		return rechainFrom(ctx, s, a, t.Date, t.ID)
	})
}

// rechainFrom recomputes the stored balance of every transaction of the
// account at or after the (pivotDate, pivotID) position, replaying effective
// amounts forward from the predecessor's balance, or from the initial balance
// when nothing precedes the pivot. Balances before the pivot are trusted as
// stored, so verbatim balances from statement imports are left untouched.
func rechainFrom(ctx context.Context, s Store, a *Account, pivotDate date.Date, pivotID int64) error {
	txs, err := s.Transactions(ctx, Filter{AccountIDs: []string{a.ID}})
	if err != nil {
		return fmt.Errorf("rechain account %q: %w", a.Name, err)
	}
	balance := a.InitialBalance
	for _, t := range txs {
		if t.before(pivotDate, pivotID) {
			balance = t.Balance
			continue
		}
		next := NextBalance(balance, a.Kind.Effective(t.Amount))
		if !t.Balance.Equal(next) {
			t.Balance = next
			if err := s.Update(ctx, t); err != nil {
				return fmt.Errorf("rechain account %q: %w", a.Name, err)
			}
		}
		balance = next
	}
	return nil
}

// CreateAccount persists a new account.
func (l *Ledger) CreateAccount(ctx context.Context, a *Account) error {
	if err := l.store.CreateAccount(ctx, a); err != nil {
		return fmt.Errorf("create account %q: %w", a.Name, err)
	}
	l.log.Info().Str("account", a.Name).Str("kind", a.Kind.String()).Msg("account created")
	return nil
}

// DeleteAccount removes an account and every transaction it owns.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	if err := l.store.DeleteAccount(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

// AccountByName resolves one of an owner's accounts by exact name.
func (l *Ledger) AccountByName(ctx context.Context, owner, name string) (*Account, error) {
	accounts, err := l.store.Accounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Name == name {
			return a, nil
		}
	}
	return nil, fmt.Errorf("no account named %q: %w", name, ErrNotFound)
}

// Transactions runs a filtered, (date, id)-ordered query.
func (l *Ledger) Transactions(ctx context.Context, f Filter) ([]*Transaction, error) {
	return l.store.Transactions(ctx, f)
}

// AccountBalance pairs an account with its tail balance.
type AccountBalance struct {
	Account *Account
	Balance decimal.Decimal
}

// Balances returns the tail balance of every account of an owner.
func (l *Ledger) Balances(ctx context.Context, owner string) ([]AccountBalance, error) {
	accounts, err := l.store.Accounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]AccountBalance, 0, len(accounts))
	for _, a := range accounts {
		b, err := l.TailBalance(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountBalance{Account: a, Balance: b})
	}
	return out, nil
}

// TotalBalance computes the cross-account aggregate on demand: bank and other
// balances add, credit balances subtract.
func (l *Ledger) TotalBalance(ctx context.Context, owner string) (decimal.Decimal, error) {
	balances, err := l.Balances(ctx, owner)
	if err != nil {
		return decimal.Decimal{}, err
	}
	total := decimal.Zero
	for _, ab := range balances {
		total = total.Add(ab.Account.Kind.contribution(ab.Balance))
	}
	return total, nil
}
