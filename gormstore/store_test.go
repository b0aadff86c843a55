package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func newAccount(t *testing.T, s *Store, name string, kind budgeteer.Kind, initial int64) *budgeteer.Account {
	t.Helper()
	a := budgeteer.NewAccount(name, kind, decimal.NewFromInt(initial), "ann")
	if err := s.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func newTx(a *budgeteer.Account, day date.Date, desc string, amount int64) *budgeteer.Transaction {
	return &budgeteer.Transaction{
		AccountID:   a.ID,
		Date:        day,
		Description: desc,
		Amount:      decimal.NewFromInt(amount),
		Balance:     decimal.NewFromInt(amount),
		Category:    "Misc",
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newAccount(t, s, "Checking", budgeteer.Bank, 100)

	got, err := s.Account(ctx, a.ID)
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	if got.Name != "Checking" || got.Kind != budgeteer.Bank || !got.InitialBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Account() = %+v", got)
	}

	due := date.New(2025, time.April, 1)
	tx := newTx(a, date.New(2025, time.March, 1), "rent", -800)
	tx.Recurring = true
	tx.NextDue = &due
	tx.Frequency = budgeteer.Monthly
	if err := s.Insert(ctx, tx); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if tx.ID == 0 {
		t.Fatal("Insert() did not assign an id")
	}

	back, err := s.Transaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if back.Date != tx.Date || back.Description != "rent" || !back.Amount.Equal(tx.Amount) {
		t.Errorf("Transaction() = %+v", back)
	}
	if !back.Recurring || back.NextDue == nil || *back.NextDue != due || back.Frequency != budgeteer.Monthly {
		t.Errorf("template fields did not survive: %+v", back)
	}
}

func TestStore_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Account(ctx, "nope"); !errors.Is(err, budgeteer.ErrNotFound) {
		t.Errorf("Account(absent) error = %v, want ErrNotFound", err)
	}
	if _, err := s.Transaction(ctx, 404); !errors.Is(err, budgeteer.ErrNotFound) {
		t.Errorf("Transaction(absent) error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, 404); !errors.Is(err, budgeteer.ErrNotFound) {
		t.Errorf("Delete(absent) error = %v, want ErrNotFound", err)
	}
	if err := s.DeleteAccount(ctx, "nope"); !errors.Is(err, budgeteer.ErrNotFound) {
		t.Errorf("DeleteAccount(absent) error = %v, want ErrNotFound", err)
	}
}

func TestStore_TransactionsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newAccount(t, s, "Checking", budgeteer.Bank, 0)

	// Inserted out of date order; queries come back in (date, id) order.
	for _, tx := range []*budgeteer.Transaction{
		newTx(a, date.New(2025, time.March, 10), "third", 3),
		newTx(a, date.New(2025, time.March, 1), "first", 1),
		newTx(a, date.New(2025, time.March, 1), "second", 2),
	} {
		if err := s.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	txs, err := s.Transactions(ctx, budgeteer.Filter{AccountIDs: []string{a.ID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, w := range want {
		if txs[i].Description != w {
			t.Errorf("position %d holds %q, want %q", i, txs[i].Description, w)
		}
	}

	last, err := s.Latest(ctx, a.ID)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if last.Description != "third" {
		t.Errorf("Latest() = %q, want third", last.Description)
	}
}

func TestStore_LatestEmptyAccount(t *testing.T) {
	s := newTestStore(t)
	a := newAccount(t, s, "Checking", budgeteer.Bank, 0)
	last, err := s.Latest(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if last != nil {
		t.Errorf("Latest(empty) = %+v, want nil", last)
	}
}

func TestStore_FilterByOwnerAndRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mine := newAccount(t, s, "Checking", budgeteer.Bank, 0)

	other := budgeteer.NewAccount("Theirs", budgeteer.Bank, decimal.Zero, "bob")
	if err := s.CreateAccount(ctx, other); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}

	s.Insert(ctx, newTx(mine, date.New(2025, time.February, 28), "early", 1))
	s.Insert(ctx, newTx(mine, date.New(2025, time.March, 15), "inside", 2))
	s.Insert(ctx, newTx(other, date.New(2025, time.March, 15), "foreign", 3))

	r := date.NewMonth(2025, time.March).Range()
	txs, err := s.Transactions(ctx, budgeteer.Filter{Owner: "ann", Range: &r})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txs) != 1 || txs[0].Description != "inside" {
		t.Errorf("got %d transactions, want only the owner's in-range one", len(txs))
	}
}

func TestStore_DueTemplates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newAccount(t, s, "Checking", budgeteer.Bank, 0)

	mk := func(desc string, due *date.Date) {
		tx := newTx(a, date.New(2025, time.January, 1), desc, -10)
		tx.Recurring = due != nil
		tx.NextDue = due
		tx.Frequency = budgeteer.Monthly
		if err := s.Insert(ctx, tx); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	past := date.New(2025, time.March, 1)
	today := date.New(2025, time.March, 15)
	future := date.New(2025, time.April, 1)
	mk("past", &past)
	mk("today", &today)
	mk("future", &future)
	mk("plain", nil)

	due, err := s.DueTemplates(ctx, today)
	if err != nil {
		t.Fatalf("DueTemplates() error = %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due templates, want past and today", len(due))
	}
	if due[0].Description != "past" || due[1].Description != "today" {
		t.Errorf("due = [%q, %q]", due[0].Description, due[1].Description)
	}
}

func TestStore_AtomicallyRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newAccount(t, s, "Checking", budgeteer.Bank, 0)

	boom := errors.New("boom")
	err := s.Atomically(ctx, func(view budgeteer.Store) error {
		if err := view.Insert(ctx, newTx(a, date.New(2025, time.March, 1), "doomed", 1)); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Atomically() error = %v, want boom", err)
	}
	txs, _ := s.Transactions(ctx, budgeteer.Filter{AccountIDs: []string{a.ID}})
	if len(txs) != 0 {
		t.Errorf("rollback left %d transactions behind", len(txs))
	}
}

func TestStore_DeleteAccountCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newAccount(t, s, "Checking", budgeteer.Bank, 0)
	s.Insert(ctx, newTx(a, date.New(2025, time.March, 1), "x", 1))

	if err := s.DeleteAccount(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	txs, _ := s.Transactions(ctx, budgeteer.Filter{AccountIDs: []string{a.ID}})
	if len(txs) != 0 {
		t.Errorf("%d orphaned transactions survived the cascade", len(txs))
	}
}

// The engine drives the durable store the same way it drives the in-memory
// one; a chain built here must replay cleanly.
func TestStore_EngineChain(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	l := budgeteer.New(s, zerolog.Nop())
	a := newAccount(t, s, "Checking", budgeteer.Bank, 10)

	for i, amount := range []int64{100, -20, 5} {
		tx := &budgeteer.Transaction{
			AccountID:   a.ID,
			Date:        date.New(2025, time.March, i+1),
			Description: "tx",
			Amount:      decimal.NewFromInt(amount),
			Category:    "Misc",
		}
		if err := l.Append(ctx, tx); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	txs, err := s.Transactions(ctx, budgeteer.Filter{AccountIDs: []string{a.ID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	for i, want := range []int64{110, 90, 95} {
		if !txs[i].Balance.Equal(decimal.NewFromInt(want)) {
			t.Errorf("balance[%d] = %s, want %d", i, txs[i].Balance, want)
		}
	}
}
