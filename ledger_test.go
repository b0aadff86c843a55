package budgeteer

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

func newTestLedger(t *testing.T) (*Ledger, *MemStore) {
	t.Helper()
	store := NewMemStore()
	return New(store, zerolog.Nop()), store
}

func mustAccount(t *testing.T, store *MemStore, name string, kind Kind, initial float64) *Account {
	t.Helper()
	a := NewAccount(name, kind, decimal.NewFromFloat(initial), "ann")
	if err := store.CreateAccount(context.Background(), a); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return a
}

func mustAppend(t *testing.T, l *Ledger, a *Account, day date.Date, desc string, amount float64) *Transaction {
	t.Helper()
	tx := &Transaction{
		AccountID:   a.ID,
		Date:        day,
		Description: desc,
		Amount:      decimal.NewFromFloat(amount),
		Category:    "Misc",
	}
	if err := l.Append(context.Background(), tx); err != nil {
		t.Fatalf("Append(%s, %v) error = %v", desc, amount, err)
	}
	return tx
}

// checkChain replays the account's (date, id)-ordered transactions from the
// initial balance and verifies every stored balance.
func checkChain(t *testing.T, l *Ledger, store *MemStore, accountID string) {
	t.Helper()
	ctx := context.Background()
	a, err := store.Account(ctx, accountID)
	if err != nil {
		t.Fatalf("Account() error = %v", err)
	}
	txs, err := store.Transactions(ctx, Filter{AccountIDs: []string{accountID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	balance := a.InitialBalance
	for _, tx := range txs {
		balance = NextBalance(balance, a.Kind.Effective(tx.Amount))
		if !tx.Balance.Equal(balance) {
			t.Errorf("transaction %d (%s): stored balance %s, replay gives %s",
				tx.ID, tx.Description, tx.Balance, balance)
		}
	}
}

func TestLedger_AppendChainsBalances(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	day := date.New(2025, time.March, 1)

	tx1 := mustAppend(t, l, bank, day, "salary", 10)
	tx2 := mustAppend(t, l, bank, day.Add(1), "groceries", 20)
	tx3 := mustAppend(t, l, bank, day.Add(2), "coffee", -5)

	for i, want := range []float64{10, 30, 25} {
		tx := []*Transaction{tx1, tx2, tx3}[i]
		if !tx.Balance.Equal(decimal.NewFromFloat(want)) {
			t.Errorf("balance[%d] = %s, want %v", i, tx.Balance, want)
		}
	}
	checkChain(t, l, store, bank.ID)
}

func TestLedger_CreditSignInversion(t *testing.T) {
	l, store := newTestLedger(t)
	credit := mustAccount(t, store, "Visa", Credit, 100)

	tx := mustAppend(t, l, credit, date.New(2025, time.March, 1), "dinner", 30)

	// The user enters a positive amount; the stored balance reflects the
	// inverted effective amount, the face value stays untouched.
	if !tx.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("Amount = %s, want 30", tx.Amount)
	}
	if !tx.Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Balance = %s, want 70", tx.Balance)
	}
}

func TestLedger_RemoveRecomputesSuffix(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	day := date.New(2025, time.March, 1)

	mustAppend(t, l, bank, day, "a", 10)
	middle := mustAppend(t, l, bank, day.Add(1), "b", 20)
	mustAppend(t, l, bank, day.Add(2), "c", -5)

	if err := l.Remove(context.Background(), middle.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	txs, err := store.Transactions(context.Background(), Filter{AccountIDs: []string{bank.ID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2", len(txs))
	}
	for i, want := range []float64{10, 5} {
		if !txs[i].Balance.Equal(decimal.NewFromFloat(want)) {
			t.Errorf("balance[%d] = %s, want %v", i, txs[i].Balance, want)
		}
	}
	checkChain(t, l, store, bank.ID)
}

func TestLedger_RemoveAbsentIsNoOp(t *testing.T) {
	l, _ := newTestLedger(t)
	if err := l.Remove(context.Background(), 404); err != nil {
		t.Errorf("Remove(absent) error = %v, want nil", err)
	}
}

func TestLedger_BackfilledAppendRechains(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)

	mustAppend(t, l, bank, date.New(2025, time.March, 10), "later", 100)
	mustAppend(t, l, bank, date.New(2025, time.March, 1), "backfilled", 40)

	txs, err := store.Transactions(context.Background(), Filter{AccountIDs: []string{bank.ID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if txs[0].Description != "backfilled" {
		t.Fatalf("order: first transaction is %q, want the backfilled one", txs[0].Description)
	}
	for i, want := range []float64{40, 140} {
		if !txs[i].Balance.Equal(decimal.NewFromFloat(want)) {
			t.Errorf("balance[%d] = %s, want %v", i, txs[i].Balance, want)
		}
	}
	checkChain(t, l, store, bank.ID)
}

func TestLedger_SameDayOrderByInsertion(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	day := date.New(2025, time.March, 1)

	mustAppend(t, l, bank, day, "first", 1)
	mustAppend(t, l, bank, day, "second", 2)
	mustAppend(t, l, bank, day, "third", 3)

	txs, _ := store.Transactions(context.Background(), Filter{AccountIDs: []string{bank.ID}})
	for i, want := range []string{"first", "second", "third"} {
		if txs[i].Description != want {
			t.Errorf("position %d holds %q, want %q", i, txs[i].Description, want)
		}
	}
	checkChain(t, l, store, bank.ID)
}

func TestLedger_TotalBalance(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	credit := mustAccount(t, store, "Visa", Credit, 0)
	mustAccount(t, store, "Wallet", Other, 15)

	mustAppend(t, l, bank, date.New(2025, time.March, 1), "salary", 100)
	mustAppend(t, l, credit, date.New(2025, time.March, 2), "dinner", 30) // credit balance -30

	total, err := l.TotalBalance(context.Background(), "ann")
	if err != nil {
		t.Fatalf("TotalBalance() error = %v", err)
	}
	// 100 (bank) - (-30) (credit, subtracted) + 15 (other, from initial balance)
	if want := decimal.NewFromInt(145); !total.Equal(want) {
		t.Errorf("TotalBalance() = %s, want %s", total, want)
	}
}

func TestLedger_DeleteAccountCascades(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	mustAppend(t, l, bank, date.New(2025, time.March, 1), "salary", 100)

	if err := store.DeleteAccount(context.Background(), bank.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	txs, err := store.Transactions(context.Background(), Filter{AccountIDs: []string{bank.ID}})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("got %d orphaned transactions, want 0", len(txs))
	}
}
