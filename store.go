package budgeteer

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// ErrNotFound is returned by a Store when an account or transaction id does
// not exist. Mutations on absent entities are treated as no-ops by the
// engine, not as fatal errors.
var ErrNotFound = errors.New("not found")

// Filter selects transactions for a query. Zero fields are ignored.
type Filter struct {
	Owner      string     // restrict to accounts of this owner
	AccountIDs []string   // restrict to these accounts
	Range      *date.Range // restrict to dates within the range, inclusive
	Category   string     // restrict to this category
}

// Store is the durable collection of accounts and transactions the engine
// runs against. Implementations must return transactions ordered by
// (date ascending, id ascending) and must serialize appends per account:
// two concurrent writers reading the same tail would otherwise both chain
// onto it and corrupt the balance chain. The engine itself performs no
// locking.
type Store interface {
	// Account fetches an account by id, or ErrNotFound.
	Account(ctx context.Context, id string) (*Account, error)
	// Accounts lists all accounts of an owner, ordered by name.
	Accounts(ctx context.Context, owner string) ([]*Account, error)
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, a *Account) error
	// DeleteAccount removes an account and, atomically, every transaction it
	// owns. Deleting an absent account returns ErrNotFound.
	DeleteAccount(ctx context.Context, id string) error
	// UpdateInitialBalance rewrites an account's initial balance. Only the
	// import reconciler calls this, when a checkpoint row is encountered.
	UpdateInitialBalance(ctx context.Context, id string, balance decimal.Decimal) error

	// Transaction fetches a transaction by id, or ErrNotFound.
	Transaction(ctx context.Context, id int64) (*Transaction, error)
	// Latest returns the most recent transaction of an account in (date, id)
	// order, or nil when the account has none.
	Latest(ctx context.Context, accountID string) (*Transaction, error)
	// Insert persists a transaction and assigns its monotonic id.
	Insert(ctx context.Context, t *Transaction) error
	// Update rewrites a previously inserted transaction.
	Update(ctx context.Context, t *Transaction) error
	// Delete removes a transaction by id, or returns ErrNotFound.
	Delete(ctx context.Context, id int64) error
	// Transactions runs a filtered query, ordered by (date, id).
	Transactions(ctx context.Context, f Filter) ([]*Transaction, error)
	// DueTemplates returns the recurring templates with a next-due date on or
	// before now, ordered by id.
	DueTemplates(ctx context.Context, now date.Date) ([]*Transaction, error)

	// Atomically runs fn against a store view whose writes commit together,
	// or not at all on error.
	Atomically(ctx context.Context, fn func(Store) error) error
}
