package budgeteer

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// MemStore is an in-memory Store. It backs the engine tests and ephemeral
// ledgers; it serializes individual operations with a mutex and relies on
// the single-writer model for pass-level atomicity (Atomically is not a
// rollback boundary).
type MemStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	txs      map[int64]*Transaction
	nextID   int64
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		accounts: map[string]*Account{},
		txs:      map[int64]*Transaction{},
	}
}

var _ Store = (*MemStore)(nil)

func (m *MemStore) Account(_ context.Context, id string) (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MemStore) Accounts(_ context.Context, owner string) ([]*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Account
	for _, a := range m.accounts {
		if owner == "" || a.Owner == owner {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemStore) CreateAccount(_ context.Context, a *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *MemStore) DeleteAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return ErrNotFound
	}
	delete(m.accounts, id)
	for txID, t := range m.txs {
		if t.AccountID == id {
			delete(m.txs, txID)
		}
	}
	return nil
}

func (m *MemStore) UpdateInitialBalance(_ context.Context, id string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.InitialBalance = balance
	return nil
}

func (m *MemStore) Transaction(_ context.Context, id int64) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.txs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemStore) Latest(_ context.Context, accountID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *Transaction
	for _, t := range m.txs {
		if t.AccountID != accountID {
			continue
		}
		if last == nil || Compare(last, t) < 0 {
			last = t
		}
	}
	if last == nil {
		return nil, nil
	}
	cp := *last
	return &cp, nil
}

func (m *MemStore) Insert(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	cp := *t
	m.txs[t.ID] = &cp
	return nil
}

func (m *MemStore) Update(_ context.Context, t *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[t.ID]; !ok {
		return ErrNotFound
	}
	cp := *t
	m.txs[t.ID] = &cp
	return nil
}

func (m *MemStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.txs[id]; !ok {
		return ErrNotFound
	}
	delete(m.txs, id)
	return nil
}

func (m *MemStore) Transactions(_ context.Context, f Filter) ([]*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Transaction
	for _, t := range m.txs {
		if !m.matches(t, f) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	slices.SortFunc(out, Compare)
	return out, nil
}

func (m *MemStore) matches(t *Transaction, f Filter) bool {
	if len(f.AccountIDs) > 0 && !slices.Contains(f.AccountIDs, t.AccountID) {
		return false
	}
	if f.Owner != "" {
		a, ok := m.accounts[t.AccountID]
		if !ok || a.Owner != f.Owner {
			return false
		}
	}
	if f.Range != nil && !f.Range.Contains(t.Date) {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	return true
}

func (m *MemStore) DueTemplates(_ context.Context, now date.Date) ([]*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Transaction
	for _, t := range m.txs {
		if t.Recurring && t.NextDue != nil && !t.NextDue.After(now) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) Atomically(_ context.Context, fn func(Store) error) error {
	return fn(m)
}
