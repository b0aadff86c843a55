package gormstore

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
)

// Dates are stored as ISO strings so lexicographic ordering in SQL matches
// chronological ordering, which keeps the (date, id) index usable for the
// chain queries.

type accountRow struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)"`
	Name           string          `gorm:"index;not null"`
	Kind           int             `gorm:"not null"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0"`
	Owner          string          `gorm:"index;not null"`
}

func (accountRow) TableName() string { return "accounts" }

type transactionRow struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	AccountID   string          `gorm:"index:idx_account_date;type:varchar(36);not null"`
	Date        string          `gorm:"index:idx_account_date;type:varchar(10);not null"`
	Description string          `gorm:"type:text"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Category    string          `gorm:"index"`
	Recurring   bool            `gorm:"not null;default:false"`
	NextDue     *string         `gorm:"type:varchar(10)"`
	Frequency   string          `gorm:"type:varchar(16)"`
}

func (transactionRow) TableName() string { return "transactions" }

func accountToRow(a *budgeteer.Account) accountRow {
	return accountRow{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           int(a.Kind),
		InitialBalance: a.InitialBalance,
		Owner:          a.Owner,
	}
}

func (r accountRow) account() *budgeteer.Account {
	return &budgeteer.Account{
		ID:             r.ID,
		Name:           r.Name,
		Kind:           budgeteer.Kind(r.Kind),
		InitialBalance: r.InitialBalance,
		Owner:          r.Owner,
	}
}

func transactionToRow(t *budgeteer.Transaction) transactionRow {
	row := transactionRow{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Date:        t.Date.String(),
		Description: t.Description,
		Amount:      t.Amount,
		Balance:     t.Balance,
		Category:    t.Category,
		Recurring:   t.Recurring,
		Frequency:   string(t.Frequency),
	}
	if t.NextDue != nil {
		due := t.NextDue.String()
		row.NextDue = &due
	}
	return row
}

func (r transactionRow) transaction() (*budgeteer.Transaction, error) {
	day, err := date.Parse(r.Date)
	if err != nil {
		return nil, fmt.Errorf("transaction %d: corrupt date %q: %w", r.ID, r.Date, err)
	}
	t := &budgeteer.Transaction{
		ID:          r.ID,
		AccountID:   r.AccountID,
		Date:        day,
		Description: r.Description,
		Amount:      r.Amount,
		Balance:     r.Balance,
		Category:    r.Category,
		Recurring:   r.Recurring,
		Frequency:   budgeteer.Frequency(r.Frequency),
	}
	if r.NextDue != nil {
		due, err := date.Parse(*r.NextDue)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: corrupt due date %q: %w", r.ID, *r.NextDue, err)
		}
		t.NextDue = &due
	}
	return t, nil
}
