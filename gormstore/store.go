// Package gormstore persists the ledger in SQLite through GORM. It is the
// durable Store implementation behind the CLI; the schema is migrated in
// place on open.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/date"
)

// Store implements budgeteer.Store on a GORM connection.
type Store struct {
	db *gorm.DB
}

var _ budgeteer.Store = (*Store)(nil)

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&accountRow{}, &transactionRow{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// notFound maps GORM's sentinel to the engine's.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return budgeteer.ErrNotFound
	}
	return err
}

func (s *Store) Account(ctx context.Context, id string) (*budgeteer.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.account(), nil
}

func (s *Store) Accounts(ctx context.Context, owner string) ([]*budgeteer.Account, error) {
	q := s.db.WithContext(ctx).Order("name")
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	var rows []accountRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*budgeteer.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.account())
	}
	return out, nil
}

func (s *Store) CreateAccount(ctx context.Context, a *budgeteer.Account) error {
	row := accountToRow(a)
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&accountRow{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return budgeteer.ErrNotFound
		}
		return tx.Delete(&transactionRow{}, "account_id = ?", id).Error
	})
}

func (s *Store) UpdateInitialBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("id = ?", id).
		Update("initial_balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return budgeteer.ErrNotFound
	}
	return nil
}

func (s *Store) Transaction(ctx context.Context, id int64) (*budgeteer.Transaction, error) {
	var row transactionRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.transaction()
}

func (s *Store) Latest(ctx context.Context, accountID string) (*budgeteer.Transaction, error) {
	var row transactionRow
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).
		Order("date DESC, id DESC").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.transaction()
}

func (s *Store) Insert(ctx context.Context, t *budgeteer.Transaction) error {
	row := transactionToRow(t)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	t.ID = row.ID
	return nil
}

func (s *Store) Update(ctx context.Context, t *budgeteer.Transaction) error {
	row := transactionToRow(t)
	res := s.db.WithContext(ctx).Model(&transactionRow{}).Where("id = ?", t.ID).
		Select("*").Omit("id").Updates(row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return budgeteer.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&transactionRow{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return budgeteer.ErrNotFound
	}
	return nil
}

func (s *Store) Transactions(ctx context.Context, f budgeteer.Filter) ([]*budgeteer.Transaction, error) {
	q := s.db.WithContext(ctx).Order("date, id")
	if len(f.AccountIDs) > 0 {
		q = q.Where("account_id IN ?", f.AccountIDs)
	}
	if f.Owner != "" {
		sub := s.db.Model(&accountRow{}).Select("id").Where("owner = ?", f.Owner)
		q = q.Where("account_id IN (?)", sub)
	}
	if f.Range != nil {
		q = q.Where("date >= ? AND date <= ?", f.Range.From.String(), f.Range.To.String())
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var rows []transactionRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*budgeteer.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) DueTemplates(ctx context.Context, now date.Date) ([]*budgeteer.Transaction, error) {
	var rows []transactionRow
	err := s.db.WithContext(ctx).
		Where("recurring AND next_due IS NOT NULL AND next_due <= ?", now.String()).
		Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*budgeteer.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := r.transaction()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Atomically wraps fn in a database transaction; every Store call made on the
// view commits together or rolls back on error.
func (s *Store) Atomically(ctx context.Context, fn func(budgeteer.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
