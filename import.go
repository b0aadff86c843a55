package budgeteer

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// Schema identifies one of the known import file layouts. Selecting the
// schema from the file name and decoding bytes into rows is the caller's
// job; the reconciler only consumes already-tokenized rows.
type Schema int

const (
	// SchemaSimple is the ledger's own export layout:
	// Date, Account, Description, Amount, Category.
	// Balances are recomputed by chaining each row onto the account's
	// current tail, in file order.
	SchemaSimple Schema = iota
	// SchemaStatement is the bank-statement layout:
	// Date, Bank, Where/When, Money Earn/Spent, Balance, Category.
	// The source supplies authoritative running balances, which are stored
	// verbatim; a row described "Balance" is an initial-balance checkpoint.
	SchemaStatement
)

// CheckpointDescription is the literal marker of a Schema B checkpoint row.
const CheckpointDescription = "Balance"

// SchemaForFile selects the schema from a file extension.
func SchemaForFile(name string) (Schema, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv", ".tsv":
		return SchemaSimple, nil
	case ".xlsx", ".xls":
		return SchemaStatement, nil
	default:
		return 0, fmt.Errorf("no import schema for file %q", name)
	}
}

// simpleColumns are required by SchemaSimple.
var simpleColumns = []string{"Date", "Account", "Description", "Amount", "Category"}

// statementColumns are required by SchemaStatement, with their internal names.
var statementColumns = map[string]string{
	"Date":             "Date",
	"Bank":             "Account",
	"Where/When":       "Description",
	"Money Earn/Spent": "Amount",
	"Balance":          "Balance",
	"Category":         "Category",
}

// Row is one tokenized import row: named string fields.
type Row map[string]string

// Sheet is one tabular unit of an import source. Single-sheet sources (CSV)
// import as one Sheet.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// hasColumns reports whether the sheet carries every required column.
func (s Sheet) hasColumns(required []string) bool {
	have := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		have[c] = true
	}
	for _, c := range required {
		if !have[c] {
			return false
		}
	}
	return true
}

// Skip records one row or sheet excluded from an import, with the reason.
type Skip struct {
	Sheet  string
	Row    int // 1-based position within the sheet, 0 for whole-sheet skips
	Reason string
}

func (s Skip) String() string {
	if s.Row == 0 {
		return fmt.Sprintf("sheet %q: %s", s.Sheet, s.Reason)
	}
	if s.Sheet == "" {
		return fmt.Sprintf("row %d: %s", s.Row, s.Reason)
	}
	return fmt.Sprintf("sheet %q row %d: %s", s.Sheet, s.Row, s.Reason)
}

// Result is the structured outcome of an import. Data-quality problems are
// reported here, never as errors: a batch only fails on store I/O.
type Result struct {
	Imported int
	Skipped  []Skip
	Warnings []string
}

func (r *Result) skip(sheet string, row int, format string, args ...any) {
	r.Skipped = append(r.Skipped, Skip{Sheet: sheet, Row: row, Reason: fmt.Sprintf(format, args...)})
}

// ImportSimple replays SchemaSimple rows through the balance chain, in file
// order: each row resolves its account by exact name among the owner's
// accounts and chains onto that account's current tail, so imported rows
// extend whatever already exists. Rows are never re-sorted.
func (l *Ledger) ImportSimple(ctx context.Context, owner string, sheet Sheet) (*Result, error) {
	res := &Result{}
	if !sheet.hasColumns(simpleColumns) {
		res.skip(sheet.Name, 0, "missing required columns %v", simpleColumns)
		return res, nil
	}

	accounts, err := l.accountsByName(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	// Account tails move as rows are inserted; track them here rather than
	// re-reading the store for every row.
	tails := map[string]decimal.Decimal{}

	err = l.store.Atomically(ctx, func(s Store) error {
		for i, row := range sheet.Rows {
			n := i + 1
			a, ok := accounts[row["Account"]]
			if !ok {
				res.skip(sheet.Name, n, "no account named %q", row["Account"])
				continue
			}
			day, err := date.Parse(row["Date"])
			if err != nil {
				res.skip(sheet.Name, n, "unparsable date %q", row["Date"])
				continue
			}
			amount, err := decimal.NewFromString(row["Amount"])
			if err != nil {
				res.skip(sheet.Name, n, "unparsable amount %q", row["Amount"])
				continue
			}

			tail, ok := tails[a.ID]
			if !ok {
				if tail, err = tailBalance(ctx, s, a); err != nil {
					return err
				}
			}
			t := &Transaction{
				AccountID:   a.ID,
				Date:        day,
				Description: row["Description"],
				Amount:      amount,
				Balance:     NextBalance(tail, a.Kind.Effective(amount)),
				Category:    row["Category"],
			}
			if err := s.Insert(ctx, t); err != nil {
				return err
			}
			tails[a.ID] = t.Balance
			res.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	l.logResult(sheet.Name, res)
	return res, nil
}

// ImportStatement reconciles SchemaStatement sheets. Sheets lacking the
// required columns are skipped wholesale; the remaining sheets are
// concatenated and processed per account name, in file order:
//
//  1. The first row whose description is the checkpoint marker becomes the
//     account's new initial balance and is removed from further processing.
//  2. Every remaining row is stored with the file's own balance verbatim —
//     the chain calculator is not invoked, the source is authoritative.
//     Balances that disagree with the running chain are reported as
//     warnings but persisted unchanged.
//  3. Rows with an unparsable date, amount, or balance are skipped and
//     counted, never fatal to the batch.
func (l *Ledger) ImportStatement(ctx context.Context, owner string, sheets []Sheet) (*Result, error) {
	res := &Result{}

	required := make([]string, 0, len(statementColumns))
	for c := range statementColumns {
		required = append(required, c)
	}

	// Concatenate valid sheets, renaming columns to their internal names and
	// remembering each row's origin for skip reporting.
	type srcRow struct {
		sheet string
		n     int
		row   Row
	}
	var rows []srcRow
	for _, sheet := range sheets {
		if !sheet.hasColumns(required) {
			res.skip(sheet.Name, 0, "missing required columns")
			continue
		}
		for i, raw := range sheet.Rows {
			row := Row{}
			for from, to := range statementColumns {
				row[to] = raw[from]
			}
			rows = append(rows, srcRow{sheet: sheet.Name, n: i + 1, row: row})
		}
	}

	accounts, err := l.accountsByName(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	// Account names in order of first appearance; file order matters, the
	// checkpoint rule depends on it.
	var names []string
	seen := map[string]bool{}
	for _, r := range rows {
		if name := r.row["Account"]; !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	err = l.store.Atomically(ctx, func(s Store) error {
		for _, name := range names {
			a, ok := accounts[name]
			if !ok {
				for _, r := range rows {
					if r.row["Account"] == name {
						res.skip(r.sheet, r.n, "no account named %q", name)
					}
				}
				continue
			}

			checkpointed := false
			var running decimal.Decimal
			haveRunning := false

			for _, r := range rows {
				if r.row["Account"] != name {
					continue
				}
				if !checkpointed && r.row["Description"] == CheckpointDescription {
					checkpointed = true
					balance, err := decimal.NewFromString(r.row["Balance"])
					if err != nil {
						res.skip(r.sheet, r.n, "unparsable checkpoint balance %q", r.row["Balance"])
						continue
					}
					if err := s.UpdateInitialBalance(ctx, a.ID, balance); err != nil {
						return err
					}
					a.InitialBalance = balance
					running, haveRunning = balance, true
					continue
				}

				day, err := date.Parse(r.row["Date"])
				if err != nil {
					res.skip(r.sheet, r.n, "unparsable date %q", r.row["Date"])
					continue
				}
				amount, err := decimal.NewFromString(r.row["Amount"])
				if err != nil {
					res.skip(r.sheet, r.n, "unparsable amount %q", r.row["Amount"])
					continue
				}
				balance, err := decimal.NewFromString(r.row["Balance"])
				if err != nil {
					res.skip(r.sheet, r.n, "unparsable balance %q", r.row["Balance"])
					continue
				}

				if haveRunning {
					if want := running.Add(amount); !want.Equal(balance) {
						res.Warnings = append(res.Warnings, fmt.Sprintf(
							"account %q: balance %s on %s disagrees with running chain %s, keeping the file's value",
							name, balance, day, want))
					}
				}
				running, haveRunning = balance, true

				t := &Transaction{
					AccountID:   a.ID,
					Date:        day,
					Description: r.row["Description"],
					Amount:      amount,
					Balance:     balance,
					Category:    r.row["Category"],
				}
				if err := s.Insert(ctx, t); err != nil {
					return err
				}
				res.Imported++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	l.logResult("statement", res)
	return res, nil
}

// accountsByName indexes an owner's accounts by exact name.
func (l *Ledger) accountsByName(ctx context.Context, owner string) (map[string]*Account, error) {
	accounts, err := l.store.Accounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]*Account, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a
	}
	return byName, nil
}

// tailBalance is TailBalance against an arbitrary store view.
func tailBalance(ctx context.Context, s Store, a *Account) (decimal.Decimal, error) {
	last, err := s.Latest(ctx, a.ID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if last == nil {
		return a.InitialBalance, nil
	}
	return last.Balance, nil
}

func (l *Ledger) logResult(source string, res *Result) {
	l.log.Info().Str("source", source).Int("imported", res.Imported).
		Int("skipped", len(res.Skipped)).Int("warnings", len(res.Warnings)).
		Msg("import finished")
	for _, s := range res.Skipped {
		l.log.Debug().Str("source", source).Msg("skipped " + s.String())
	}
}
