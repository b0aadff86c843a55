package budgeteer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// exportHeader matches the SchemaSimple import layout, plus the derived
// balance column.
var exportHeader = []string{"Date", "Account", "Description", "Amount", "Balance", "Category"}

// Export writes the selected transactions as CSV, in (date, id) order. The
// output round-trips through ImportSimple (the Balance column is recomputed
// on import).
func (l *Ledger) Export(ctx context.Context, w io.Writer, f Filter) error {
	accounts, err := l.store.Accounts(ctx, f.Owner)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	txs, err := l.store.Transactions(ctx, f)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, t := range txs {
		record := []string{
			t.Date.String(),
			names[t.AccountID],
			t.Description,
			t.Amount.String(),
			t.Balance.String(),
			t.Category,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
