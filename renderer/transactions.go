package renderer

import (
	"bytes"

	md "github.com/nao1215/markdown"

	"github.com/tvillard/budgeteer"
)

// TransactionsMarkdown renders a transaction listing. accountNames maps
// account ids to display names; unknown ids fall back on the raw id.
func TransactionsMarkdown(txs []*budgeteer.Transaction, accountNames map[string]string, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Transactions")
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		name, ok := accountNames[t.AccountID]
		if !ok {
			name = t.AccountID
		}
		rows = append(rows, []string{
			t.Date.String(),
			name,
			t.Description,
			budgeteer.M(t.Amount, currency).SignedString(),
			budgeteer.M(t.Balance, currency).String(),
			t.Category,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Account", "Description", "Amount", "Balance", "Category"},
		Rows:   rows,
	})
	return doc.String()
}
