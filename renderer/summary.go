// Package renderer turns engine views into markdown, ready for terminal
// rendering or plain printing.
package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/tvillard/budgeteer"
)

// SummaryMarkdown renders the dashboard view.
func SummaryMarkdown(s *budgeteer.Summary, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Budget Summary for %s", s.Owner))
	if s.Range != nil {
		doc.PlainText(fmt.Sprintf("From %s to %s", s.Range.From, s.Range.To))
	}

	doc.H2("Accounts")
	rows := make([][]string, 0, len(s.Accounts))
	for _, ab := range s.Accounts {
		rows = append(rows, []string{
			ab.Account.Name,
			ab.Account.Kind.String(),
			budgeteer.M(ab.Balance, currency).String(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Account", "Kind", "Balance"},
		Rows:   rows,
	})
	doc.PlainText(fmt.Sprintf("Total: %s", budgeteer.M(s.Total, currency)))

	if len(s.Categories) > 0 {
		doc.H2("Categories")
		catRows := make([][]string, 0, len(s.Categories))
		for _, cat := range sortedCategories(s.Categories) {
			catRows = append(catRows, []string{cat, budgeteer.M(s.Categories[cat], currency).SignedString()})
		}
		doc.Table(md.TableSet{
			Header: []string{"Category", "Net"},
			Rows:   catRows,
		})
	}

	return doc.String()
}
