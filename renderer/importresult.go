package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/tvillard/budgeteer"
)

// ImportMarkdown renders an import outcome, including every skipped row and
// balance warning.
func ImportMarkdown(res *budgeteer.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Import")
	doc.PlainText(fmt.Sprintf("Imported %d transactions, skipped %d.", res.Imported, len(res.Skipped)))

	if len(res.Skipped) > 0 {
		doc.H2("Skipped")
		items := make([]string, 0, len(res.Skipped))
		for _, s := range res.Skipped {
			items = append(items, s.String())
		}
		doc.BulletList(items...)
	}
	if len(res.Warnings) > 0 {
		doc.H2("Warnings")
		doc.BulletList(res.Warnings...)
	}
	return doc.String()
}
