package cmd

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/subcommands"
	"github.com/xuri/excelize/v2"

	"github.com/tvillard/budgeteer"
	"github.com/tvillard/budgeteer/renderer"
)

type importCmd struct {
	file string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import transactions from a CSV export or an XLSX statement" }
func (*importCmd) Usage() string {
	return `bgt import -file <path>

  Imports transactions. CSV and TSV files use the ledger's own export layout
  and have their balances recomputed; XLSX statements carry authoritative
  balances, stored verbatim, and a row described "Balance" sets the account's
  initial balance. Rows that cannot be parsed are skipped and reported.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.file, "file", "", "File to import.")
}

func (p *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.file == "" {
		fmt.Fprintln(os.Stderr, "Error: -file is required.")
		return subcommands.ExitUsageError
	}
	schema, err := budgeteer.SchemaForFile(p.file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	l, err := openLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	var res *budgeteer.Result
	switch schema {
	case budgeteer.SchemaSimple:
		sheet, err := readCSV(p.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		res, err = l.ImportSimple(ctx, owner(), sheet)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	case budgeteer.SchemaStatement:
		sheets, err := readXLSX(p.file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		res, err = l.ImportStatement(ctx, owner(), sheets)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(renderer.ImportMarkdown(res))
	return subcommands.ExitSuccess
}

// readCSV tokenizes a CSV or TSV file into a single sheet; the first record
// names the columns.
func readCSV(file string) (budgeteer.Sheet, error) {
	f, err := os.Open(file)
	if err != nil {
		return budgeteer.Sheet{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if strings.EqualFold(path.Ext(file), ".tsv") {
		r.Comma = '\t'
	}
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return budgeteer.Sheet{}, fmt.Errorf("reading %s: %w", file, err)
	}
	if len(records) == 0 {
		return budgeteer.Sheet{Name: path.Base(file)}, nil
	}
	return makeSheet(path.Base(file), records[0], records[1:]), nil
}

// readXLSX tokenizes every sheet of a workbook; each sheet's first row names
// its columns.
func readXLSX(file string) ([]budgeteer.Sheet, error) {
	wb, err := excelize.OpenFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}
	defer wb.Close()

	var sheets []budgeteer.Sheet
	for _, name := range wb.GetSheetList() {
		records, err := wb.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading %s sheet %q: %w", file, name, err)
		}
		if len(records) == 0 {
			sheets = append(sheets, budgeteer.Sheet{Name: name})
			continue
		}
		sheets = append(sheets, makeSheet(name, records[0], records[1:]))
	}
	return sheets, nil
}

func makeSheet(name string, header []string, records [][]string) budgeteer.Sheet {
	columns := make([]string, len(header))
	for i, c := range header {
		columns[i] = strings.TrimSpace(c)
	}
	sheet := budgeteer.Sheet{Name: name, Columns: columns}
	for _, rec := range records {
		row := budgeteer.Row{}
		for i, c := range columns {
			if i < len(rec) {
				row[c] = strings.TrimSpace(rec[i])
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet
}
