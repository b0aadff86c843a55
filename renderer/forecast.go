package renderer

import (
	"bytes"
	"fmt"

	md "github.com/nao1215/markdown"

	"github.com/tvillard/budgeteer"
)

// ForecastMarkdown renders the prediction payload as one row per category:
// the trailing monthly sums, then either the backfilled actual or the flat
// forecast for the final month.
func ForecastMarkdown(f *budgeteer.Forecast) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Forecast")

	forecasts := map[string]*float64{}
	for _, line := range f.LineDatasets {
		if n := len(line.Data); n > 0 {
			// The forecast point sits in the last slot, after the nulls.
			forecasts[trimSuffix(line.Label)] = line.Data[n-1]
		}
	}

	header := append([]string{"Category"}, f.Labels...)
	if len(f.Std) > 0 {
		header = append(header, "Std Dev")
	}

	rows := make([][]string, 0, len(f.BarDatasets))
	for _, bar := range f.BarDatasets {
		row := []string{bar.Label}
		for _, v := range bar.Data {
			row = append(row, point(v))
		}
		// When a forecast line exists the bars stop one month short; the
		// category's final cell holds the predicted mean instead.
		if fc, ok := forecasts[bar.Label]; ok {
			row = append(row, point(fc))
		}
		if len(f.Std) > 0 {
			row = append(row, fmt.Sprintf("%.2f", f.Std[bar.Label]))
		}
		rows = append(rows, row)
	}
	doc.Table(md.TableSet{Header: header, Rows: rows})

	if len(f.Std) > 0 {
		doc.PlainText("The last column forecasts the flat mean of the trailing months.")
	}
	return doc.String()
}

func point(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// trimSuffix strips the " Forecast" marker off a line dataset label.
func trimSuffix(label string) string {
	const suffix = " Forecast"
	if len(label) > len(suffix) && label[len(label)-len(suffix):] == suffix {
		return label[:len(label)-len(suffix)]
	}
	return label
}
