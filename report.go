package budgeteer

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// CategoryTotals sums face amounts per category over the supplied
// transactions. The caller decides the window; no filtering happens here.
func CategoryTotals(txs []*Transaction) map[string]decimal.Decimal {
	totals := map[string]decimal.Decimal{}
	for _, t := range txs {
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	return totals
}

// Dataset is one chart series, shaped for the presentation layer. Nil data
// points marshal as null, which charting front ends treat as gaps.
type Dataset struct {
	Label           string     `json:"label"`
	Data            []*float64 `json:"data"`
	BackgroundColor string     `json:"backgroundColor,omitempty"`
	BorderColor     string     `json:"borderColor,omitempty"`
	Type            string     `json:"type,omitempty"`
}

// ChartData is the month-chart payload: one "<Category> Spent" and one
// "<Category> Income" series per category.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Forecast is the prediction payload: four months of actual bars and, unless
// the following month already has real data, a flat-mean forecast line per
// category with the population standard deviation of the trailing sums.
type Forecast struct {
	Labels       []string           `json:"labels"`
	BarDatasets  []Dataset          `json:"barDatasets"`
	LineDatasets []Dataset          `json:"lineDatasets"`
	Std          map[string]float64 `json:"std"`
}

// ChartData sums face amounts per category within the calendar month,
// splitting each category into a Spent series (negative totals, shown as
// positive magnitudes) and an Income series (positive totals).
func (l *Ledger) ChartData(ctx context.Context, accountIDs []string, month date.Month) (*ChartData, error) {
	r := month.Range()
	txs, err := l.store.Transactions(ctx, Filter{AccountIDs: accountIDs, Range: &r})
	if err != nil {
		return nil, fmt.Errorf("chart data: %w", err)
	}

	spent := map[string]decimal.Decimal{}
	income := map[string]decimal.Decimal{}
	for _, t := range txs {
		if t.Amount.IsNegative() {
			spent[t.Category] = spent[t.Category].Add(t.Amount.Neg())
		} else {
			income[t.Category] = income[t.Category].Add(t.Amount)
		}
	}

	out := &ChartData{Labels: []string{month.Label()}}
	for _, cat := range sortedKeys(spent, income) {
		if v, ok := spent[cat]; ok {
			out.Datasets = append(out.Datasets, Dataset{
				Label:           cat + " Spent",
				Data:            []*float64{fp(v.InexactFloat64())},
				BackgroundColor: CategoryColor(cat, 45),
			})
		}
		if v, ok := income[cat]; ok {
			out.Datasets = append(out.Datasets, Dataset{
				Label:           cat + " Income",
				Data:            []*float64{fp(v.InexactFloat64())},
				BackgroundColor: CategoryColor(cat, 70),
			})
		}
	}
	return out, nil
}

// Predict gathers the trailing four calendar months up to and including the
// target month and buckets face amounts by (month, category). When the
// target's next month already holds real data the bars are backfilled with
// actuals and no forecast is emitted; otherwise each category gets a flat
// forecast point at the mean of its four trailing monthly sums, with the
// population standard deviation reported alongside.
func (l *Ledger) Predict(ctx context.Context, accountIDs []string, target date.Month) (*Forecast, error) {
	months := []date.Month{target.Add(-3), target.Add(-2), target.Add(-1), target}
	next := target.Next()

	r := date.Range{From: months[0].Range().From, To: next.Range().To}
	txs, err := l.store.Transactions(ctx, Filter{AccountIDs: accountIDs, Range: &r})
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	sums := map[date.Month]map[string]decimal.Decimal{}
	categories := map[string]bool{}
	hasNext := false
	for _, t := range txs {
		m := date.MonthOf(t.Date)
		if m == next {
			hasNext = true
		}
		if sums[m] == nil {
			sums[m] = map[string]decimal.Decimal{}
		}
		sums[m][t.Category] = sums[m][t.Category].Add(t.Amount)
		categories[t.Category] = true
	}

	out := &Forecast{Std: map[string]float64{}}
	for _, m := range months {
		out.Labels = append(out.Labels, m.Label())
	}
	out.Labels = append(out.Labels, next.Label())

	var names []string
	for cat := range categories {
		names = append(names, cat)
	}
	sort.Strings(names)

	for _, cat := range names {
		actuals := make([]float64, 0, len(months))
		bar := Dataset{Label: cat, BackgroundColor: CategoryColor(cat, 45)}
		for _, m := range months {
			v := sums[m][cat].InexactFloat64()
			actuals = append(actuals, v)
			bar.Data = append(bar.Data, fp(v))
		}

		if hasNext {
			// The month after the target is already real: backfill it and
			// predict nothing.
			bar.Data = append(bar.Data, fp(sums[next][cat].InexactFloat64()))
			out.BarDatasets = append(out.BarDatasets, bar)
			continue
		}
		out.BarDatasets = append(out.BarDatasets, bar)

		mean, std := meanStd(actuals)
		line := Dataset{
			Label:       cat + " Forecast",
			Type:        "line",
			BorderColor: CategoryColor(cat, 30),
			Data:        []*float64{nil, nil, nil, nil, fp(mean)},
		}
		out.LineDatasets = append(out.LineDatasets, line)
		out.Std[cat] = std
	}
	return out, nil
}

// meanStd returns the mean and population standard deviation (divide by n,
// not n-1) of the values.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// CategoryColor derives a stable color from a hash of the category name, so
// a category renders identically across requests without a stored color
// table. Lightness is a percentage, letting related series share a hue.
func CategoryColor(category string, lightness int) string {
	h := fnv.New32a()
	h.Write([]byte(category))
	return fmt.Sprintf("hsl(%d, 70%%, %d%%)", h.Sum32()%360, lightness)
}

func fp(v float64) *float64 { return &v }

// sortedKeys returns the union of the maps' keys, sorted.
func sortedKeys(ms ...map[string]decimal.Decimal) []string {
	set := map[string]bool{}
	for _, m := range ms {
		for k := range m {
			set[k] = true
		}
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
