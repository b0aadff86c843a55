package budgeteer

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// insertTx stores a transaction directly, bypassing the chain; reports only
// read dates, categories and face amounts.
func insertTx(t *testing.T, store *MemStore, a *Account, day date.Date, category string, amount float64) {
	t.Helper()
	tx := &Transaction{
		AccountID:   a.ID,
		Date:        day,
		Description: category,
		Amount:      decimal.NewFromFloat(amount),
		Category:    category,
	}
	if err := store.Insert(context.Background(), tx); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
}

func TestCategoryTotals(t *testing.T) {
	txs := []*Transaction{
		{Category: "Food", Amount: decimal.NewFromInt(-5)},
		{Category: "Food", Amount: decimal.NewFromInt(-10)},
		{Category: "Salary", Amount: decimal.NewFromInt(100)},
	}
	totals := CategoryTotals(txs)
	if !totals["Food"].Equal(decimal.NewFromInt(-15)) {
		t.Errorf("Food = %s, want -15", totals["Food"])
	}
	if !totals["Salary"].Equal(decimal.NewFromInt(100)) {
		t.Errorf("Salary = %s, want 100", totals["Salary"])
	}
}

func TestChartData_SplitsSpentAndIncome(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	march := date.NewMonth(2025, time.March)

	insertTx(t, store, bank, date.New(2025, time.March, 1), "Food", -5)
	insertTx(t, store, bank, date.New(2025, time.March, 2), "Food", -10)
	insertTx(t, store, bank, date.New(2025, time.March, 3), "Salary", 100)
	insertTx(t, store, bank, date.New(2025, time.April, 1), "Food", -99) // outside the month

	chart, err := l.ChartData(context.Background(), []string{bank.ID}, march)
	if err != nil {
		t.Fatalf("ChartData() error = %v", err)
	}
	if !reflect.DeepEqual(chart.Labels, []string{"Mar 2025"}) {
		t.Errorf("Labels = %v, want [Mar 2025]", chart.Labels)
	}
	if len(chart.Datasets) != 2 {
		t.Fatalf("got %d datasets, want Food Spent and Salary Income", len(chart.Datasets))
	}

	spent := chart.Datasets[0]
	if spent.Label != "Food Spent" || *spent.Data[0] != 15 {
		t.Errorf("dataset 0 = %q %v, want Food Spent 15 (magnitude, not sign)", spent.Label, *spent.Data[0])
	}
	income := chart.Datasets[1]
	if income.Label != "Salary Income" || *income.Data[0] != 100 {
		t.Errorf("dataset 1 = %q %v, want Salary Income 100", income.Label, *income.Data[0])
	}
	if spent.BackgroundColor != CategoryColor("Food", 45) {
		t.Errorf("spent color = %q, want the stable category color", spent.BackgroundColor)
	}
}

func TestPredict_FlatMeanForecast(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	target := date.NewMonth(2025, time.April)

	for i, amount := range []float64{100, 150, 50, 100} {
		insertTx(t, store, bank, date.New(2025, time.Month(i+1), 10), "Food", amount)
	}

	f, err := l.Predict(context.Background(), []string{bank.ID}, target)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	wantLabels := []string{"Jan 2025", "Feb 2025", "Mar 2025", "Apr 2025", "May 2025"}
	if !reflect.DeepEqual(f.Labels, wantLabels) {
		t.Errorf("Labels = %v, want %v", f.Labels, wantLabels)
	}
	if len(f.BarDatasets) != 1 || len(f.LineDatasets) != 1 {
		t.Fatalf("got %d bar and %d line datasets, want 1 and 1", len(f.BarDatasets), len(f.LineDatasets))
	}

	line := f.LineDatasets[0]
	if line.Label != "Food Forecast" || line.Type != "line" {
		t.Errorf("line = %q type %q", line.Label, line.Type)
	}
	// Four leading nulls keep the forecast point over the fifth slot.
	for i := 0; i < 4; i++ {
		if line.Data[i] != nil {
			t.Errorf("line.Data[%d] = %v, want nil", i, *line.Data[i])
		}
	}
	if *line.Data[4] != 100 {
		t.Errorf("forecast = %v, want the flat mean 100", *line.Data[4])
	}
	if got, want := f.Std["Food"], math.Sqrt(1250); math.Abs(got-want) > 1e-9 {
		t.Errorf("Std[Food] = %v, want %v (population, divide by n)", got, want)
	}
}

func TestPredict_BackfillsWhenNextMonthHasData(t *testing.T) {
	l, store := newTestLedger(t)
	bank := mustAccount(t, store, "Checking", Bank, 0)
	target := date.NewMonth(2025, time.April)

	insertTx(t, store, bank, date.New(2025, time.March, 10), "Food", 50)
	insertTx(t, store, bank, date.New(2025, time.May, 2), "Food", 80)

	f, err := l.Predict(context.Background(), []string{bank.ID}, target)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if len(f.LineDatasets) != 0 || len(f.Std) != 0 {
		t.Errorf("got %d line datasets and std %v, want none when the next month is real", len(f.LineDatasets), f.Std)
	}
	bar := f.BarDatasets[0]
	if len(bar.Data) != 5 {
		t.Fatalf("bar has %d points, want 5 with the next month backfilled", len(bar.Data))
	}
	if *bar.Data[4] != 80 {
		t.Errorf("backfilled point = %v, want 80", *bar.Data[4])
	}
}

func TestCategoryColor(t *testing.T) {
	a := CategoryColor("Food", 45)
	if a != CategoryColor("Food", 45) {
		t.Error("same category, same lightness must give the same color")
	}
	if a == CategoryColor("Rent", 45) {
		t.Error("distinct categories should hash to distinct hues")
	}
	if a == CategoryColor("Food", 70) {
		t.Error("lightness must show in the color")
	}
}
