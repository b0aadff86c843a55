package budgeteer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money pairs an exact decimal amount with a currency code, for display.
// Arithmetic stays on decimal.Decimal; Money exists at the formatting edge.
type Money struct {
	value decimal.Decimal
	cur   string
}

func M(value decimal.Decimal, currency string) Money {
	return Money{value: value, cur: currency}
}

// currency returns a never-nil currency, falling back on the library default.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// String renders the amount with the currency's own symbol, separators and
// fraction digits.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// SignedString is String with an explicit plus on positive amounts.
func (m Money) SignedString() string {
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) IsNegative() bool { return m.value.IsNegative() }
