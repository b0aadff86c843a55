package budgeteer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tvillard/budgeteer/date"
)

// Frequency is the cadence of a recurring transaction template.
type Frequency string

const (
	// Monthly fires on the same day of month, clamped to month length.
	Monthly Frequency = "monthly"
	// Yearly fires on the same month and day one year later.
	Yearly Frequency = "yearly"
	// None marks a transaction that does not recur.
	None Frequency = ""
)

// ParseFrequency parses a string into a Frequency. The empty string is None.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monthly":
		return Monthly, nil
	case "yearly":
		return Yearly, nil
	case "":
		return None, nil
	default:
		return None, fmt.Errorf("unknown frequency: %q", s)
	}
}

// Transaction is one ledger entry of an account.
//
// Amount is the face value entered by the user; its sign convention is
// independent of the account kind. Balance is the running balance after this
// transaction and is always derived, never edited directly.
//
// A transaction with Recurring set doubles as a recurrence template: NextDue
// is the date at which the next occurrence fires. A nil NextDue on a
// recurring transaction is a dormant template that never fires again.
type Transaction struct {
	ID          int64 // monotonic, assigned by the store on insert
	AccountID   string
	Date        date.Date
	Description string
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Category    string

	Recurring bool
	NextDue   *date.Date
	Frequency Frequency
}

// Compare orders transactions by (date, id). The insertion-ordered id breaks
// same-date ties, giving every account a stable total order.
func Compare(a, b *Transaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// before reports whether t is strictly before the (date, id) position.
func (t *Transaction) before(d date.Date, id int64) bool {
	if c := t.Date.Compare(d); c != 0 {
		return c < 0
	}
	return t.ID < id
}
