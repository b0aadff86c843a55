package budgeteer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies an account and decides how a transaction's face amount
// contributes to the account balance.
type Kind int

const (
	// Bank is a regular asset account: positive amounts increase the balance.
	Bank Kind = iota
	// Credit is a liability account: the user enters spend as a positive
	// amount, which decreases the available balance.
	Credit
	// Other behaves like Bank.
	Other
)

func (k Kind) String() string {
	switch k {
	case Bank:
		return "bank"
	case Credit:
		return "credit"
	default:
		return "other"
	}
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bank":
		return Bank, nil
	case "credit":
		return Credit, nil
	case "other":
		return Other, nil
	default:
		return 0, fmt.Errorf("unknown account kind: %q", s)
	}
}

// Effective returns the signed contribution of a face amount to the balance
// of an account of this kind. The inversion for credit accounts is applied
// once, when a transaction enters the chain; the face amount itself is never
// rewritten.
func (k Kind) Effective(amount decimal.Decimal) decimal.Decimal {
	if k == Credit {
		return amount.Neg()
	}
	return amount
}

// Account is a container of transactions owned by a single user.
//
// InitialBalance is the balance before the first transaction. It is set at
// creation and only ever rewritten by a statement import that carries a
// checkpoint row for this account.
type Account struct {
	ID             string
	Name           string
	Kind           Kind
	InitialBalance decimal.Decimal
	Owner          string
}

// NewAccount creates an account with a fresh opaque identity.
func NewAccount(name string, kind Kind, initial decimal.Decimal, owner string) *Account {
	return &Account{
		ID:             uuid.NewString(),
		Name:           name,
		Kind:           kind,
		InitialBalance: initial,
		Owner:          owner,
	}
}

// contribution returns the account balance's signed share of the cross-account
// total: bank and other accounts add, credit accounts subtract.
func (k Kind) contribution(balance decimal.Decimal) decimal.Decimal {
	if k == Credit {
		return balance.Neg()
	}
	return balance
}
