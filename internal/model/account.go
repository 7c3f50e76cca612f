package model

import "fmt"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// AccountTypes lists every account type in reporting order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// NormalSide is the side of the ledger on which an account type increases.
type NormalSide int

const (
	DebitNormal NormalSide = iota + 1
	CreditNormal
)

func (s NormalSide) String() string {
	switch s {
	case DebitNormal:
		return "debit"
	case CreditNormal:
		return "credit"
	}
	return fmt.Sprintf("NormalSide(%d)", int(s))
}

// NormalSide returns the side on which balances of type t increase.
// An unknown type panics rather than silently picking a sign; types are
// checked by ParseAccountType at every ingestion boundary.
func (t AccountType) NormalSide() NormalSide {
	//exhaustive:enforce
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return DebitNormal
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return CreditNormal
	}
	panic(fmt.Sprintf("model: unknown account type %q", string(t)))
}

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// ParseAccountType converts s into an AccountType, rejecting unknown values.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Account represents a row in chart-of-accounts.csv.
type Account struct {
	ID       string      `json:"id"`
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Type     AccountType `json:"type"`
	Category string      `json:"category"` // presentation grouping only
	IsActive bool        `json:"is_active"`
}
