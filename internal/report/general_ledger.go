package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

// LedgerRow is one posted line in an account's general ledger.
type LedgerRow struct {
	Date          time.Time       `json:"date"`
	TransactionID string          `json:"transaction_id"`
	Description   string          `json:"description"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
}

// GeneralLedger is the drill-down view of one account over a period.
//
// OpeningBalance is always zero: balances from before the period are not
// carried forward. OpeningBalanceAssumed is set so callers can say so.
type GeneralLedger struct {
	Account               model.Account   `json:"account"`
	Period                ledger.Period   `json:"period"`
	OpeningBalance        decimal.Decimal `json:"opening_balance"`
	OpeningBalanceAssumed bool            `json:"opening_balance_assumed"`
	Rows                  []LedgerRow     `json:"rows"`
	TotalDebit            decimal.Decimal `json:"total_debit"`
	TotalCredit           decimal.Decimal `json:"total_credit"`
	ClosingBalance        decimal.Decimal `json:"closing_balance"`
}

// GeneralLedger lists the posted lines of one account within period in
// date order, each with the running balance after it.
func (s *Service) GeneralLedger(accountID string, period ledger.Period) (GeneralLedger, error) {
	acct, err := s.accounts.Get(accountID)
	if err != nil {
		return GeneralLedger{}, err
	}

	entries, err := s.Entries(period)
	if err != nil {
		return GeneralLedger{}, err
	}

	gl := GeneralLedger{
		Account:               acct,
		Period:                period,
		OpeningBalance:        decimal.Zero,
		OpeningBalanceAssumed: true,
		Rows:                  []LedgerRow{},
		TotalDebit:            decimal.Zero,
		TotalCredit:           decimal.Zero,
		ClosingBalance:        decimal.Zero,
	}

	var lines []model.JournalLine
	for _, e := range entries {
		if e.Account.ID != acct.ID || e.Status != model.StatusPosted || !period.Contains(e.Date) {
			continue
		}
		gl.Rows = append(gl.Rows, LedgerRow{
			Date:          e.Date,
			TransactionID: e.TransactionID,
			Description:   e.Description,
			Debit:         e.Debit,
			Credit:        e.Credit,
		})
		lines = append(lines, model.JournalLine{AccountID: acct.ID, Debit: e.Debit, Credit: e.Credit})
		gl.TotalDebit = gl.TotalDebit.Add(e.Debit)
		gl.TotalCredit = gl.TotalCredit.Add(e.Credit)
	}

	for i, bal := range ledger.RunningBalance(lines, acct.Type) {
		gl.Rows[i].Balance = bal
		gl.ClosingBalance = bal
	}
	return gl, nil
}
