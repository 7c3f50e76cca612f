// Package report joins the journal with the chart of accounts and feeds the
// result to the ledger engine. Every report is aggregated from raw journal
// lines on each call.
package report

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/minesupport/bookkeeper/internal/journal"
	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

// Transactions lists stored transactions.
type Transactions interface {
	List(f journal.Filter) ([]model.Transaction, error)
}

// Service builds reports for a book.
type Service struct {
	accounts ledger.AccountLookup
	journal  Transactions
	log      zerolog.Logger
}

// NewService creates a report Service.
func NewService(accounts ledger.AccountLookup, txns Transactions, log zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		journal:  txns,
		log:      log.With().Str("component", "report").Logger(),
	}
}

// Entries returns every line dated within period joined with its
// transaction and account. Drafts are included; the engine drops them. A
// line whose account is unknown fails the whole call.
func (s *Service) Entries(period ledger.Period) ([]ledger.Entry, error) {
	txns, err := s.journal.List(journal.Filter{Period: &period})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	entries, err := ledger.Join(txns, s.accounts)
	if err != nil {
		return nil, fmt.Errorf("joining journal with accounts: %w", err)
	}
	return entries, nil
}

// Balances returns the posted account balances for period.
func (s *Service) Balances(period ledger.Period) ([]model.AccountBalance, error) {
	entries, err := s.Entries(period)
	if err != nil {
		return nil, err
	}
	return ledger.ComputeAccountBalances(entries, period), nil
}

// TrialBalance returns the trial balance for period.
func (s *Service) TrialBalance(period ledger.Period) (ledger.TrialBalance, error) {
	balances, err := s.Balances(period)
	if err != nil {
		return ledger.TrialBalance{}, err
	}
	tb := ledger.ComputeTrialBalance(balances)
	if !tb.IsBalanced {
		s.log.Warn().
			Stringer("period", period).
			Str("debit", tb.TotalDebit.StringFixed(2)).
			Str("credit", tb.TotalCredit.StringFixed(2)).
			Msg("trial balance does not balance")
	}
	return tb, nil
}

// IncomeStatement returns profit and loss for period.
func (s *Service) IncomeStatement(period ledger.Period) (ledger.IncomeStatement, error) {
	balances, err := s.Balances(period)
	if err != nil {
		return ledger.IncomeStatement{}, err
	}
	return ledger.ComputeIncomeStatement(balances), nil
}

// BalanceSheet returns the balance sheet for period. An unbalanced sheet
// is returned normally and logged at warn level.
func (s *Service) BalanceSheet(period ledger.Period) (ledger.BalanceSheet, error) {
	balances, err := s.Balances(period)
	if err != nil {
		return ledger.BalanceSheet{}, err
	}
	bs := ledger.ComputeBalanceSheet(balances)
	if !bs.IsBalanced {
		s.log.Warn().
			Stringer("period", period).
			Str("difference", bs.Difference.StringFixed(2)).
			Msg("balance sheet does not balance")
	}
	return bs, nil
}

// Summary returns the monthly dashboard figures for a calendar year.
func (s *Service) Summary(year int) (ledger.MonthlySummary, error) {
	entries, err := s.Entries(ledger.Year(year))
	if err != nil {
		return ledger.MonthlySummary{}, err
	}
	return ledger.ComputeMonthlySummary(entries, year), nil
}
