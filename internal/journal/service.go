// Package journal stores transactions as monthly journal.csv files and
// enforces the DRAFT to POSTED lifecycle.
package journal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

var (
	// ErrAlreadyPosted is returned when posting a transaction twice.
	ErrAlreadyPosted = errors.New("transaction is already posted")
	// ErrNotDraft is returned when editing or deleting a posted transaction.
	ErrNotDraft = errors.New("only draft transactions can be changed")
	// ErrMonthChanged is returned when an edit moves a transaction out of
	// the month its id was issued for.
	ErrMonthChanged = errors.New("transaction date must stay in its month")
)

// Filter selects transactions for List. Zero values match everything.
type Filter struct {
	Period   *ledger.Period
	Statuses []model.TransactionStatus
}

func (f Filter) match(txn model.Transaction) bool {
	if f.Period != nil && !f.Period.Contains(txn.Date) {
		return false
	}
	return len(f.Statuses) == 0 || slices.Contains(f.Statuses, txn.Status)
}

// Service provides business logic for journal transactions.
type Service struct {
	repoRoot string
	accounts AccountDirectory
	log      zerolog.Logger
}

// NewService creates a journal Service.
func NewService(repoRoot string, accounts AccountDirectory, log zerolog.Logger) *Service {
	return &Service{
		repoRoot: repoRoot,
		accounts: accounts,
		log:      log.With().Str("component", "journal").Logger(),
	}
}

// Create validates in and stores it as a new DRAFT transaction.
func (s *Service) Create(in Input) (model.Transaction, error) {
	if err := ValidateInput(in, s.accounts); err != nil {
		return model.Transaction{}, err
	}

	date := in.Date.UTC()
	year, month := date.Year(), int(date.Month())

	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		ID:          FormatTransactionID(year, month, nextSeq(txns)),
		Date:        date,
		Description: in.Description,
		Status:      model.StatusDraft,
		Lines:       slices.Clone(in.Lines),
	}
	if err := s.writeMonth(year, month, append(txns, txn)); err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("txn", txn.ID).Int("lines", len(txn.Lines)).Msg("draft created")
	return txn, nil
}

// Replace overwrites the date, description and every line of a DRAFT
// transaction. The date must stay within the transaction's month.
func (s *Service) Replace(id string, in Input) (model.Transaction, error) {
	if err := ValidateInput(in, s.accounts); err != nil {
		return model.Transaction{}, err
	}
	date := in.Date.UTC()

	var updated model.Transaction
	err := s.update(id, func(txns []model.Transaction, i int) ([]model.Transaction, error) {
		if txns[i].Status != model.StatusDraft {
			return nil, fmt.Errorf("editing %s: %w", id, ErrNotDraft)
		}
		if err := checkMonth(id, date); err != nil {
			return nil, err
		}
		txns[i].Date = date
		txns[i].Description = in.Description
		txns[i].Lines = slices.Clone(in.Lines)
		updated = txns[i]
		return txns, nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("txn", id).Int("lines", len(updated.Lines)).Msg("draft replaced")
	return updated, nil
}

// Delete removes a DRAFT transaction. Its sequence number is not reused
// while a later transaction exists in the month.
func (s *Service) Delete(id string) error {
	err := s.update(id, func(txns []model.Transaction, i int) ([]model.Transaction, error) {
		if txns[i].Status != model.StatusDraft {
			return nil, fmt.Errorf("deleting %s: %w", id, ErrNotDraft)
		}
		return slices.Delete(txns, i, i+1), nil
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("txn", id).Msg("draft deleted")
	return nil
}

// Post moves a DRAFT transaction to POSTED. An unbalanced transaction is
// refused with a *ledger.ValidationError and stays DRAFT.
func (s *Service) Post(id string) (model.Transaction, error) {
	var posted model.Transaction
	err := s.update(id, func(txns []model.Transaction, i int) ([]model.Transaction, error) {
		if txns[i].Status == model.StatusPosted {
			return nil, fmt.Errorf("posting %s: %w", id, ErrAlreadyPosted)
		}
		if err := ledger.CheckPostable(txns[i]); err != nil {
			var verr *ledger.ValidationError
			if errors.As(err, &verr) {
				s.log.Warn().Str("txn", id).Str("imbalance", verr.Imbalance.StringFixed(2)).Msg("post refused")
			}
			return nil, err
		}
		txns[i].Status = model.StatusPosted
		posted = txns[i]
		return txns, nil
	})
	if err != nil {
		return model.Transaction{}, err
	}

	s.log.Info().Str("txn", id).Msg("transaction posted")
	return posted, nil
}

// Get returns a transaction by id, or a *ledger.NotFoundError.
func (s *Service) Get(id string) (model.Transaction, error) {
	year, month, _, err := ParseTransactionID(id)
	if err != nil {
		return model.Transaction{}, ledger.TransactionNotFound(id)
	}
	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return model.Transaction{}, err
	}
	i := indexOf(txns, id)
	if i < 0 {
		return model.Transaction{}, ledger.TransactionNotFound(id)
	}
	return txns[i], nil
}

// List returns the transactions matching f, ordered by date then id.
func (s *Service) List(f Filter) ([]model.Transaction, error) {
	months, err := s.months()
	if err != nil {
		return nil, err
	}

	var result []model.Transaction
	for _, ym := range months {
		if f.Period != nil && !overlaps(*f.Period, ym[0], ym[1]) {
			continue
		}
		txns, err := s.ReadMonth(ym[0], ym[1])
		if err != nil {
			return nil, err
		}
		for _, txn := range txns {
			if f.match(txn) {
				result = append(result, txn)
			}
		}
	}

	slices.SortStableFunc(result, func(a, b model.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return compareIDs(a.ID, b.ID)
	})
	return result, nil
}

// References counts the journal lines, in any month and status, that use
// accountID.
func (s *Service) References(accountID string) (int, error) {
	txns, err := s.List(Filter{})
	if err != nil {
		return 0, err
	}
	n := 0
	for _, txn := range txns {
		for _, l := range txn.Lines {
			if l.AccountID == accountID {
				n++
			}
		}
	}
	return n, nil
}

// ReadMonth reads all transactions for a given year/month. A month
// without a journal file has no transactions. Every transaction in the file
// must carry an id and a date in that month.
func (s *Service) ReadMonth(year, month int) ([]model.Transaction, error) {
	path := s.monthPath(year, month)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading journal %s: %w", path, err)
	}
	for _, txn := range txns {
		if err := inMonth(txn, year, month); err != nil {
			return nil, fmt.Errorf("reading journal %s: %w", path, err)
		}
	}
	return txns, nil
}

// inMonth checks that txn belongs in the journal file of year/month.
func inMonth(txn model.Transaction, year, month int) error {
	y, m, _, err := ParseTransactionID(txn.ID)
	if err != nil {
		return err
	}
	if y != year || m != month {
		return fmt.Errorf("transaction %s does not belong in %04d-%02d", txn.ID, year, month)
	}
	if txn.Date.Year() != year || int(txn.Date.Month()) != month {
		return fmt.Errorf("transaction %s is dated %s, outside %04d-%02d", txn.ID, txn.Date.Format(dateFormat), year, month)
	}
	return nil
}

// NextSeq returns the next available sequence number for a month.
func (s *Service) NextSeq(year, month int) (int, error) {
	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return 0, err
	}
	return nextSeq(txns), nil
}

func (s *Service) update(id string, fn func([]model.Transaction, int) ([]model.Transaction, error)) error {
	year, month, _, err := ParseTransactionID(id)
	if err != nil {
		return ledger.TransactionNotFound(id)
	}
	txns, err := s.ReadMonth(year, month)
	if err != nil {
		return err
	}
	i := indexOf(txns, id)
	if i < 0 {
		return ledger.TransactionNotFound(id)
	}
	txns, err = fn(txns, i)
	if err != nil {
		return err
	}
	return s.writeMonth(year, month, txns)
}

// writeMonth replaces a month's journal.csv via a temp file and rename so
// a failed write never leaves a truncated journal behind.
func (s *Service) writeMonth(year, month int, txns []model.Transaction) error {
	path := s.monthPath(year, month)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating journal dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".journal-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp journal: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteTransactions(tmp, txns); err != nil {
		tmp.Close()
		return fmt.Errorf("writing journal %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp journal: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing journal %s: %w", path, err)
	}
	return nil
}

// months lists the [year, month] pairs that have a journal file, in order.
func (s *Service) months() ([][2]int, error) {
	matches, err := filepath.Glob(filepath.Join(s.repoRoot, "[0-9][0-9][0-9][0-9]", "[0-9][0-9]", "journal.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing journals: %w", err)
	}

	var months [][2]int
	for _, m := range matches {
		monthDir := filepath.Dir(m)
		year, err1 := strconv.Atoi(filepath.Base(filepath.Dir(monthDir)))
		month, err2 := strconv.Atoi(filepath.Base(monthDir))
		if err1 != nil || err2 != nil || month < 1 || month > 12 {
			continue
		}
		months = append(months, [2]int{year, month})
	}
	slices.SortFunc(months, func(a, b [2]int) int {
		if a[0] != b[0] {
			return a[0] - b[0]
		}
		return a[1] - b[1]
	})
	return months, nil
}

func (s *Service) monthPath(year, month int) string {
	return filepath.Join(s.repoRoot, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "journal.csv")
}

func nextSeq(txns []model.Transaction) int {
	maxSeq := 0
	for _, txn := range txns {
		_, _, seq, err := ParseTransactionID(txn.ID)
		if err != nil {
			continue
		}
		maxSeq = max(maxSeq, seq)
	}
	return maxSeq + 1
}

func indexOf(txns []model.Transaction, id string) int {
	return slices.IndexFunc(txns, func(t model.Transaction) bool { return t.ID == id })
}

func compareIDs(a, b string) int {
	ay, am, as, errA := ParseTransactionID(a)
	by, bm, bs, errB := ParseTransactionID(b)
	if errA != nil || errB != nil {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	if ay != by {
		return ay - by
	}
	if am != bm {
		return am - bm
	}
	return as - bs
}

func overlaps(p ledger.Period, year, month int) bool {
	m := ledger.Month(year, time.Month(month))
	return m.Start.Before(p.End) && p.Start.Before(m.End)
}
