package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

var validate = validator.New()

// AccountDirectory resolves the accounts referenced by journal lines.
type AccountDirectory interface {
	Get(id string) (model.Account, error)
}

// Input holds the user-editable fields of a transaction. Lines are
// replaced as a unit on every edit.
type Input struct {
	Date        time.Time           `validate:"required"`
	Description string              `validate:"required,max=200"`
	Lines       []model.JournalLine `validate:"min=2,dive"`
}

// LineError describes a problem with one line of an Input.
type LineError struct {
	Line int // zero-based
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line+1, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// ValidateInput checks an Input before it is saved as a draft. Balance is
// not checked here; drafts may be unbalanced until they are posted. All
// problems are reported together.
func ValidateInput(in Input, accounts AccountDirectory) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("invalid transaction: %w", err)
	}

	var errs []error
	for i, line := range in.Lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			errs = append(errs, &LineError{Line: i, Err: errors.New("amounts must not be negative")})
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			errs = append(errs, &LineError{Line: i, Err: errors.New("debit or credit is required")})
		}
		if !line.Debit.Equal(line.Debit.Round(2)) || !line.Credit.Equal(line.Credit.Round(2)) {
			errs = append(errs, &LineError{Line: i, Err: errors.New("amounts must have at most 2 decimal places")})
		}

		acct, err := accounts.Get(line.AccountID)
		if err != nil {
			errs = append(errs, &LineError{Line: i, Err: err})
			continue
		}
		if !acct.IsActive {
			errs = append(errs, &LineError{Line: i, Err: fmt.Errorf("account %s (%s) is inactive", acct.Code, acct.Name)})
		}
	}
	return errors.Join(errs...)
}

// checkMonth ensures date lies in the month a transaction id was issued for.
func checkMonth(id string, date time.Time) error {
	year, month, _, err := ParseTransactionID(id)
	if err != nil {
		return err
	}
	if !ledger.Month(year, time.Month(month)).Contains(date) {
		return fmt.Errorf("%w: %s is not in %04d-%02d", ErrMonthChanged, date.Format(dateFormat), year, month)
	}
	return nil
}
