package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

var (
	// ErrDuplicateCode is returned when an account code is already taken.
	ErrDuplicateCode = errors.New("account code already in use")
	// ErrDuplicateID is returned when two chart rows share an account id.
	ErrDuplicateID = errors.New("duplicate account id")
	// ErrInUse is returned when deleting an account that journal lines reference.
	ErrInUse = errors.New("account is referenced by journal lines")
	// ErrTypeLocked is returned when changing the type of a referenced account.
	ErrTypeLocked = errors.New("account type cannot change while journal lines reference it")
)

var validate = validator.New()

// Params holds the editable fields of an account.
type Params struct {
	Code     string            `validate:"required,max=20"`
	Name     string            `validate:"required,max=120"`
	Type     model.AccountType `validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Category string            `validate:"max=40"`
}

// ReferenceCounter reports how many journal lines reference an account.
type ReferenceCounter interface {
	References(accountID string) (int, error)
}

// Service provides in-memory lookup and editing over the chart of accounts.
type Service struct {
	accounts []model.Account
	byID     map[string]int
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	s := &Service{accounts: slices.Clone(accounts)}
	s.reindex()
	return s
}

// Load reads chart-of-accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

func (s *Service) reindex() {
	slices.SortStableFunc(s.accounts, func(a, b model.Account) int {
		return ledger.CompareCodes(a.Code, b.Code)
	})
	s.byID = make(map[string]int, len(s.accounts))
	for i, a := range s.accounts {
		s.byID[a.ID] = i
	}
}

// All returns all accounts ordered by code.
func (s *Service) All() []model.Account {
	return slices.Clone(s.accounts)
}

// Active returns the accounts that may receive new journal lines.
func (s *Service) Active() []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.IsActive {
			result = append(result, a)
		}
	}
	return result
}

// Get returns an account by id, or a *ledger.NotFoundError.
func (s *Service) Get(id string) (model.Account, error) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, ledger.AccountNotFound(id)
	}
	return s.accounts[i], nil
}

// Resolve finds an account by id or, failing that, by code.
func (s *Service) Resolve(ref string) (model.Account, error) {
	if a, err := s.Get(ref); err == nil {
		return a, nil
	}
	if a, ok := s.ByCode(ref); ok {
		return a, nil
	}
	return model.Account{}, ledger.AccountNotFound(ref)
}

// ByCode returns the account with the given code.
func (s *Service) ByCode(code string) (model.Account, bool) {
	for _, a := range s.accounts {
		if a.Code == code {
			return a, true
		}
	}
	return model.Account{}, false
}

// Exists reports whether an account id exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// Create adds a new active account with a generated id.
func (s *Service) Create(p Params) (model.Account, error) {
	if err := validate.Struct(p); err != nil {
		return model.Account{}, fmt.Errorf("invalid account: %w", err)
	}
	if _, taken := s.ByCode(p.Code); taken {
		return model.Account{}, fmt.Errorf("%w: %s", ErrDuplicateCode, p.Code)
	}

	acct := model.Account{
		ID:       uuid.NewString(),
		Code:     p.Code,
		Name:     p.Name,
		Type:     p.Type,
		Category: p.Category,
		IsActive: true,
	}
	s.accounts = append(s.accounts, acct)
	s.reindex()
	return acct, nil
}

// Update replaces the editable fields of an account. The type may only
// change while no journal line references the account, since it decides the
// sign of every balance already booked against it.
func (s *Service) Update(id string, p Params, refs ReferenceCounter) (model.Account, error) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, ledger.AccountNotFound(id)
	}
	if err := validate.Struct(p); err != nil {
		return model.Account{}, fmt.Errorf("invalid account: %w", err)
	}
	if other, taken := s.ByCode(p.Code); taken && other.ID != id {
		return model.Account{}, fmt.Errorf("%w: %s", ErrDuplicateCode, p.Code)
	}

	acct := s.accounts[i]
	if p.Type != acct.Type {
		n, err := refs.References(id)
		if err != nil {
			return model.Account{}, fmt.Errorf("checking references: %w", err)
		}
		if n > 0 {
			return model.Account{}, fmt.Errorf("%w: %s has %d lines", ErrTypeLocked, acct.Code, n)
		}
	}
	acct.Code = p.Code
	acct.Name = p.Name
	acct.Type = p.Type
	acct.Category = p.Category
	s.accounts[i] = acct
	s.reindex()
	return acct, nil
}

// SetActive activates or deactivates an account. Inactive accounts keep
// their history but cannot be used on new journal lines.
func (s *Service) SetActive(id string, active bool) (model.Account, error) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, ledger.AccountNotFound(id)
	}
	s.accounts[i].IsActive = active
	return s.accounts[i], nil
}

// Delete removes an account that no journal line references.
func (s *Service) Delete(id string, refs ReferenceCounter) error {
	i, ok := s.byID[id]
	if !ok {
		return ledger.AccountNotFound(id)
	}
	n, err := refs.References(id)
	if err != nil {
		return fmt.Errorf("checking references: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s has %d lines", ErrInUse, s.accounts[i].Code, n)
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	s.reindex()
	return nil
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
