package accounts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "account_id,code,name,type,category,is_active"

const (
	numFields   = 6
	colID       = 0
	colCode     = 1
	colName     = 2
	colType     = 3
	colCategory = 4
	colActive   = 5
)

// ReadAccounts reads chart-of-accounts.csv. Account ids and codes must be
// unique; a repeat is reported against the row it appears on.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	idRows := make(map[string]int)
	codeRows := make(map[string]int)
	for i, rec := range records[1:] {
		rowNum := i + 2
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if first, dup := idRows[acct.ID]; dup {
			return nil, fmt.Errorf("row %d: %w: %s (row %d)", rowNum, ErrDuplicateID, acct.ID, first)
		}
		if first, dup := codeRows[acct.Code]; dup {
			return nil, fmt.Errorf("row %d: %w: %s (row %d)", rowNum, ErrDuplicateCode, acct.Code, first)
		}
		idRows[acct.ID] = rowNum
		codeRows[acct.Code] = rowNum
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes chart-of-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(acct model.Account) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colCode] = acct.Code
	row[colName] = acct.Name
	row[colType] = string(acct.Type)
	row[colCategory] = acct.Category
	row[colActive] = strconv.FormatBool(acct.IsActive)
	return row
}

// UnmarshalAccount converts a CSV row to an Account. Rows missing an id,
// code or name, or carrying an unknown type, are rejected.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	for _, col := range []int{colID, colCode, colName} {
		if strings.TrimSpace(record[col]) == "" {
			return model.Account{}, errors.New("account_id, code and name are required")
		}
	}

	typ, err := model.ParseAccountType(record[colType])
	if err != nil {
		return model.Account{}, err
	}

	active := true
	if record[colActive] != "" {
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.Account{}, fmt.Errorf("parsing is_active %q: %w", record[colActive], err)
		}
	}

	return model.Account{
		ID:       record[colID],
		Code:     record[colCode],
		Name:     record[colName],
		Type:     typ,
		Category: record[colCategory],
		IsActive: active,
	}, nil
}
