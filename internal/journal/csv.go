package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "line_id,date,status,description,account_id,line_description,debit,credit"

const (
	numFields   = 8
	dateFormat  = "2006-01-02"
	colLineID   = 0
	colDate     = 1
	colStatus   = 2
	colDesc     = 3
	colAcctID   = 4
	colLineDesc = 5
	colDebit    = 6
	colCredit   = 7
)

// row is one parsed journal.csv record.
type row struct {
	lineID      string
	date        time.Time
	status      model.TransactionStatus
	description string
	line        model.JournalLine
}

// ReadTransactions reads a journal.csv and groups its rows into
// transactions, in file order. Rows of one transaction must agree on date,
// status and description, and no line id may appear twice.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var txns []model.Transaction
	index := make(map[string]int)
	lineRows := make(map[string]int)
	for i, rec := range records[1:] {
		rowNum := i + 2
		rw, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}
		if first, dup := lineRows[rw.lineID]; dup {
			return nil, fmt.Errorf("row %d: line id %s duplicates row %d", rowNum, rw.lineID, first)
		}
		lineRows[rw.lineID] = rowNum

		id := TransactionID(rw.lineID)
		j, seen := index[id]
		if !seen {
			index[id] = len(txns)
			txns = append(txns, model.Transaction{
				ID:          id,
				Date:        rw.date,
				Description: rw.description,
				Status:      rw.status,
			})
			j = len(txns) - 1
		}

		txn := &txns[j]
		switch {
		case !txn.Date.Equal(rw.date):
			return nil, fmt.Errorf("row %d: date %s disagrees with transaction %s", rowNum, rw.date.Format(dateFormat), id)
		case txn.Status != rw.status:
			return nil, fmt.Errorf("row %d: status %s disagrees with transaction %s", rowNum, rw.status, id)
		case txn.Description != rw.description:
			return nil, fmt.Errorf("row %d: description disagrees with transaction %s", rowNum, id)
		}
		txn.Lines = append(txn.Lines, rw.line)
	}
	return txns, nil
}

// WriteTransactions writes transactions to a journal.csv writer (including
// header). Line ids are derived from the transaction id and line position.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, txn := range txns {
		for i, line := range txn.Lines {
			if err := cw.Write(MarshalLine(txn, i, line)); err != nil {
				return fmt.Errorf("writing line %s: %w", FormatLineID(txn.ID, i), err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts line i of txn to a CSV row.
func MarshalLine(txn model.Transaction, i int, line model.JournalLine) []string {
	rec := make([]string, numFields)
	rec[colLineID] = FormatLineID(txn.ID, i)
	rec[colDate] = txn.Date.Format(dateFormat)
	rec[colStatus] = string(txn.Status)
	rec[colDesc] = txn.Description
	rec[colAcctID] = line.AccountID
	rec[colLineDesc] = line.Description

	if !line.Debit.IsZero() {
		rec[colDebit] = line.Debit.StringFixed(2)
	}
	if !line.Credit.IsZero() {
		rec[colCredit] = line.Credit.StringFixed(2)
	}
	return rec
}

func unmarshalRow(record []string) (row, error) {
	if len(record) != numFields {
		return row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	if _, _, _, err := ParseTransactionID(record[colLineID]); err != nil {
		return row{}, err
	}
	if TransactionID(record[colLineID]) == record[colLineID] {
		return row{}, fmt.Errorf("line id %q has no line suffix", record[colLineID])
	}
	if strings.TrimSpace(record[colAcctID]) == "" {
		return row{}, errors.New("account_id is required")
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return row{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	status, err := model.ParseStatus(record[colStatus])
	if err != nil {
		return row{}, err
	}

	debit, err := parseAmount("debit", record[colDebit])
	if err != nil {
		return row{}, err
	}
	credit, err := parseAmount("credit", record[colCredit])
	if err != nil {
		return row{}, err
	}

	return row{
		lineID:      record[colLineID],
		date:        date,
		status:      status,
		description: record[colDesc],
		line: model.JournalLine{
			AccountID:   record[colAcctID],
			Description: record[colLineDesc],
			Debit:       debit,
			Credit:      credit,
		},
	}, nil
}

func parseAmount(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s %q is negative", field, s)
	}
	return d, nil
}
