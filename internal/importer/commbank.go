package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// CommBankParser parses Commonwealth Bank transaction exports. The files
// have no header: date, signed amount, description, running balance.
type CommBankParser struct{}

const (
	commBankDateFormat = "02/01/2006"
	commBankNumFields  = 4
	commBankColDate    = 0
	commBankColAmount  = 1
	commBankColDesc    = 2
)

// Format returns the parser name.
func (p *CommBankParser) Format() string { return "commbank" }

// Parse reads a CommBank CSV and returns its lines in file order.
func (p *CommBankParser) Parse(r io.Reader) ([]StatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = commBankNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading commbank CSV: %w", err)
	}

	var lines []StatementLine
	for i, rec := range records {
		sl, err := parseCommBankRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		lines = append(lines, sl)
	}
	return lines, nil
}

func parseCommBankRow(rec []string) (StatementLine, error) {
	date, err := time.Parse(commBankDateFormat, rec[commBankColDate])
	if err != nil {
		return StatementLine{}, fmt.Errorf("parsing date %q: %w", rec[commBankColDate], err)
	}

	amount, err := parseAmount(rec[commBankColAmount])
	if err != nil {
		return StatementLine{}, fmt.Errorf("parsing amount %q: %w", rec[commBankColAmount], err)
	}

	desc := rec[commBankColDesc]
	return StatementLine{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   reference("commbank", date, desc),
	}, nil
}
