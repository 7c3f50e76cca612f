package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// GenericParser reads a CSV with a header naming at least the date,
// description and amount columns, in any order. Dates are YYYY-MM-DD. An
// optional reference column is carried through.
type GenericParser struct{}

// Format returns the parser name.
func (p *GenericParser) Format() string { return "generic" }

// Parse reads a generic statement CSV.
func (p *GenericParser) Parse(r io.Reader) ([]StatementLine, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"date", "description", "amount"} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("header is missing the %s column", name)
		}
	}
	refCol, hasRef := cols["reference"]

	var lines []StatementLine
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		date, err := time.Parse(time.DateOnly, rec[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[cols["date"]], err)
		}
		amount, err := parseAmount(rec[cols["amount"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", row, rec[cols["amount"]], err)
		}

		desc := rec[cols["description"]]
		ref := reference("generic", date, desc)
		if hasRef && rec[refCol] != "" {
			ref = rec[refCol]
		}
		lines = append(lines, StatementLine{Date: date, Description: desc, Amount: amount, Reference: ref})
	}
	return lines, nil
}
