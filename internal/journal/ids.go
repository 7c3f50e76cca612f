package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTransactionID returns a transaction ID like "2025-01-001".
func FormatTransactionID(year, month, seq int) string {
	return fmt.Sprintf("%04d-%02d-%03d", year, month, seq)
}

// FormatLineID returns the id of line i of a transaction: "2025-01-001a"
// for line 0. Lines past 'y' continue as "za", "zb", ... so that ids still
// sort in line order.
func FormatLineID(txnID string, i int) string {
	var b strings.Builder
	b.WriteString(txnID)
	for i >= 25 {
		b.WriteByte('z')
		i -= 25
	}
	b.WriteByte(byte('a' + i))
	return b.String()
}

// TransactionID strips the line suffix from a line ID.
// "2025-01-001a" -> "2025-01-001"
func TransactionID(lineID string) string {
	i := len(lineID)
	for i > 0 && lineID[i-1] >= 'a' && lineID[i-1] <= 'z' {
		i--
	}
	return lineID[:i]
}

// ParseTransactionID parses "2025-01-001" (or a line ID) into year, month, seq.
func ParseTransactionID(id string) (year, month, seq int, err error) {
	parts := strings.SplitN(TransactionID(id), "-", 3)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid transaction ID format: %q", id)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid year in transaction ID %q: %w", id, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, 0, fmt.Errorf("invalid month in transaction ID %q", id)
	}

	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, 0, 0, fmt.Errorf("invalid sequence in transaction ID %q", id)
	}

	return year, month, seq, nil
}
