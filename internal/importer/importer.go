// Package importer turns bank statement exports into draft journal
// transactions.
package importer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minesupport/bookkeeper/internal/journal"
	"github.com/minesupport/bookkeeper/internal/model"
)

// StatementLine is one row of a bank statement. Amount is positive for
// money received and negative for money paid out.
type StatementLine struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
}

// Parser converts a bank CSV export into statement lines.
type Parser interface {
	Parse(r io.Reader) ([]StatementLine, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file waiting in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CommBankParser{})
	r.Register(&GenericParser{})
	return r
}

// Dir is the import directory relative to the book root.
const Dir = "import"

const processedDir = "import/processed"

// Scan returns the CSV files in <repoRoot>/import/.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, Dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, Dir, fileName)
	dstDir := filepath.Join(repoRoot, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// Drafts pairs each statement line with the bank account and an offset
// account. Money in debits the bank and credits the offset; money out does
// the reverse. Zero amounts are skipped.
func Drafts(lines []StatementLine, bankID, offsetID string) []journal.Input {
	var inputs []journal.Input
	for _, sl := range lines {
		if sl.Amount.IsZero() {
			continue
		}
		amount := sl.Amount.Abs()
		bank := model.JournalLine{AccountID: bankID, Description: sl.Reference, Debit: decimal.Zero, Credit: decimal.Zero}
		offset := model.JournalLine{AccountID: offsetID, Debit: decimal.Zero, Credit: decimal.Zero}
		if sl.Amount.IsPositive() {
			bank.Debit, offset.Credit = amount, amount
		} else {
			bank.Credit, offset.Debit = amount, amount
		}
		desc := truncate(sl.Description, 200)
		if desc == "" {
			desc = sl.Reference
		}
		inputs = append(inputs, journal.Input{
			Date:        sl.Date,
			Description: desc,
			Lines:       []model.JournalLine{offset, bank},
		})
	}
	return inputs
}

// reference builds an id like commbank_20250103_FUELDEPOT.
func reference(format string, date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("%s_%s_%s", format, date.Format("20060102"), prefix)
}

// parseAmount accepts bank formatting: a leading "+", thousands separators
// and surrounding spaces.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "+")
	return decimal.NewFromString(s)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n])
	}
	return s
}
