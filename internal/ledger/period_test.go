package ledger

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minesupport/bookkeeper/internal/model"
)

func TestYear(t *testing.T) {
	p := Year(2025)
	assert.True(t, p.Contains(date(2025, 1, 1)))
	assert.True(t, p.Contains(date(2025, 12, 31)))
	assert.False(t, p.Contains(date(2024, 12, 31)))
	assert.False(t, p.Contains(date(2026, 1, 1)))
	assert.Equal(t, "2025-01-01..2025-12-31", p.String())
}

func TestMonth(t *testing.T) {
	p := Month(2024, time.February)
	assert.True(t, p.Contains(date(2024, 2, 29)))
	assert.False(t, p.Contains(date(2024, 3, 1)))
	assert.Equal(t, "2024-02-01..2024-02-29", p.String())
}

func TestFiscalYear(t *testing.T) {
	p := FiscalYear(2025, time.April, 1)
	assert.False(t, p.Contains(date(2025, 3, 31)))
	assert.True(t, p.Contains(date(2025, 4, 1)))
	assert.True(t, p.Contains(date(2026, 3, 31)))
	assert.False(t, p.Contains(date(2026, 4, 1)))
}

func TestRange_TruncatesToDay(t *testing.T) {
	p := Range(time.Date(2025, 3, 1, 15, 4, 5, 0, time.UTC), date(2025, 3, 8))
	assert.Equal(t, date(2025, 3, 1), p.Start)
	assert.True(t, p.Contains(date(2025, 3, 7)))
	assert.False(t, p.Contains(date(2025, 3, 8)))
}

func TestSplit(t *testing.T) {
	first, second := Year(2025).Split(date(2025, 7, 1))
	assert.Equal(t, date(2025, 1, 1), first.Start)
	assert.Equal(t, date(2025, 7, 1), first.End)
	assert.Equal(t, date(2025, 7, 1), second.Start)
	assert.Equal(t, date(2026, 1, 1), second.End)

	// Clamped.
	first, second = Year(2025).Split(date(2030, 1, 1))
	assert.Equal(t, date(2026, 1, 1), first.End)
	assert.Equal(t, second.Start, second.End)
}

func TestMonths(t *testing.T) {
	months := Range(date(2025, 11, 15), date(2026, 2, 1)).Months()
	assert.Equal(t, []time.Time{date(2025, 11, 1), date(2025, 12, 1), date(2026, 1, 1)}, months)
	assert.Len(t, Year(2025).Months(), 12)
}

func TestRunningBalance(t *testing.T) {
	lines := []model.JournalLine{
		{Debit: dec("100")},
		{Credit: dec("30")},
		{Debit: dec("5"), Credit: dec("10")},
	}

	var asset []string
	for _, bal := range RunningBalance(lines, model.AccountTypeAsset) {
		asset = append(asset, bal.String())
	}
	assert.Equal(t, []string{"100", "70", "65"}, asset)

	var revenue []string
	for _, bal := range RunningBalance(lines, model.AccountTypeRevenue) {
		revenue = append(revenue, bal.String())
	}
	assert.Equal(t, []string{"-100", "-70", "-65"}, revenue)
}

func TestRunningBalance_Restartable(t *testing.T) {
	lines := []model.JournalLine{{Credit: dec("40")}, {Credit: dec("60")}}
	seq := RunningBalance(lines, model.AccountTypeLiability)

	collect := func() []string {
		var out []string
		for _, bal := range seq {
			out = append(out, bal.String())
		}
		return out
	}
	assert.Equal(t, []string{"40", "100"}, collect())
	assert.Equal(t, []string{"40", "100"}, collect(), "second pass starts again from zero")
}

func TestRunningBalance_StopsEarly(t *testing.T) {
	lines := []model.JournalLine{{Debit: dec("1")}, {Debit: dec("2")}, {Debit: dec("3")}}
	var seen []int
	for i := range RunningBalance(lines, model.AccountTypeExpense) {
		seen = append(seen, i)
		if i == 1 {
			break
		}
	}
	assert.Equal(t, []int{0, 1}, seen)
}

func TestRunningBalance_Empty(t *testing.T) {
	n := 0
	for range RunningBalance(nil, model.AccountTypeAsset) {
		n++
	}
	assert.Zero(t, n)
}

func TestComputeMonthlySummary(t *testing.T) {
	draft := posted("d", date(2025, 2, 1), services, "0", "999")
	draft.Status = model.StatusDraft
	entries := []Entry{
		posted("a", date(2025, 1, 10), services, "0", "800"),
		posted("a", date(2025, 1, 10), cash, "800", "0"),
		posted("b", date(2025, 1, 20), fuel, "120", "0"),
		posted("b", date(2025, 1, 20), cash, "0", "120"),
		posted("c", date(2025, 3, 3), wages, "300", "0"),
		posted("c", date(2025, 3, 3), payable, "0", "300"),
		posted("e", date(2024, 12, 31), fuel, "50", "0"),
		draft,
	}

	s := ComputeMonthlySummary(entries, 2025)
	require.Len(t, s.Months, 12)
	assert.True(t, s.Months[0].Revenue.Equal(dec("800")))
	assert.True(t, s.Months[0].Expense.Equal(dec("120")))
	assert.True(t, s.Months[1].Revenue.IsZero(), "drafts are excluded")
	assert.True(t, s.Months[2].Expense.Equal(dec("300")))
	assert.Equal(t, time.March, s.Months[2].Month)
	assert.True(t, s.TotalRevenue.Equal(dec("800")))
	assert.True(t, s.TotalExpense.Equal(dec("420")))

	cats := make([]string, len(s.ExpenseByCategory))
	for i, c := range s.ExpenseByCategory {
		cats[i] = c.Category
	}
	assert.True(t, slices.IsSorted(cats))
	assert.Equal(t, []string{"OPERATIONAL", "PAYROLL"}, cats)
	assert.True(t, s.ExpenseByCategory[0].Amount.Equal(dec("120")))
}
