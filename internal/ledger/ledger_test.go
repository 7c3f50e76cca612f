package ledger

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minesupport/bookkeeper/internal/model"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	cash     = model.Account{ID: "acc-cash", Code: "1010", Name: "Cash on Hand", Type: model.AccountTypeAsset, Category: "CURRENT", IsActive: true}
	payable  = model.Account{ID: "acc-ap", Code: "2010", Name: "Accounts Payable", Type: model.AccountTypeLiability, IsActive: true}
	capital  = model.Account{ID: "acc-cap", Code: "3010", Name: "Owner Capital", Type: model.AccountTypeEquity, IsActive: true}
	services = model.Account{ID: "acc-svc", Code: "4010", Name: "Drilling Services", Type: model.AccountTypeRevenue, Category: "PROJECT", IsActive: true}
	fuel     = model.Account{ID: "acc-fuel", Code: "5010", Name: "Fuel", Type: model.AccountTypeExpense, Category: "OPERATIONAL", IsActive: true}
	wages    = model.Account{ID: "acc-wage", Code: "5020", Name: "Wages", Type: model.AccountTypeExpense, Category: "PAYROLL", IsActive: true}
)

var allAccounts = []model.Account{cash, payable, capital, services, fuel, wages}

func posted(id string, on time.Time, acct model.Account, debit, credit string) Entry {
	return Entry{
		TransactionID: id,
		Date:          on,
		Status:        model.StatusPosted,
		Account:       acct,
		Debit:         dec(debit),
		Credit:        dec(credit),
	}
}

func findBalance(t *testing.T, balances []model.AccountBalance, accountID string) decimal.Decimal {
	t.Helper()
	for _, b := range balances {
		if b.AccountID == accountID {
			return b.Balance
		}
	}
	t.Fatalf("no balance for account %s", accountID)
	return decimal.Zero
}

func TestScenario_RevenueReceivedInCash(t *testing.T) {
	entries := []Entry{
		posted("2025-03-001", date(2025, 3, 4), cash, "1000", "0"),
		posted("2025-03-001", date(2025, 3, 4), services, "0", "1000"),
	}

	balances := ComputeAccountBalances(entries, Year(2025))
	require.Len(t, balances, 2)
	assert.True(t, findBalance(t, balances, cash.ID).Equal(dec("1000")))
	assert.True(t, findBalance(t, balances, services.ID).Equal(dec("1000")))

	is := ComputeIncomeStatement(balances)
	assert.True(t, is.TotalRevenue.Equal(dec("1000")))
	assert.True(t, is.TotalExpense.IsZero())
	assert.True(t, is.NetProfit.Equal(dec("1000")))

	bs := ComputeBalanceSheet(balances)
	want := BalanceSheet{
		Assets:           []model.AccountBalance{{AccountID: cash.ID, Code: "1010", Name: "Cash on Hand", Type: model.AccountTypeAsset, Category: "CURRENT", Balance: dec("1000")}},
		Liabilities:      []model.AccountBalance{},
		Equity:           []model.AccountBalance{},
		CurrentEarnings:  dec("1000"),
		TotalAssets:      dec("1000"),
		TotalLiabilities: decimal.Zero,
		TotalEquity:      dec("1000"),
		Difference:       decimal.Zero,
		IsBalanced:       true,
	}
	if diff := cmp.Diff(want, bs, decimalEqual); diff != "" {
		t.Errorf("balance sheet mismatch (-want +got):\n%s", diff)
	}
}

func TestScenario_CashExpense(t *testing.T) {
	entries := []Entry{
		posted("2025-03-002", date(2025, 3, 9), fuel, "500", "0"),
		posted("2025-03-002", date(2025, 3, 9), cash, "0", "500"),
	}

	balances := ComputeAccountBalances(entries, Year(2025))
	is := ComputeIncomeStatement(balances)
	assert.True(t, is.TotalExpense.Equal(dec("500")))
	assert.True(t, is.NetProfit.Equal(dec("-500")), "net loss, got %s", is.NetProfit)

	bs := ComputeBalanceSheet(balances)
	assert.True(t, bs.TotalAssets.Equal(dec("-500")))
	assert.True(t, bs.CurrentEarnings.Equal(dec("-500")))
	assert.True(t, bs.TotalEquity.Equal(dec("-500")))
	assert.True(t, bs.IsBalanced)
}

func TestScenario_UnbalancedTransaction(t *testing.T) {
	lines := []model.JournalLine{
		{AccountID: fuel.ID, Debit: dec("300")},
		{AccountID: cash.ID, Credit: dec("250")},
	}
	assert.False(t, ValidateTransactionBalance(lines))
	assert.True(t, Imbalance(lines).Equal(dec("50")))

	err := CheckPostable(model.Transaction{ID: "2025-03-003", Status: model.StatusDraft, Lines: lines})
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "2025-03-003", verr.TransactionID)
	assert.True(t, verr.Imbalance.Equal(dec("50")))
	assert.Contains(t, err.Error(), "debits exceed credits by 50.00")
}

func TestScenario_DraftsExcluded(t *testing.T) {
	draft := posted("2025-03-004", date(2025, 3, 10), cash, "750", "0")
	draft.Status = model.StatusDraft
	draftCredit := posted("2025-03-004", date(2025, 3, 10), services, "0", "750")
	draftCredit.Status = model.StatusDraft

	balances := ComputeAccountBalances([]Entry{draft, draftCredit}, Year(2025))
	assert.Empty(t, balances)

	entries := []Entry{
		draft, draftCredit,
		posted("2025-03-005", date(2025, 3, 11), cash, "100", "0"),
		posted("2025-03-005", date(2025, 3, 11), services, "0", "100"),
	}
	balances = ComputeAccountBalances(entries, Year(2025))
	assert.True(t, findBalance(t, balances, cash.ID).Equal(dec("100")))
	assert.True(t, findBalance(t, balances, services.ID).Equal(dec("100")))
}

func TestEmptyLedger(t *testing.T) {
	balances := ComputeAccountBalances(nil, Year(2025))
	assert.Empty(t, balances)

	is := ComputeIncomeStatement(balances)
	assert.True(t, is.NetProfit.IsZero())

	bs := ComputeBalanceSheet(balances)
	assert.True(t, bs.TotalAssets.IsZero())
	assert.True(t, bs.TotalLiabilities.IsZero())
	assert.True(t, bs.TotalEquity.IsZero())
	assert.True(t, bs.IsBalanced, "0 == 0 + 0")

	tb := ComputeTrialBalance(balances)
	assert.Empty(t, tb.Rows)
	assert.True(t, tb.IsBalanced)
}

func TestComputeAccountBalances_SignConventions(t *testing.T) {
	on := date(2025, 6, 1)
	entries := []Entry{
		posted("t1", on, cash, "200", "50"),
		posted("t1", on, payable, "30", "100"),
		posted("t1", on, capital, "0", "40"),
		posted("t1", on, services, "5", "25"),
		posted("t1", on, fuel, "15", "3"),
	}
	balances := ComputeAccountBalances(entries, Year(2025))

	assert.True(t, findBalance(t, balances, cash.ID).Equal(dec("150")), "asset is debit-normal")
	assert.True(t, findBalance(t, balances, payable.ID).Equal(dec("70")), "liability is credit-normal")
	assert.True(t, findBalance(t, balances, capital.ID).Equal(dec("40")), "equity is credit-normal")
	assert.True(t, findBalance(t, balances, services.ID).Equal(dec("20")), "revenue is credit-normal")
	assert.True(t, findBalance(t, balances, fuel.ID).Equal(dec("12")), "expense is debit-normal")
}

func TestComputeAccountBalances_PeriodIsHalfOpen(t *testing.T) {
	entries := []Entry{
		posted("a", date(2024, 12, 31), cash, "1", "0"),
		posted("b", date(2025, 1, 1), cash, "10", "0"),
		posted("c", date(2025, 12, 31), cash, "100", "0"),
		posted("d", date(2026, 1, 1), cash, "1000", "0"),
	}
	balances := ComputeAccountBalances(entries, Year(2025))
	require.Len(t, balances, 1)
	assert.True(t, balances[0].Balance.Equal(dec("110")))
}

func TestComputeAccountBalances_OrderedByCode(t *testing.T) {
	on := date(2025, 1, 5)
	entries := []Entry{
		posted("t", on, wages, "1", "0"),
		posted("t", on, cash, "0", "1"),
		posted("t", on, services, "0", "0"),
	}
	balances := ComputeAccountBalances(entries, Year(2025))
	codes := make([]string, len(balances))
	for i, b := range balances {
		codes[i] = b.Code
	}
	assert.Equal(t, []string{"1010", "4010", "5020"}, codes)
	assert.True(t, balances[1].Balance.IsZero(), "active account with zero net still gets a row")
}

func TestCompareCodes(t *testing.T) {
	assert.Negative(t, CompareCodes("900", "1000"))
	assert.Positive(t, CompareCodes("1010", "1002"))
	assert.Zero(t, CompareCodes("1010", "1010"))
	assert.Negative(t, CompareCodes("1-100", "1-200"))
	assert.Negative(t, CompareCodes("0900", "1000"))
}

func TestValidateTransactionBalance_Tolerance(t *testing.T) {
	tests := []struct {
		debit, credit string
		want          bool
	}{
		{"100.00", "100.00", true},
		{"100.00", "99.995", true},
		{"100.00", "99.99", false},
		{"0", "0", true},
		{"1", "0", false},
	}
	for _, tt := range tests {
		lines := []model.JournalLine{
			{AccountID: "x", Debit: dec(tt.debit)},
			{AccountID: "y", Credit: dec(tt.credit)},
		}
		assert.Equal(t, tt.want, ValidateTransactionBalance(lines), "debit %s credit %s", tt.debit, tt.credit)
	}
}

func TestTolerance(t *testing.T) {
	assert.True(t, Tolerance().Equal(dec("0.01")))

	assert.True(t, Balanced(dec("60000.00"), dec("60000.009")))
	assert.False(t, Balanced(dec("60000.00"), dec("60000.01")), "the bound is exclusive")
	assert.False(t, Balanced(dec("-0.01"), dec("0")))
}

func TestValidateTransactionBalance_OrderIndependent(t *testing.T) {
	lines := []model.JournalLine{
		{AccountID: "a", Debit: dec("60.10")},
		{AccountID: "b", Debit: dec("39.90")},
		{AccountID: "c", Credit: dec("70")},
		{AccountID: "d", Credit: dec("30")},
		{AccountID: "e", Debit: dec("5"), Credit: dec("5")},
	}
	want := ValidateTransactionBalance(lines)
	require.True(t, want)

	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		shuffled := append([]model.JournalLine(nil), lines...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, ValidateTransactionBalance(shuffled))
	}

	unbalanced := append(lines, model.JournalLine{AccountID: "f", Debit: dec("0.02")})
	for range 50 {
		r.Shuffle(len(unbalanced), func(i, j int) { unbalanced[i], unbalanced[j] = unbalanced[j], unbalanced[i] })
		assert.False(t, ValidateTransactionBalance(unbalanced))
	}
}

// randomLedger builds n balanced two- or three-line transactions spread over 2025.
func randomLedger(r *rand.Rand, n int) []Entry {
	var entries []Entry
	for i := range n {
		on := date(2025, 1+r.IntN(12), 1+r.IntN(28))
		debitAcct := allAccounts[r.IntN(len(allAccounts))]
		creditAcct := allAccounts[r.IntN(len(allAccounts))]
		amount := decimal.New(int64(1+r.IntN(1_000_000)), -2)
		id := "t" + strconv.Itoa(i)

		if r.IntN(3) == 0 {
			part := amount.Div(decimal.NewFromInt(3)).Round(2)
			splitAcct := allAccounts[r.IntN(len(allAccounts))]
			entries = append(entries,
				Entry{TransactionID: id, Date: on, Status: model.StatusPosted, Account: debitAcct, Debit: part, Credit: decimal.Zero},
				Entry{TransactionID: id, Date: on, Status: model.StatusPosted, Account: splitAcct, Debit: amount.Sub(part), Credit: decimal.Zero},
			)
		} else {
			entries = append(entries,
				Entry{TransactionID: id, Date: on, Status: model.StatusPosted, Account: debitAcct, Debit: amount, Credit: decimal.Zero},
			)
		}
		entries = append(entries,
			Entry{TransactionID: id, Date: on, Status: model.StatusPosted, Account: creditAcct, Debit: decimal.Zero, Credit: amount},
		)
	}
	return entries
}

func TestAccountingIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for range 20 {
		entries := randomLedger(r, 40)
		balances := ComputeAccountBalances(entries, Year(2025))

		bs := ComputeBalanceSheet(balances)
		assert.True(t, bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)),
			"assets %s != liabilities %s + equity %s", bs.TotalAssets, bs.TotalLiabilities, bs.TotalEquity)
		assert.True(t, bs.Difference.IsZero())
		assert.True(t, bs.IsBalanced)

		tb := ComputeTrialBalance(balances)
		assert.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
	}
}

func TestIncomeStatement_AdditiveAcrossSplit(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	entries := randomLedger(r, 60)
	full := Year(2025)

	whole := ComputeIncomeStatement(ComputeAccountBalances(entries, full)).NetProfit
	for _, at := range []time.Time{date(2025, 1, 1), date(2025, 4, 15), date(2025, 7, 1), date(2025, 12, 31)} {
		first, second := full.Split(at)
		a := ComputeIncomeStatement(ComputeAccountBalances(entries, first)).NetProfit
		b := ComputeIncomeStatement(ComputeAccountBalances(entries, second)).NetProfit
		assert.True(t, Balanced(whole, a.Add(b)), "split at %s: %s + %s != %s", at.Format(dateFormat), a, b, whole)
	}
}

func TestBalanceSheet_UnbalancedIsData(t *testing.T) {
	// A one-sided posting leaves the books out of balance.
	entries := []Entry{posted("x", date(2025, 2, 2), cash, "25", "0")}
	bs := ComputeBalanceSheet(ComputeAccountBalances(entries, Year(2025)))
	assert.False(t, bs.IsBalanced)
	assert.True(t, bs.Difference.Equal(dec("25")))
}

func TestBalanceSheet_CurrentEarningsCountedOnce(t *testing.T) {
	on := date(2025, 5, 5)
	entries := []Entry{
		posted("cap", on, cash, "5000", "0"),
		posted("cap", on, capital, "0", "5000"),
		posted("inv", on, cash, "1200", "0"),
		posted("inv", on, services, "0", "1200"),
		posted("bill", on, fuel, "200", "0"),
		posted("bill", on, payable, "0", "200"),
	}
	bs := ComputeBalanceSheet(ComputeAccountBalances(entries, Year(2025)))

	require.Len(t, bs.Equity, 1, "current earnings is not an equity row")
	assert.True(t, bs.CurrentEarnings.Equal(dec("1000")))
	assert.True(t, bs.TotalEquity.Equal(dec("6000")))
	assert.True(t, bs.TotalLiabilities.Equal(dec("200")))
	assert.True(t, bs.TotalAssets.Equal(dec("6200")))
	assert.True(t, bs.IsBalanced)
}

func TestComputeTrialBalance_Columns(t *testing.T) {
	balances := []model.AccountBalance{
		{AccountID: cash.ID, Code: "1010", Type: model.AccountTypeAsset, Balance: dec("-40")},
		{AccountID: payable.ID, Code: "2010", Type: model.AccountTypeLiability, Balance: dec("60")},
		{AccountID: fuel.ID, Code: "5010", Type: model.AccountTypeExpense, Balance: dec("100")},
	}
	tb := ComputeTrialBalance(balances)
	require.Len(t, tb.Rows, 3)

	assert.True(t, tb.Rows[0].Credit.Equal(dec("40")), "overdrawn asset sits in the credit column")
	assert.True(t, tb.Rows[0].Debit.IsZero())
	assert.True(t, tb.Rows[1].Credit.Equal(dec("60")))
	assert.True(t, tb.Rows[2].Debit.Equal(dec("100")))
	assert.True(t, tb.TotalDebit.Equal(dec("100")))
	assert.True(t, tb.TotalCredit.Equal(dec("100")))
	assert.True(t, tb.IsBalanced)
}

type lookup map[string]model.Account

func (l lookup) Get(id string) (model.Account, error) {
	a, ok := l[id]
	if !ok {
		return model.Account{}, AccountNotFound(id)
	}
	return a, nil
}

func TestJoin(t *testing.T) {
	accts := lookup{cash.ID: cash, services.ID: services}
	txns := []model.Transaction{{
		ID:          "2025-01-001",
		Date:        date(2025, 1, 2),
		Description: "Core drilling, block 7",
		Status:      model.StatusPosted,
		Lines: []model.JournalLine{
			{AccountID: cash.ID, Debit: dec("900")},
			{AccountID: services.ID, Credit: dec("900"), Description: "Invoice 17"},
		},
	}}

	entries, err := Join(txns, accts)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, cash, entries[0].Account)
	assert.Equal(t, "Core drilling, block 7", entries[0].Description, "falls back to transaction description")
	assert.Equal(t, "Invoice 17", entries[1].Description)
	assert.Equal(t, model.StatusPosted, entries[1].Status)

	txns[0].Lines = append(txns[0].Lines, model.JournalLine{AccountID: "ghost", Debit: dec("1")})
	_, err = Join(txns, accts)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "account", nf.Kind)
	assert.Equal(t, "ghost", nf.ID)
}

func TestSignedBalance_UnknownTypePanics(t *testing.T) {
	assert.Panics(t, func() { SignedBalance(model.AccountType("CONTRA"), dec("1"), dec("0")) })
}
