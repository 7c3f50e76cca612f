package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/config"
	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

func newReportCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Aliases: []string{"reports"},
		Short:   "Financial reports aggregated from posted transactions",
	}
	cmd.AddCommand(
		newTrialBalanceCommand(g),
		newIncomeStatementCommand(g),
		newBalanceSheetCommand(g),
		newGeneralLedgerCommand(g),
		newSummaryCommand(g),
	)
	return cmd
}

// periodFlags selects the reporting period.
type periodFlags struct {
	year   int
	fiscal bool
	from   string
	to     string
}

func (f *periodFlags) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.year, "year", 0, "calendar year (default current year)")
	cmd.Flags().BoolVar(&f.fiscal, "fiscal", false, "use the fiscal year starting in --year")
	cmd.Flags().StringVar(&f.from, "from", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "last day of the period, inclusive (YYYY-MM-DD)")
}

func (f *periodFlags) period(cfg *config.Config, now time.Time) (ledger.Period, error) {
	if f.from != "" || f.to != "" {
		if f.year != 0 || f.fiscal {
			return ledger.Period{}, errors.New("--from/--to cannot be combined with --year or --fiscal")
		}
		if f.from == "" || f.to == "" {
			return ledger.Period{}, errors.New("--from and --to must be given together")
		}
		from, err := time.Parse(dateFormat, f.from)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("parsing --from: %w", err)
		}
		to, err := time.Parse(dateFormat, f.to)
		if err != nil {
			return ledger.Period{}, fmt.Errorf("parsing --to: %w", err)
		}
		if to.Before(from) {
			return ledger.Period{}, errors.New("--to is before --from")
		}
		return ledger.Range(from, to.AddDate(0, 0, 1)), nil
	}

	year := f.year
	if year == 0 {
		year = now.Year()
	}
	if f.fiscal {
		return cfg.FiscalYear(year)
	}
	return ledger.Year(year), nil
}

func newTrialBalanceCommand(g *globals) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:     "trial-balance",
		Aliases: []string{"tb"},
		Short:   "Debit and credit balance of every account",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			period, err := pf.period(b.cfg, time.Now())
			if err != nil {
				return err
			}

			tb, err := b.reports.TrialBalance(period)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), tb)
			}

			w := cmd.OutOrStdout()
			heading(w, b, "Trial Balance", period)
			tbl := newTable(w, "CODE", "ACCOUNT", "TYPE", "DEBIT", "CREDIT")
			for _, r := range tb.Rows {
				tbl.row(r.Code, r.Name, string(r.Type), blankZero(r.Debit), blankZero(r.Credit))
			}
			tbl.row("", "TOTAL", "", money(tb.TotalDebit), money(tb.TotalCredit))
			if err := tbl.flush(); err != nil {
				return err
			}
			if !tb.IsBalanced {
				fmt.Fprintf(w, "\nWARNING: debits and credits differ by %s\n", money(tb.TotalDebit.Sub(tb.TotalCredit).Abs()))
			}
			return nil
		},
	}

	pf.bind(cmd)
	return cmd
}

func newIncomeStatementCommand(g *globals) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:     "income-statement",
		Aliases: []string{"pnl", "profit-loss"},
		Short:   "Revenue, expenses and net profit",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			period, err := pf.period(b.cfg, time.Now())
			if err != nil {
				return err
			}

			is, err := b.reports.IncomeStatement(period)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), is)
			}

			w := cmd.OutOrStdout()
			heading(w, b, "Income Statement", period)
			tbl := newTable(w, "CODE", "ACCOUNT", "AMOUNT")
			section(tbl, "Revenue", is.RevenueLines)
			tbl.row("", "Total revenue", money(is.TotalRevenue))
			tbl.row("", "", "")
			section(tbl, "Expenses", is.ExpenseLines)
			tbl.row("", "Total expenses", money(is.TotalExpense))
			tbl.row("", "", "")
			label := "Net profit"
			if is.NetProfit.IsNegative() {
				label = "Net loss"
			}
			tbl.row("", label, money(is.NetProfit))
			return tbl.flush()
		},
	}

	pf.bind(cmd)
	return cmd
}

func newBalanceSheetCommand(g *globals) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:     "balance-sheet",
		Aliases: []string{"bs"},
		Short:   "Assets, liabilities and equity",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			period, err := pf.period(b.cfg, time.Now())
			if err != nil {
				return err
			}

			bs, err := b.reports.BalanceSheet(period)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), bs)
			}

			w := cmd.OutOrStdout()
			heading(w, b, "Balance Sheet", period)
			tbl := newTable(w, "CODE", "ACCOUNT", "AMOUNT")
			section(tbl, "Assets", bs.Assets)
			tbl.row("", "Total assets", money(bs.TotalAssets))
			tbl.row("", "", "")
			section(tbl, "Liabilities", bs.Liabilities)
			tbl.row("", "Total liabilities", money(bs.TotalLiabilities))
			tbl.row("", "", "")
			section(tbl, "Equity", bs.Equity)
			tbl.row("", "Current earnings", money(bs.CurrentEarnings))
			tbl.row("", "Total equity", money(bs.TotalEquity))
			tbl.row("", "", "")
			tbl.row("", "Liabilities + equity", money(bs.TotalLiabilities.Add(bs.TotalEquity)))
			if err := tbl.flush(); err != nil {
				return err
			}
			if !bs.IsBalanced {
				fmt.Fprintf(w, "\nWARNING: balance sheet is out of balance by %s\n", money(bs.Difference))
			}
			return nil
		},
	}

	pf.bind(cmd)
	return cmd
}

func newGeneralLedgerCommand(g *globals) *cobra.Command {
	var pf periodFlags

	cmd := &cobra.Command{
		Use:     "ledger <account>",
		Aliases: []string{"gl"},
		Short:   "Posted lines of one account with a running balance",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			period, err := pf.period(b.cfg, time.Now())
			if err != nil {
				return err
			}
			acct, err := b.accounts.Resolve(args[0])
			if err != nil {
				return err
			}

			gl, err := b.reports.GeneralLedger(acct.ID, period)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), gl)
			}

			w := cmd.OutOrStdout()
			heading(w, b, fmt.Sprintf("General Ledger: %s %s", acct.Code, acct.Name), period)
			tbl := newTable(w, "DATE", "TXN", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
			tbl.row("", "", "Opening balance", "", "", money(gl.OpeningBalance))
			for _, r := range gl.Rows {
				tbl.row(r.Date.Format(dateFormat), r.TransactionID, r.Description, blankZero(r.Debit), blankZero(r.Credit), money(r.Balance))
			}
			tbl.row("", "", "Closing balance", money(gl.TotalDebit), money(gl.TotalCredit), money(gl.ClosingBalance))
			if err := tbl.flush(); err != nil {
				return err
			}
			if gl.OpeningBalanceAssumed {
				fmt.Fprintln(w, "\nNote: the opening balance is taken as zero; activity before the period is not carried forward.")
			}
			return nil
		},
	}

	pf.bind(cmd)
	return cmd
}

func newSummaryCommand(g *globals) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Monthly revenue and expenses, and expenses by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}

			s, err := b.reports.Summary(year)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), s)
			}

			w := cmd.OutOrStdout()
			heading(w, b, "Summary", ledger.Year(year))
			tbl := newTable(w, "MONTH", "REVENUE", "EXPENSES", "NET")
			for _, m := range s.Months {
				tbl.row(m.Month.String()[:3], money(m.Revenue), money(m.Expense), money(m.Revenue.Sub(m.Expense)))
			}
			tbl.row("Total", money(s.TotalRevenue), money(s.TotalExpense), money(s.TotalRevenue.Sub(s.TotalExpense)))
			if err := tbl.flush(); err != nil {
				return err
			}

			fmt.Fprintln(w)
			cats := newTable(w, "CATEGORY", "EXPENSES")
			for _, c := range s.ExpenseByCategory {
				cats.row(c.Category, money(c.Amount))
			}
			return cats.flush()
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year (default current year)")
	return cmd
}

func heading(w io.Writer, b *book, title string, period ledger.Period) {
	last := period.End.AddDate(0, 0, -1)
	fmt.Fprintf(w, "%s\n%s, %s to %s (%s)\n\n", b.cfg.Business.Name, title,
		period.Start.Format(dateFormat), last.Format(dateFormat), b.cfg.Business.Currency)
}

func section(tbl *table, title string, rows []model.AccountBalance) {
	tbl.row("", title, "")
	for _, r := range rows {
		tbl.row(r.Code, "  "+r.Name, money(r.Balance))
	}
}
