package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/journal"
	"github.com/minesupport/bookkeeper/internal/ledger"
	"github.com/minesupport/bookkeeper/internal/model"
)

const dateFormat = "2006-01-02"

func newTxnCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "txn",
		Aliases: []string{"transaction"},
		Short:   "Enter, post and inspect journal transactions",
	}
	cmd.AddCommand(
		newTxnAddCommand(g),
		newTxnEditCommand(g),
		newTxnPostCommand(g),
		newTxnDeleteCommand(g),
		newTxnListCommand(g),
		newTxnShowCommand(g),
	)
	return cmd
}

// txnFlags binds the fields of a transaction input.
type txnFlags struct {
	date  string
	desc  string
	lines []string
}

func (f *txnFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "transaction date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.desc, "desc", "", "transaction description")
	cmd.Flags().StringArrayVar(&f.lines, "line", nil, "journal line ACCOUNT:DEBIT:CREDIT[:MEMO], repeatable; ACCOUNT is a code or id")
}

// input builds a journal.Input from the flags that were set on top of base.
func (f *txnFlags) input(cmd *cobra.Command, b *book, base journal.Input) (journal.Input, error) {
	if cmd.Flags().Changed("date") {
		d, err := time.Parse(dateFormat, f.date)
		if err != nil {
			return journal.Input{}, fmt.Errorf("parsing --date %q: %w", f.date, err)
		}
		base.Date = d
	}
	if cmd.Flags().Changed("desc") {
		base.Description = strings.TrimSpace(f.desc)
	}
	if cmd.Flags().Changed("line") {
		base.Lines = nil
		for _, spec := range f.lines {
			line, err := parseLine(spec, b.accounts)
			if err != nil {
				return journal.Input{}, err
			}
			base.Lines = append(base.Lines, line)
		}
	}
	return base, nil
}

// accountResolver finds an account by id or code.
type accountResolver interface {
	Resolve(ref string) (model.Account, error)
}

// parseLine parses ACCOUNT:DEBIT:CREDIT[:MEMO]. Empty amounts are zero and
// the memo may itself contain colons.
func parseLine(spec string, accounts accountResolver) (model.JournalLine, error) {
	parts := strings.SplitN(spec, ":", 4)
	if len(parts) < 3 {
		return model.JournalLine{}, fmt.Errorf("line %q: want ACCOUNT:DEBIT:CREDIT[:MEMO]", spec)
	}

	acct, err := accounts.Resolve(strings.TrimSpace(parts[0]))
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("line %q: %w", spec, err)
	}

	amount := func(s string) (decimal.Decimal, error) {
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("line %q: amount %q: %w", spec, s, err)
		}
		return d, nil
	}
	debit, err := amount(parts[1])
	if err != nil {
		return model.JournalLine{}, err
	}
	credit, err := amount(parts[2])
	if err != nil {
		return model.JournalLine{}, err
	}

	line := model.JournalLine{AccountID: acct.ID, Debit: debit, Credit: credit}
	if len(parts) == 4 {
		line.Description = strings.TrimSpace(parts[3])
	}
	return line, nil
}

func newTxnAddCommand(g *globals) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a draft transaction",
		Example: `  bookkeeper txn add --date 2025-01-14 --desc "Diesel delivery" \
    --line 5010:4200.00: --line 2010::4200.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			in, err := f.input(cmd, b, journal.Input{})
			if err != nil {
				return err
			}
			txn, err := b.journal.Create(in)
			if err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionTxnCreate, txn.ID, txn.Description); err != nil {
				return err
			}
			return printTxnResult(cmd, g, b, txn, "Created draft")
		},
	}

	f.bind(cmd)
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("desc")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

func newTxnEditCommand(g *globals) *cobra.Command {
	var f txnFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the date, description or lines of a draft",
		Long: "Replace the date, description or lines of a draft transaction.\n" +
			"When --line is given, all existing lines are replaced.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			current, err := b.journal.Get(args[0])
			if err != nil {
				return err
			}
			in, err := f.input(cmd, b, journal.Input{
				Date:        current.Date,
				Description: current.Description,
				Lines:       current.Lines,
			})
			if err != nil {
				return err
			}
			txn, err := b.journal.Replace(current.ID, in)
			if err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionTxnEdit, txn.ID, txn.Description); err != nil {
				return err
			}
			return printTxnResult(cmd, g, b, txn, "Updated draft")
		},
	}

	f.bind(cmd)
	return cmd
}

func newTxnPostCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "post <id>",
		Short: "Post a balanced draft to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			txn, err := b.journal.Post(args[0])
			if err != nil {
				return err
			}
			debit, _ := txn.Totals()
			if err := b.record(cmd.Context(), auditlog.ActionTxnPost, txn.ID, money(debit)); err != nil {
				return err
			}
			return printTxnResult(cmd, g, b, txn, "Posted")
		},
	}
}

func newTxnDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a draft transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			txn, err := b.journal.Get(args[0])
			if err != nil {
				return err
			}
			if err := b.journal.Delete(txn.ID); err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionTxnDelete, txn.ID, txn.Description); err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": txn.ID})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted draft %s\n", txn.ID)
			return err
		},
	}
}

func newTxnListCommand(g *globals) *cobra.Command {
	var year, month int
	var statuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			var filter journal.Filter
			switch {
			case month < 0 || month > 12:
				return fmt.Errorf("--month must be between 1 and 12, got %d", month)
			case month != 0 && year == 0:
				return fmt.Errorf("--month requires --year")
			case month != 0:
				p := ledger.Month(year, time.Month(month))
				filter.Period = &p
			case year != 0:
				p := ledger.Year(year)
				filter.Period = &p
			}
			for _, s := range statuses {
				st, err := model.ParseStatus(strings.ToUpper(s))
				if err != nil {
					return err
				}
				filter.Statuses = append(filter.Statuses, st)
			}

			txns, err := b.journal.List(filter)
			if err != nil {
				return err
			}
			if g.json {
				if txns == nil {
					txns = []model.Transaction{}
				}
				return printJSON(cmd.OutOrStdout(), txns)
			}

			tbl := newTable(cmd.OutOrStdout(), "ID", "DATE", "STATUS", "DESCRIPTION", "DEBIT", "CREDIT")
			for _, t := range txns {
				debit, credit := t.Totals()
				tbl.row(t.ID, t.Date.Format(dateFormat), string(t.Status), t.Description, money(debit), money(credit))
			}
			return tbl.flush()
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "calendar year")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (requires --year)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "DRAFT and/or POSTED")
	return cmd
}

func newTxnShowCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a transaction and its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			txn, err := b.journal.Get(args[0])
			if err != nil {
				return err
			}
			return printTxnResult(cmd, g, b, txn, "")
		},
	}
}

// printTxnResult prints a transaction with its lines. A non-empty verb is
// printed as a heading.
func printTxnResult(cmd *cobra.Command, g *globals, b *book, txn model.Transaction, verb string) error {
	if g.json {
		return printJSON(cmd.OutOrStdout(), txn)
	}

	w := cmd.OutOrStdout()
	if verb != "" {
		fmt.Fprintf(w, "%s %s\n", verb, txn.ID)
	}
	fmt.Fprintf(w, "%s  %s  %s  %s\n\n", txn.ID, txn.Date.Format(dateFormat), txn.Status, txn.Description)

	tbl := newTable(w, "ACCOUNT", "NAME", "MEMO", "DEBIT", "CREDIT")
	for _, l := range txn.Lines {
		code, name := l.AccountID, "(unknown account)"
		if acct, err := b.accounts.Get(l.AccountID); err == nil {
			code, name = acct.Code, acct.Name
		}
		tbl.row(code, name, l.Description, blankZero(l.Debit), blankZero(l.Credit))
	}
	debit, credit := txn.Totals()
	tbl.row("", "", "TOTAL", money(debit), money(credit))
	if err := tbl.flush(); err != nil {
		return err
	}

	if imbalance := ledger.Imbalance(txn.Lines); !ledger.ValidateTransactionBalance(txn.Lines) {
		fmt.Fprintf(w, "\nUnbalanced by %s; this transaction cannot be posted until debits equal credits.\n", money(imbalance.Abs()))
	}
	return nil
}
