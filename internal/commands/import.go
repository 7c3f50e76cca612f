package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/importer"
	"github.com/minesupport/bookkeeper/internal/journal"
	"github.com/minesupport/bookkeeper/internal/model"
)

func newImportCommand(g *globals) *cobra.Command {
	var format, bank, offset string

	registry := importer.DefaultRegistry()

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Create draft transactions from bank statement CSVs",
		Long: "Create one draft transaction per statement line, against the bank\n" +
			"account and an offset account to be reclassified before posting.\n" +
			"Without arguments every CSV in import/ is read and then moved to\n" +
			"import/processed/.",
		Example: `  bookkeeper import --format commbank --bank 1020 --offset 5090
  bookkeeper import statement.csv --format generic --bank 1020 --offset 5090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := registry.Get(format)
			if parser == nil {
				return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(registry.Formats(), ", "))
			}

			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}
			bankAcct, err := b.accounts.Resolve(bank)
			if err != nil {
				return fmt.Errorf("--bank: %w", err)
			}
			offsetAcct, err := b.accounts.Resolve(offset)
			if err != nil {
				return fmt.Errorf("--offset: %w", err)
			}

			scanned := len(args) == 0
			paths := args
			if scanned {
				files, err := importer.Scan(b.root)
				if err != nil {
					return err
				}
				for _, f := range files {
					paths = append(paths, f.Path)
				}
			}

			var created []model.Transaction
			for _, path := range paths {
				txns, err := importFile(b, parser, path, bankAcct.ID, offsetAcct.ID)
				created = append(created, txns...)
				if len(txns) > 0 {
					details := fmt.Sprintf("%d drafts %s..%s", len(txns), txns[0].ID, txns[len(txns)-1].ID)
					if rerr := b.record(cmd.Context(), auditlog.ActionTxnImport, filepath.Base(path), details); rerr != nil {
						return errors.Join(err, rerr)
					}
				}
				if err != nil {
					return err
				}
				if scanned {
					if err := importer.MarkProcessed(b.root, filepath.Base(path)); err != nil {
						return err
					}
				}
			}

			if g.json {
				if created == nil {
					created = []model.Transaction{}
				}
				return printJSON(cmd.OutOrStdout(), created)
			}
			w := cmd.OutOrStdout()
			if len(created) == 0 {
				_, err := fmt.Fprintln(w, "Nothing to import")
				return err
			}
			fmt.Fprintf(w, "Imported %d draft transactions from %d files\n\n", len(created), len(paths))
			tbl := newTable(w, "ID", "DATE", "DESCRIPTION", "AMOUNT")
			for _, t := range created {
				debit, _ := t.Totals()
				tbl.row(t.ID, t.Date.Format(dateFormat), t.Description, money(debit))
			}
			return tbl.flush()
		},
	}

	cmd.Flags().StringVar(&format, "format", "generic", "statement format: "+strings.Join(registry.Formats(), ", "))
	cmd.Flags().StringVar(&bank, "bank", "", "bank account code or id (required)")
	cmd.Flags().StringVar(&offset, "offset", "", "offset account code or id (required)")
	_ = cmd.MarkFlagRequired("bank")
	_ = cmd.MarkFlagRequired("offset")
	return cmd
}

// importFile validates every line of one statement before creating any
// draft. It returns the drafts created before a failure.
func importFile(b *book, parser importer.Parser, path, bankID, offsetID string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	lines, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	inputs := importer.Drafts(lines, bankID, offsetID)
	for i, in := range inputs {
		if err := journal.ValidateInput(in, b.accounts); err != nil {
			return nil, fmt.Errorf("%s: statement line %d: %w", filepath.Base(path), i+1, err)
		}
	}

	var created []model.Transaction
	for _, in := range inputs {
		txn, err := b.journal.Create(in)
		if err != nil {
			return created, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		created = append(created, txn)
	}
	b.log.Info().Str("file", filepath.Base(path)).Int("drafts", len(created)).Msg("statement imported")
	return created, nil
}
