package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/accounts"
	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/model"
)

func newAccountCommand(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts"},
		Short:   "Manage the chart of accounts",
	}
	cmd.AddCommand(
		newAccountListCommand(g),
		newAccountAddCommand(g),
		newAccountEditCommand(g),
		newAccountSetActiveCommand(g, "activate", true),
		newAccountSetActiveCommand(g, "deactivate", false),
		newAccountDeleteCommand(g),
	)
	return cmd
}

func newAccountListCommand(g *globals) *cobra.Command {
	var activeOnly bool
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts ordered by code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			var list []model.Account
			switch {
			case typ != "":
				t, err := model.ParseAccountType(strings.ToUpper(typ))
				if err != nil {
					return err
				}
				list = b.accounts.ByType(t)
				if activeOnly {
					list = filterAccounts(list, func(a model.Account) bool { return a.IsActive })
				}
			case activeOnly:
				list = b.accounts.Active()
			default:
				list = b.accounts.All()
			}

			if g.json {
				if list == nil {
					list = []model.Account{}
				}
				return printJSON(cmd.OutOrStdout(), list)
			}
			tbl := newTable(cmd.OutOrStdout(), "CODE", "NAME", "TYPE", "CATEGORY", "STATUS", "ID")
			for _, a := range list {
				status := "active"
				if !a.IsActive {
					status = "inactive"
				}
				tbl.row(a.Code, a.Name, string(a.Type), a.Category, status, a.ID)
			}
			return tbl.flush()
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active accounts")
	cmd.Flags().StringVar(&typ, "type", "", "only accounts of this type")
	return cmd
}

// accountFlags binds the editable account fields.
type accountFlags struct {
	code, name, typ, category string
}

func (f *accountFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.code, "code", "", "account code")
	cmd.Flags().StringVar(&f.name, "name", "", "account name")
	cmd.Flags().StringVar(&f.typ, "type", "", "ASSET, LIABILITY, EQUITY, REVENUE or EXPENSE")
	cmd.Flags().StringVar(&f.category, "category", "", "presentation category, e.g. OPERATIONAL")
}

// params overlays the flags that were set on base.
func (f *accountFlags) params(cmd *cobra.Command, base accounts.Params) accounts.Params {
	if cmd.Flags().Changed("code") {
		base.Code = strings.TrimSpace(f.code)
	}
	if cmd.Flags().Changed("name") {
		base.Name = strings.TrimSpace(f.name)
	}
	if cmd.Flags().Changed("type") {
		base.Type = model.AccountType(strings.ToUpper(f.typ))
	}
	if cmd.Flags().Changed("category") {
		base.Category = strings.ToUpper(strings.TrimSpace(f.category))
	}
	return base
}

func newAccountAddCommand(g *globals) *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			acct, err := b.accounts.Create(f.params(cmd, accounts.Params{}))
			if err != nil {
				return err
			}
			if err := b.saveAccounts(); err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionAccountCreate, acct.Code, acct.Name); err != nil {
				return err
			}
			return printAccount(cmd, g, acct, "Added")
		},
	}

	f.bind(cmd)
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newAccountEditCommand(g *globals) *cobra.Command {
	var f accountFlags

	cmd := &cobra.Command{
		Use:   "edit <id|code>",
		Short: "Change an account's code, name, type or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			acct, err := b.accounts.Resolve(args[0])
			if err != nil {
				return err
			}
			p := f.params(cmd, accounts.Params{
				Code:     acct.Code,
				Name:     acct.Name,
				Type:     acct.Type,
				Category: acct.Category,
			})
			acct, err = b.accounts.Update(acct.ID, p, b.journal)
			if err != nil {
				return err
			}
			if err := b.saveAccounts(); err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionAccountUpdate, acct.Code, acct.Name); err != nil {
				return err
			}
			return printAccount(cmd, g, acct, "Updated")
		},
	}

	f.bind(cmd)
	return cmd
}

func newAccountSetActiveCommand(g *globals, use string, active bool) *cobra.Command {
	action, verb := auditlog.ActionAccountActivate, "Activated"
	short := "Allow new journal lines on an account"
	if !active {
		action, verb = auditlog.ActionAccountDeactivate, "Deactivated"
		short = "Stop new journal lines on an account; history is kept"
	}

	return &cobra.Command{
		Use:   use + " <id|code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			acct, err := b.accounts.Resolve(args[0])
			if err != nil {
				return err
			}
			acct, err = b.accounts.SetActive(acct.ID, active)
			if err != nil {
				return err
			}
			if err := b.saveAccounts(); err != nil {
				return err
			}
			if err := b.record(cmd.Context(), action, acct.Code, acct.Name); err != nil {
				return err
			}
			return printAccount(cmd, g, acct, verb)
		},
	}
}

func newAccountDeleteCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|code>",
		Short: "Delete an account that no journal line uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			acct, err := b.accounts.Resolve(args[0])
			if err != nil {
				return err
			}
			if err := b.accounts.Delete(acct.ID, b.journal); err != nil {
				return err
			}
			if err := b.saveAccounts(); err != nil {
				return err
			}
			if err := b.record(cmd.Context(), auditlog.ActionAccountDelete, acct.Code, acct.Name); err != nil {
				return err
			}
			return printAccount(cmd, g, acct, "Deleted")
		},
	}
}

func printAccount(cmd *cobra.Command, g *globals, acct model.Account, verb string) error {
	if g.json {
		return printJSON(cmd.OutOrStdout(), acct)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s account %s %s (%s)\n", verb, acct.Code, acct.Name, acct.Type)
	return err
}

func filterAccounts(list []model.Account, keep func(model.Account) bool) []model.Account {
	var out []model.Account
	for _, a := range list {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
