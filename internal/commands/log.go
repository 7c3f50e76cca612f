package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/auditlog"
)

func newLogCommand(g *globals) *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show recent changes from the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBook(cmd, g)
			if err != nil {
				return err
			}

			entries, err := auditlog.Tail(b.root, n)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tbl := newTable(cmd.OutOrStdout(), "TIME", "ACTOR", "ACTION", "SUBJECT", "DETAILS")
			for _, e := range entries {
				tbl.row(e.Timestamp.Local().Format(time.DateTime), e.Actor, string(e.Action), e.Subject, e.Details)
			}
			return tbl.flush()
		},
	}

	cmd.Flags().IntVarP(&n, "number", "n", 20, "number of entries to show (-1 for all)")
	return cmd
}
