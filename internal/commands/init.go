package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/accounts"
	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/config"
	"github.com/minesupport/bookkeeper/internal/gitops"
	"github.com/minesupport/bookkeeper/internal/importer"
	"github.com/minesupport/bookkeeper/internal/logging"
)

func newInitCommand(g *globals) *cobra.Command {
	var name string
	var currency string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new book",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.repo
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, g, absDir, name, currency, !noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "AUD", "ISO 4217 currency code")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not initialize a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, g *globals, dir, name, currency string, useGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already contains a book", dir)
	}

	cfg := config.Default(name, currency)
	cfg.Git.AutoCommit = useGit
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(g.logLevel, g.logFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	for _, d := range []string{"accounts", "logs", importer.Dir} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	chart := accounts.NewService(accounts.DefaultChart())
	if err := chart.Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	gitignore := ".env\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	b := &book{
		root: dir,
		cfg:  cfg,
		log:  log,
		committer: &gitops.Committer{
			Dir:     dir,
			Author:  gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
			Enabled: useGit,
			Log:     log,
		},
	}

	if useGit && !gitops.IsRepo(dir) {
		if err := gitops.Init(cmd.Context(), dir); err != nil {
			return err
		}
	}
	if err := b.record(cmd.Context(), auditlog.ActionInit, name, fmt.Sprintf("%d accounts", len(chart.All()))); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized book %q at %s\n", name, dir)
	return nil
}
