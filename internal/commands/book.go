package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/minesupport/bookkeeper/internal/accounts"
	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/config"
	"github.com/minesupport/bookkeeper/internal/gitops"
	"github.com/minesupport/bookkeeper/internal/journal"
	"github.com/minesupport/bookkeeper/internal/logging"
	"github.com/minesupport/bookkeeper/internal/report"
)

// book bundles the services of one opened book for a single command.
type book struct {
	root      string
	cfg       *config.Config
	log       zerolog.Logger
	accounts  *accounts.Service
	journal   *journal.Service
	reports   *report.Service
	committer *gitops.Committer
}

func openBook(cmd *cobra.Command, g *globals) (*book, error) {
	root, err := filepath.Abs(g.repo)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadBook(root)
	if err != nil {
		return nil, fmt.Errorf("opening book at %s: %w", root, err)
	}

	log, err := newLogger(cmd, g, cfg)
	if err != nil {
		return nil, err
	}

	accts, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}

	jrnl := journal.NewService(root, accts, log)
	return &book{
		root:     root,
		cfg:      cfg,
		log:      log,
		accounts: accts,
		journal:  jrnl,
		reports:  report.NewService(accts, jrnl, log),
		committer: &gitops.Committer{
			Dir:     root,
			Author:  gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
			Enabled: cfg.Git.AutoCommit,
			Log:     log,
		},
	}, nil
}

// newLogger builds the command logger. Flags win over config values.
func newLogger(cmd *cobra.Command, g *globals, cfg *config.Config) (zerolog.Logger, error) {
	level, format := g.logLevel, g.logFormat
	if level == "" {
		level = cfg.Logging.Level
	}
	if format == "" {
		format = cfg.Logging.Format
	}
	return logging.New(level, format, cmd.ErrOrStderr())
}

// record appends an activity log entry and commits the book. A failed
// commit is reported but does not undo the change.
func (b *book) record(ctx context.Context, action auditlog.Action, subject, details string) error {
	entry := auditlog.Entry{
		Timestamp: time.Now().UTC(),
		Actor:     b.cfg.Git.AuthorName,
		Action:    action,
		Subject:   subject,
		Details:   details,
	}
	if err := auditlog.Append(b.root, entry); err != nil {
		return fmt.Errorf("writing activity log: %w", err)
	}

	msg := fmt.Sprintf("%s: %s", action, subject)
	if details != "" {
		msg += " " + details
	}
	hash, err := b.committer.Commit(ctx, msg)
	if err != nil {
		b.log.Error().Err(err).Str("action", string(action)).Msg("auto-commit failed")
		return nil
	}
	if hash != "" {
		b.log.Info().Str("commit", hash).Str("action", string(action)).Msg("book committed")
	}
	return nil
}

// saveAccounts writes the chart of accounts.
func (b *book) saveAccounts() error {
	return b.accounts.Save(b.root)
}
