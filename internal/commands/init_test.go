package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minesupport/bookkeeper/internal/accounts"
	"github.com/minesupport/bookkeeper/internal/auditlog"
	"github.com/minesupport/bookkeeper/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "bookkeeper-test-*")
	if err != nil {
		panic(err)
	}

	binaryPath = filepath.Join(tmpDir, "bookkeeper")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/bookkeeper")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		os.RemoveAll(tmpDir)
		panic("failed to build binary: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func runBookkeeper(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--no-git")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Initialized book "Pilbara Haulage"`)

	for _, d := range []string{"accounts", "logs", "import"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err), "--no-git should not create a repository")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--currency", "USD", "--no-git")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Pilbara Haulage", cfg.Business.Name)
	assert.Equal(t, "USD", cfg.Business.Currency)
	assert.Equal(t, "01-01", cfg.Fiscal.YearStart)
	assert.False(t, cfg.Git.AutoCommit)
}

func TestInit_Accounts(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--no-git")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	require.NoError(t, err)
	defer f.Close()

	accts, err := accounts.ReadAccounts(f)
	require.NoError(t, err)
	assert.Len(t, accts, len(accounts.DefaultChart()))
}

func TestInit_ActivityLog(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--no-git")
	require.NoError(t, err)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, auditlog.ActionInit, entries[0].Action)
	assert.Equal(t, "Pilbara Haulage", entries[0].Subject)
}

func TestInit_GitRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	out, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage")
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	// git log should have an init commit.
	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	got, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(got), "init: Pilbara Haulage")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	got, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(got), "Bookkeeper <bookkeeper@example.com>")

	// The activity log is part of the commit.
	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	got, err = status.Output()
	require.NoError(t, err)
	assert.Empty(t, string(got))
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".env")
}

func TestInit_RequiresName(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir)
	require.Error(t, err, "init without --name should fail")
}

func TestInit_RefusesExistingBook(t *testing.T) {
	dir := t.TempDir()
	_, err := runBookkeeper(t, "init", dir, "--name", "Pilbara Haulage", "--no-git")
	require.NoError(t, err)

	out, err := runBookkeeper(t, "init", dir, "--name", "Other", "--no-git")
	require.Error(t, err)
	assert.Contains(t, out, "already contains a book")
}

func TestVersion(t *testing.T) {
	out, err := runBookkeeper(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "bookkeeper version dev")
}
