package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		Actor:     "ops@minesupport.example",
		Action:    ActionTxnPost,
		Subject:   "2025-01-003",
		Details:   "Diesel delivery, 4200.00",
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActionTxnPost, entries[0].Action)

	data, err := os.ReadFile(filepath.Join(dir, Path))
	require.NoError(t, err)
	assert.Contains(t, string(data), Header+"\n")
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Action = ActionAccountCreate
	e2.Subject = "1500"
	e3 := testEntry()
	e3.Action = ActionTxnDelete
	require.NoError(t, Append(dir, e2, e3))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []Action{ActionTxnPost, ActionAccountCreate, ActionTxnDelete},
		[]Action{entries[0].Action, entries[1].Action, entries[2].Action})
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	require.NoError(t, Append(dir, original))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, Path), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestTail(t *testing.T) {
	dir := t.TempDir()
	for _, subject := range []string{"a", "b", "c", "d"} {
		e := testEntry()
		e.Subject = subject
		require.NoError(t, Append(dir, e))
	}

	last, err := Tail(dir, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, "c", last[0].Subject)
	assert.Equal(t, "d", last[1].Subject)

	all, err := Tail(dir, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUnmarshalEntry_Rejects(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields")

	_, err = UnmarshalEntry([]string{"yesterday", "", "txn_post", "", ""})
	assert.Error(t, err)

	_, err = UnmarshalEntry([]string{"2025-01-15T10:30:00Z", "", "", "", ""})
	assert.Error(t, err)
}

func TestTimestampFormat(t *testing.T) {
	e := testEntry()
	e.Timestamp = time.Date(2025, 1, 15, 12, 30, 0, 0, time.FixedZone("AWST", 8*3600))
	row := MarshalEntry(e)
	assert.Equal(t, "2025-01-15T04:30:00Z", row[0])
}
