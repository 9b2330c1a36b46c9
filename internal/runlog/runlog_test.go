package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2025, 11, 30, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		Source:        "statements/2025-11.pdf",
		Output:        "expenses_converted.json",
		Written:       42,
		Skipped:       3,
		RulesAdded:    2,
		Uncategorized: 1,
	}
}

func TestAppend_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history", "runs.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Header+"\n2025-11-30T10:30:00Z,statements/2025-11.pdf,expenses_converted.json,42,3,2,1\n", string(data))
}

func TestAppend_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	require.NoError(t, Append(path, []Entry{testEntry()}))

	e2 := testEntry()
	e2.Source = "statements/2025-12.pdf"
	require.NoError(t, Append(path, []Entry{e2}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "statements/2025-11.pdf", entries[0].Source)
	assert.Equal(t, "statements/2025-12.pdf", entries[1].Source)
}

func TestRead_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	original := testEntry()
	original.Source = `weird, "quoted" name.pdf`
	require.NoError(t, Append(path, []Entry{original}))

	entries, err := Read(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	got.Timestamp = original.Timestamp
	assert.Equal(t, original, got)
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(filepath.Join(t.TempDir(), "runs.csv"))
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	entries, err := Read(path)
	require.NoError(t, err)
	assert.Nil(t, entries)

	// An empty file still gets a header on first append.
	require.NoError(t, Append(path, []Entry{testEntry()}))
	entries, err = Read(path)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	good := MarshalEntry(testEntry())

	_, err := UnmarshalEntry(good[:3])
	assert.Error(t, err)

	bad := append([]string(nil), good...)
	bad[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(bad)
	assert.Error(t, err)

	bad = append([]string(nil), good...)
	bad[colRulesAdded] = "two"
	_, err = UnmarshalEntry(bad)
	assert.ErrorContains(t, err, "rules_added")
}
