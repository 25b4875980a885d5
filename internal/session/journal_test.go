package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := NewLog(base)
	l.Append(detection("ABC123", base.Add(time.Second)))
	l.Append(detection("XYZ999", base.Add(3*time.Second)))

	j, err := NewJournal(dir, l.ID())
	require.NoError(t, err)
	require.NoError(t, j.Persist(l.Document()))

	got, err := Load(j.Path())
	require.NoError(t, err)

	want := l.Document()
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, want.SessionStart, got.SessionStart)
	assert.Equal(t, want.TotalDetections, got.TotalDetections)
	assert.Equal(t, want.Detections, got.Detections)
}

func TestPersistRewritesWholeDocument(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := NewLog(base)
	j, err := NewJournal(dir, l.ID())
	require.NoError(t, err)

	l.Append(detection("ABC123", base))
	require.NoError(t, j.Persist(l.Document()))

	l.Append(detection("XYZ999", base.Add(10*time.Second)))
	require.NoError(t, j.Persist(l.Document()))

	got, err := Load(j.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalDetections)
	assert.Len(t, got.Detections, 2)
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := NewLog(base)
	j, err := NewJournal(dir, l.ID())
	require.NoError(t, err)
	require.NoError(t, j.Persist(l.Document()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(j.Path()), entries[0].Name())
}

func TestPersistedFileIsValidJSON(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := NewLog(base)
	l.Append(detection("ABC123", base))

	j, err := NewJournal(dir, l.ID())
	require.NoError(t, err)
	require.NoError(t, j.Persist(l.Document()))

	data, err := os.ReadFile(j.Path())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "session_id")
	assert.Contains(t, raw, "session_start")
	assert.Contains(t, raw, "total_detections")
	assert.Contains(t, raw, "detections")
}

func TestPersistFailureIsAPersistError(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)

	l := NewLog(base)
	j, err := NewJournal(dir, l.ID())
	require.NoError(t, err)

	// Pull the directory out from under the journal.
	require.NoError(t, os.RemoveAll(dir))

	err = j.Persist(l.Document())
	require.Error(t, err)

	var perr *PersistError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, j.Path(), perr.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
