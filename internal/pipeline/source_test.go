package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFrameFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestDirSourceDeliversInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFrameFile(t, dir, "frame_002.jpg", []byte("two"))
	writeFrameFile(t, dir, "frame_001.jpg", []byte("one"))
	writeFrameFile(t, dir, "notes.txt", []byte("ignored"))

	src, err := NewDirSource(dir, 0)
	require.NoError(t, err)

	ctx := context.Background()

	f1, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), f1.Data)
	assert.Equal(t, uint64(1), f1.Number)

	f2, err := src.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), f2.Data)
	assert.Equal(t, uint64(2), f2.Number)

	_, err = src.Next(ctx)
	assert.True(t, errors.Is(err, ErrSourceDrained))
}

func TestDirSourceRejectsEmptyDir(t *testing.T) {
	_, err := NewDirSource(t.TempDir(), 0)
	assert.Error(t, err)
}

func TestDirSourceMissingDir(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "missing"), 0)
	assert.Error(t, err)
}
