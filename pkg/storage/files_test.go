package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreSaveOpenDelete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	name, err := fs.Save("reports/risk.csv", []byte("a,b\n"))
	require.NoError(t, err)
	assert.Equal(t, "reports/risk.csv", name)

	f, err := fs.Open(name)
	require.NoError(t, err)
	raw, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "a,b\n", string(raw))

	require.NoError(t, fs.Delete(name))
	require.NoError(t, fs.Delete(name))
	_, err = fs.Open(name)
	assert.Error(t, err)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Save("../escape.csv", []byte("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = fs.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestFileStorePrune(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)

	_, err = fs.Save("old.csv", []byte("x"))
	require.NoError(t, err)
	_, err = fs.Save("new.csv", []byte("y"))
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "old.csv"), past, past))

	removed, err := fs.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"old.csv"}, removed)
}
