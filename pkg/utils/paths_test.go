package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPathsShareDataDir(t *testing.T) {
	dir := DefaultDataDir()
	assert.Equal(t, filepath.Join(dir, "moalif.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join(dir, "documents"), DefaultDocumentsDir())
	assert.Equal(t, filepath.Join(dir, "exports"), DefaultExportDir())
}

func TestResolveAndEnsureDBPath(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "nested", "dir", "books.db")

	got, err := ResolveAndEnsureDBPath(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	got, err = ResolveAndEnsureDBPath(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/books/moalif.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books", "moalif.db"), got)

	got, err = ExpandPath("relative.db")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}
