package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestCollectFilesSkipsExcludedDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "report.txt"))
	touch(t, filepath.Join(dir, "node_modules", "pkg", "index.js"))
	touch(t, filepath.Join(dir, ".git", "config"))

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "report.txt"), files[0])
}

func TestCollectFilesSkipsDotfilesAndDotDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, ".env"))
	touch(t, filepath.Join(dir, ".hidden", "secret.txt"))
	touch(t, filepath.Join(dir, "visible.txt"))

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "visible.txt"), files[0])
}

func TestCollectFilesSkipsExcludedExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "module.pyc"))
	touch(t, filepath.Join(dir, "lib.dll"))
	touch(t, filepath.Join(dir, "main.go"))

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "main.go"), files[0])
}

func TestCollectFilesDoesNotFollowSymlinks(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real.txt")
	touch(t, real)
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unsupported in this environment: %v", err)
	}

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "the symlink must not be collected as a second file")
}

func TestCollectFilesRootDotDirectoryIsStillWalked(t *testing.T) {
	dir, err := os.MkdirTemp("", ".clasptest")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	touch(t, filepath.Join(dir, "note.txt"))

	files, err := collectFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 1, "the walk root itself is exempt from the dot-directory skip")
}

func TestFileMetadataMissingFileReturnsFalse(t *testing.T) {
	_, _, ok := fileMetadata(filepath.Join(t.TempDir(), "missing.txt"))
	assert.False(t, ok)
}

func TestFileMetadataReturnsSizeAndModTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	touch(t, path)

	size, modTime, ok := fileMetadata(path)
	require.True(t, ok)
	assert.Equal(t, int64(1), size)
	assert.Greater(t, modTime, int64(0))
}
