package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS_RootsPaths(t *testing.T) {
	tmpDir := t.TempDir()
	fs := NewOS(tmpDir)

	require.NoError(t, fs.MkdirAll("out/sub", 0755))
	require.NoError(t, afero.WriteFile(fs, "out/sub/a.js", []byte("hello"), 0644))

	content, err := os.ReadFile(filepath.Join(tmpDir, "out", "sub", "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	real, err := RealPath(fs, "out/sub/a.js")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "out", "sub", "a.js"), real)
}

func TestRealPath_Memory(t *testing.T) {
	got, err := RealPath(NewMemory(), "out/a.js")
	require.NoError(t, err)
	assert.Equal(t, "out/a.js", got)
}

func TestEmptyDir(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, afero.WriteFile(fs, "out/a.js", []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fs, "out/nested/b.js", []byte("b"), 0644))

	require.NoError(t, EmptyDir(fs, "out"))

	files, err := ListFiles(fs, "out")
	require.NoError(t, err)
	assert.Empty(t, files)
	ok, err := afero.DirExists(fs, "out")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, EmptyDir(fs, "fresh"))
	ok, err = afero.DirExists(fs, "fresh")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRemoveIfExists(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, afero.WriteFile(fs, "out/package-lock.json", []byte("{}"), 0644))

	removed, err := RemoveIfExists(fs, "out/package-lock.json")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveIfExists(fs, "out/package-lock.json")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListFilesAndDirs(t *testing.T) {
	fs := NewMemory()
	require.NoError(t, afero.WriteFile(fs, "out/esm/a/b.js", []byte("b"), 0644))
	require.NoError(t, afero.WriteFile(fs, "out/esm/c.js", []byte("c"), 0644))
	require.NoError(t, afero.WriteFile(fs, "out/c.js", []byte("root"), 0644))

	files, err := ListFiles(fs, "out/esm")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/b.js", "c.js"}, files)

	dirs, err := ListDirs(fs, "out")
	require.NoError(t, err)
	assert.Equal(t, []string{"esm/a", "esm"}, dirs)

	files, err = ListFiles(fs, "missing")
	require.NoError(t, err)
	assert.Nil(t, files)
}
