package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStarter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.ts"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte(""), 0644))

	content, err := GenerateStarter(dir)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "# pkgweave configuration.")
	assert.Contains(t, text, `output_directory = 'nodejs'`)
	assert.Contains(t, text, "[[entrypoint]]")
	assert.Contains(t, text, `path = './main.ts'`)
	assert.Contains(t, text, "[[copy]]")
	assert.Contains(t, text, `from = 'README.md'`)
	assert.NotContains(t, text, "LICENSE")
}

func TestWriteStarter_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteStarter(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "pkgweave.toml"), path)

	cfg, err := Load(LoadOptions{Workspace: dir})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []Entrypoint{{Name: ".", Path: "./mod.ts"}}, cfg.Entrypoints)

	_, err = WriteStarter(dir, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = WriteStarter(dir, true)
	require.NoError(t, err)
}

func TestGetDefaultsContent(t *testing.T) {
	assert.Contains(t, GetDefaultsContent(), `output_directory = "nodejs"`)
}
