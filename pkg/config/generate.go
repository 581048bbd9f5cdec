package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/pelletier/go-toml/v2"
)

const starterHeader = `# pkgweave configuration.
# See "pkgweave docs" for the build pipeline and every available key.

`

// candidate module sources, first existing one becomes the default module
var defaultModuleSources = []string{"mod.ts", "main.ts", "index.ts", "src/mod.ts"}

// candidate assets copied into the output directory when present
var defaultAssets = []string{"README.md", "LICENSE.md", "LICENSE"}

type starterConfig struct {
	OutputDirectory     string       `toml:"output_directory"`
	GenerateDeclaration bool         `toml:"generate_declaration"`
	Target              string       `toml:"target"`
	Entrypoints         []Entrypoint `toml:"entrypoint"`
	Copy                []CopyEntry  `toml:"copy,omitempty"`
}

// GenerateStarter returns a starter pkgweave.toml for workspace, seeded
// with the module source and assets found there
func GenerateStarter(workspace string) ([]byte, error) {
	defaults, err := LoadDefaults()
	if err != nil {
		return nil, err
	}

	starter := starterConfig{
		OutputDirectory:     defaults.OutputDirectory,
		GenerateDeclaration: defaults.GenerateDeclaration,
		Target:              defaults.Target,
		Entrypoints:         []Entrypoint{{Name: ".", Path: "./mod.ts"}},
	}
	for _, candidate := range defaultModuleSources {
		if fileExists(filepath.Join(workspace, candidate)) {
			starter.Entrypoints[0].Path = "./" + candidate
			break
		}
	}
	for _, asset := range defaultAssets {
		if fileExists(filepath.Join(workspace, asset)) {
			starter.Copy = append(starter.Copy, CopyEntry{From: asset})
		}
	}

	var buf bytes.Buffer
	buf.WriteString(starterHeader)
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(starter); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode starter config")
	}
	return buf.Bytes(), nil
}

// WriteStarter writes the starter config to the workspace. An existing
// config file is only replaced when force is set.
func WriteStarter(workspace string, force bool) (string, error) {
	path := filepath.Join(workspace, FileNames[0])
	if existing := FindConfigFile(workspace); existing != "" && !force {
		return existing, errors.Newf(errors.ErrInvalidInput, "config file %s already exists", existing).
			WithDetail("path", existing)
	}
	content, err := GenerateStarter(workspace)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", errors.Wrapf(err, errors.ErrFilesystem, "failed to write %s", path)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
