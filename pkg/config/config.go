package config

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/shims"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
)

// Config is the complete pkgweave configuration
type Config struct {
	// Workspace is the absolute workspace directory, set by Load
	Workspace string `koanf:"-"`

	OutputDirectory         string   `koanf:"output_directory"`
	OutputDirectoryPreEmpty bool     `koanf:"output_directory_pre_empty"`
	FixInjectedImports      bool     `koanf:"fix_injected_imports"`
	GenerateDeclaration     bool     `koanf:"generate_declaration"`
	GenerateDeclarationMap  bool     `koanf:"generate_declaration_map"`
	Target                  string   `koanf:"target"`
	Lib                     []string `koanf:"lib"`
	ImportsMap              string   `koanf:"imports_map"`
	UseTSLibHelper          bool     `koanf:"use_tslib_helper"`
	MetadataFile            string   `koanf:"metadata_file"`

	Manifest    Manifest      `koanf:"manifest"`
	Reconcile   Reconcile     `koanf:"reconcile"`
	Fixup       Fixup         `koanf:"fixup"`
	Entrypoints []Entrypoint  `koanf:"entrypoint"`
	Copy        []CopyEntry   `koanf:"copy"`
	Mappings    []Mapping     `koanf:"mapping"`
	Shims       shims.Options `koanf:"shims"`
	Transpiler  Transpiler    `koanf:"transpiler"`
}

// Manifest controls package.json synthesis
type Manifest struct {
	KeyOrder       []string `koanf:"key_order"`
	LeadingExports []string `koanf:"leading_exports"`
}

// Reconcile controls merging of the secondary output tree
type Reconcile struct {
	Enabled            bool   `koanf:"enabled"`
	SecondaryDirectory string `koanf:"secondary_directory"`
}

// Fixup controls the injected import repair
type Fixup struct {
	Concurrency int      `koanf:"concurrency"`
	Skip        []string `koanf:"skip"`
}

// Entrypoint declares one module or executable
type Entrypoint struct {
	Name       string `koanf:"name" toml:"name"`
	Path       string `koanf:"path" toml:"path"`
	Executable bool   `koanf:"executable" toml:"executable,omitempty"`
}

// CopyEntry selects workspace files copied into the output directory
type CopyEntry struct {
	From   string `koanf:"from" toml:"from,omitempty"`
	Glob   string `koanf:"glob" toml:"glob,omitempty"`
	Regexp string `koanf:"regexp" toml:"regexp,omitempty"`
	To     string `koanf:"to" toml:"to,omitempty"`
}

// Mapping redirects a specifier to a local file or an npm package
type Mapping struct {
	Specifier string `koanf:"specifier"`
	Path      string `koanf:"path"`
	Name      string `koanf:"name"`
	Version   string `koanf:"version"`
	SubPath   string `koanf:"sub_path"`
}

// Transpiler configures the external transpiler command
type Transpiler struct {
	Command []string          `koanf:"command"`
	Env     map[string]string `koanf:"env"`
}

// Validate reports the first configuration problem found
func (c *Config) Validate() error {
	if err := validateRelativeDir("output_directory", c.OutputDirectory); err != nil {
		return err
	}
	if c.Reconcile.Enabled {
		if err := validateRelativeDir("reconcile.secondary_directory", c.Reconcile.SecondaryDirectory); err != nil {
			return err
		}
	}
	if c.Fixup.Concurrency < 0 {
		return errors.Newf(errors.ErrConfiguration, "fixup.concurrency must not be negative, got %d", c.Fixup.Concurrency)
	}
	if strings.TrimSpace(c.MetadataFile) == "" {
		return errors.New(errors.ErrConfiguration, "metadata_file is not set")
	}
	if _, err := entrypoints.Resolve(c.Declarations(), c.GenerateDeclaration); err != nil {
		return err
	}
	if _, err := c.CopyEntries(); err != nil {
		return err
	}
	if _, err := c.TranspilerMappings(); err != nil {
		return err
	}
	return nil
}

// Declarations returns the entry points in declaration order
func (c *Config) Declarations() []entrypoints.Declaration {
	decls := make([]entrypoints.Declaration, 0, len(c.Entrypoints))
	for _, ep := range c.Entrypoints {
		kind := entrypoints.Module
		if ep.Executable {
			kind = entrypoints.Executable
		}
		decls = append(decls, entrypoints.Declaration{Kind: kind, Name: ep.Name, Path: ep.Path})
	}
	return decls
}

// CopyEntries parses the copy entries
func (c *Config) CopyEntries() ([]assets.Entry, error) {
	entries := make([]assets.Entry, 0, len(c.Copy))
	for i, ce := range c.Copy {
		entry, err := assets.NewEntry(ce.From, ce.Glob, ce.Regexp, ce.To)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfiguration, "invalid copy entry #%d", i+1)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// TranspilerMappings returns the specifier mappings keyed by specifier
func (c *Config) TranspilerMappings() (map[string]transpiler.Mapping, error) {
	if len(c.Mappings) == 0 {
		return nil, nil
	}
	mappings := make(map[string]transpiler.Mapping, len(c.Mappings))
	for _, m := range c.Mappings {
		if m.Specifier == "" {
			return nil, errors.New(errors.ErrConfiguration, "mapping specifier is empty")
		}
		if (m.Path == "") == (m.Name == "") {
			return nil, errors.Newf(errors.ErrConfiguration, "mapping %q needs exactly one of path or name", m.Specifier)
		}
		if _, dup := mappings[m.Specifier]; dup {
			return nil, errors.Newf(errors.ErrConfiguration, "found duplicated mapping %q", m.Specifier)
		}
		mappings[m.Specifier] = transpiler.Mapping{
			Path:    m.Path,
			Name:    m.Name,
			Version: m.Version,
			SubPath: m.SubPath,
		}
	}
	return mappings, nil
}

func validateRelativeDir(key, dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.Newf(errors.ErrConfiguration, "%s is not set", key)
	}
	cleaned := path.Clean(filepath.ToSlash(dir))
	if path.IsAbs(cleaned) || filepath.IsAbs(dir) {
		return errors.Newf(errors.ErrConfiguration, "%s %q must be relative", key, dir)
	}
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.Newf(errors.ErrConfiguration, "%s %q must be a subdirectory of the workspace", key, dir)
	}
	return nil
}
