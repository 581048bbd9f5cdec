package build

import (
	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/config"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/fixup"
	"github.com/arthur-debert/pkgweave/pkg/shims"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
)

// Options is everything a build needs besides its collaborators. Paths
// are relative to the workspace.
type Options struct {
	OutputDirectory         string
	OutputDirectoryPreEmpty bool

	Entrypoints            []entrypoints.Declaration
	GenerateDeclaration    bool
	GenerateDeclarationMap bool
	Target                 string
	Lib                    []string
	ImportsMap             string
	UseTSLibHelper         bool
	Mappings               map[string]transpiler.Mapping
	Shims                  shims.Options

	MetadataFile   string
	KeyOrder       []string
	LeadingExports []string

	Reconcile          bool
	SecondaryDirectory string

	FixInjectedImports bool
	Fixup              fixup.Options

	Copy []assets.Entry
}

// DefaultOptions mirrors the embedded configuration defaults
func DefaultOptions() Options {
	return Options{
		OutputDirectory:     "nodejs",
		GenerateDeclaration: true,
		Target:              "ES2022",
		MetadataFile:        "package.json",
		SecondaryDirectory:  "esm",
		FixInjectedImports:  true,
	}
}

// OptionsFromConfig converts a loaded configuration
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	copyEntries, err := cfg.CopyEntries()
	if err != nil {
		return Options{}, err
	}
	mappings, err := cfg.TranspilerMappings()
	if err != nil {
		return Options{}, err
	}

	return Options{
		OutputDirectory:         cfg.OutputDirectory,
		OutputDirectoryPreEmpty: cfg.OutputDirectoryPreEmpty,
		Entrypoints:             cfg.Declarations(),
		GenerateDeclaration:     cfg.GenerateDeclaration,
		GenerateDeclarationMap:  cfg.GenerateDeclarationMap,
		Target:                  cfg.Target,
		Lib:                     cfg.Lib,
		ImportsMap:              cfg.ImportsMap,
		UseTSLibHelper:          cfg.UseTSLibHelper,
		Mappings:                mappings,
		Shims:                   cfg.Shims,
		MetadataFile:            cfg.MetadataFile,
		KeyOrder:                cfg.Manifest.KeyOrder,
		LeadingExports:          cfg.Manifest.LeadingExports,
		Reconcile:               cfg.Reconcile.Enabled,
		SecondaryDirectory:      cfg.Reconcile.SecondaryDirectory,
		FixInjectedImports:      cfg.FixInjectedImports,
		Fixup: fixup.Options{
			Concurrency: cfg.Fixup.Concurrency,
			Skip:        cfg.Fixup.Skip,
		},
		Copy: copyEntries,
	}, nil
}
