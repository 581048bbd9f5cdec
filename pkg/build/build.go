// Package build runs the full packaging pipeline: entry point resolution,
// the external transform, output reconciliation, artifact fixup, manifest
// synthesis and asset copy.
package build

import (
	"context"
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/filesystem"
	"github.com/arthur-debert/pkgweave/pkg/fixup"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/arthur-debert/pkgweave/pkg/metadata"
	"github.com/arthur-debert/pkgweave/pkg/reconcile"
	"github.com/arthur-debert/pkgweave/pkg/shims"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
	"github.com/arthur-debert/pkgweave/pkg/workdir"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const (
	// ManifestFile is the manifest name inside the output directory
	ManifestFile = "package.json"
	// LockFile is removed from the output after the transform
	LockFile = "package-lock.json"
)

// Result summarizes a completed build
type Result struct {
	OutputDirectory string                 `json:"outputDirectory"`
	EntryPoints     []entrypoints.Resolved `json:"entryPoints"`
	Reconcile       *reconcile.Report      `json:"reconcile,omitempty"`
	Fixup           *fixup.Report          `json:"fixup,omitempty"`
	Manifest        string                 `json:"manifest"`
	Copied          []assets.Copy          `json:"copied"`
	Duration        time.Duration          `json:"duration"`
}

// Builder runs builds for one workspace
type Builder struct {
	fs         afero.Fs
	workspace  string
	transpiler transpiler.Transpiler
	copier     assets.Copier
	logger     zerolog.Logger
}

// New creates a builder. fsys is rooted at workspace; workspace is the
// directory the transpiler runs in.
func New(fsys afero.Fs, workspace string, tr transpiler.Transpiler, copier assets.Copier) *Builder {
	if copier == nil {
		copier = assets.NewFsCopier(fsys)
	}
	return &Builder{
		fs:         fsys,
		workspace:  workspace,
		transpiler: tr,
		copier:     copier,
		logger:     logging.GetLogger("build"),
	}
}

// Run executes the pipeline. Configuration problems are reported before
// anything is written. The context is checked between stages; a stage in
// progress is never interrupted.
func (b *Builder) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	done := logging.LogOperationStart(b.logger, "build")
	defer done()

	if b.transpiler == nil {
		return nil, errors.New(errors.ErrConfiguration, "no transpiler configured")
	}
	preview, err := b.Preview(opts)
	if err != nil {
		return nil, err
	}
	outDir := filepath.FromSlash(preview.Plan.OutDir)
	copies := preview.Copies

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Output directory
	if err := filesystem.EnsureDir(b.fs, outDir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to create output directory %s", outDir)
	}
	if opts.OutputDirectoryPreEmpty {
		if err := filesystem.EmptyDir(b.fs, outDir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to empty output directory %s", outDir)
		}
		b.logger.Debug().Str("dir", outDir).Msg("Emptied output directory")
	}

	// 2. Transform
	if err := b.transform(ctx, preview.Plan); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Transient lock file
	b.removeLockFile(outDir)

	result := &Result{
		OutputDirectory: filepath.ToSlash(outDir),
		EntryPoints:     preview.EntryPoints,
		Copied:          copies,
	}

	// 4. Reconcile
	if opts.Reconcile {
		report, err := reconcile.New(b.fs, outDir, opts.SecondaryDirectory).Reconcile()
		if err != nil {
			return nil, err
		}
		result.Reconcile = report
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 5. Fixup
	if opts.FixInjectedImports {
		report, err := fixup.FixTree(ctx, b.fs, outDir, opts.Fixup)
		if err != nil {
			return nil, err
		}
		result.Fixup = report
	}

	// 6. Manifest
	manifestPath := filepath.Join(outDir, ManifestFile)
	if err := b.ensureManifest(manifestPath, preview.Plan.Package); err != nil {
		return nil, err
	}
	if err := metadata.RefactorManifest(b.fs, manifestPath, preview.Fragment, opts.KeyOrder); err != nil {
		return nil, err
	}
	result.Manifest = filepath.ToSlash(manifestPath)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 7. Assets
	if err := b.copier.Copy(ctx, copies); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	b.logger.Info().
		Str("output", result.OutputDirectory).
		Int("entryPoints", len(result.EntryPoints)).
		Int("copied", len(copies)).
		Dur("duration", result.Duration).
		Msg("Build complete")
	return result, nil
}

// Preview is what a build would hand to the transpiler and copy
// afterwards, computed without touching the output directory.
type Preview struct {
	Plan        transpiler.Plan        `json:"plan"`
	EntryPoints []entrypoints.Resolved `json:"entryPoints"`
	Fragment    *metadata.Fragment     `json:"fragment"`
	Copies      []assets.Copy          `json:"copies"`
}

// Preview validates opts and computes the transform plan, the manifest
// fragment and the asset payload. It reads the workspace but writes nothing.
func (b *Builder) Preview(opts Options) (*Preview, error) {
	if opts.OutputDirectory == "" {
		return nil, errors.New(errors.ErrConfiguration, "output directory is not set")
	}
	outDir := filepath.Clean(opts.OutputDirectory)

	resolution, err := entrypoints.Resolve(opts.Entrypoints, opts.GenerateDeclaration)
	if err != nil {
		return nil, err
	}
	fragment, err := metadata.FragmentFromResolution(resolution, opts.GenerateDeclaration,
		metadata.WithLeadingExports(opts.LeadingExports...))
	if err != nil {
		return nil, err
	}
	base, err := b.readMetadata(opts.MetadataFile)
	if err != nil {
		return nil, err
	}

	copies, err := assets.Plan(b.fs, opts.Copy, outDir, outDir, ".git")
	if err != nil {
		return nil, err
	}
	b.logger.Debug().Int("copies", len(copies)).Msg("Computed asset payload")

	return &Preview{
		Plan:        b.plan(opts, outDir, resolution, base),
		EntryPoints: resolution.Resolved,
		Fragment:    fragment,
		Copies:      copies,
	}, nil
}

func (b *Builder) readMetadata(name string) (json.RawMessage, error) {
	if name == "" {
		return nil, errors.New(errors.ErrConfiguration, "metadata file is not set")
	}
	data, err := afero.ReadFile(b.fs, name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfiguration, "failed to read metadata file %s", name).
			WithDetail("path", name)
	}
	if _, err := metadata.ParseManifest(data); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifest, "metadata file %s is not a JSON object", name)
	}
	return json.RawMessage(data), nil
}

func (b *Builder) plan(opts Options, outDir string, resolution *entrypoints.Resolution, base json.RawMessage) transpiler.Plan {
	declaration := transpiler.DeclarationNone
	if opts.GenerateDeclaration {
		declaration = transpiler.DeclarationInline
	}
	return transpiler.Plan{
		EntryPoints:      resolution.Transpiler,
		OutDir:           filepath.ToSlash(outDir),
		CompilerOptions:  transpiler.DefaultCompilerOptions(opts.Target, opts.Lib, opts.UseTSLibHelper),
		Declaration:      declaration,
		DeclarationMap:   opts.GenerateDeclarationMap,
		ESModule:         true,
		ScriptModule:     false,
		ImportMap:        opts.ImportsMap,
		Mappings:         opts.Mappings,
		Package:          base,
		Shims:            shims.Resolve(opts.Shims),
		SkipNpmInstall:   true,
		SkipSourceOutput: true,
		Test:             false,
		TypeCheck:        false,
	}
}

func (b *Builder) transform(ctx context.Context, plan transpiler.Plan) error {
	done := logging.LogOperationStart(b.logger, "transform")
	defer done()

	run := func() error {
		return b.transpiler.Transform(ctx, b.workspace, plan)
	}

	var err error
	if bound, ok := b.transpiler.(transpiler.WorkdirBound); ok && bound.NeedsWorkdir() {
		err = workdir.Run(b.workspace, run)
	} else {
		err = run()
	}
	if err == nil {
		return nil
	}
	var weaveErr *errors.WeaveError
	if errors.As(err, &weaveErr) {
		return err
	}
	return errors.Wrap(err, errors.ErrTranspile, "transform failed")
}

func (b *Builder) removeLockFile(outDir string) {
	lock := filepath.Join(outDir, LockFile)
	removed, err := filesystem.RemoveIfExists(b.fs, lock)
	if err != nil {
		b.logger.Warn().Err(err).Str("path", lock).Msg("Failed to remove lock file")
		return
	}
	if removed {
		b.logger.Debug().Str("path", lock).Msg("Removed lock file")
	}
}

func (b *Builder) ensureManifest(path string, base json.RawMessage) error {
	exists, err := filesystem.Exists(b.fs, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to stat %s", path)
	}
	if exists {
		return nil
	}
	b.logger.Debug().Str("path", path).Msg("Writing base manifest")
	if err := afero.WriteFile(b.fs, path, base, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to write %s", path)
	}
	return nil
}
