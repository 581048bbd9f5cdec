package build

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/config"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/filesystem"
	"github.com/arthur-debert/pkgweave/pkg/metadata"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	polyfill = "import \"./_dnt.polyfills.js\";\n"
	shebang  = "#!/usr/bin/env node\n"
)

func newWorkspace(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"package.json": `{"version":"1.0.0","name":"x","license":"MIT"}`,
		"mod.ts":       "export const a = 1;",
		"cli.ts":       "console.log(1);",
		"README.md":    "# x",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0644))
	}
	return fs
}

func baseOptions() Options {
	opts := DefaultOptions()
	opts.Entrypoints = []entrypoints.Declaration{
		{Kind: entrypoints.Module, Name: ".", Path: "mod.ts"},
		{Kind: entrypoints.Executable, Name: "x", Path: "cli.ts"},
	}
	return opts
}

// emitter simulates a transpiler writing the dual-format output tree
func emitter(fs afero.Fs, files map[string]string) transpiler.Func {
	return func(ctx context.Context, workspace string, plan transpiler.Plan) error {
		for name, content := range files {
			full := filepath.Join(plan.OutDir, name)
			if err := fs.MkdirAll(filepath.Dir(full), 0755); err != nil {
				return err
			}
			if err := afero.WriteFile(fs, full, []byte(content), 0644); err != nil {
				return err
			}
		}
		return nil
	}
}

func read(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func TestRun_FullPipeline(t *testing.T) {
	fs := newWorkspace(t)
	tr := emitter(fs, map[string]string{
		"mod.js":                "script",
		"esm/mod.js":            polyfill + "export const a = 1;\n" + polyfill,
		"esm/cli.js":            polyfill + shebang + polyfill + "console.log(1);\n",
		"esm/_dnt.polyfills.js": polyfill + polyfill,
		"package-lock.json":     "{}",
	})

	opts := baseOptions()
	opts.Reconcile = true
	entry, err := assets.NewEntry("README.md", "", "", "")
	require.NoError(t, err)
	opts.Copy = []assets.Entry{entry}

	result, err := New(fs, "/ws", tr, nil).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, polyfill+"export const a = 1;\n", read(t, fs, "nodejs/mod.js"))
	assert.Equal(t, shebang+polyfill+"console.log(1);\n", read(t, fs, "nodejs/cli.js"))
	assert.Equal(t, polyfill+polyfill, read(t, fs, "nodejs/_dnt.polyfills.js"), "runtime helpers are not fixed")
	assert.Equal(t, "# x", read(t, fs, "nodejs/README.md"))

	for _, gone := range []string{"nodejs/esm", "nodejs/package-lock.json"} {
		exists, err := afero.Exists(fs, gone)
		require.NoError(t, err)
		assert.False(t, exists, gone)
	}

	m, err := metadata.ParseManifest([]byte(read(t, fs, "nodejs/package.json")))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "version", "license", "type", "bin", "main", "module", "exports", "types"}, m.Keys())

	require.NotNil(t, result.Reconcile)
	assert.ElementsMatch(t, []string{"mod.js", "cli.js", "_dnt.polyfills.js"}, result.Reconcile.Moved)
	require.NotNil(t, result.Fixup)
	assert.Equal(t, []string{"cli.js", "mod.js"}, result.Fixup.Fixed)
	assert.Equal(t, "nodejs/package.json", result.Manifest)
	assert.Equal(t, []assets.Copy{{From: "README.md", To: "nodejs/README.md"}}, result.Copied)
	assert.Len(t, result.EntryPoints, 2)
}

func TestRun_Plan(t *testing.T) {
	fs := newWorkspace(t)
	var got transpiler.Plan
	tr := transpiler.Func(func(ctx context.Context, workspace string, plan transpiler.Plan) error {
		got = plan
		assert.Equal(t, "/ws", workspace)
		return nil
	})

	opts := baseOptions()
	opts.Lib = []string{"ES2022"}
	opts.UseTSLibHelper = true
	_, err := New(fs, "/ws", tr, nil).Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, "nodejs", got.OutDir)
	assert.Equal(t, transpiler.DeclarationInline, got.Declaration)
	assert.Equal(t, []transpiler.EntryPoint{
		{Kind: transpiler.KindExport, Name: ".", Path: "mod.ts"},
		{Kind: transpiler.KindBin, Name: "x", Path: "cli.ts"},
	}, got.EntryPoints)
	assert.True(t, got.CompilerOptions.SkipLibCheck)
	assert.True(t, got.CompilerOptions.ImportHelpers)
	assert.Equal(t, "ES2022", got.CompilerOptions.Target)
	assert.True(t, got.ESModule)
	assert.False(t, got.ScriptModule)
	assert.True(t, got.SkipNpmInstall)
	assert.True(t, got.Shims.Deno)
	assert.True(t, got.Shims.Timers)
	assert.JSONEq(t, `{"version":"1.0.0","name":"x","license":"MIT"}`, string(got.Package))
}

func TestRun_TranspilerManifestIsRefactored(t *testing.T) {
	fs := newWorkspace(t)
	tr := emitter(fs, map[string]string{
		"package.json": `{"main":"./script/mod.js","name":"x","dependencies":{"b":"1","a":"2"},"version":"1.0.0"}`,
	})

	_, err := New(fs, "/ws", tr, nil).Run(context.Background(), baseOptions())
	require.NoError(t, err)

	m, err := metadata.ParseManifest([]byte(read(t, fs, "nodejs/package.json")))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "version", "type", "bin", "main", "module", "exports", "types", "dependencies"}, m.Keys())
	main, _ := m.Get("main")
	assert.Equal(t, `"./mod.js"`, string(main))
	assert.Contains(t, read(t, fs, "nodejs/package.json"), "\t\"dependencies\": {\n\t\t\"b\": \"1\",\n\t\t\"a\": \"2\"\n\t}\n")
}

func TestRun_ConfigurationErrorBeforeMutation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options, afero.Fs)
	}{
		{"no_entrypoints", func(o *Options, _ afero.Fs) { o.Entrypoints = nil }},
		{"duplicate_executable", func(o *Options, _ afero.Fs) {
			o.Entrypoints = append(o.Entrypoints, entrypoints.Declaration{Kind: entrypoints.Executable, Name: "x", Path: "other.ts"})
		}},
		{"executable_with_dot", func(o *Options, _ afero.Fs) {
			o.Entrypoints = []entrypoints.Declaration{{Kind: entrypoints.Executable, Name: ".x", Path: "cli.ts"}}
		}},
		{"missing_metadata", func(_ *Options, fs afero.Fs) { require.NoError(t, fs.Remove("package.json")) }},
		{"no_output_directory", func(o *Options, _ afero.Fs) { o.OutputDirectory = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newWorkspace(t)
			opts := baseOptions()
			tt.mutate(&opts, fs)

			called := false
			tr := transpiler.Func(func(context.Context, string, transpiler.Plan) error {
				called = true
				return nil
			})

			_, err := New(fs, "/ws", tr, nil).Run(context.Background(), opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration), err.Error())
			assert.False(t, called)

			exists, err := afero.Exists(fs, "nodejs")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestRun_InvalidMetadata(t *testing.T) {
	fs := newWorkspace(t)
	require.NoError(t, afero.WriteFile(fs, "package.json", []byte(`[]`), 0644))

	_, err := New(fs, "/ws", emitter(fs, nil), nil).Run(context.Background(), baseOptions())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifest))
}

func TestRun_TranspilerFailure(t *testing.T) {
	fs := newWorkspace(t)
	boom := stderrors.New("boom")
	tr := transpiler.Func(func(context.Context, string, transpiler.Plan) error { return boom })

	_, err := New(fs, "/ws", tr, nil).Run(context.Background(), baseOptions())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTranspile))
	assert.ErrorIs(t, err, boom)
}

func TestRun_TranspilerCodedErrorKept(t *testing.T) {
	fs := newWorkspace(t)
	tr := transpiler.Func(func(context.Context, string, transpiler.Plan) error {
		return errors.New(errors.ErrConfiguration, "transpiler command is not configured")
	})

	_, err := New(fs, "/ws", tr, nil).Run(context.Background(), baseOptions())
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
}

func TestRun_PreEmpty(t *testing.T) {
	fs := newWorkspace(t)
	require.NoError(t, afero.WriteFile(fs, "nodejs/stale.js", []byte("old"), 0644))

	opts := baseOptions()
	opts.OutputDirectoryPreEmpty = true
	_, err := New(fs, "/ws", emitter(fs, nil), nil).Run(context.Background(), opts)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "nodejs/stale.js")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_FixupDisabled(t *testing.T) {
	fs := newWorkspace(t)
	broken := polyfill + "x();\n" + polyfill
	opts := baseOptions()
	opts.FixInjectedImports = false

	result, err := New(fs, "/ws", emitter(fs, map[string]string{"mod.js": broken}), nil).Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Nil(t, result.Fixup)
	assert.Nil(t, result.Reconcile)
	assert.Equal(t, broken, read(t, fs, "nodejs/mod.js"))
}

func TestRun_Idempotent(t *testing.T) {
	fs := newWorkspace(t)
	tr := emitter(fs, nil)

	_, err := New(fs, "/ws", tr, nil).Run(context.Background(), baseOptions())
	require.NoError(t, err)
	first := read(t, fs, "nodejs/package.json")

	_, err = New(fs, "/ws", tr, nil).Run(context.Background(), baseOptions())
	require.NoError(t, err)
	assert.Equal(t, first, read(t, fs, "nodejs/package.json"))
}

func TestRun_Cancelled(t *testing.T) {
	fs := newWorkspace(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fs, "/ws", emitter(fs, nil), nil).Run(ctx, baseOptions())
	assert.ErrorIs(t, err, context.Canceled)

	exists, err := afero.Exists(fs, "nodejs")
	require.NoError(t, err)
	assert.False(t, exists)
}

type boundTranspiler struct {
	seen string
}

func (b *boundTranspiler) NeedsWorkdir() bool { return true }

func (b *boundTranspiler) Transform(ctx context.Context, workspace string, plan transpiler.Plan) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	b.seen = cwd
	return os.WriteFile(filepath.Join(plan.OutDir, "mod.js"), []byte("relative write"), 0644)
}

func TestRun_WorkdirBoundTranspiler(t *testing.T) {
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(`{"name":"x"}`), 0644))

	original, err := os.Getwd()
	require.NoError(t, err)

	tr := &boundTranspiler{}
	_, err = New(filesystem.NewOS(dir), dir, tr, nil).Run(context.Background(), baseOptions())
	require.NoError(t, err)

	seen, err := filepath.EvalSymlinks(tr.seen)
	require.NoError(t, err)
	assert.Equal(t, dir, seen)

	data, err := os.ReadFile(filepath.Join(dir, "nodejs", "mod.js"))
	require.NoError(t, err)
	assert.Equal(t, "relative write", string(data))

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, original, after)
}

func TestPreview_WritesNothing(t *testing.T) {
	fs := newWorkspace(t)
	entry, err := assets.NewEntry("README.md", "", "", "")
	require.NoError(t, err)
	opts := baseOptions()
	opts.Copy = []assets.Entry{entry}

	preview, err := New(fs, "/ws", nil, nil).Preview(opts)
	require.NoError(t, err)

	assert.Equal(t, "nodejs", preview.Plan.OutDir)
	assert.Len(t, preview.EntryPoints, 2)
	assert.Equal(t, "./mod.js", preview.Fragment.Main)
	assert.Equal(t, []string{"x"}, preview.Fragment.Bin.Keys())
	assert.Equal(t, []assets.Copy{{From: "README.md", To: "nodejs/README.md"}}, preview.Copies)

	exists, err := afero.DirExists(fs, "nodejs")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_DefaultConfigSortsManifest(t *testing.T) {
	cfg, err := config.LoadDefaults()
	require.NoError(t, err)
	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	opts.Entrypoints = baseOptions().Entrypoints

	fs := newWorkspace(t)
	_, err = New(fs, "/ws", emitter(fs, map[string]string{"mod.js": "script"}), nil).Run(context.Background(), opts)
	require.NoError(t, err)

	m, err := metadata.ParseManifest([]byte(read(t, fs, "nodejs/package.json")))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "version", "license", "type", "bin", "main", "module", "exports", "types"}, m.Keys())
}
