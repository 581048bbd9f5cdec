package display

import (
	"testing"

	"github.com/arthur-debert/pkgweave/pkg/build"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/fixup"
	"github.com/arthur-debert/pkgweave/pkg/reconcile"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromResult_Unknown(t *testing.T) {
	_, ok := FromResult("nope")
	assert.False(t, ok)
}

func TestFromResult_Reports(t *testing.T) {
	res, ok := FromResult(&reconcile.Report{Moved: []string{"a.js"}, Overwritten: []string{}})
	require.True(t, ok)
	assert.Equal(t, "reconcile", res.Command)
	assert.Equal(t, []Field{{Label: "Reconciled", Value: "1 moved, 0 overwritten"}}, res.Fields)
	assert.Empty(t, res.Lists)

	res, ok = FromResult(&fixup.Report{Scanned: 4, Fixed: []string{"a.js", "b.js"}})
	require.True(t, ok)
	assert.Equal(t, "fixup", res.Command)
	assert.Equal(t, "2 of 4 scanned", res.Fields[0].Value)
	assert.Equal(t, []List{{Title: "Fixed files", Items: []string{"a.js", "b.js"}}}, res.Lists)
}

func TestFromResult_BuildWithoutOptionalStages(t *testing.T) {
	res, ok := FromResult(&build.Result{OutputDirectory: "out", Manifest: "out/package.json"})
	require.True(t, ok)
	labels := make([]string, 0, len(res.Fields))
	for _, f := range res.Fields {
		labels = append(labels, f.Label)
	}
	assert.Equal(t, []string{"Output", "Manifest", "Duration"}, labels)
	assert.Nil(t, res.Table)
}

func TestFromResult_Preview(t *testing.T) {
	res, ok := FromResult(&build.Preview{
		Plan: transpiler.Plan{
			OutDir:          "nodejs",
			CompilerOptions: transpiler.CompilerOptions{Target: "ES2022"},
			Declaration:     transpiler.DeclarationInline,
		},
		EntryPoints: []entrypoints.Resolved{{Kind: entrypoints.Executable, Name: "x", ScriptPath: "cli.js"}},
	})
	require.True(t, ok)
	assert.True(t, res.DryRun)
	assert.Equal(t, []Field{
		{Label: "Output", Value: "nodejs"},
		{Label: "Target", Value: "ES2022"},
		{Label: "Declarations", Value: "inline"},
	}, res.Fields)
	require.NotNil(t, res.Table)
	assert.Equal(t, [][]string{{"executable", "x", "cli.js", "-"}}, res.Table.Rows)
}
