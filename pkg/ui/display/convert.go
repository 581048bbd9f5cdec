package display

import (
	"fmt"
	"time"

	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/build"
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/fixup"
	"github.com/arthur-debert/pkgweave/pkg/reconcile"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
)

// FromResult converts a known command result. It returns false for types
// it does not know how to summarize.
func FromResult(result interface{}) (*DisplayResult, bool) {
	switch v := result.(type) {
	case *DisplayResult:
		return v, true
	case *build.Result:
		return fromBuild(v), true
	case *build.Preview:
		return fromPreview(v), true
	case *reconcile.Report:
		r := &DisplayResult{Command: "reconcile"}
		addReconcile(r, v)
		return r, true
	case *fixup.Report:
		r := &DisplayResult{Command: "fixup"}
		addFixup(r, v)
		return r, true
	default:
		return nil, false
	}
}

func fromBuild(res *build.Result) *DisplayResult {
	r := &DisplayResult{Command: "build"}
	r.AddField("Output", res.OutputDirectory)
	r.AddField("Manifest", res.Manifest)
	r.Table = EntryPointTable(res.EntryPoints)
	if res.Reconcile != nil {
		addReconcile(r, res.Reconcile)
	}
	if res.Fixup != nil {
		addFixup(r, res.Fixup)
	}
	r.AddList("Copied", copyLines(res.Copied))
	r.AddField("Duration", res.Duration.Round(time.Millisecond).String())
	return r
}

func fromPreview(p *build.Preview) *DisplayResult {
	r := &DisplayResult{Command: "plan", DryRun: true}
	r.AddField("Output", p.Plan.OutDir)
	r.AddField("Target", p.Plan.CompilerOptions.Target)
	declaration := "none"
	if p.Plan.Declaration == transpiler.DeclarationInline {
		declaration = "inline"
	}
	r.AddField("Declarations", declaration)
	if p.Plan.ImportMap != "" {
		r.AddField("Import map", p.Plan.ImportMap)
	}
	r.Table = EntryPointTable(p.EntryPoints)
	r.AddList("Copies", copyLines(p.Copies))
	return r
}

func addReconcile(r *DisplayResult, report *reconcile.Report) {
	r.AddField("Reconciled", fmt.Sprintf("%d moved, %d overwritten", len(report.Moved), len(report.Overwritten)))
	r.AddList("Overwritten", report.Overwritten)
}

func addFixup(r *DisplayResult, report *fixup.Report) {
	r.AddField("Fixed", fmt.Sprintf("%d of %d scanned", len(report.Fixed), report.Scanned))
	r.AddList("Fixed files", report.Fixed)
}

// EntryPointTable lays out resolved entry points one per row
func EntryPointTable(resolved []entrypoints.Resolved) *Table {
	if len(resolved) == 0 {
		return nil
	}
	t := &Table{
		Title:  "Entry points",
		Header: []string{"Kind", "Name", "Script", "Declaration"},
	}
	for _, e := range resolved {
		decl := e.DeclarationPath
		if decl == "" {
			decl = "-"
		}
		t.Rows = append(t.Rows, []string{e.Kind.String(), e.Name, e.ScriptPath, decl})
	}
	return t
}

func copyLines(copies []assets.Copy) []string {
	lines := make([]string, 0, len(copies))
	for _, c := range copies {
		lines = append(lines, c.From+" -> "+c.To)
	}
	return lines
}
