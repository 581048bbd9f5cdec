// Package transpiler describes the request handed to the external
// source-to-target transpiler and provides the command-based invoker.
package transpiler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/pkgweave/pkg/shims"
)

// EntryPoint kinds in the transpiler's wire format
const (
	KindBin    = "bin"
	KindExport = "export"
)

// EntryPoint is one entry point as the transpiler receives it
type EntryPoint struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// DeclarationMode selects how declaration files are emitted
type DeclarationMode int

const (
	DeclarationNone DeclarationMode = iota
	DeclarationInline
)

// MarshalJSON encodes the mode as false or "inline"
func (m DeclarationMode) MarshalJSON() ([]byte, error) {
	if m == DeclarationInline {
		return []byte(`"inline"`), nil
	}
	return []byte("false"), nil
}

// CompilerOptions mirrors the compiler settings forwarded to the transpiler.
// Only Target, Lib and ImportHelpers vary between builds.
type CompilerOptions struct {
	EmitDecoratorMetadata        bool     `json:"emitDecoratorMetadata"`
	ExperimentalDecorators       bool     `json:"experimentalDecorators"`
	ImportHelpers                bool     `json:"importHelpers"`
	InlineSources                bool     `json:"inlineSources"`
	Lib                          []string `json:"lib,omitempty"`
	NoImplicitAny                bool     `json:"noImplicitAny"`
	NoImplicitReturns            bool     `json:"noImplicitReturns"`
	NoImplicitThis               bool     `json:"noImplicitThis"`
	NoStrictGenericChecks        bool     `json:"noStrictGenericChecks"`
	NoUncheckedIndexedAccess     bool     `json:"noUncheckedIndexedAccess"`
	SkipLibCheck                 bool     `json:"skipLibCheck"`
	SourceMap                    bool     `json:"sourceMap"`
	StrictBindCallApply          bool     `json:"strictBindCallApply"`
	StrictFunctionTypes          bool     `json:"strictFunctionTypes"`
	StrictNullChecks             bool     `json:"strictNullChecks"`
	StrictPropertyInitialization bool     `json:"strictPropertyInitialization"`
	StripInternal                bool     `json:"stripInternal"`
	Target                       string   `json:"target"`
	UseUnknownInCatchVariables   bool     `json:"useUnknownInCatchVariables"`
}

// DefaultCompilerOptions returns the relaxed settings used for every build
func DefaultCompilerOptions(target string, lib []string, importHelpers bool) CompilerOptions {
	return CompilerOptions{
		ImportHelpers: importHelpers,
		Lib:           lib,
		SkipLibCheck:  true,
		Target:        target,
	}
}

// Mapping redirects a specifier either to a local file (Path) or to an npm
// package (Name, Version, SubPath).
type Mapping struct {
	Path    string
	Name    string
	Version string
	SubPath string
}

// MarshalJSON encodes path mappings as plain strings and package mappings
// as objects.
func (m Mapping) MarshalJSON() ([]byte, error) {
	if m.Path != "" {
		return json.Marshal(m.Path)
	}
	return json.Marshal(struct {
		Name    string `json:"name"`
		Version string `json:"version,omitempty"`
		SubPath string `json:"subPath,omitempty"`
	}{m.Name, m.Version, m.SubPath})
}

// Plan is the complete transform request
type Plan struct {
	EntryPoints      []EntryPoint       `json:"entryPoints"`
	OutDir           string             `json:"outDir"`
	CompilerOptions  CompilerOptions    `json:"compilerOptions"`
	Declaration      DeclarationMode    `json:"declaration"`
	DeclarationMap   bool               `json:"declarationMap"`
	ESModule         bool               `json:"esModule"`
	ScriptModule     bool               `json:"scriptModule"`
	ImportMap        string             `json:"importMap,omitempty"`
	Mappings         map[string]Mapping `json:"mappings,omitempty"`
	Package          json.RawMessage    `json:"package"`
	Shims            shims.Resolved     `json:"shims"`
	SkipNpmInstall   bool               `json:"skipNpmInstall"`
	SkipSourceOutput bool               `json:"skipSourceOutput"`
	Test             bool               `json:"test"`
	TypeCheck        bool               `json:"typeCheck"`
}

// Transpiler runs the source-to-target transform for a plan. Paths in the
// plan are relative to workspace.
type Transpiler interface {
	Transform(ctx context.Context, workspace string, plan Plan) error
}

// WorkdirBound is implemented by transpilers that resolve relative paths
// against the process working directory. The build switches into the
// workspace around their Transform call and restores it afterwards.
type WorkdirBound interface {
	Transpiler
	NeedsWorkdir() bool
}

// Func adapts a function to the Transpiler interface
type Func func(ctx context.Context, workspace string, plan Plan) error

// Transform calls f
func (f Func) Transform(ctx context.Context, workspace string, plan Plan) error {
	return f(ctx, workspace, plan)
}

// Validate checks the invariants the transpiler relies on
func (p Plan) Validate() error {
	if len(p.EntryPoints) == 0 {
		return fmt.Errorf("plan has no entry points")
	}
	if p.OutDir == "" {
		return fmt.Errorf("plan has no output directory")
	}
	return nil
}
