// Package entrypoints classifies declared entry points and derives the
// script and declaration paths the transpiler will emit for them.
package entrypoints

import (
	"path"
	"regexp"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/transpiler"
)

// Kind distinguishes executables from importable modules
type Kind int

const (
	Module Kind = iota
	Executable
)

func (k Kind) String() string {
	if k == Executable {
		return "executable"
	}
	return "module"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// DefaultName is the module name of the package's default import path
const DefaultName = "."

const (
	ScriptExtension      = ".js"
	DeclarationExtension = ".d.ts"
)

var sourceExtension = regexp.MustCompile(`\.(?:m[jt]s|[jt]s|[jt]sx)$`)

// Declaration is an entry point as declared by the user
type Declaration struct {
	Kind Kind
	Name string
	Path string
}

// Resolved is a declaration with its output paths derived.
// DeclarationPath is empty when declaration output is disabled or the
// source path has no recognized extension.
type Resolved struct {
	Kind            Kind   `json:"kind"`
	Name            string `json:"name"`
	ScriptPath      string `json:"scriptPath"`
	DeclarationPath string `json:"declarationPath,omitempty"`
}

// Resolution is the result of Resolve. Executables and Modules map the
// normalized names to normalized source paths and feed the manifest;
// Transpiler carries the declarations, in order, as the transpiler
// expects them.
type Resolution struct {
	Resolved    []Resolved
	Executables map[string]string
	Modules     map[string]string
	Transpiler  []transpiler.EntryPoint
}

// Resolve validates declarations and derives their output paths
func Resolve(decls []Declaration, declaration bool) (*Resolution, error) {
	if len(decls) == 0 {
		return nil, errors.New(errors.ErrConfiguration, "entrypoints are not defined")
	}

	res := &Resolution{
		Resolved:    make([]Resolved, 0, len(decls)),
		Executables: make(map[string]string),
		Modules:     make(map[string]string),
		Transpiler:  make([]transpiler.EntryPoint, 0, len(decls)),
	}

	for _, decl := range decls {
		sourcePath, err := NormalizeSourcePath(decl.Path)
		if err != nil {
			return nil, err
		}
		if err := CheckTrimmed(decl.Kind, decl.Name); err != nil {
			return nil, err
		}

		var name string
		var seen map[string]string
		switch decl.Kind {
		case Executable:
			if err := ValidateExecutableName(decl.Name); err != nil {
				return nil, err
			}
			name = decl.Name
			seen = res.Executables
		default:
			if decl.Name == "" {
				return nil, errors.New(errors.ErrConfiguration, "module name is empty")
			}
			name = NormalizeModuleName(decl.Name)
			seen = res.Modules
		}
		if _, dup := seen[name]; dup {
			return nil, errors.Newf(errors.ErrConfiguration, "found duplicated %s name %q", decl.Kind, name).
				WithDetail("name", name)
		}
		seen[name] = sourcePath

		script, types := OutputPaths(sourcePath, declaration)
		res.Resolved = append(res.Resolved, Resolved{
			Kind:            decl.Kind,
			Name:            name,
			ScriptPath:      script,
			DeclarationPath: types,
		})

		kind := transpiler.KindExport
		if decl.Kind == Executable {
			kind = transpiler.KindBin
		}
		res.Transpiler = append(res.Transpiler, transpiler.EntryPoint{
			Kind: kind,
			Name: decl.Name,
			Path: decl.Path,
		})
	}

	return res, nil
}

// OutputPaths maps a source path to its emitted script path and, when
// declaration is set and the extension is recognized, its declaration path.
func OutputPaths(sourcePath string, declaration bool) (script, types string) {
	if !sourceExtension.MatchString(sourcePath) {
		return sourcePath, ""
	}
	script = sourceExtension.ReplaceAllLiteralString(sourcePath, ScriptExtension)
	if declaration {
		types = sourceExtension.ReplaceAllLiteralString(sourcePath, DeclarationExtension)
	}
	return script, types
}

// NormalizeModuleName prefixes "./" to module names that lack it, leaving
// the default name untouched.
func NormalizeModuleName(name string) string {
	if name == DefaultName || strings.HasPrefix(name, "./") {
		return name
	}
	return "./" + name
}

// NormalizeSourcePath checks that p is a relative path inside the
// workspace and prefixes "./" when missing.
func NormalizeSourcePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New(errors.ErrConfiguration, "entrypoint path is empty")
	}
	slashed := strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(slashed, "/") || (len(slashed) > 1 && slashed[1] == ':') {
		return "", errors.Newf(errors.ErrConfiguration, "entrypoint path %q must be relative", p)
	}
	cleaned := path.Clean(slashed)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Newf(errors.ErrConfiguration, "entrypoint path %q escapes the workspace", p)
	}
	if cleaned == "." {
		return "", errors.Newf(errors.ErrConfiguration, "entrypoint path %q does not name a file", p)
	}
	if strings.HasPrefix(slashed, "./") {
		return slashed, nil
	}
	return "./" + slashed, nil
}

// ValidateExecutableName rejects names the package manager would treat as
// relative paths.
func ValidateExecutableName(name string) error {
	if name == "" {
		return errors.New(errors.ErrConfiguration, "executable name is empty")
	}
	if strings.HasPrefix(name, ".") {
		return errors.Newf(errors.ErrConfiguration, "executable name %q must not start with `.`", name)
	}
	return nil
}

// ValidateModuleName requires the strict "." or "./..." form
func ValidateModuleName(name string) error {
	if name != DefaultName && !strings.HasPrefix(name, "./") {
		return errors.Newf(errors.ErrConfiguration, "module name %q must be `.` or start with `./`", name)
	}
	return nil
}

// CheckTrimmed reports an error when name has surrounding whitespace
func CheckTrimmed(kind Kind, name string) error {
	if strings.TrimSpace(name) != name {
		return errors.Newf(errors.ErrConfiguration, "%s name %q is not well trimmed", kind, name)
	}
	return nil
}
