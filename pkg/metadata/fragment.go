package metadata

import (
	"github.com/arthur-debert/pkgweave/pkg/entrypoints"
	"github.com/arthur-debert/pkgweave/pkg/errors"
)

// ImportPaths are the paths of one export under the "import" condition
type ImportPaths struct {
	Types   string `json:"types,omitempty"`
	Default string `json:"default"`
}

// ExportConditions is the value of one subpath in the exports map
type ExportConditions struct {
	Import ImportPaths `json:"import"`
}

// Fragment is the part of the manifest owned by the entry points.
// Bin and Exports are nil when there is nothing to list.
type Fragment struct {
	Bin     OrderedMap `json:"bin,omitempty"`
	Main    string     `json:"main,omitempty"`
	Module  string     `json:"module,omitempty"`
	Exports OrderedMap `json:"exports,omitempty"`
	Types   string     `json:"types,omitempty"`
}

// FragmentKeys are the manifest keys a Fragment owns
var FragmentKeys = []string{"bin", "main", "module", "exports", "types"}

// Entries returns the owned keys in FragmentKeys order; a nil value means
// the key is absent.
func (f *Fragment) Entries() []Entry {
	entries := make([]Entry, 0, len(FragmentKeys))
	add := func(key string, present bool, value interface{}) {
		if !present {
			value = nil
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	add("bin", len(f.Bin) > 0, f.Bin)
	add("main", f.Main != "", f.Main)
	add("module", f.Module != "", f.Module)
	add("exports", len(f.Exports) > 0, f.Exports)
	add("types", f.Types != "", f.Types)
	return entries
}

type fragmentOptions struct {
	leadingExports []string
}

// FragmentOption customizes BuildFragment
type FragmentOption func(*fragmentOptions)

// WithLeadingExports places the given export names, when present, right
// after the default export and before the alphabetically sorted rest.
func WithLeadingExports(names ...string) FragmentOption {
	return func(o *fragmentOptions) {
		o.leadingExports = append(o.leadingExports, names...)
	}
}

// BuildFragment derives the manifest fragment from executable and module
// entry points, each mapping a name to a "./"-prefixed source path.
func BuildFragment(executables, modules map[string]string, declaration bool, opts ...FragmentOption) (*Fragment, error) {
	if len(executables) == 0 && len(modules) == 0 {
		return nil, errors.New(errors.ErrConfiguration, "entrypoints are not defined")
	}

	var o fragmentOptions
	for _, opt := range opts {
		opt(&o)
	}

	bin := make([]Entry, 0, len(executables))
	for name, path := range executables {
		if err := entrypoints.CheckTrimmed(entrypoints.Executable, name); err != nil {
			return nil, err
		}
		if err := entrypoints.ValidateExecutableName(name); err != nil {
			return nil, err
		}
		script, _, err := resolvePaths(path, declaration)
		if err != nil {
			return nil, err
		}
		bin = append(bin, Entry{Key: name, Value: script})
	}

	fragment := &Fragment{}
	exports := make([]Entry, 0, len(modules))
	for name, path := range modules {
		if err := entrypoints.CheckTrimmed(entrypoints.Module, name); err != nil {
			return nil, err
		}
		if err := entrypoints.ValidateModuleName(name); err != nil {
			return nil, err
		}
		script, types, err := resolvePaths(path, declaration)
		if err != nil {
			return nil, err
		}
		exports = append(exports, Entry{
			Key:   name,
			Value: ExportConditions{Import: ImportPaths{Types: types, Default: script}},
		})
		if name == entrypoints.DefaultName {
			fragment.Main = script
			fragment.Module = script
			fragment.Types = types
		}
	}

	if len(bin) > 0 {
		fragment.Bin = SortEntries(bin)
	}
	if len(exports) > 0 {
		leading := append([]string{entrypoints.DefaultName}, o.leadingExports...)
		fragment.Exports = SortEntries(exports, leading...)
	}
	return fragment, nil
}

// FragmentFromResolution builds the fragment for entry points already
// normalized by entrypoints.Resolve.
func FragmentFromResolution(res *entrypoints.Resolution, declaration bool, opts ...FragmentOption) (*Fragment, error) {
	return BuildFragment(res.Executables, res.Modules, declaration, opts...)
}

func resolvePaths(path string, declaration bool) (script, types string, err error) {
	if len(path) < 2 || path[:2] != "./" {
		return "", "", errors.Newf(errors.ErrConfiguration, "entrypoint path %q must start with `./`", path)
	}
	script, types = entrypoints.OutputPaths(path, declaration)
	return script, types, nil
}
