// Package assets selects workspace files to ship alongside the transpiled
// output and copies them into the output directory.
package assets

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Entry selects workspace paths to copy. Exactly one of From, Glob or
// Pattern is set. To, when set, renames the destination; a To ending with
// a slash names a directory the matched path is copied into.
type Entry struct {
	From    string
	Glob    string
	Pattern *regexp.Regexp
	To      string
}

// NewEntry builds an entry from its textual form
func NewEntry(from, glob, pattern, to string) (Entry, error) {
	set := 0
	for _, s := range []string{from, glob, pattern} {
		if s != "" {
			set++
		}
	}
	if set != 1 {
		return Entry{}, errors.New(errors.ErrConfiguration, "copy entry needs exactly one of from, glob or regexp")
	}

	entry := Entry{From: filepath.ToSlash(from), Glob: glob, To: to}
	if glob != "" && !doublestar.ValidatePattern(glob) {
		return Entry{}, errors.Newf(errors.ErrConfiguration, "invalid copy glob %q", glob)
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Entry{}, errors.Wrapf(err, errors.ErrConfiguration, "invalid copy regexp %q", pattern)
		}
		entry.Pattern = re
	}
	return entry, nil
}

// Match reports whether the slash-separated workspace path rel is selected
func (e Entry) Match(rel string) bool {
	switch {
	case e.Pattern != nil:
		return e.Pattern.MatchString(rel)
	case e.Glob != "":
		ok, _ := doublestar.Match(e.Glob, rel)
		return ok
	default:
		return e.From == rel
	}
}

// Destination returns where rel lands, relative to the output directory
func (e Entry) Destination(rel string) string {
	to := filepath.ToSlash(e.To)
	switch {
	case to == "":
		return rel
	case strings.HasSuffix(to, "/"):
		return path.Join(strings.TrimSuffix(to, "/"), path.Base(rel))
	default:
		return path.Clean(to)
	}
}

// Copy is one file to copy, both paths slash-separated and relative to
// the workspace
type Copy struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Plan walks the workspace and returns the copies the entries select, in
// walk order. The first entry matching a path wins. A selected directory
// is expanded into its files. Paths below any of exclude are not
// considered.
func Plan(fsys afero.Fs, entries []Entry, outDir string, exclude ...string) ([]Copy, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	skip := make(map[string]bool, len(exclude))
	for _, dir := range exclude {
		skip[path.Clean(filepath.ToSlash(dir))] = true
	}
	outDir = path.Clean(filepath.ToSlash(outDir))

	var copies []Copy
	err := afero.Walk(fsys, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(p)
		if rel == "." {
			return nil
		}
		if skip[rel] {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		for _, entry := range entries {
			if !entry.Match(rel) {
				continue
			}
			dest := path.Join(outDir, entry.Destination(rel))
			if !info.IsDir() {
				copies = append(copies, Copy{From: rel, To: dest})
				return nil
			}
			files, err := expandDir(fsys, rel, dest)
			if err != nil {
				return err
			}
			copies = append(copies, files...)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFilesystem, "failed to walk workspace")
	}
	return copies, nil
}

func expandDir(fsys afero.Fs, dir, dest string) ([]Copy, error) {
	var copies []Copy
	err := afero.Walk(fsys, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		copies = append(copies, Copy{
			From: filepath.ToSlash(p),
			To:   path.Join(dest, filepath.ToSlash(rel)),
		})
		return nil
	})
	sort.SliceStable(copies, func(i, j int) bool { return copies[i].From < copies[j].From })
	return copies, err
}
