package fixup

import (
	"context"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/filesystem"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Extensions are the file suffixes FixTree considers
var Extensions = []string{".js", ".d.ts"}

// DefaultSkip are the patterns, relative to the tree root, FixTree never
// touches: the transpiler's own runtime helpers and vendored dependencies.
var DefaultSkip = []string{"_dnt.*.js", "_dnt.*.d.ts", "deps/**"}

// DefaultConcurrency bounds the number of files fixed at once
const DefaultConcurrency = 8

// Options controls FixTree
type Options struct {
	Concurrency int
	// Skip replaces DefaultSkip when non-nil
	Skip []string
}

// Report lists what FixTree did, paths relative to the tree root
type Report struct {
	Scanned int      `json:"scanned"`
	Fixed   []string `json:"fixed"`
}

// FixFile rewrites path in canonical form. It reports whether the file
// was written; a file already canonical is not written.
func FixFile(fsys afero.Fs, name string) (bool, error) {
	info, err := fsys.Stat(name)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to stat %s", name)
	}
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to read %s", name)
	}

	fixed, changed := Fix(string(data))
	if !changed {
		return false, nil
	}
	if err := afero.WriteFile(fsys, name, []byte(fixed), info.Mode().Perm()); err != nil {
		return false, errors.Wrapf(err, errors.ErrFilesystem, "failed to write %s", name)
	}
	return true, nil
}

// FixTree fixes every matching file below root concurrently
func FixTree(ctx context.Context, fsys afero.Fs, root string, opts Options) (*Report, error) {
	logger := logging.GetLogger("fixup")
	done := logging.LogOperationStart(logger, "fixup")
	defer done()

	skip := opts.Skip
	if skip == nil {
		skip = DefaultSkip
	}
	for _, pattern := range skip {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf(errors.ErrConfiguration, "invalid fixup skip pattern %q", pattern)
		}
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	files, err := filesystem.ListFiles(fsys, root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to list %s", root)
	}
	candidates := selectFiles(files, skip)

	report := &Report{Scanned: len(candidates), Fixed: []string{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, rel := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			changed, err := FixFile(fsys, filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			if changed {
				logger.Debug().Str("file", rel).Msg("Fixed injected imports")
				mu.Lock()
				report.Fixed = append(report.Fixed, rel)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(report.Fixed)
	logger.Info().Int("scanned", report.Scanned).Int("fixed", len(report.Fixed)).Msg("Fixup complete")
	return report, nil
}

func selectFiles(files, skip []string) []string {
	var selected []string
	for _, rel := range files {
		if !hasExtension(rel) || skipped(rel, skip) {
			continue
		}
		selected = append(selected, rel)
	}
	return selected
}

func hasExtension(rel string) bool {
	base := path.Base(rel)
	for _, ext := range Extensions {
		if strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

func skipped(rel string, skip []string) bool {
	for _, pattern := range skip {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
