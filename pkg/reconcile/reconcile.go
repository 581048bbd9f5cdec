// Package reconcile merges the secondary module-format output tree into
// the output root.
//
// Files are moved in two phases separated by a barrier. Phase one renames
// every secondary file to its destination directory under a temporary
// name, the destination name prefixed with a token no existing name
// starts with. Phase two strips the token. A file relocated onto a name
// the primary tree already holds overwrites it: the secondary output wins.
// There is no rollback; a failed rename leaves the tree partially moved.
package reconcile

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/filesystem"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultSecondaryDir is the secondary tree's directory name under root
const DefaultSecondaryDir = "esm"

// Report describes a completed reconciliation
type Report struct {
	Token string `json:"token,omitempty"`
	// Moved lists the relocated files, relative to root
	Moved []string `json:"moved"`
	// Overwritten lists the root files replaced by a relocated file
	Overwritten []string `json:"overwritten"`
}

// Reconciler moves the secondary tree into root
type Reconciler struct {
	fs           afero.Fs
	root         string
	secondaryDir string
	tokens       *TokenAllocator
	logger       zerolog.Logger
}

// New creates a reconciler for root and its secondaryDir subdirectory
func New(fsys afero.Fs, root, secondaryDir string) *Reconciler {
	if secondaryDir == "" {
		secondaryDir = DefaultSecondaryDir
	}
	return &Reconciler{
		fs:           fsys,
		root:         root,
		secondaryDir: secondaryDir,
		tokens:       NewTokenAllocator(),
		logger:       logging.GetLogger("reconcile"),
	}
}

// WithTokenAllocator replaces the token allocator
func (r *Reconciler) WithTokenAllocator(tokens *TokenAllocator) *Reconciler {
	r.tokens = tokens
	return r
}

// Reconcile relocates every file of the secondary tree into root. A
// missing secondary tree is a no-op.
func (r *Reconciler) Reconcile() (*Report, error) {
	done := logging.LogOperationStart(r.logger, "reconcile")
	defer done()

	if err := validateSecondaryDir(r.secondaryDir); err != nil {
		return nil, err
	}
	secondary := filepath.Join(r.root, filepath.FromSlash(r.secondaryDir))

	files, err := filesystem.ListFiles(r.fs, secondary)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to list %s", secondary)
	}
	report := &Report{Moved: []string{}, Overwritten: []string{}}
	if len(files) == 0 {
		r.logger.Debug().Str("dir", secondary).Msg("No secondary output to reconcile")
		return report, r.prune(secondary)
	}

	rootFiles, err := filesystem.ListFiles(r.fs, r.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to list %s", r.root)
	}
	token, err := r.tokens.Allocate(baseNames(files, rootFiles))
	if err != nil {
		return nil, err
	}
	report.Token = token
	r.logger.Debug().Str("token", token).Int("files", len(files)).Msg("Allocated rename token")

	for _, rel := range files {
		dir, name := path.Split(rel)
		destDir := filepath.Join(r.root, filepath.FromSlash(dir))
		if err := r.fs.MkdirAll(destDir, 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to create %s", destDir)
		}
		from := filepath.Join(secondary, filepath.FromSlash(rel))
		to := filepath.Join(destDir, token+name)
		if err := r.rename(from, to); err != nil {
			return nil, err
		}
	}

	if err := r.prune(secondary); err != nil {
		return nil, err
	}

	staged, err := filesystem.ListFiles(r.fs, r.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to list %s", r.root)
	}
	for _, rel := range staged {
		dir, name := path.Split(rel)
		if !strings.HasPrefix(name, token) {
			continue
		}
		finalRel := dir + strings.TrimPrefix(name, token)
		from := filepath.Join(r.root, filepath.FromSlash(rel))
		to := filepath.Join(r.root, filepath.FromSlash(finalRel))

		existed, err := afero.Exists(r.fs, to)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to stat %s", to)
		}
		if err := r.rename(from, to); err != nil {
			return nil, err
		}
		if existed {
			r.logger.Debug().Str("file", finalRel).Msg("Overwrote primary output")
			report.Overwritten = append(report.Overwritten, finalRel)
		}
		report.Moved = append(report.Moved, finalRel)
	}

	r.logger.Info().
		Int("moved", len(report.Moved)).
		Int("overwritten", len(report.Overwritten)).
		Msg("Reconciled secondary output")
	return report, nil
}

func (r *Reconciler) rename(from, to string) error {
	if err := r.fs.Rename(from, to); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to rename %s to %s", from, to).
			WithDetail("from", from).
			WithDetail("to", to)
	}
	r.logger.Trace().Str("from", from).Str("to", to).Msg("Renamed")
	return nil
}

// prune removes the empty directories left in the secondary tree,
// deepest first, then the tree itself when empty.
func (r *Reconciler) prune(secondary string) error {
	dirs, err := filesystem.ListDirs(r.fs, secondary)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to list %s", secondary)
	}
	for _, dir := range append(dirs, ".") {
		full := filepath.Join(secondary, filepath.FromSlash(dir))
		empty, err := afero.IsEmpty(r.fs, full)
		if err != nil {
			if exists, _ := afero.Exists(r.fs, full); !exists {
				continue
			}
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to read %s", full)
		}
		if !empty {
			continue
		}
		if err := r.fs.Remove(full); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to remove %s", full)
		}
	}
	return nil
}

func validateSecondaryDir(dir string) error {
	cleaned := path.Clean(filepath.ToSlash(dir))
	if path.IsAbs(cleaned) || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return errors.Newf(errors.ErrConfiguration, "secondary directory %q must be a subdirectory of the output root", dir)
	}
	return nil
}

func baseNames(lists ...[]string) []string {
	var names []string
	for _, list := range lists {
		for _, rel := range list {
			names = append(names, path.Base(rel))
		}
	}
	return names
}
