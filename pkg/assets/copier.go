package assets

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/spf13/afero"
)

// Copier performs planned copies, overwriting existing destinations
type Copier interface {
	Copy(ctx context.Context, copies []Copy) error
}

// FsCopier copies within a single afero filesystem
type FsCopier struct {
	fs afero.Fs
}

// NewFsCopier returns a copier working on fsys
func NewFsCopier(fsys afero.Fs) *FsCopier {
	return &FsCopier{fs: fsys}
}

// Copy implements Copier
func (c *FsCopier) Copy(ctx context.Context, copies []Copy) error {
	logger := logging.GetLogger("assets")
	for _, cp := range copies {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.copyFile(cp); err != nil {
			return err
		}
		logger.Debug().Str("from", cp.From).Str("to", cp.To).Msg("Copied asset")
	}
	return nil
}

func (c *FsCopier) copyFile(cp Copy) error {
	from := filepath.FromSlash(cp.From)
	to := filepath.FromSlash(cp.To)

	info, err := c.fs.Stat(from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to stat %s", cp.From)
	}
	data, err := afero.ReadFile(c.fs, from)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to read %s", cp.From)
	}
	if err := c.fs.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to create directory for %s", cp.To)
	}
	if err := afero.WriteFile(c.fs, to, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to write %s", cp.To)
	}
	return nil
}
