// Package synthfs executes asset copies as a synthfs pipeline on the OS
// filesystem.
package synthfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/assets"
	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"
)

// SynthfsExecutor copies workspace files through a synthfs pipeline. It
// implements assets.Copier.
type SynthfsExecutor struct {
	logger     zerolog.Logger
	dryRun     bool
	workspace  string
	filesystem synthfs.FileSystem
}

var _ assets.Copier = (*SynthfsExecutor)(nil)

// NewSynthfsExecutor creates an executor for copies relative to the
// absolute workspace directory
func NewSynthfsExecutor(workspace string, dryRun bool) *SynthfsExecutor {
	return &SynthfsExecutor{
		logger:     logging.GetLogger("synthfs"),
		dryRun:     dryRun,
		workspace:  filepath.Clean(workspace),
		filesystem: filesystem.NewOSFileSystem("/"),
	}
}

// Copy implements assets.Copier. Existing destinations are replaced.
func (e *SynthfsExecutor) Copy(ctx context.Context, copies []assets.Copy) error {
	if len(copies) == 0 {
		e.logger.Debug().Msg("No assets to copy")
		return nil
	}
	if e.dryRun {
		e.logger.Info().Msg("Dry run mode - assets would be copied:")
		for _, cp := range copies {
			e.logger.Info().Str("from", cp.From).Str("to", cp.To).Msg("Copy")
		}
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, cp := range copies {
		op, err := e.convertCopy(cp)
		if err != nil {
			return err
		}
		if err := pipeline.Add(op); err != nil {
			return errors.Wrapf(err, errors.ErrFilesystem, "failed to add copy of %s to pipeline", cp.From)
		}
	}

	e.logger.Info().Int("operationCount", len(copies)).Msg("Executing asset copies")
	result := synthfs.NewExecutor().Run(ctx, pipeline, e.filesystem)
	if result.GetError() != nil {
		e.logger.Error().Err(result.GetError()).Msg("Pipeline execution failed")
		return errors.Wrap(result.GetError(), errors.ErrFilesystem, "failed to copy assets")
	}
	return nil
}

// convertCopy prepares the destination and builds the synthfs operation.
// synthfs refuses to overwrite, so an existing target is removed first.
func (e *SynthfsExecutor) convertCopy(cp assets.Copy) (synthfs.Operation, error) {
	if cp.From == "" || cp.To == "" {
		return nil, errors.New(errors.ErrInvalidInput, "copy operation requires source and target")
	}

	source := filepath.Join(e.workspace, filepath.FromSlash(cp.From))
	target := filepath.Join(e.workspace, filepath.FromSlash(cp.To))
	if !isPathWithin(source, e.workspace) || !isPathWithin(target, e.workspace) {
		return nil, errors.Newf(errors.ErrInvalidInput, "copy %s -> %s leaves the workspace", cp.From, cp.To)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to create directory for %s", cp.To)
	}
	if _, err := os.Lstat(target); err == nil {
		e.logger.Debug().Str("target", target).Msg("Removing existing file to allow overwrite")
		if err := os.Remove(target); err != nil {
			return nil, errors.Wrapf(err, errors.ErrFilesystem, "failed to replace %s", cp.To)
		}
	}

	relSource, err := filepath.Rel("/", source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert source path: %s", source)
	}
	relTarget, err := filepath.Rel("/", target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert target path: %s", target)
	}

	opID := core.OperationID(fmt.Sprintf("copy-%s-to-%s", cp.From, cp.To))
	copyOp := operations.NewCopyOperation(opID, relTarget)
	copyOp.SetPaths(relSource, relTarget)

	return synthfs.NewOperationsPackageAdapter(copyOp), nil
}

// isPathWithin checks if a path is within a parent directory
func isPathWithin(path, parent string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
