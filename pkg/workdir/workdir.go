// Package workdir runs functions with the process working directory
// temporarily switched.
//
// The working directory is process-wide state. Run serializes callers so
// that only one function observes a switched directory at a time, and
// always restores the previous directory, including when fn panics.
package workdir

import (
	"os"
	"sync"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/logging"
)

var mu sync.Mutex

// Run changes into dir, calls fn and changes back
func Run(dir string, fn func() error) (err error) {
	logger := logging.GetLogger("workdir")

	mu.Lock()
	defer mu.Unlock()

	previous, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrFilesystem, "failed to get working directory")
	}
	if err := os.Chdir(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to change directory to %s", dir).
			WithDetail("dir", dir)
	}
	logger.Debug().Str("dir", dir).Str("previous", previous).Msg("Changed working directory")

	defer func() {
		if restoreErr := os.Chdir(previous); restoreErr != nil {
			logger.Error().Err(restoreErr).Str("dir", previous).Msg("Failed to restore working directory")
			if err == nil {
				err = errors.Wrapf(restoreErr, errors.ErrFilesystem, "failed to restore working directory %s", previous)
			}
		}
	}()

	return fn()
}
