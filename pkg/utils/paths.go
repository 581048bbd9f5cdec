// Package utils holds small helpers shared by the command line and the
// configuration loader.
package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ExpandPath expands a leading ~ to the user's home directory, then
// environment variables anywhere in path
func ExpandPath(path string) string {
	switch {
	case path == "~":
		return xdg.Home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(xdg.Home, path[2:])
	}
	return os.ExpandEnv(path)
}
