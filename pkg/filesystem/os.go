package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// NewOS returns the OS filesystem rooted at root. All paths handed to the
// returned Fs are interpreted relative to root.
func NewOS(root string) afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), root)
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// RealPath resolves name to the underlying OS path when fsys is rooted
// with NewOS. Other filesystems return name unchanged.
func RealPath(fsys afero.Fs, name string) (string, error) {
	if base, ok := fsys.(*afero.BasePathFs); ok {
		return base.RealPath(name)
	}
	return name, nil
}

// Exists reports whether name exists
func Exists(fsys afero.Fs, name string) (bool, error) {
	return afero.Exists(fsys, name)
}

// EnsureDir creates dir and any missing parents
func EnsureDir(fsys afero.Fs, dir string) error {
	return fsys.MkdirAll(dir, 0755)
}

// EmptyDir removes everything inside dir, creating dir if it is missing
func EmptyDir(fsys afero.Fs, dir string) error {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return EnsureDir(fsys, dir)
		}
		return err
	}
	for _, entry := range entries {
		if err := fsys.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIfExists removes name recursively. A missing name is not an error;
// removed reports whether anything was there.
func RemoveIfExists(fsys afero.Fs, name string) (removed bool, err error) {
	if _, err := fsys.Stat(name); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := fsys.RemoveAll(name); err != nil {
		return false, err
	}
	return true, nil
}

// ListFiles returns the slash-separated paths, relative to root, of every
// non-directory entry below root, sorted. A missing root yields no files.
func ListFiles(fsys afero.Fs, root string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, root); err != nil || !ok {
		return nil, err
	}

	var files []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ListDirs returns the slash-separated paths, relative to root, of every
// directory below root (root excluded), deepest first.
func ListDirs(fsys afero.Fs, root string) ([]string, error) {
	if ok, err := afero.DirExists(fsys, root); err != nil || !ok {
		return nil, err
	}

	var dirs []string
	err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], "/") > strings.Count(dirs[j], "/")
	})
	return dirs, nil
}
