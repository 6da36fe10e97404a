package commit

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem abstracts the write-side filesystem operations for testing and
// failure injection. WriteFile must be overwrite-safe.
type FileSystem interface {
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	MkdirAll(path string, perm fs.FileMode) error
}

// OSFileSystem implements FileSystem against the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(path, data, perm)
}

func (OSFileSystem) Remove(path string) error {
	return os.Remove(path)
}

func (OSFileSystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ensureParent creates the directory a new file will land in.
func ensureParent(fsys FileSystem, path string) error {
	return fsys.MkdirAll(filepath.Dir(path), 0755)
}
