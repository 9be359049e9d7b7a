package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileSystem handles file system operations against the local OS
type FileSystem struct{}

// NewFileSystem creates a new FileSystem instance
func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

// Stat returns file metadata, following symlinks
func (fs *FileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// CreateExclusive creates a new file that must not already exist.
// The permission bits are applied as given (subject to umask).
func (fs *FileSystem) CreateExclusive(path string, perms os.FileMode) (Handle, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perms)
	if err != nil {
		return nil, err
	}
	return &fileHandle{f: f}, nil
}

// Chmod changes the permissions of a file by path
func (fs *FileSystem) Chmod(path string, perms os.FileMode) error {
	return os.Chmod(path, perms)
}

// OpenForWrite opens an existing file write-only. In append mode every
// write lands at end-of-file, otherwise writes start at offset zero.
// It never truncates; callers truncate through the handle once they have
// checked it.
func (fs *FileSystem) OpenForWrite(path string, appendMode bool) (Handle, error) {
	flags := os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0)
	if err != nil {
		return nil, err
	}
	return &fileHandle{f: f}, nil
}

// GetPermissions returns the permissions of a file or directory
func (fs *FileSystem) GetPermissions(path string) (os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info.Mode().Perm(), nil
}

// fileHandle adapts *os.File to Handle
type fileHandle struct {
	f *os.File
}

// RawWrite bypasses os.File's internal retry so the caller sees partial
// writes and EINTR directly.
func (h *fileHandle) RawWrite(p []byte) (int, error) {
	n, err := unix.Write(int(h.f.Fd()), p)
	if n < 0 {
		n = 0
	}
	return n, err
}

func (h *fileHandle) Stat() (os.FileInfo, error) {
	return h.f.Stat()
}

func (h *fileHandle) Chmod(perms os.FileMode) error {
	return h.f.Chmod(perms)
}

func (h *fileHandle) Truncate(size int64) error {
	return h.f.Truncate(size)
}

func (h *fileHandle) Close() error {
	return h.f.Close()
}
