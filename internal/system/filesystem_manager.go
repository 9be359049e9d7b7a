package system

import "os"

// FileSystemManager defines the interface for the file system operations the
// locked writer needs. This allows for injecting failures in tests.
type FileSystemManager interface {
	Stat(path string) (os.FileInfo, error)
	CreateExclusive(path string, perms os.FileMode) (Handle, error)
	Chmod(path string, perms os.FileMode) error
	OpenForWrite(path string, appendMode bool) (Handle, error)
}

// Handle is an open write handle on a target file.
type Handle interface {
	// RawWrite performs a single write(2). It may write fewer bytes than
	// len(p) or fail with EINTR; callers are expected to loop.
	RawWrite(p []byte) (int, error)
	Stat() (os.FileInfo, error)
	// Chmod changes the mode through the descriptor (fchmod).
	Chmod(perms os.FileMode) error
	Truncate(size int64) error
	Close() error
}
