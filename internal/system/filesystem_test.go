package system

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/sys/unix"
)

func TestCreateExclusive(t *testing.T) {
	fs := NewFileSystem()
	path := filepath.Join(t.TempDir(), "locked")

	h, err := fs.CreateExclusive(path, 0)
	if err != nil {
		t.Fatalf("CreateExclusive() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	perms, err := fs.GetPermissions(path)
	if err != nil {
		t.Fatalf("GetPermissions() error = %v", err)
	}
	if perms != 0 {
		t.Errorf("GetPermissions() = %04o, want 0000", perms)
	}

	if _, err := fs.CreateExclusive(path, 0); !errors.Is(err, os.ErrExist) {
		t.Errorf("CreateExclusive() on existing file error = %v, want ErrExist", err)
	}
}

func TestOpenForWrite(t *testing.T) {
	tests := []struct {
		name       string
		appendMode bool
		truncate   bool
		want       string
	}{
		{name: "append mode", appendMode: true, want: "abcdefXY"},
		{name: "overwrite from start", want: "XYcdef"},
		{name: "truncate through handle", truncate: true, want: "XY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := NewFileSystem()
			path := filepath.Join(t.TempDir(), "target")
			if err := os.WriteFile(path, []byte("abcdef"), 0600); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			h, err := fs.OpenForWrite(path, tt.appendMode)
			if err != nil {
				t.Fatalf("OpenForWrite() error = %v", err)
			}
			if tt.truncate {
				if err := h.Truncate(0); err != nil {
					t.Fatalf("Truncate() error = %v", err)
				}
			}
			if n, err := h.RawWrite([]byte("XY")); err != nil || n != 2 {
				t.Fatalf("RawWrite() = %d, %v, want 2, nil", n, err)
			}
			if err := h.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("Failed to read test file: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("content = %q, want %q", string(data), tt.want)
			}
		})
	}
}

func TestOpenForWriteMissingFile(t *testing.T) {
	fs := NewFileSystem()
	path := filepath.Join(t.TempDir(), "missing")

	if _, err := fs.OpenForWrite(path, true); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenForWrite() error = %v, want ErrNotExist", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("OpenForWrite() created the file")
	}
}

func TestHandleChmodAndStat(t *testing.T) {
	fs := NewFileSystem()
	path := filepath.Join(t.TempDir(), "target")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	h, err := fs.OpenForWrite(path, true)
	if err != nil {
		t.Fatalf("OpenForWrite() error = %v", err)
	}
	defer h.Close()

	if err := h.Chmod(0); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	info, err := h.Stat()
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0 {
		t.Errorf("mode = %04o, want 0000", info.Mode().Perm())
	}

	probed, err := fs.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !os.SameFile(probed, info) {
		t.Error("SameFile(path stat, handle stat) = false, want true")
	}
}

func TestMockFileSystemInjection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	m := NewMockFileSystem()
	m.StatErrs[2] = unix.EIO
	m.ChmodErrs[0200] = unix.EPERM
	m.WriteErrs = []error{unix.EINTR}
	m.MaxWriteChunk = 1

	if _, err := m.Stat(path); err != nil {
		t.Errorf("Stat() #1 error = %v, want nil", err)
	}
	if _, err := m.Stat(path); !errors.Is(err, unix.EIO) {
		t.Errorf("Stat() #2 error = %v, want EIO", err)
	}
	if err := m.Chmod(path, 0200); !errors.Is(err, unix.EPERM) {
		t.Errorf("Chmod(0200) error = %v, want EPERM", err)
	}
	if err := m.Chmod(path, 0600); err != nil {
		t.Errorf("Chmod(0600) error = %v, want nil", err)
	}

	h, err := m.OpenForWrite(path, true)
	if err != nil {
		t.Fatalf("OpenForWrite() error = %v", err)
	}
	if _, err := h.RawWrite([]byte("ab")); !errors.Is(err, unix.EINTR) {
		t.Errorf("RawWrite() #1 error = %v, want EINTR", err)
	}
	if n, err := h.RawWrite([]byte("ab")); err != nil || n != 1 {
		t.Errorf("RawWrite() #2 = %d, %v, want 1, nil", n, err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if !m.Closed {
		t.Error("Closed = false after closing write handle")
	}
	if m.StatCalls != 2 || m.WriteCalls != 2 || len(m.Chmods) != 2 {
		t.Errorf("calls = stat %d, write %d, chmod %v", m.StatCalls, m.WriteCalls, m.Chmods)
	}
}
