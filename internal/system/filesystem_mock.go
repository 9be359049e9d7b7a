package system

import (
	"os"
	"sync"
)

// MockFileSystem is a mock of the FileSystem for testing purposes.
// It delegates to the real FileSystem and injects configured failures,
// so every step of the locked write can be driven to fail on demand.
type MockFileSystem struct {
	FileSystem
	mu sync.Mutex

	// StatErrs fails the Nth Stat call (1-based) with the given error.
	StatErrs map[int]error
	// CreateErr fails CreateExclusive before touching the disk.
	CreateErr error
	// CreateCloseErr is returned when the handle from CreateExclusive is closed.
	CreateCloseErr error
	// ChmodErrs fails path-based Chmod calls targeting the given mode.
	ChmodErrs map[os.FileMode]error
	// OnOpen runs before OpenForWrite delegates, e.g. to swap the file.
	OnOpen func(path string)
	// OpenErr fails OpenForWrite.
	OpenErr error
	// WriteErrs are returned, in order, by successive RawWrite calls.
	// A nil entry lets that call reach the real file.
	WriteErrs []error
	// MaxWriteChunk caps the bytes accepted per RawWrite to force partial writes.
	MaxWriteChunk int
	// TruncateErr fails Truncate on the write handle.
	TruncateErr error
	// HandleChmodErr fails fchmod on the write handle.
	HandleChmodErr error
	// CloseErr fails Close on the write handle.
	CloseErr error

	StatCalls  int
	Chmods     []os.FileMode
	WriteCalls int
	Closed     bool
}

// NewMockFileSystem creates a new MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		StatErrs:  make(map[int]error),
		ChmodErrs: make(map[os.FileMode]error),
	}
}

// Stat counts calls and fails the configured ones.
func (m *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	m.mu.Lock()
	m.StatCalls++
	err := m.StatErrs[m.StatCalls]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.FileSystem.Stat(path)
}

// CreateExclusive creates the file for real unless CreateErr is set.
func (m *MockFileSystem) CreateExclusive(path string, perms os.FileMode) (Handle, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	h, err := m.FileSystem.CreateExclusive(path, perms)
	if err != nil {
		return nil, err
	}
	return &mockHandle{Handle: h, fs: m, closeErr: m.CreateCloseErr}, nil
}

// Chmod records the requested mode and fails if configured.
func (m *MockFileSystem) Chmod(path string, perms os.FileMode) error {
	m.mu.Lock()
	m.Chmods = append(m.Chmods, perms)
	err := m.ChmodErrs[perms]
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.FileSystem.Chmod(path, perms)
}

// OpenForWrite opens the file for real unless OpenErr is set.
func (m *MockFileSystem) OpenForWrite(path string, appendMode bool) (Handle, error) {
	if m.OnOpen != nil {
		m.OnOpen(path)
	}
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	h, err := m.FileSystem.OpenForWrite(path, appendMode)
	if err != nil {
		return nil, err
	}
	return &mockHandle{
		Handle:      h,
		fs:          m,
		closeErr:    m.CloseErr,
		chmodErr:    m.HandleChmodErr,
		truncateErr: m.TruncateErr,
		write:       true,
	}, nil
}

type mockHandle struct {
	Handle
	fs          *MockFileSystem
	closeErr    error
	chmodErr    error
	truncateErr error
	write       bool
}

func (h *mockHandle) RawWrite(p []byte) (int, error) {
	m := h.fs
	m.mu.Lock()
	call := m.WriteCalls
	m.WriteCalls++
	var err error
	if call < len(m.WriteErrs) {
		err = m.WriteErrs[call]
	}
	chunk := m.MaxWriteChunk
	m.mu.Unlock()

	if err != nil {
		return 0, err
	}
	if chunk > 0 && len(p) > chunk {
		p = p[:chunk]
	}
	return h.Handle.RawWrite(p)
}

func (h *mockHandle) Chmod(perms os.FileMode) error {
	if h.chmodErr != nil {
		return h.chmodErr
	}
	return h.Handle.Chmod(perms)
}

func (h *mockHandle) Truncate(size int64) error {
	if h.truncateErr != nil {
		return h.truncateErr
	}
	return h.Handle.Truncate(size)
}

func (h *mockHandle) Close() error {
	err := h.Handle.Close()
	if h.write {
		h.fs.mu.Lock()
		h.fs.Closed = true
		h.fs.mu.Unlock()
	}
	if h.closeErr != nil {
		return h.closeErr
	}
	return err
}
