// Package lockfile writes to files that are kept permission-locked (mode 000)
// between operations. A write probes the target, verifies it is locked,
// grants owner write access for the duration of one write and locks it
// again before returning.
package lockfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/zoro11031/lockappend/internal/system"
)

const (
	// LockedMode is the resting mode of a target file
	LockedMode os.FileMode = 0o000
	// WritableMode is held only for the duration of the write
	WritableMode os.FileMode = 0o200
)

// Options controls a single locked write
type Options struct {
	// Clear truncates the file before writing instead of appending
	Clear bool
}

// Result describes what a locked write did. It is returned on success and
// failure alike.
type Result struct {
	Path         string
	Created      bool
	BytesWritten int
	// RestoreErr holds the failure of a best-effort relock, if any. It never
	// changes the outcome of the write itself.
	RestoreErr error
}

// Writer performs permission-gated writes
type Writer struct {
	fs  system.FileSystemManager
	log *zap.SugaredLogger
}

// NewWriter creates a Writer. A nil logger disables trace logging.
func NewWriter(fs system.FileSystemManager, log *zap.SugaredLogger) *Writer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Writer{fs: fs, log: log}
}

// Write appends message and a newline to path, or replaces the content when
// opts.Clear is set. The file must be absent or at mode 000; it is left at
// mode 000.
func (w *Writer) Write(path, message string, opts Options) (*Result, error) {
	res := &Result{Path: path}

	probed, err := w.probe(path, res)
	if err != nil {
		return res, err
	}

	if perm := probed.Mode().Perm(); perm != LockedMode {
		w.log.Debugw("refusing unlocked file", "path", path, "mode", fmt.Sprintf("%04o", perm))
		return res, &StepError{Step: StepVerify, Path: path, Err: ErrNotSecure}
	}

	w.log.Debugw("elevate", "path", path)
	if err := w.fs.Chmod(path, WritableMode); err != nil {
		return res, &StepError{Step: StepElevate, Path: path, Err: err}
	}

	w.log.Debugw("open", "path", path, "clear", opts.Clear)
	h, err := w.fs.OpenForWrite(path, !opts.Clear)
	if err != nil {
		res.RestoreErr = w.fs.Chmod(path, LockedMode)
		return res, &StepError{Step: StepOpen, Path: path, Err: err}
	}

	if err := w.prepare(h, probed, opts); err != nil {
		res.RestoreErr = w.fs.Chmod(path, LockedMode)
		h.Close()
		return res, &StepError{Step: StepOpen, Path: path, Err: err}
	}

	buf := make([]byte, 0, len(message)+1)
	buf = append(buf, message...)
	buf = append(buf, '\n')

	n, err := writeAll(h, buf)
	res.BytesWritten = n
	w.log.Debugw("write", "path", path, "bytes", n)
	if err != nil {
		res.RestoreErr = h.Chmod(LockedMode)
		h.Close()
		return res, &StepError{Step: StepWrite, Path: path, Err: err}
	}

	w.log.Debugw("restore", "path", path)
	if err := h.Chmod(LockedMode); err != nil {
		res.RestoreErr = err
		w.log.Warnw("failed to restore locked mode", "path", path, "error", err)
	}

	if err := h.Close(); err != nil {
		return res, &StepError{Step: StepClose, Path: path, Err: err}
	}

	return res, nil
}

// probe stats path, creating it at LockedMode when it does not exist
func (w *Writer) probe(path string, res *Result) (os.FileInfo, error) {
	w.log.Debugw("probe", "path", path)
	info, err := w.fs.Stat(path)
	if err == nil {
		return info, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, &StepError{Step: StepStat, Path: path, Err: err}
	}

	w.log.Debugw("create", "path", path)
	h, err := w.fs.CreateExclusive(path, LockedMode)
	if err != nil {
		return nil, &StepError{Step: StepCreate, Path: path, Err: err}
	}
	res.Created = true
	if err := h.Close(); err != nil {
		return nil, &StepError{Step: StepCreateClose, Path: path, Err: err}
	}

	info, err = w.fs.Stat(path)
	if err != nil {
		return nil, &StepError{Step: StepRestat, Path: path, Err: err}
	}
	return info, nil
}

// prepare checks that the open handle still refers to the probed file at
// WritableMode, then truncates it if requested. Truncation waits for the
// check so a file swapped in after verification is never clobbered.
func (w *Writer) prepare(h system.Handle, probed os.FileInfo, opts Options) error {
	info, err := h.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat open handle: %w", err)
	}
	if !os.SameFile(probed, info) {
		return fmt.Errorf("file was replaced between verification and open")
	}
	if perm := info.Mode().Perm(); perm != WritableMode {
		return fmt.Errorf("unexpected mode %04o after elevation", perm)
	}

	if opts.Clear {
		if err := h.Truncate(0); err != nil {
			return fmt.Errorf("failed to truncate: %w", err)
		}
	}
	return nil
}

// writeAll writes buf in full, retrying partial writes and EINTR
func writeAll(h system.Handle, buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := h.RawWrite(buf[written:])
		if n > 0 {
			written += n
		}
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return written, err
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
	}
	return written, nil
}
