package builtin

import (
	"errors"
	"os"

	"github.com/josephlewis42/fdsh/core/fdplan"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// FileLock is an exclusive advisory lock on an open file.
type FileLock struct {
	afero.File

	fd uintptr
}

// LockFile opens path on fs and takes an exclusive lock on it without
// blocking. If another holder has the lock a LockError is returned.
//
// Only files backed by an OS descriptor can be locked.
func LockFile(fs afero.Fs, path string, flag int, perm os.FileMode) (*FileLock, error) {
	f, err := fs.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}

	fdFile, ok := f.(interface{ Fd() uintptr })
	if !ok {
		f.Close()
		return nil, &os.PathError{Op: "flock", Path: path, Err: fdplan.ErrNotFdBacked}
	}

	if err := unix.Flock(int(fdFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, &LockError{Resource: path, Err: err}
		}
		return nil, &os.PathError{Op: "flock", Path: path, Err: err}
	}

	return &FileLock{File: f, fd: fdFile.Fd()}, nil
}

// Close releases the lock and closes the file.
func (l *FileLock) Close() error {
	unlockErr := unix.Flock(int(l.fd), unix.LOCK_UN)
	if err := l.File.Close(); err != nil {
		return err
	}
	if unlockErr != nil {
		return &os.PathError{Op: "flock", Path: l.Name(), Err: unlockErr}
	}
	return nil
}
