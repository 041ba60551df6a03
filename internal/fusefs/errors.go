package fusefs

import (
	"errors"
	"syscall"

	"github.com/nonightshift/scosim/internal/vfs"
)

// toErrno translates filesystem errors into the syscall errors FUSE
// expects on the wire.
func toErrno(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, vfs.ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, vfs.ErrIsADirectory):
		return syscall.EISDIR
	case errors.Is(err, vfs.ErrExists):
		return syscall.EEXIST
	case errors.Is(err, vfs.ErrPermissionDenied):
		return syscall.EPERM
	case errors.Is(err, vfs.ErrDirectoryNotEmpty):
		return syscall.ENOTEMPTY
	default:
		return syscall.EIO
	}
}
