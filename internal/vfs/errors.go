// Package vfs implements the in-memory virtual filesystem that backs every
// file-touching command in the simulator. Each session owns its own tree;
// nothing in this package locks.
package vfs

import (
	"errors"
	"fmt"
)

// Sentinel errors for package vfs.
// These errors can be checked with errors.Is() for specific error handling.
var (
	ErrNotFound          = errors.New("no such file or directory")
	ErrNotADirectory     = errors.New("not a directory")
	ErrIsADirectory      = errors.New("is a directory")
	ErrExists            = errors.New("file exists")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrDirectoryNotEmpty = errors.New("directory not empty")
)

// Error wraps a filesystem failure with the operation and the path it was
// given, so command adapters can render classic Unix diagnostics.
type Error struct {
	Op   string // operation that failed ("mkdir", "remove", ...)
	Path string // path as the caller supplied it
	Err  error  // underlying sentinel error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func opErr(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}
