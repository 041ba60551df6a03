// Package fusefs exposes a simulated tree as a FUSE filesystem, so the
// 1995 disk can be browsed with ordinary host tools. The shell and the
// kernel never share a session; a mounted tree is its own world.
package fusefs

import (
	"context"
	"os"
	"sync"
	"syscall"
	"time"

	"bazil.org/fuse"
	fusefslib "bazil.org/fuse/fs"
	"github.com/taigrr/colorhash"

	"github.com/nonightshift/scosim/internal/vfs"
)

// FS implements the FUSE filesystem over a virtual tree.
type FS struct {
	tree *Tree
}

// Tree serializes access to the underlying virtual filesystem. The vfs
// package is single-session by design; the kernel is not.
type Tree struct {
	mu sync.RWMutex
	fs *vfs.FileSystem
}

// New wraps a virtual filesystem for mounting.
func New(v *vfs.FileSystem) *FS {
	return &FS{tree: &Tree{fs: v}}
}

// Root returns the root directory node.
func (f *FS) Root() (fusefslib.Node, error) {
	return &Dir{tree: f.tree, node: f.tree.fs.Root}, nil
}

// Mount serves the filesystem at mountpoint until the connection closes.
func Mount(mountpoint, volumeName string, f *FS) error {
	conn, err := fuse.Mount(
		mountpoint,
		fuse.FSName("scosim"),
		fuse.Subtype("scosim"),
		fuse.VolumeName(volumeName),
	)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fusefslib.Serve(conn, f)
}

// inodeFor derives a stable inode from the node's full path.
func inodeFor(n *vfs.Node) uint64 {
	return uint64(colorhash.HashString(n.FullPath())) | 1
}

// modeFor parses the symbolic permission string into mode bits.
func modeFor(n *vfs.Node) os.FileMode {
	var mode os.FileMode
	perms := n.Permissions
	for i, c := range perms {
		if i >= 9 {
			break
		}
		if c != '-' {
			mode |= 1 << (8 - i)
		}
	}
	if n.IsDir {
		mode |= os.ModeDir
	}
	return mode
}

// Dir implements Node and Handle for directories.
type Dir struct {
	tree *Tree
	node *vfs.Node
}

// Attr returns directory attributes.
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	d.tree.mu.RLock()
	defer d.tree.mu.RUnlock()

	a.Inode = inodeFor(d.node)
	a.Mode = modeFor(d.node)
	a.Mtime = d.node.Mtime
	a.Ctime = d.node.Mtime
	a.Atime = time.Now()
	return nil
}

// Lookup resolves a child name to a node.
func (d *Dir) Lookup(ctx context.Context, name string) (fusefslib.Node, error) {
	d.tree.mu.RLock()
	defer d.tree.mu.RUnlock()

	child := d.node.Child(name)
	if child == nil {
		return nil, syscall.ENOENT
	}
	if child.IsDir {
		return &Dir{tree: d.tree, node: child}, nil
	}
	return &File{tree: d.tree, node: child}, nil
}

// ReadDirAll lists directory contents.
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	d.tree.mu.RLock()
	defer d.tree.mu.RUnlock()

	entries := []fuse.Dirent{
		{Name: ".", Type: fuse.DT_Dir, Inode: inodeFor(d.node)},
		{Name: "..", Type: fuse.DT_Dir},
	}
	for _, child := range d.node.SortedChildren() {
		entryType := fuse.DT_File
		if child.IsDir {
			entryType = fuse.DT_Dir
		}
		entries = append(entries, fuse.Dirent{
			Inode: inodeFor(child),
			Name:  child.Name,
			Type:  entryType,
		})
	}
	return entries, nil
}

// Mkdir creates a new directory.
func (d *Dir) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fusefslib.Node, error) {
	d.tree.mu.Lock()
	defer d.tree.mu.Unlock()

	path := childPath(d.node, req.Name)
	if err := d.tree.fs.Mkdir(path); err != nil {
		return nil, toErrno(err)
	}
	child := d.node.Child(req.Name)
	return &Dir{tree: d.tree, node: child}, nil
}

// Create creates a new empty file.
func (d *Dir) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fusefslib.Node, fusefslib.Handle, error) {
	d.tree.mu.Lock()
	defer d.tree.mu.Unlock()

	if d.node.Child(req.Name) != nil {
		return nil, nil, syscall.EEXIST
	}
	path := childPath(d.node, req.Name)
	if err := d.tree.fs.Write(path, "", false); err != nil {
		return nil, nil, toErrno(err)
	}

	child := d.node.Child(req.Name)
	file := &File{tree: d.tree, node: child}

	resp.Attr.Inode = inodeFor(child)
	resp.Attr.Mode = modeFor(child)
	resp.Attr.Mtime = child.Mtime
	resp.Attr.Ctime = child.Mtime
	return file, file, nil
}

// Remove unlinks a file or removes an empty directory.
func (d *Dir) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	d.tree.mu.Lock()
	defer d.tree.mu.Unlock()

	child := d.node.Child(req.Name)
	if child == nil {
		return syscall.ENOENT
	}
	if req.Dir != child.IsDir {
		if req.Dir {
			return syscall.ENOTDIR
		}
		return syscall.EISDIR
	}
	if err := d.tree.fs.Remove(childPath(d.node, req.Name), false); err != nil {
		return toErrno(err)
	}
	return nil
}

// File implements Node and Handle for regular files.
type File struct {
	tree *Tree
	node *vfs.Node
}

// Attr returns file attributes.
func (f *File) Attr(ctx context.Context, a *fuse.Attr) error {
	f.tree.mu.RLock()
	defer f.tree.mu.RUnlock()

	a.Inode = inodeFor(f.node)
	a.Mode = modeFor(f.node)
	a.Size = uint64(f.node.Size)
	a.Mtime = f.node.Mtime
	a.Ctime = f.node.Mtime
	a.Atime = time.Now()
	return nil
}

// ReadAll returns the whole file content.
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	f.tree.mu.RLock()
	defer f.tree.mu.RUnlock()
	return []byte(f.node.Content), nil
}

// Write writes data at the request offset.
func (f *File) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	f.tree.mu.Lock()
	defer f.tree.mu.Unlock()

	data := []byte(f.node.Content)
	end := int(req.Offset) + len(req.Data)
	if end > len(data) {
		grown := make([]byte, end)
		copy(grown, data)
		data = grown
	}
	copy(data[req.Offset:], req.Data)

	f.node.SetContent(string(data), time.Now())
	resp.Size = len(req.Data)
	return nil
}

// Setattr handles truncation and mtime updates.
func (f *File) Setattr(ctx context.Context, req *fuse.SetattrRequest, resp *fuse.SetattrResponse) error {
	f.tree.mu.Lock()

	if req.Valid.Size() {
		data := []byte(f.node.Content)
		if req.Size < uint64(len(data)) {
			data = data[:req.Size]
		} else if req.Size > uint64(len(data)) {
			grown := make([]byte, req.Size)
			copy(grown, data)
			data = grown
		}
		f.node.SetContent(string(data), time.Now())
	}
	if req.Valid.Mtime() {
		f.node.Mtime = req.Mtime
	}
	f.tree.mu.Unlock()

	return f.Attr(ctx, &resp.Attr)
}

// Fsync is a no-op, the tree lives in memory.
func (f *File) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	return nil
}

func childPath(parent *vfs.Node, name string) string {
	base := parent.FullPath()
	if base == "/" {
		return "/" + name
	}
	return base + "/" + name
}
