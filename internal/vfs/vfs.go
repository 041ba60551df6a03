package vfs

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

// FileSystem owns a node tree and the current-directory reference used to
// resolve relative paths. All operations are synchronous and report
// failures as return values.
type FileSystem struct {
	Root    *Node
	Current *Node

	now func() time.Time
}

// New wraps an existing root directory node. The now func stamps mtimes on
// mutations; nil falls back to time.Now.
func New(root *Node, now func() time.Time) *FileSystem {
	if now == nil {
		now = time.Now
	}
	return &FileSystem{Root: root, Current: root, now: now}
}

// NewEmpty creates a filesystem containing only a root directory.
func NewEmpty(now func() time.Time) *FileSystem {
	if now == nil {
		now = time.Now
	}
	return New(NewDir("/", now()), now)
}

// Resolve maps a path to a node. Absolute paths start at the root, all
// others at the current directory. Empty segments and "." are skipped and
// ".." stops at the root instead of failing. Resolve never mutates the
// tree.
func (fs *FileSystem) Resolve(p string) (*Node, error) {
	cur := fs.Current
	if strings.HasPrefix(p, "/") {
		cur = fs.Root
	}
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if cur.Parent != nil {
				cur = cur.Parent
			}
		default:
			if !cur.IsDir {
				return nil, opErr("resolve", p, ErrNotADirectory)
			}
			child := cur.Child(part)
			if child == nil {
				return nil, opErr("resolve", p, ErrNotFound)
			}
			cur = child
		}
	}
	return cur, nil
}

// splitParent splits a path into its parent portion and leaf name. An empty
// parent means the leaf is created relative to the current directory.
func splitParent(p string) (parent, leaf string) {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return "", p
}

// resolveParent resolves the parent portion returned by splitParent,
// falling back to the current directory when it is empty.
func (fs *FileSystem) resolveParent(parent string) (*Node, error) {
	if parent == "" {
		return fs.Current, nil
	}
	return fs.Resolve(parent)
}

// Mkdir creates a single new directory. The parent must already exist; an
// existing child of the same name is an error.
func (fs *FileSystem) Mkdir(p string) error {
	parentPath, name := splitParent(p)
	if name == "" {
		return opErr("mkdir", p, ErrNotFound)
	}
	parent, err := fs.resolveParent(parentPath)
	if err != nil {
		return opErr("mkdir", p, ErrNotFound)
	}
	if !parent.IsDir {
		return opErr("mkdir", p, ErrNotADirectory)
	}
	if parent.Child(name) != nil {
		return opErr("mkdir", p, ErrExists)
	}
	parent.AddChild(NewDir(name, fs.now()))
	return nil
}

// Chdir changes the current directory. An empty path resets to the root;
// there is no per-user home directory.
func (fs *FileSystem) Chdir(p string) error {
	if p == "" {
		fs.Current = fs.Root
		return nil
	}
	target, err := fs.Resolve(p)
	if err != nil {
		return opErr("cd", p, ErrNotFound)
	}
	if !target.IsDir {
		return opErr("cd", p, ErrNotADirectory)
	}
	fs.Current = target
	return nil
}

// ListOptions control List ordering and filtering.
type ListOptions struct {
	ShowHidden  bool // include names starting with "."
	SortByMtime bool // else sort by name
	Reverse     bool // invert the final order
}

// List returns the entries of the directory at p, or a single-entry listing
// when p names a file. An empty path lists the current directory.
func (fs *FileSystem) List(p string, opts ListOptions) ([]*Node, error) {
	target := fs.Current
	if p != "" {
		var err error
		target, err = fs.Resolve(p)
		if err != nil {
			return nil, opErr("ls", p, ErrNotFound)
		}
	}
	if !target.IsDir {
		return []*Node{target}, nil
	}
	entries := make([]*Node, 0, len(target.Children))
	for name, child := range target.Children {
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		entries = append(entries, child)
	}
	if opts.SortByMtime {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Mtime.After(entries[j].Mtime)
		})
	} else {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Name < entries[j].Name
		})
	}
	if opts.Reverse {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

// FormatLong renders one ls -l line for a node: type char, permissions,
// link count approximation, owner, group, size, mtime, name.
func FormatLong(n *Node) string {
	typeChar := "-"
	links := 1
	if n.IsDir {
		typeChar = "d"
		links = len(n.Children) + 2
	}
	return fmt.Sprintf("%s%s  %2d %-8s %-8s %8d %s %s",
		typeChar, n.Permissions, links, n.Owner, n.Group, n.Size,
		n.Mtime.Format("Jan 02 15:04"), n.Name)
}

// Remove detaches the node at p from its parent. Removing the root is
// refused. A non-empty directory requires recursive; with recursive the
// whole subtree goes unconditionally. If the current directory was inside
// the removed subtree it is relocated to the removed node's former parent.
func (fs *FileSystem) Remove(p string, recursive bool) error {
	target, err := fs.Resolve(p)
	if err != nil {
		return opErr("rm", p, ErrNotFound)
	}
	if target == fs.Root {
		return opErr("rm", p, ErrPermissionDenied)
	}
	if target.IsDir && len(target.Children) > 0 && !recursive {
		return opErr("rm", p, ErrDirectoryNotEmpty)
	}
	parent := target.Parent
	parent.RemoveChild(target.Name)
	if target.IsAncestorOf(fs.Current) {
		fs.Current = parent
	}
	return nil
}

// Read returns the content of the file at p.
func (fs *FileSystem) Read(p string) (string, error) {
	target, err := fs.Resolve(p)
	if err != nil {
		return "", opErr("read", p, ErrNotFound)
	}
	if target.IsDir {
		return "", opErr("read", p, ErrIsADirectory)
	}
	return target.Content, nil
}

// Write stores content at p, appending when append is set. The parent
// directory must already exist; no intermediate directories are created. A
// directory of the same name is an error; an existing file is updated in
// place with a fresh size and mtime.
func (fs *FileSystem) Write(p, content string, appendTo bool) error {
	parentPath, name := splitParent(p)
	if name == "" {
		return opErr("write", p, ErrIsADirectory)
	}
	parent, err := fs.resolveParent(parentPath)
	if err != nil {
		return opErr("write", p, ErrNotFound)
	}
	if !parent.IsDir {
		return opErr("write", p, ErrNotADirectory)
	}
	existing := parent.Child(name)
	if existing != nil && existing.IsDir {
		return opErr("write", p, ErrIsADirectory)
	}
	if existing == nil {
		existing = NewFile(name, fs.now())
		parent.AddChild(existing)
	}
	if appendTo {
		content = existing.Content + content
	}
	existing.SetContent(content, fs.now())
	return nil
}

// Glob matches pattern against the entries of the pattern's parent
// directory and returns the matching paths in name order. The wildcard
// syntax is path.Match's ('*', '?', character classes). An empty result
// means nothing matched; it is not an error.
func (fs *FileSystem) Glob(pattern string) []string {
	parentPath, leaf := splitParent(pattern)
	parent, err := fs.resolveParent(parentPath)
	if err != nil || !parent.IsDir {
		return nil
	}
	var matches []string
	for _, child := range parent.SortedChildren() {
		ok, err := path.Match(leaf, child.Name)
		if err != nil || !ok {
			continue
		}
		if parentPath == "" {
			matches = append(matches, child.Name)
		} else {
			matches = append(matches, parentPath+"/"+child.Name)
		}
	}
	return matches
}
