package vfs

import (
	"sort"
	"strings"
	"time"
)

// Default display attributes for newly created nodes. Permissions are
// carried and displayed but never enforced.
const (
	DefaultDirPerms  = "rwxr-xr-x"
	DefaultFilePerms = "rw-r--r--"
	DefaultOwner     = "root"
	DefaultGroup     = "sys"
)

// Node is a single entry in the virtual filesystem tree, either a file or a
// directory. A directory owns its children; the Parent pointer is a
// non-owning back-reference and is nil only for the root.
type Node struct {
	Name        string
	IsDir       bool
	Parent      *Node
	Children    map[string]*Node // directories only
	Content     string           // files only
	Size        int
	Permissions string
	Owner       string
	Group       string
	Mtime       time.Time
}

// NewDir creates an empty directory node with default display attributes.
func NewDir(name string, mtime time.Time) *Node {
	return &Node{
		Name:        name,
		IsDir:       true,
		Children:    make(map[string]*Node),
		Permissions: DefaultDirPerms,
		Owner:       DefaultOwner,
		Group:       DefaultGroup,
		Mtime:       mtime,
	}
}

// NewFile creates an empty file node with default display attributes.
func NewFile(name string, mtime time.Time) *Node {
	return &Node{
		Name:        name,
		IsDir:       false,
		Permissions: DefaultFilePerms,
		Owner:       DefaultOwner,
		Group:       DefaultGroup,
		Mtime:       mtime,
	}
}

// AddChild inserts child into the directory, replacing any existing entry of
// the same name, and repoints the child's Parent at n. Calling AddChild on a
// file is a no-op.
func (n *Node) AddChild(child *Node) {
	if !n.IsDir {
		return
	}
	n.Children[child.Name] = child
	child.Parent = n
}

// RemoveChild deletes the named entry if present. The detached subtree
// becomes unreachable once the caller drops its own references.
func (n *Node) RemoveChild(name string) {
	if !n.IsDir {
		return
	}
	delete(n.Children, name)
}

// Child returns the named child, or nil.
func (n *Node) Child(name string) *Node {
	if !n.IsDir {
		return nil
	}
	return n.Children[name]
}

// SortedChildren returns the directory's children ordered by name.
func (n *Node) SortedChildren() []*Node {
	if !n.IsDir {
		return nil
	}
	names := make([]string, 0, len(n.Children))
	for name := range n.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*Node, 0, len(names))
	for _, name := range names {
		out = append(out, n.Children[name])
	}
	return out
}

// SetContent replaces the file's content and refreshes size and mtime.
// It is a no-op on directories.
func (n *Node) SetContent(content string, mtime time.Time) {
	if n.IsDir {
		return
	}
	n.Content = content
	n.Size = len(content)
	n.Mtime = mtime
}

// FullPath walks the parent chain to the root and joins the segment names
// with "/". The root itself renders as "/".
func (n *Node) FullPath() string {
	if n.Parent == nil {
		return "/"
	}
	var parts []string
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	// reverse into root-first order
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// IsAncestorOf reports whether n lies on the parent chain of other,
// or n == other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}
