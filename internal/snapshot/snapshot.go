// Package snapshot hydrates the virtual filesystem's initial tree from a
// declarative JSON document, and serializes live trees back into that form.
// When no snapshot file exists the simulator falls back to a fixed SCO-style
// default hierarchy.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/nonightshift/scosim/internal/vfs"
)

// MtimeLayout is the timestamp format used in snapshot documents.
// Unparseable or absent values fall back to the simulated clock.
const MtimeLayout = "2006-01-02 15:04:05"

// NodeDoc is one node of the snapshot document. Directories carry an
// ordered children list; files carry content.
type NodeDoc struct {
	Name        string    `json:"name"`
	IsDir       bool      `json:"is_dir"`
	Permissions string    `json:"permissions,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	Group       string    `json:"group,omitempty"`
	Content     string    `json:"content,omitempty"`
	Mtime       string    `json:"mtime,omitempty"`
	Children    []NodeDoc `json:"children,omitempty"`
}

// Load builds a tree from the snapshot file at path. A missing file is not
// an error: the built-in default hierarchy is returned instead. A present
// but malformed file is an error, so a broken snapshot never silently
// degrades to the default tree.
func Load(path string, now func() time.Time) (*vfs.Node, error) {
	if now == nil {
		now = time.Now
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultTree(now()), nil
	}
	if err != nil {
		return nil, err
	}
	var doc NodeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	if err := Validate(doc); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", path, err)
	}
	return Hydrate(doc, now), nil
}

// Hydrate converts a validated document into a live node tree.
func Hydrate(doc NodeDoc, now func() time.Time) *vfs.Node {
	mtime := now()
	if doc.Mtime != "" {
		if t, err := time.Parse(MtimeLayout, doc.Mtime); err == nil {
			mtime = t
		}
	}
	var node *vfs.Node
	if doc.IsDir {
		node = vfs.NewDir(doc.Name, mtime)
		for _, child := range doc.Children {
			node.AddChild(Hydrate(child, now))
		}
	} else {
		node = vfs.NewFile(doc.Name, mtime)
		node.SetContent(doc.Content, mtime)
	}
	if doc.Permissions != "" {
		node.Permissions = doc.Permissions
	}
	if doc.Owner != "" {
		node.Owner = doc.Owner
	}
	if doc.Group != "" {
		node.Group = doc.Group
	}
	return node
}

// Validate walks the document and collects every structural problem rather
// than stopping at the first: files with children, directories with
// content, unnamed nodes, duplicate sibling names.
func Validate(doc NodeDoc) error {
	var result *multierror.Error
	validateNode(doc, doc.Name, &result)
	return result.ErrorOrNil()
}

func validateNode(doc NodeDoc, path string, result **multierror.Error) {
	if doc.Name == "" {
		*result = multierror.Append(*result, fmt.Errorf("node at %q has no name", path))
	}
	if !doc.IsDir && len(doc.Children) > 0 {
		*result = multierror.Append(*result, fmt.Errorf("file %q has children", path))
	}
	if doc.IsDir && doc.Content != "" {
		*result = multierror.Append(*result, fmt.Errorf("directory %q has content", path))
	}
	seen := make(map[string]bool, len(doc.Children))
	for _, child := range doc.Children {
		if seen[child.Name] {
			*result = multierror.Append(*result, fmt.Errorf("duplicate child %q under %q", child.Name, path))
		}
		seen[child.Name] = true
		validateNode(child, path+"/"+child.Name, result)
	}
}

// Dump serializes a live tree back into document form, children in name
// order. It is the inverse of Hydrate up to mtime formatting.
func Dump(node *vfs.Node) NodeDoc {
	doc := NodeDoc{
		Name:        node.Name,
		IsDir:       node.IsDir,
		Permissions: node.Permissions,
		Owner:       node.Owner,
		Group:       node.Group,
		Mtime:       node.Mtime.Format(MtimeLayout),
	}
	if node.IsDir {
		for _, child := range node.SortedChildren() {
			doc.Children = append(doc.Children, Dump(child))
		}
	} else {
		doc.Content = node.Content
	}
	return doc
}

// Save writes a document to path as indented JSON.
func Save(path string, doc NodeDoc) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

const rootProfile = `# .profile for root
PATH=/bin:/usr/bin:/etc:/usr/sbin
export PATH
PS1='# '
TERM=vt100
export TERM
`

const etcMotd = `
SCO UNIX System V/386 Release 3.2
Copyright (C) 1976-1995 The Santa Cruz Operation, Inc.

Welcome to SCO UNIX!
For technical support, contact your system administrator.
`

// DefaultTree builds the fixed fallback hierarchy: the standard SCO
// top-level directories, the dxmail user's home with its mail queue, and a
// couple of seeded files at the root.
func DefaultTree(mtime time.Time) *vfs.Node {
	root := vfs.NewDir("/", mtime)

	dirs := []struct {
		name  string
		perms string
	}{
		{"bin", "rwxr-xr-x"},
		{"etc", "rwxr-xr-x"},
		{"home", "rwxr-xr-x"},
		{"usr", "rwxr-xr-x"},
		{"tmp", "rwxrwxrwx"},
		{"var", "rwxr-xr-x"},
		{"dev", "rwxr-xr-x"},
		{"lib", "rwxr-xr-x"},
		{"sbin", "rwxr-xr-x"},
		{"boot", "rwxr-xr-x"},
		{"mnt", "rwxr-xr-x"},
		{"opt", "rwxr-xr-x"},
	}
	for _, d := range dirs {
		node := vfs.NewDir(d.name, mtime)
		node.Permissions = d.perms
		root.AddChild(node)
	}

	home := root.Child("home")
	dxmail := vfs.NewDir("dxmail", mtime)
	home.AddChild(dxmail)
	for _, sub := range []string{"bin", "etc", "lib"} {
		dxmail.AddChild(vfs.NewDir(sub, mtime))
	}
	queue := vfs.NewDir("queue", mtime)
	dxmail.Child("lib").AddChild(queue)
	queue.AddChild(vfs.NewDir("trash", mtime))

	home.AddChild(vfs.NewDir("hacky", mtime))

	motd := vfs.NewFile("motd", mtime)
	motd.SetContent(etcMotd, mtime)
	root.Child("etc").AddChild(motd)

	profile := vfs.NewFile(".profile", mtime)
	profile.SetContent(rootProfile, mtime)
	root.AddChild(profile)

	history := vfs.NewFile(".history", mtime)
	history.Permissions = "rw-------"
	root.AddChild(history)

	return root
}
