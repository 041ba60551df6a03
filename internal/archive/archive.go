// Package archive packs virtual filesystem subtrees into tar byte streams
// and grafts tar byte streams back into a tree. Only regular files and
// directories are supported; anything else in an incoming archive is a
// format error.
package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nonightshift/scosim/internal/vfs"
)

// Sentinel errors for package archive.
var (
	ErrFormat   = errors.New("unsupported archive entry")
	ErrEncoding = errors.New("entry content is not valid text")
)

const (
	dirMode  = 0o755
	fileMode = 0o644
)

// Pack serializes the subtree rooted at node into a tar stream. The walk is
// depth-first pre-order with children visited in name order, so the root
// entry always comes first. The root is archived under its own name rather
// than its absolute path, which keeps the result relocatable.
func Pack(node *vfs.Node) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := packNode(tw, node, node.Name); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func packNode(tw *tar.Writer, node *vfs.Node, arcname string) error {
	hdr := &tar.Header{
		Name:    arcname,
		Uid:     0,
		Gid:     0,
		Uname:   node.Owner,
		Gname:   node.Group,
		ModTime: node.Mtime,
	}
	if node.IsDir {
		hdr.Typeflag = tar.TypeDir
		hdr.Mode = dirMode
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		for _, child := range node.SortedChildren() {
			childArc := joinArcname(arcname, child.Name)
			if err := packNode(tw, child, childArc); err != nil {
				return err
			}
		}
		return nil
	}
	hdr.Typeflag = tar.TypeReg
	hdr.Mode = fileMode
	hdr.Size = int64(len(node.Content))
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.WriteString(tw, node.Content)
	return err
}

// joinArcname builds a child's archive path. A root named "/" contributes
// no prefix, so its children are archived under their bare names.
func joinArcname(parent, child string) string {
	if parent == "/" || parent == "" {
		return child
	}
	return parent + "/" + child
}

// Unpack reads the tar stream in stored order and materializes its entries
// under target. It returns the names of all entries encountered, in order,
// for verbose command output. The archive's nominal root ("." or an empty
// name) is skipped; intermediate directories are created or reused; file
// entries unconditionally replace same-named children, directories as well
// as files. The first malformed entry aborts the remaining extraction with
// no rollback of what was already materialized.
func Unpack(data []byte, target *vfs.Node) ([]string, error) {
	if !target.IsDir {
		return nil, fmt.Errorf("unpack target %s: %w", target.Name, vfs.ErrNotADirectory)
	}
	tr := tar.NewReader(bytes.NewReader(data))
	var seen []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return seen, nil
		}
		if err != nil {
			return seen, fmt.Errorf("reading archive: %w", err)
		}
		seen = append(seen, hdr.Name)

		name := strings.Trim(hdr.Name, "/")
		if name == "" || name == "." {
			continue
		}

		parts := strings.Split(name, "/")
		parent := target
		for _, part := range parts[:len(parts)-1] {
			existing := parent.Child(part)
			if existing != nil && existing.IsDir {
				parent = existing
				continue
			}
			dir := vfs.NewDir(part, hdr.ModTime)
			parent.AddChild(dir)
			parent = dir
		}

		leaf := parts[len(parts)-1]
		switch hdr.Typeflag {
		case tar.TypeDir:
			if existing := parent.Child(leaf); existing != nil && existing.IsDir {
				continue
			}
			parent.AddChild(vfs.NewDir(leaf, hdr.ModTime))
		case tar.TypeReg:
			raw, err := io.ReadAll(tr)
			if err != nil {
				return seen, fmt.Errorf("entry %s: %w", hdr.Name, err)
			}
			if !utf8.Valid(raw) {
				return seen, fmt.Errorf("entry %s: %w", hdr.Name, ErrEncoding)
			}
			file := vfs.NewFile(leaf, hdr.ModTime)
			if hdr.Uname != "" {
				file.Owner = hdr.Uname
			}
			if hdr.Gname != "" {
				file.Group = hdr.Gname
			}
			file.SetContent(string(raw), hdr.ModTime)
			parent.AddChild(file)
		default:
			return seen, fmt.Errorf("entry %s (type %c): %w", hdr.Name, hdr.Typeflag, ErrFormat)
		}
	}
}
