package archive

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/nonightshift/scosim/internal/vfs"
)

var testEpoch = time.Date(1995, time.December, 11, 1, 45, 0, 0, time.UTC)

func buildTree(t *testing.T) *vfs.Node {
	t.Helper()
	root := vfs.NewDir("queue", testEpoch)
	trash := vfs.NewDir("trash", testEpoch)
	root.AddChild(trash)
	msg := vfs.NewFile("x.txt", testEpoch)
	msg.SetContent("hi", testEpoch)
	root.AddChild(msg)
	old := vfs.NewFile("old.msg", testEpoch)
	old.SetContent("returned to sender\n", testEpoch)
	trash.AddChild(old)
	return root
}

func TestPackEntryOrderAndAttributes(t *testing.T) {
	data, err := Pack(buildTree(t))
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	tr := tar.NewReader(bytes.NewReader(data))
	type entry struct {
		name string
		flag byte
		mode int64
	}
	var got []entry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("reading packed stream: %v", err)
		}
		got = append(got, entry{hdr.Name, hdr.Typeflag, hdr.Mode})
		if hdr.Uid != 0 || hdr.Gid != 0 {
			t.Errorf("entry %s: uid/gid = %d/%d, want 0/0", hdr.Name, hdr.Uid, hdr.Gid)
		}
		if hdr.Uname != "root" || hdr.Gname != "sys" {
			t.Errorf("entry %s: uname/gname = %s/%s, want root/sys", hdr.Name, hdr.Uname, hdr.Gname)
		}
		if !hdr.ModTime.Equal(testEpoch) {
			t.Errorf("entry %s: mtime = %v, want %v", hdr.Name, hdr.ModTime, testEpoch)
		}
	}

	want := []entry{
		{"queue", tar.TypeDir, 0o755},
		{"queue/trash", tar.TypeDir, 0o755},
		{"queue/trash/old.msg", tar.TypeReg, 0o644},
		{"queue/x.txt", tar.TypeReg, 0o644},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPackRootNamedAfterItself(t *testing.T) {
	// a packed "/" root must not produce doubled separators
	root := vfs.NewDir("/", testEpoch)
	f := vfs.NewFile("motd", testEpoch)
	f.SetContent("welcome\n", testEpoch)
	root.AddChild(f)

	data, err := Pack(root)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	tr := tar.NewReader(bytes.NewReader(data))
	hdr, err := tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Name != "/" {
		t.Errorf("root entry name = %q, want %q", hdr.Name, "/")
	}
	hdr, err = tr.Next()
	if err != nil {
		t.Fatal(err)
	}
	if hdr.Name != "motd" {
		t.Errorf("child of synthetic root = %q, want bare name %q", hdr.Name, "motd")
	}
}

func TestRoundTrip(t *testing.T) {
	src := buildTree(t)
	data, err := Pack(src)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	dest := vfs.NewDir("restore", testEpoch)
	if _, err := Unpack(data, dest); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}

	assertIsomorphic(t, src, dest.Child("queue"))
}

// assertIsomorphic compares names, types, and file contents recursively.
func assertIsomorphic(t *testing.T, want, got *vfs.Node) {
	t.Helper()
	if got == nil {
		t.Fatalf("missing node %s", want.FullPath())
	}
	if got.Name != want.Name || got.IsDir != want.IsDir {
		t.Fatalf("node %s: got name=%s dir=%v", want.FullPath(), got.Name, got.IsDir)
	}
	if !want.IsDir {
		if got.Content != want.Content {
			t.Errorf("node %s: content %q, want %q", want.FullPath(), got.Content, want.Content)
		}
		return
	}
	if len(got.Children) != len(want.Children) {
		t.Fatalf("node %s: %d children, want %d", want.FullPath(), len(got.Children), len(want.Children))
	}
	for name, child := range want.Children {
		assertIsomorphic(t, child, got.Child(name))
	}
}

func TestUnpackSkipsNominalRoot(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{Name: ".", Typeflag: tar.TypeDir, Mode: 0o755, ModTime: testEpoch}); err != nil {
		t.Fatal(err)
	}
	content := "hello"
	if err := tw.WriteHeader(&tar.Header{Name: "f.txt", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content)), ModTime: testEpoch}); err != nil {
		t.Fatal(err)
	}
	io.WriteString(tw, content)
	tw.Close()

	dest := vfs.NewDir("d", testEpoch)
	seen, err := Unpack(buf.Bytes(), dest)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v, want 2 entries", seen)
	}
	if dest.Child(".") != nil {
		t.Error("nominal root entry was materialized")
	}
	if f := dest.Child("f.txt"); f == nil || f.Content != "hello" {
		t.Error("file entry was not materialized")
	}
}

func TestUnpackFileReplacesDirectory(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	content := "now a file"
	tw.WriteHeader(&tar.Header{Name: "spool", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content)), ModTime: testEpoch})
	io.WriteString(tw, content)
	tw.Close()

	dest := vfs.NewDir("d", testEpoch)
	existing := vfs.NewDir("spool", testEpoch)
	existing.AddChild(vfs.NewFile("inner", testEpoch))
	dest.AddChild(existing)

	if _, err := Unpack(buf.Bytes(), dest); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	spool := dest.Child("spool")
	if spool == nil || spool.IsDir {
		t.Fatal("file entry did not replace the existing directory")
	}
	if spool.Content != content {
		t.Errorf("content = %q, want %q", spool.Content, content)
	}
}

func TestUnpackCreatesIntermediateDirs(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	content := "deep"
	tw.WriteHeader(&tar.Header{Name: "a/b/c.txt", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(content)), ModTime: testEpoch})
	io.WriteString(tw, content)
	tw.Close()

	dest := vfs.NewDir("d", testEpoch)
	if _, err := Unpack(buf.Bytes(), dest); err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	a := dest.Child("a")
	if a == nil || !a.IsDir {
		t.Fatal("intermediate dir a missing")
	}
	b := a.Child("b")
	if b == nil || !b.IsDir {
		t.Fatal("intermediate dir b missing")
	}
	if c := b.Child("c.txt"); c == nil || c.Content != "deep" {
		t.Fatal("leaf file missing")
	}
}

func TestUnpackRejectsSymlinks(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	tw.WriteHeader(&tar.Header{Name: "ok.txt", Typeflag: tar.TypeReg, Mode: 0o644, Size: 2, ModTime: testEpoch})
	io.WriteString(tw, "ok")
	tw.WriteHeader(&tar.Header{Name: "link", Typeflag: tar.TypeSymlink, Linkname: "ok.txt", ModTime: testEpoch})
	tw.WriteHeader(&tar.Header{Name: "after.txt", Typeflag: tar.TypeReg, Mode: 0o644, Size: 4, ModTime: testEpoch})
	io.WriteString(tw, "late")
	tw.Close()

	dest := vfs.NewDir("d", testEpoch)
	_, err := Unpack(buf.Bytes(), dest)
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("Unpack() error = %v, want ErrFormat", err)
	}
	// entries before the bad one stay materialized, later ones are not reached
	if dest.Child("ok.txt") == nil {
		t.Error("entry before the failure was rolled back")
	}
	if dest.Child("after.txt") != nil {
		t.Error("extraction continued past the format error")
	}
}

func TestUnpackRejectsBinaryContent(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	raw := []byte{0xff, 0xfe, 0x00, 0x01}
	tw.WriteHeader(&tar.Header{Name: "blob.bin", Typeflag: tar.TypeReg, Mode: 0o644, Size: int64(len(raw)), ModTime: testEpoch})
	tw.Write(raw)
	tw.Close()

	dest := vfs.NewDir("d", testEpoch)
	if _, err := Unpack(buf.Bytes(), dest); !errors.Is(err, ErrEncoding) {
		t.Fatalf("Unpack() error = %v, want ErrEncoding", err)
	}
}

func TestUnpackIntoFileFails(t *testing.T) {
	f := vfs.NewFile("plain", testEpoch)
	if _, err := Unpack(nil, f); !errors.Is(err, vfs.ErrNotADirectory) {
		t.Fatalf("Unpack(file target) error = %v, want ErrNotADirectory", err)
	}
}
