package vfs

import (
	"testing"
	"time"
)

var testEpoch = time.Date(1995, time.December, 11, 1, 45, 0, 0, time.UTC)

func TestFullPath(t *testing.T) {
	root := NewDir("/", testEpoch)
	home := NewDir("home", testEpoch)
	dxmail := NewDir("dxmail", testEpoch)
	profile := NewFile(".profile", testEpoch)
	root.AddChild(home)
	home.AddChild(dxmail)
	root.AddChild(profile)

	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"root", root, "/"},
		{"top level dir", home, "/home"},
		{"nested dir", dxmail, "/home/dxmail"},
		{"file in root", profile, "/.profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.FullPath(); got != tt.want {
				t.Errorf("FullPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddChildReplacesAndReparents(t *testing.T) {
	root := NewDir("/", testEpoch)
	first := NewFile("motd", testEpoch)
	root.AddChild(first)

	second := NewFile("motd", testEpoch)
	root.AddChild(second)

	if len(root.Children) != 1 {
		t.Fatalf("expected 1 child after replacement, got %d", len(root.Children))
	}
	if root.Child("motd") != second {
		t.Error("AddChild did not replace the existing entry")
	}
	if second.Parent != root {
		t.Error("AddChild did not set the child's parent")
	}
}

func TestAddChildOnFileIsNoop(t *testing.T) {
	f := NewFile("plain.txt", testEpoch)
	f.AddChild(NewFile("sub", testEpoch))
	if f.Children != nil {
		t.Error("file node grew a children map")
	}
}

func TestSetContent(t *testing.T) {
	f := NewFile("f.txt", testEpoch)
	later := testEpoch.Add(5 * time.Minute)
	f.SetContent("hello\n", later)

	if f.Content != "hello\n" {
		t.Errorf("Content = %q, want %q", f.Content, "hello\n")
	}
	if f.Size != 6 {
		t.Errorf("Size = %d, want 6", f.Size)
	}
	if !f.Mtime.Equal(later) {
		t.Errorf("Mtime = %v, want %v", f.Mtime, later)
	}
}

func TestSortedChildren(t *testing.T) {
	root := NewDir("/", testEpoch)
	for _, name := range []string{"var", "bin", "etc", "usr"} {
		root.AddChild(NewDir(name, testEpoch))
	}
	got := root.SortedChildren()
	want := []string{"bin", "etc", "usr", "var"}
	if len(got) != len(want) {
		t.Fatalf("got %d children, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("child %d = %q, want %q", i, got[i].Name, name)
		}
	}
}
