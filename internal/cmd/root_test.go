package cmd

import (
	"testing"
)

func TestNewRootCmdWiresSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := map[string]bool{
		"run":      false,
		"serve":    false,
		"mount":    false,
		"snapshot": false,
	}
	for _, sub := range root.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
			if sub.GroupID == "" {
				t.Errorf("%s has no command group", sub.Name())
			}
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestSplitAddr(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"127.0.0.1:8023", "127.0.0.1", 8023, false},
		{"0.0.0.0:80", "0.0.0.0", 80, false},
		{"localhost:abc", "", 0, true},
		{"no-port", "", 0, true},
	}
	for _, tt := range tests {
		host, port, err := splitAddr(tt.addr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("splitAddr(%q) expected error", tt.addr)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitAddr(%q) error: %v", tt.addr, err)
			continue
		}
		if host != tt.wantHost || port != tt.wantPort {
			t.Errorf("splitAddr(%q) = %q, %d", tt.addr, host, port)
		}
	}
}
