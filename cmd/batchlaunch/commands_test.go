package main

import "testing"

func TestBuildRootRegistersCommands(t *testing.T) {
	root := buildRoot()
	want := map[string]bool{
		"serve":   false,
		"launch":  false,
		"close":   false,
		"status":  false,
		"scan":    false,
		"locate":  false,
		"account": false,
	}
	for _, c := range root.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
}

func TestRootConfigFlag(t *testing.T) {
	root := buildRoot()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("missing --config persistent flag")
	}
}

func TestAccountSubcommands(t *testing.T) {
	root := buildRoot()
	for _, c := range root.Commands() {
		if c.Name() != "account" {
			continue
		}
		names := map[string]bool{}
		for _, sub := range c.Commands() {
			names[sub.Name()] = true
		}
		for _, want := range []string{"add", "list", "rm", "import", "export"} {
			if !names[want] {
				t.Fatalf("account subcommand %q not registered", want)
			}
		}
		return
	}
	t.Fatal("account command not registered")
}
