package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	root := New()
	want := []string{"rooms", "show", "chat", "send", "react", "unreact", "login", "logout", "whoami", "countries", "watch", "mcp", "info", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered: %v", name, err)
		}
	}
	for _, name := range []string{"list", "create", "delete", "use", "seed"} {
		if cmd, _, err := root.Find([]string{"rooms", name}); err != nil || cmd.Name() != name {
			t.Errorf("rooms %s not registered: %v", name, err)
		}
	}
}

func TestPersistentLogFlags(t *testing.T) {
	root := New()
	for _, flag := range []string{"log-level", "no-color"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing --%s", flag)
		}
	}
}

func TestVersionPrints(t *testing.T) {
	root := New()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version", "--short"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "dev") {
		t.Fatalf("version output = %q", out.String())
	}
}

func TestJoinArgs(t *testing.T) {
	if got := joinArgs([]string{"Trip", "Planning "}); got != "Trip Planning" {
		t.Fatalf("joinArgs = %q", got)
	}
	if got := joinArgs(nil); got != "" {
		t.Fatalf("joinArgs(nil) = %q", got)
	}
}
