package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	SetBuildInfo("v9.9.9", "abc", "2026-02-17T00:00:00Z")
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got, want := out.String(), "taskgen v9.9.9 (abc) 2026-02-17T00:00:00Z\n"; got != want {
		t.Fatalf("version output = %q, want %q", got, want)
	}
}

func TestCompletionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"completion", "bash"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if !strings.Contains(out.String(), "taskgen") {
		t.Fatalf("expected bash completion for taskgen, got %d bytes", out.Len())
	}
}

func TestCompletionUnsupportedShell(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"completion", "tcsh"})
	if code := ExitCode(cmd.Execute()); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}
