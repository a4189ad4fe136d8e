package app

import "testing"

func TestBuildVersionString(t *testing.T) {
	SetBuildInfo("v0.4.0", "1f2e3d4", "2025-01-06T08:00:00Z")
	got := BuildVersionString()
	want := "v0.4.0 (1f2e3d4) 2025-01-06T08:00:00Z"
	if got != want {
		t.Fatalf("BuildVersionString() = %q, want %q", got, want)
	}
}

func TestSetBuildInfoKeepsDefaultsForEmptyValues(t *testing.T) {
	SetBuildInfo("v0.4.0", "1f2e3d4", "2025-01-06T08:00:00Z")
	SetBuildInfo("v0.4.1", "", "")
	if got := BuildVersionString(); got != "v0.4.1 (1f2e3d4) 2025-01-06T08:00:00Z" {
		t.Fatalf("unexpected version string %q", got)
	}
}
