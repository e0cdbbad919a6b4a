package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-a-real-binary"},
		{Name: "Unconfigured", Command: ""},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("got %d results, want %d", len(results), len(reqs))
	}
	if !results[0].Available {
		t.Fatalf("got Present unavailable, want available: %+v", results[0])
	}
	if results[1].Available {
		t.Fatal("got Missing available, want unavailable")
	}
	if results[2].Available {
		t.Fatal("got Unconfigured available, want unavailable")
	}
}
