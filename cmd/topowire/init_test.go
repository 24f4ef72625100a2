package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/topowire/topowire/internal/loader"
)

func TestRunInit(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "web-stack"); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}

	mainHCL := filepath.Join(dir, "web-stack", "topology", "main.hcl")
	if _, err := os.Stat(mainHCL); err != nil {
		t.Fatalf("expected main.hcl to exist: %v", err)
	}

	// The starter topology must load and validate cleanly.
	result, err := loader.NewLoader().Load(context.Background(), filepath.Join(dir, "web-stack", "topology"))
	if err != nil {
		t.Fatalf("starter topology failed to load: %v", err)
	}
	for v := range result.Topology.Validate() {
		t.Errorf("starter topology has violation: %s", v)
	}
}

func TestRunInitExistingProject(t *testing.T) {
	dir := t.TempDir()

	if err := runInit(dir, "web-stack"); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}
	if err := runInit(dir, "web-stack"); err == nil {
		t.Error("expected error for existing project")
	}
}

func TestRunInitInvalidName(t *testing.T) {
	for _, name := range []string{"1abc", "-abc", "a b", ""} {
		if err := runInit(t.TempDir(), name); err == nil {
			t.Errorf("expected error for project name %q", name)
		}
	}
}
