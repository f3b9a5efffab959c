//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestMain(m *testing.M) {
	os.Exit(run(m))
}

// run builds the binary from the module root into a scratch directory
func run(m *testing.M) int {
	dir, err := os.MkdirTemp("", "glsandbox-e2e")
	if err != nil {
		fmt.Fprintf(os.Stderr, "temp dir: %v\n", err)
		return 1
	}
	defer os.RemoveAll(dir)

	binPath = filepath.Join(dir, "glsandbox")
	build := exec.Command("go", "build", "-o", binPath, "./cmd/glsandbox")
	build.Dir = ".."
	build.Stdout = os.Stdout
	build.Stderr = os.Stderr
	if err := build.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build glsandbox: %v\n", err)
		return 1
	}
	return m.Run()
}
