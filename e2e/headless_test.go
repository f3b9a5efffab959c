//go:build e2e && unix

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadlessRun(t *testing.T) {
	t.Parallel()
	workspace := t.TempDir()
	cfg := filepath.Join(workspace, "glsandbox.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("render:\n  instances: 9\nlog:\n  console: true\n"), 0644))

	cmd := exec.Command(binPath, "-config", cfg, "-headless", "-frames", "3", "-snapshot", "shots")
	cmd.Dir = workspace
	cmd.Env = append(os.Environ(), "HOME="+workspace)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))

	output := string(out)
	require.Contains(t, output, "[INFO]: triangle: 3 frames")
	require.Contains(t, output, "[INFO]: compute: 3 frames")
	require.Contains(t, output, "headless run finished")

	log, err := os.ReadFile(filepath.Join(workspace, "glsandbox.log"))
	require.NoError(t, err)
	require.Equal(t, output, string(log), "console and log file should match")

	pngs, err := filepath.Glob(filepath.Join(workspace, "shots", "*.png"))
	require.NoError(t, err)
	require.Len(t, pngs, 4)
}
