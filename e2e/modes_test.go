//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestModeCycling(t *testing.T) {
	t.Parallel()
	s := newSandbox(t)
	s.ready()
	s.expect("Single triangle")

	s.press(keyNext)
	s.expect("Single cube")

	s.press(keySpace)
	s.expect("attribute offsets")

	s.press("4")
	s.expect("compute positions")

	s.press(keyNext)
	s.expect("demo: Single triangle")

	s.press(keyQuit)
	require.NoError(t, s.waitExit(2*time.Second))
}

func TestFramesAdvance(t *testing.T) {
	t.Parallel()
	s := newSandbox(t)
	s.ready()
	s.expect("frame 10")

	s.press(keyQuit)
	require.NoError(t, s.waitExit(2*time.Second))
}

func TestSnapshotKey(t *testing.T) {
	t.Parallel()
	s := newSandbox(t)
	s.ready()
	s.expect("frame 2")

	s.press(keySnapshot)
	s.expect("saved")

	pngs, err := filepath.Glob(filepath.Join(s.dir, "snapshots", "triangle-*.png"))
	require.NoError(t, err)
	require.Len(t, pngs, 1)

	info, err := os.Stat(pngs[0])
	require.NoError(t, err)
	require.Positive(t, info.Size())

	s.press(keyQuit)
	require.NoError(t, s.waitExit(2*time.Second))
}
