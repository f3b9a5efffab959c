//go:build e2e && unix

package main

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyCtrlC    = "\x03"
	keySpace    = " "
	keyNext     = "n"
	keySnapshot = "p"
	keyQuit     = "q"

	readyMarker = "__READY__"
	maxOutput   = 1 << 20
	waitTimeout = 5 * time.Second
)

var binPath string

// escape sequences and carriage returns bubbletea writes between text runs
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07]*\x07|\x1b[()][A-Za-z]|\x1b[=>]|\r`)

// sandbox runs the binary under a pseudo terminal inside its own workspace
type sandbox struct {
	t      *testing.T
	dir    string
	cmd    *exec.Cmd
	pty    *os.File
	exited chan error

	mu  sync.Mutex
	out bytes.Buffer
}

func newSandbox(t *testing.T) *sandbox {
	s := &sandbox{t: t, dir: t.TempDir()}
	t.Cleanup(s.stop)
	return s
}

// writeConfig stores body as glsandbox.toml in the workspace
func (s *sandbox) writeConfig(body string) string {
	s.t.Helper()
	path := filepath.Join(s.dir, "glsandbox.toml")
	require.NoError(s.t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func (s *sandbox) start(args ...string) {
	s.t.Helper()
	s.cmd = exec.Command(binPath, args...)
	s.cmd.Dir = s.dir
	s.cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"LC_ALL=C",
		"HOME="+s.dir,
		"SANDBOX_E2E_TEST=1",
	)

	f, err := pty.StartWithSize(s.cmd, &pty.Winsize{Rows: 40, Cols: 120})
	require.NoError(s.t, err, "start %s", binPath)
	s.pty = f
	s.exited = make(chan error, 1)

	go func() {
		_, _ = io.Copy(s, f)
	}()
	go func() {
		s.exited <- s.cmd.Wait()
	}()
}

// Write collects terminal output, keeping the most recent maxOutput bytes
func (s *sandbox) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Write(p)
	if over := s.out.Len() - maxOutput; over > 0 {
		s.out.Next(over)
	}
	return len(p), nil
}

func (s *sandbox) plain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ansiRe.ReplaceAllString(s.out.String(), "")
}

func (s *sandbox) tail(n int) string {
	out := s.plain()
	if len(out) > n {
		out = out[len(out)-n:]
	}
	return out
}

func (s *sandbox) press(keys string) {
	s.t.Helper()
	_, err := s.pty.Write([]byte(keys))
	require.NoError(s.t, err)
}

// expect waits until text shows up on screen
func (s *sandbox) expect(text string) {
	s.t.Helper()
	if !assert.Eventually(s.t, func() bool {
		return strings.Contains(s.plain(), text)
	}, waitTimeout, 25*time.Millisecond) {
		s.t.Fatalf("%q never appeared, screen tail:\n%s", text, s.tail(2048))
	}
}

// ready starts the binary with a small config and waits for the first frame
func (s *sandbox) ready() {
	s.t.Helper()
	s.start("-config", s.writeConfig("[render]\ninstances = 16\n"))
	s.expect(readyMarker)
	s.expect("glsandbox")
}

// waitExit returns the exit error, failing the test after timeout
func (s *sandbox) waitExit(timeout time.Duration) error {
	s.t.Helper()
	select {
	case err := <-s.exited:
		s.exited = nil
		return err
	case <-time.After(timeout):
		s.t.Fatalf("process still running after %s, screen tail:\n%s", timeout, s.tail(2048))
		return nil
	}
}

func (s *sandbox) stop() {
	if s.cmd != nil && s.exited != nil {
		_ = s.cmd.Process.Kill()
		<-s.exited
	}
	if s.pty != nil {
		_ = s.pty.Close()
	}
}
