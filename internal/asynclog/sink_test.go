package asynclog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeverityMarker(t *testing.T) {
	assert.Equal(t, "[INFO]: ", SeverityInfo.Marker(false))
	assert.Equal(t, "[ERROR]: ", SeverityError.Marker(false))
	assert.Contains(t, SeverityWarn.Marker(true), "[WARN]: ")
	assert.Equal(t, "SEVERITY(42)", Severity(42).String())
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{
		"debug":   SeverityDebug,
		"INFO":    SeverityInfo,
		"warning": SeverityWarn,
		"Error":   SeverityError,
	} {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSeverity("loud")
	assert.Error(t, err)
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sandbox.log")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0644))

	sink, err := OpenFileSink(path)
	require.NoError(t, err)
	assert.Equal(t, path, sink.Path())

	p := New(sink)
	p.Infof("appended")
	require.NoError(t, p.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\n[INFO]: appended\n", string(data))

	assert.ErrorIs(t, sink.WriteLine("after close\n"), ErrClosed)
	assert.NoError(t, sink.Close())
}

func TestFileSinkCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "out.log")
	sink, err := OpenFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.Close())
	assert.FileExists(t, path)
}

type errSink struct{ err error }

func (s errSink) WriteLine(string) error { return s.err }
func (s errSink) Close() error           { return s.err }

func TestMultiSinkFansOut(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	boom := errors.New("boom")
	multi := MultiSink{a, errSink{err: boom}, b}

	err := multi.WriteLine("x\n")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"x\n"}, a.Lines())
	assert.Equal(t, []string{"x\n"}, b.Lines())

	assert.ErrorIs(t, multi.Close(), boom)
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestRedisSinkPushesAndTrims(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisSinkWithClient(client, "sandbox:test", 3)
	p := New(sink)
	for i := 0; i < 5; i++ {
		p.Infof("frame %d", i)
	}
	require.NoError(t, p.Close())

	lines, err := client.LRange(context.Background(), "sandbox:test", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"[INFO]: frame 2\n", "[INFO]: frame 3\n", "[INFO]: frame 4\n"}, lines)

	// client is still usable: the sink does not own it
	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisSinkConnects(t *testing.T) {
	mr := miniredis.RunT(t)

	sink, err := NewRedisSink(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, sink.WriteLine("hello\n"))
	require.NoError(t, sink.Close())

	got, err := mr.List("glsandbox:log")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello\n"}, got)
}

func TestNewRedisSinkFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisSink(context.Background(), RedisOptions{Addr: addr})
	assert.Error(t, err)
}
