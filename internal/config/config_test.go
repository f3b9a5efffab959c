package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
)

func mapEnv(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestRoundTripTOMLAndYAML(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Render.StartMode = "compute"
	cfg.Render.Instances = 64
	cfg.Log.RedisAddr = "localhost:6379"
	cfg.Metrics.Enabled = true

	for _, name := range []string{"sandbox.toml", "sandbox.yaml", "nested/sandbox.yml"} {
		t.Run(name, func(t *testing.T) {
			cs := NewConfigService(filepath.Join(dir, name))
			path := filepath.Join(dir, name)

			require.NoError(t, cs.SaveToPath(cfg, path))
			loaded, err := cs.LoadFromPath(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[render]\nstart_mode = \"cube\"\n"), 0644))

	cfg, err := NewConfigService(path).LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", cfg.Render.StartMode)
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, "glsandbox.log", cfg.Log.File)
}

func TestUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	cs := NewConfigService(path)
	_, err := cs.LoadFromPath(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorIs(t, cs.SaveToPath(DefaultConfig(), path), ErrUnsupportedFormat)
}

func TestLoadMissingFileUsesDefaultsAndEnv(t *testing.T) {
	cs := &configService{
		filePath: filepath.Join(t.TempDir(), "missing.toml"),
		env: mapEnv(map[string]string{
			"GLSANDBOX_LOG_LEVEL":    "debug",
			"GLSANDBOX_START_MODE":   "instanced",
			"GLSANDBOX_INSTANCES":    "25",
			"GLSANDBOX_INSTANCES_X":  "ignored",
			"GLSANDBOX_METRICS_ADDR": ":9191",
			"GLSANDBOX_LOG_COLOR":    "true",
		}),
	}

	cfg, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, domain.DrawInstanced, cfg.StartMode())
	assert.Equal(t, 25, cfg.Render.Instances)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9191", cfg.Metrics.Addr)
	assert.True(t, cfg.Log.Color)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n  file: from-file.log\n"), 0644))

	cs := &configService{
		filePath: path,
		env:      mapEnv(map[string]string{"GLSANDBOX_LOG_FILE": "from-env.log"}),
	}
	cfg, err := cs.Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-env.log", cfg.Log.File)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Window.Width = -1
	cfg.Render.FOV = 400
	cfg.Render.ComputeWorkers = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1920, cfg.Window.Width)
	assert.Equal(t, 60.0, cfg.Render.FOV)
	assert.Equal(t, 4, cfg.Render.ComputeWorkers)

	bad := DefaultConfig()
	bad.Render.StartMode = "wireframe"
	assert.ErrorIs(t, bad.Validate(), domain.ErrUnknownMode)

	bad = DefaultConfig()
	bad.Log.Overflow = "block"
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Log.Level = "loud"
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Log.MaxQueued = -5
	assert.Error(t, bad.Validate())
}

func TestConfigEventsArePublished(t *testing.T) {
	bus := eventbus.New()
	var loaded, saved []string
	eventbus.SubscribeFunc(bus, func(e *domain.ConfigLoadedEvent) { loaded = append(loaded, e.Path) })
	eventbus.SubscribeFunc(bus, func(e *domain.ConfigSavedEvent) { saved = append(saved, e.Path) })

	path := filepath.Join(t.TempDir(), "sandbox.toml")
	cs := NewConfigServiceWithBus(path, bus).(*configService)
	cs.env = mapEnv(nil)

	cfg, err := cs.Load()
	require.NoError(t, err)
	require.NoError(t, cs.Save(cfg))

	assert.Equal(t, []string{path}, loaded)
	assert.Equal(t, []string{path}, saved)
	assert.FileExists(t, path)
}
