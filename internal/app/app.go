package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"glsandbox/internal/asynclog"
	"glsandbox/internal/config"
	"glsandbox/internal/domain"
	"glsandbox/internal/eventbus"
	"glsandbox/internal/metrics"
	"glsandbox/internal/scene"
	"glsandbox/internal/ui"
)

// DefaultConfigPath is read when -config is not given
const DefaultConfigPath = "glsandbox.toml"

// Options are command line settings; non-zero values override the config file
type Options struct {
	ConfigPath  string
	WriteConfig string
	Headless    bool
	Frames      int
	Mode        string
	SnapshotDir string
	MetricsAddr string

	// Console receives log lines in headless mode; defaults to stderr
	Console io.Writer
}

// ParseFlags parses command line arguments
func ParseFlags(args []string) (Options, error) {
	var opts Options
	fs := flag.NewFlagSet("glsandbox", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "Path to a TOML or YAML config file")
	fs.StringVar(&opts.ConfigPath, "c", DefaultConfigPath, "Path to a TOML or YAML config file (shorthand)")
	fs.StringVar(&opts.WriteConfig, "write-config", "", "Write the effective config to this path")
	fs.BoolVar(&opts.Headless, "headless", false, "Render without a terminal UI")
	fs.IntVar(&opts.Frames, "frames", 120, "Frames per demo in headless mode")
	fs.StringVar(&opts.Mode, "mode", "", "Start demo: triangle, cube, instanced or compute")
	fs.StringVar(&opts.SnapshotDir, "snapshot", "", "Directory for PNG snapshots")
	fs.StringVar(&opts.MetricsAddr, "metrics", "", "Serve prometheus metrics on this address")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}
	if fs.NArg() > 0 {
		return Options{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.Frames < 1 {
		return Options{}, fmt.Errorf("-frames must be positive, got %d", opts.Frames)
	}
	return opts, nil
}

// apply copies command line overrides into cfg
func (o Options) apply(cfg *config.Config) error {
	if o.Mode != "" {
		if _, err := domain.ParseDrawMode(o.Mode); err != nil {
			return fmt.Errorf("-mode: %w", err)
		}
		cfg.Render.StartMode = o.Mode
	}
	if o.SnapshotDir != "" {
		cfg.Render.SnapshotDir = o.SnapshotDir
	}
	if o.MetricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = o.MetricsAddr
	}
	return nil
}

// Run loads configuration, wires the log pipeline, metrics and event bus,
// then runs the terminal UI or the headless renderer until ctx is done.
func Run(ctx context.Context, opts Options) (err error) {
	cfg, err := config.NewConfigService(opts.ConfigPath).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	set := metrics.NewSet(reg)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	sink, warnings, err := openSinks(ctx, cfg, opts.Headless, console)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(sink, cfg, set.Log)
	if err != nil {
		return errors.Join(err, sink.Close())
	}
	defer func() {
		if cerr := pipeline.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close log: %w", cerr))
		}
	}()

	runID := uuid.NewString()
	logger := newLogger(pipeline, cfg, runID)
	for _, w := range warnings {
		logger.Warn().Err(w).Msg("log sink disabled")
	}
	pipeline.Infof("glsandbox run %s starting", runID)

	bus := eventbus.New(eventbus.WithLogger(logger), eventbus.WithMetrics(set.Bus))
	defer bus.Reset()
	logEvents(bus, cfg, logger)

	eventbus.Publish(bus, domain.ConfigLoadedEvent{Path: opts.ConfigPath})
	if opts.WriteConfig != "" {
		if err := config.NewConfigServiceWithBus(opts.WriteConfig, bus).Save(cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if cfg.Metrics.Enabled {
		served := make(chan struct{})
		go func() {
			defer close(served)
			serveMetrics(ctx, cfg.Metrics.Addr, reg, &logger)
		}()
		// the listener must be released before the log pipeline closes
		defer func() {
			cancel()
			<-served
		}()
	}

	sc := scene.New(scene.Options{
		Instances:      cfg.Render.Instances,
		Spacing:        cfg.Render.Spacing,
		ComputeWorkers: cfg.Render.ComputeWorkers,
		FOV:            cfg.Render.FOV,
	})

	if opts.Headless {
		h := &headless{
			bus:       bus,
			cfg:       cfg,
			scene:     sc,
			logger:    logger,
			pipeline:  pipeline,
			frames:    opts.Frames,
			snapshots: opts.SnapshotDir != "",
			metrics:   set.Frames,
		}
		err = h.run(ctx)
	} else {
		err = runUI(ctx, bus, cfg, sc, logger, set.Frames)
	}

	stats := pipeline.Stats()
	logger.Info().
		Uint64("log_submitted", stats.Submitted).
		Uint64("log_dropped", stats.Dropped).
		Uint64("log_sink_errors", stats.SinkErrors).
		Msg("shutting down")
	return err
}

func openSinks(ctx context.Context, cfg *config.Config, headless bool, console io.Writer) (asynclog.Sink, []error, error) {
	var (
		sinks    asynclog.MultiSink
		warnings []error
	)

	if cfg.Log.File != "" {
		fs, err := asynclog.OpenFileSink(cfg.Log.File)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		sinks = append(sinks, fs)
	}
	// the terminal belongs to bubbletea unless we are headless
	if cfg.Log.Console && headless {
		sinks = append(sinks, asynclog.NewWriterSink(console))
	}
	if cfg.Log.RedisAddr != "" {
		rs, err := asynclog.NewRedisSink(ctx, asynclog.RedisOptions{
			Addr:   cfg.Log.RedisAddr,
			Key:    cfg.Log.RedisKey,
			MaxLen: cfg.Log.RedisMaxLen,
		})
		if err != nil {
			warnings = append(warnings, err)
		} else {
			sinks = append(sinks, rs)
		}
	}

	switch len(sinks) {
	case 0:
		return asynclog.NewWriterSink(io.Discard), warnings, nil
	case 1:
		return sinks[0], warnings, nil
	}
	return sinks, warnings, nil
}

func newPipeline(sink asynclog.Sink, cfg *config.Config, m *metrics.Log) (*asynclog.Pipeline, error) {
	sev, err := asynclog.ParseSeverity(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	overflow, err := asynclog.ParseOverflow(cfg.Log.Overflow)
	if err != nil {
		return nil, fmt.Errorf("log.overflow: %w", err)
	}
	return asynclog.New(sink,
		asynclog.WithColor(cfg.Log.Color),
		asynclog.WithMinSeverity(sev),
		asynclog.WithMaxQueued(cfg.Log.MaxQueued),
		asynclog.WithOverflow(overflow),
		asynclog.WithMetrics(m),
	), nil
}

// newLogger builds the application logger on top of the pipeline so that
// structured lines and marker lines share one ordered queue
func newLogger(pipeline *asynclog.Pipeline, cfg *config.Config, runID string) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: pipeline, NoColor: !cfg.Log.Color, TimeFormat: time.RFC3339}
	return zerolog.New(output).
		Level(zerologLevel(cfg.Log.Level)).
		With().
		Timestamp().
		Str("run_id", runID).
		Logger()
}

func zerologLevel(level string) zerolog.Level {
	sev, err := asynclog.ParseSeverity(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	switch sev {
	case asynclog.SeverityDebug:
		return zerolog.DebugLevel
	case asynclog.SeverityWarn:
		return zerolog.WarnLevel
	case asynclog.SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// logEvents records notable bus events in the application log
func logEvents(bus *eventbus.Bus, cfg *config.Config, logger zerolog.Logger) {
	eventbus.SubscribeFunc(bus, func(e *domain.ConfigLoadedEvent) {
		logger.Info().Str("path", e.Path).Str("start_mode", cfg.Render.StartMode).Msg("config loaded")
	})
	eventbus.SubscribeFunc(bus, func(e *domain.SnapshotSavedEvent) {
		if e.Err != nil {
			logger.Error().Err(e.Err).Str("mode", e.Mode.String()).Msg("snapshot failed")
			return
		}
		logger.Info().Str("path", e.Path).Str("mode", e.Mode.String()).Msg("snapshot saved")
	})
	eventbus.SubscribeFunc(bus, func(e *domain.ConfigSavedEvent) {
		logger.Info().Str("path", e.Path).Msg("config saved")
	})
}

func runUI(ctx context.Context, bus *eventbus.Bus, cfg *config.Config, sc *scene.Scene, logger zerolog.Logger, frames *metrics.Frames) error {
	model := ui.NewModel(ctx, bus, cfg, sc, logger, frames)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	model.SetProgram(p)

	logger.Info().Msg("starting UI")
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Info().Msg("UI stopped by signal")
			return nil
		}
		return fmt.Errorf("run UI: %w", err)
	}
	logger.Info().Uint64("frames", model.Frames().Total()).Msg("UI exited normally")
	return nil
}
