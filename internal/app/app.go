package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/hcl/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/metrics"
	"github.com/specialistvlad/yangreactor/internal/reactor"
	"github.com/specialistvlad/yangreactor/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	reactor  *reactor.Reactor

	metrics      *metrics.Recorder
	promRegistry *prometheus.Registry
	httpServer   *http.Server

	runs  atomic.Uint64
	mu    sync.Mutex
	files map[string]*hcl.File
	ready bool
}

// NewApp is the constructor for the main application. Resolved models are
// written to outW and logs to logW. It returns a fully initialized App
// instance, including its own isolated logger, registry and metrics.
// Without modules the core support bundles are registered.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New(modules...)
	logger.Debug("All support bundles registered.", "bundles", len(modules), "supports", reg.Len())

	// A support set that cannot serve its own rules is a programmer error.
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	features, err := parseFeatures(cfg.Features)
	if err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	rec := metrics.New()
	promRegistry := prometheus.NewRegistry()
	rec.MustRegister(promRegistry)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		reactor: reactor.New(reg, reactor.Options{
			EnableSemanticVersioning:  cfg.EnableSemanticVersioning,
			ErrorOnUnsupportedFeature: cfg.ErrorOnUnsupportedFeature,
			Features:                  features,
			Observer:                  rec,
		}),
		metrics:      rec,
		promRegistry: promRegistry,
	}
}

func parseFeatures(entries []string) (reactor.FeatureSet, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	return reactor.ParseFeatureSet(entries)
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Metrics returns the Prometheus registry the application reports to.
func (a *App) Metrics() *prometheus.Registry {
	return a.promRegistry
}
