package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/vk/behaviorgo/internal/builder"
	"github.com/vk/behaviorgo/internal/catalog"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/inmemorycatalog"
	"github.com/vk/behaviorgo/internal/inmemorystore"
	"github.com/vk/behaviorgo/internal/nodeid"
	"github.com/vk/behaviorgo/internal/nodestore"
	"github.com/vk/behaviorgo/internal/registry"
	"github.com/vk/behaviorgo/internal/sqlitecatalog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	builder  *builder.Builder
	catalog  catalog.Catalog
	nodes    nodestore.Store
	watch    []*nodeid.Address
	closers  []func() error

	httpServer *http.Server
	status     *runStatus
}

// NewApp is the constructor for the main application. Command output goes
// to outW and log output to logW. When no modules are given the built-in
// ones are registered. An inconsistent registry is a programmer error and
// panics.
func NewApp(ctx context.Context, outW, logW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	reg.Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "node_types", len(reg.Nodes))

	watch, err := parseAddresses(cfg.Watch)
	if err != nil {
		return nil, err
	}

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		nodes:    inmemorystore.New(),
		watch:    watch,
		status:   &runStatus{},
	}

	if cfg.DBPath != "" {
		store, err := sqlitecatalog.Open(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		a.catalog = store
		a.closers = append(a.closers, store.Close)
	} else {
		a.catalog = inmemorycatalog.New()
	}

	opts := []builder.Option{
		builder.WithCatalog(a.catalog),
		builder.WithCacheSize(cfg.CacheSize),
		builder.WithObserver(nodestore.Recorder(a.nodes)),
	}
	if cfg.Root != "" {
		opts = append(opts, builder.WithFilesystem(osfs.New(cfg.Root)))
	}
	b, err := builder.New(reg, opts...)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create tree builder: %w", err)
	}
	a.builder = b

	return a, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Builder returns the application's tree builder.
func (a *App) Builder() *builder.Builder {
	return a.builder
}

// PersistentCatalog reports whether the catalog is backed by a database.
func (a *App) PersistentCatalog() bool {
	return a.config.DBPath != ""
}

// Close stops the health check server and releases the catalog.
func (a *App) Close() error {
	var firstErr error
	if err := a.closeHealthCheckServer(); err != nil {
		firstErr = err
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
